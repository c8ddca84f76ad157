package confessions

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"guildhall/internal/modules/audit"
	"guildhall/internal/storage"
	"guildhall/internal/utils"
)

var (
	ErrNotConfigured = errors.New("confessions: no channel configured")
	ErrContainsLink  = errors.New("confessions: links are not allowed")
	ErrRateLimited   = errors.New("confessions: too many confessions, slow down")
	ErrEmpty         = errors.New("confessions: empty confession")
)

type Module struct {
	mu           sync.Mutex
	store        *storage.Store
	audit        *audit.Logger
	windows      map[string]*utils.SlidingWindow
	maxPerWindow int
	window       time.Duration
}

func New(store *storage.Store, auditLogger *audit.Logger, maxPerWindow int, window time.Duration) *Module {
	if maxPerWindow <= 0 {
		maxPerWindow = 3
	}
	if window <= 0 {
		window = 10 * time.Minute
	}
	return &Module{
		store:        store,
		audit:        auditLogger,
		windows:      make(map[string]*utils.SlidingWindow),
		maxPerWindow: maxPerWindow,
		window:       window,
	}
}

// Submit validates a confession and returns the channel to post it in.
// The author is recorded in the audit trail only; the posted embed stays
// anonymous.
func (m *Module) Submit(ctx context.Context, guildID, userID, content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmpty
	}

	channelID, err := m.store.ConfessionChannel(ctx, guildID)
	if err != nil {
		return "", err
	}
	if channelID == "" {
		return "", ErrNotConfigured
	}

	if links := utils.ExtractLinks(content); len(links) > 0 {
		domain, _ := utils.LinkDomain(links[0])
		m.audit.Log(ctx, audit.LevelWarn, guildID, userID, audit.EventConfession, "rejected link domain="+domain)
		return "", ErrContainsLink
	}

	if count := m.windowFor(guildID, userID).Add(time.Now()); count > m.maxPerWindow {
		return "", ErrRateLimited
	}

	m.audit.Log(ctx, audit.LevelInfo, guildID, userID, audit.EventConfession, "posted")
	return channelID, nil
}

func (m *Module) SetChannel(ctx context.Context, guildID, channelID string) error {
	return m.store.SetConfessionChannel(ctx, guildID, channelID)
}

func (m *Module) windowFor(guildID, userID string) *utils.SlidingWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := guildID + ":" + userID
	window := m.windows[key]
	if window == nil {
		window = utils.NewSlidingWindow(m.window)
		m.windows[key] = window
	}
	return window
}
