package interactions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCustomIDRoundTrip(t *testing.T) {
	ref := Ref{Kind: KindRoleToggle, Arg: "12345"}
	require.Equal(t, "role_toggle:12345", ref.CustomID())

	parsed, ok := Parse(ref.CustomID())
	require.True(t, ok)
	require.Equal(t, ref, parsed)
}

func TestCustomIDWithoutArg(t *testing.T) {
	ref := Ref{Kind: KindTicketOpen}
	require.Equal(t, "ticket_open", ref.CustomID())

	parsed, ok := Parse("ticket_open")
	require.True(t, ok)
	require.Equal(t, KindTicketOpen, parsed.Kind)
	require.Empty(t, parsed.Arg)
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, ok := Parse("giveaway_enter:123")
	require.False(t, ok)

	_, ok = Parse("")
	require.False(t, ok)
}

func TestParseKeepsColonsInArg(t *testing.T) {
	parsed, ok := Parse("nuke_confirm:a:b")
	require.True(t, ok)
	require.Equal(t, "a:b", parsed.Arg)
}
