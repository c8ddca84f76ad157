// Package interactions maps Discord component customIDs to typed actions.
// The string form is decoded exactly once at the gateway boundary; handlers
// dispatch on Kind instead of parsing prefixes themselves.
package interactions

import "strings"

type Kind string

const (
	KindTicketOpen    Kind = "ticket_open"
	KindRoleToggle    Kind = "role_toggle"
	KindNukeArm       Kind = "nuke_arm"
	KindNukeConfirm   Kind = "nuke_confirm"
	KindConfessSubmit Kind = "confess_submit"
)

var known = map[Kind]struct{}{
	KindTicketOpen:    {},
	KindRoleToggle:    {},
	KindNukeArm:       {},
	KindNukeConfirm:   {},
	KindConfessSubmit: {},
}

// Ref is a component action plus its single argument (a role id, a guild
// id, or empty).
type Ref struct {
	Kind Kind
	Arg  string
}

func (r Ref) CustomID() string {
	if r.Arg == "" {
		return string(r.Kind)
	}
	return string(r.Kind) + ":" + r.Arg
}

func Parse(customID string) (Ref, bool) {
	kind, arg, _ := strings.Cut(customID, ":")
	ref := Ref{Kind: Kind(kind), Arg: arg}
	if _, ok := known[ref.Kind]; !ok {
		return Ref{}, false
	}
	return ref, true
}
