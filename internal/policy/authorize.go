package policy

import "strings"

// statusGlyphs prefix every message the relay itself produces. Inbound text
// starting with one of these is treated as our own status echo, never as a
// new task, which keeps the relay from feeding on its own output when it
// runs on the authorized account.
var statusGlyphs = []string{"🧠", "🔧", "✅", "❌", "💥", "⏹", "🤖"}

const commandPrefix = "/"

// Gate decides which senders may submit tasks. The relay's own identity is
// resolved once at startup and cached for the process lifetime.
type Gate struct {
	self    string
	allowed string
}

// NewGate builds a gate for the relay's own identity plus an optional single
// allow-listed identity.
func NewGate(self, allowed string) *Gate {
	return &Gate{
		self:    strings.TrimSpace(self),
		allowed: strings.TrimSpace(allowed),
	}
}

// Authorized reports whether sender may submit tasks. With no allow-listed
// identity configured, only the relay's own account qualifies.
func (g *Gate) Authorized(sender string) bool {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return false
	}
	if g.self != "" && sender == g.self {
		return true
	}
	return g.allowed != "" && sender == g.allowed
}

// AcceptsTask filters message text before a session is opened. Empty text,
// commands, and the relay's own status markers are silently ignored.
func AcceptsTask(text string) bool {
	if text == "" {
		return false
	}
	if strings.HasPrefix(text, commandPrefix) {
		return false
	}
	for _, glyph := range statusGlyphs {
		if strings.HasPrefix(text, glyph) {
			return false
		}
	}
	return true
}
