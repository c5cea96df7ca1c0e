package policy

import "testing"

func TestAuthorizedSelfOnlyWithoutAllowList(t *testing.T) {
	gate := NewGate("111", "")

	if !gate.Authorized("111") {
		t.Fatalf("Authorized(self) = false, want true")
	}
	if gate.Authorized("222") {
		t.Fatalf("Authorized(other) = true, want false")
	}
	if gate.Authorized("") {
		t.Fatalf("Authorized(empty) = true, want false")
	}
}

func TestAuthorizedWithAllowList(t *testing.T) {
	gate := NewGate("111", "222")

	tests := []struct {
		sender string
		want   bool
	}{
		{"111", true},
		{"222", true},
		{"333", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := gate.Authorized(tc.sender); got != tc.want {
			t.Fatalf("Authorized(%q) = %v, want %v", tc.sender, got, tc.want)
		}
	}
}

func TestAcceptsTask(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "plain task", text: "summarize file X", want: true},
		{name: "empty", text: "", want: false},
		{name: "command", text: "/stop", want: false},
		{name: "other command", text: "/help me", want: false},
		{name: "command mid-text is fine", text: "run /stop later", want: true},
		{name: "status echo", text: "✅ **Task complete**", want: false},
		{name: "thinking echo", text: "🧠 **Agent is thinking...**", want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := AcceptsTask(tc.text); got != tc.want {
				t.Fatalf("AcceptsTask(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestAcceptsTaskRejectsEveryStatusGlyph(t *testing.T) {
	// A message that is exactly one status glyph must be ignored even from
	// the authorized sender.
	for _, glyph := range statusGlyphs {
		if AcceptsTask(glyph) {
			t.Fatalf("AcceptsTask(%q) = true, want false", glyph)
		}
	}
}
