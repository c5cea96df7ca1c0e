package relay

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ent0n29/taskrelay/internal/chat"
	"github.com/ent0n29/taskrelay/internal/observability"
	"github.com/ent0n29/taskrelay/internal/protocol"
)

const (
	thinkingText  = "🧠 **Agent is thinking...**"
	writingPrefix = "🧠 **Agent is writing...**"
	noOutputText  = "Task finished with no output."

	completeMarker = "✅ **Task complete**"
	failedMarker   = "❌ **Task failed**"
)

// Streamer is the open task channel a session consumes.
type Streamer interface {
	SendTask(text string) error
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// StreamDialer opens a new task channel.
type StreamDialer func(ctx context.Context) (Streamer, error)

// Session mirrors one backend task into a single progressively edited chat
// message. All fields are private to the goroutine running the session;
// nothing here is shared across sessions.
type Session struct {
	id      string
	chat    chat.Adapter
	origin  chat.Message
	reply   chat.MessageRef
	content strings.Builder

	statusPrefix   string
	updateInterval time.Duration
	displayLimit   int
	lastEdit       time.Time
	hasEdited      bool
	now            func() time.Time

	metrics *observability.Metrics
}

func newSession(a chat.Adapter, origin chat.Message, interval time.Duration, limit int, metrics *observability.Metrics) *Session {
	return &Session{
		id:             uuid.NewString(),
		chat:           a,
		origin:         origin,
		updateInterval: interval,
		displayLimit:   limit,
		now:            time.Now,
		metrics:        metrics,
	}
}

// Run drives the session from the placeholder reply to a terminal edit.
// Errors never escape: every exit path either reports to the user or logs,
// and the streaming channel is released regardless of how the session ends.
func (s *Session) Run(ctx context.Context, dial StreamDialer) {
	ref, err := s.chat.Reply(ctx, s.origin, thinkingText)
	if err != nil {
		log.Printf("session %s: placeholder reply failed: %v", s.id, err)
		s.metrics.ObserveOutcome("transport_error")
		return
	}
	s.reply = ref

	stream, err := dial(ctx)
	if err != nil {
		s.failOpen(ctx, err)
		return
	}
	defer stream.Close()

	if err := stream.SendTask(s.origin.Text); err != nil {
		s.failOpen(ctx, err)
		return
	}

	for {
		data, err := stream.Next(ctx)
		if err != nil {
			// Channel failed or closed without a terminal event.
			s.replyFinal(ctx, fmt.Sprintf("💥 **Connection failed:** %v", err))
			s.metrics.ObserveOutcome("transport_error")
			return
		}

		ev, err := protocol.Normalize(data)
		if err != nil || ev == nil {
			continue
		}
		s.metrics.ObserveEvent(protocol.Kind(ev))

		switch ev := ev.(type) {
		case protocol.Content:
			s.content.WriteString(ev.Text)
			s.statusPrefix = writingPrefix
			s.refresh(ctx)
		case protocol.ToolStart:
			s.statusPrefix = "🔧 **Running:** `" + strings.Join(ev.Tools, ", ") + "`"
			s.refresh(ctx)
		case protocol.ToolResult:
			// Accepted but not rendered; reserved for richer progress views.
		case protocol.ErrorEvent:
			s.replyFinal(ctx, "❌ **Agent error:**\n"+ev.Message)
			s.metrics.ObserveOutcome("backend_error")
			return
		case protocol.Complete:
			s.finalEdit(ctx, ev.Succeeded)
			if ev.Succeeded {
				s.metrics.ObserveOutcome("completed")
			} else {
				s.metrics.ObserveOutcome("failed")
			}
			return
		}
	}
}

// refresh applies a throttled edit carrying the latest accumulated state.
// Requests inside the minimum interval are dropped, not queued; the next
// applied edit always renders the newest content, so nothing is lost, only
// intermediate renders are coalesced.
func (s *Session) refresh(ctx context.Context) {
	now := s.now()
	if s.hasEdited && now.Sub(s.lastEdit) < s.updateInterval {
		s.metrics.ObserveEdit("dropped")
		return
	}
	if err := s.chat.Edit(ctx, s.reply, s.render()); err != nil {
		// Losing one refresh is non-fatal; a later edit carries the same state.
		log.Printf("session %s: ui refresh failed: %v", s.id, err)
		s.metrics.ObserveEdit("failed")
		return
	}
	s.lastEdit = now
	s.hasEdited = true
	s.metrics.ObserveEdit("applied")
}

// finalEdit bypasses throttling: terminal state must always render.
func (s *Session) finalEdit(ctx context.Context, succeeded bool) {
	text := s.content.String()
	if strings.TrimSpace(text) == "" {
		text = noOutputText
	}
	marker := completeMarker
	if !succeeded {
		marker = failedMarker
	}
	display := s.compose(marker, text)
	if err := s.chat.Edit(ctx, s.reply, display); err != nil {
		log.Printf("session %s: final edit failed: %v", s.id, err)
		s.metrics.ObserveEdit("failed")
		return
	}
	s.metrics.ObserveEdit("applied")
}

// failOpen reports a channel-open failure on the placeholder message, or as
// a fresh reply if editing it fails.
func (s *Session) failOpen(ctx context.Context, cause error) {
	text := fmt.Sprintf("💥 **Connection failed:** %v\n_Is the backend running?_", cause)
	if err := s.chat.Edit(ctx, s.reply, text); err != nil {
		log.Printf("session %s: failure edit failed: %v", s.id, err)
		s.replyFinal(ctx, text)
	}
	s.metrics.ObserveOutcome("transport_error")
}

func (s *Session) replyFinal(ctx context.Context, text string) {
	if _, err := s.chat.Reply(ctx, s.origin, text); err != nil {
		log.Printf("session %s: terminal reply failed: %v", s.id, err)
	}
}

func (s *Session) render() string {
	return s.compose(s.statusPrefix, s.content.String())
}

// compose renders the header plus the newest tail of the body within the
// display limit. The limit counts characters, not bytes, and the header
// gets its space reserved first so a long body never pushes the status or
// terminal marker out. Presentation only; accumulated content is never cut.
func (s *Session) compose(header, body string) string {
	limit := s.displayLimit
	if header != "" {
		limit -= utf8.RuneCountInString(header) + 2
	}
	body = tailRunes(body, limit)
	if header == "" {
		return body
	}
	return header + "\n\n" + body
}

// tailRunes keeps the trailing limit characters of text.
func tailRunes(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[len(runes)-limit:])
}
