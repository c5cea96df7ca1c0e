package relay

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ent0n29/taskrelay/internal/backend"
	"github.com/ent0n29/taskrelay/internal/chat"
	"github.com/ent0n29/taskrelay/internal/observability"
	"github.com/ent0n29/taskrelay/internal/policy"
)

const stopCommand = "/stop"

// Relay accepts inbound chat messages and runs one task session per
// accepted message. Sessions are fully independent; a failing session never
// affects the listener or other sessions.
type Relay struct {
	chat     chat.Adapter
	gate     *policy.Gate
	control  *backend.ControlClient
	dial     StreamDialer
	interval time.Duration
	limit    int
	metrics  *observability.Metrics
}

type Options struct {
	Chat           chat.Adapter
	Gate           *policy.Gate
	Control        *backend.ControlClient
	Dial           StreamDialer
	UpdateInterval time.Duration
	DisplayLimit   int
	Metrics        *observability.Metrics
}

func New(opts Options) *Relay {
	interval := opts.UpdateInterval
	if interval <= 0 {
		interval = time.Second
	}
	limit := opts.DisplayLimit
	if limit <= 0 {
		limit = 4000
	}
	return &Relay{
		chat:     opts.Chat,
		gate:     opts.Gate,
		control:  opts.Control,
		dial:     opts.Dial,
		interval: interval,
		limit:    limit,
		metrics:  opts.Metrics,
	}
}

// Listen consumes inbound messages until ctx is cancelled. Each message is
// dispatched to its own goroutine; no ordering is guaranteed across them.
func (r *Relay) Listen(ctx context.Context) error {
	return r.chat.Listen(ctx, func(msg chat.Message) {
		go r.handle(ctx, msg)
	})
}

func (r *Relay) handle(ctx context.Context, msg chat.Message) {
	if !r.gate.Authorized(msg.Sender) {
		return
	}
	if msg.Text == stopCommand {
		r.handleStop(ctx, msg)
		return
	}
	if !policy.AcceptsTask(msg.Text) {
		return
	}

	log.Printf("accepted task from %s: %s", msg.Sender, summarize(msg.Text))
	r.metrics.SessionStarted()
	defer r.metrics.SessionEnded()
	newSession(r.chat, msg, r.interval, r.limit, r.metrics).Run(ctx, r.dial)
}

// handleStop fires the out-of-band cancellation request. It never touches a
// task session and may run concurrently with one.
func (r *Relay) handleStop(ctx context.Context, msg chat.Message) {
	status, err := r.control.Stop(ctx)
	if err != nil {
		r.metrics.ObserveControlCall("error")
		r.replyTo(ctx, msg, fmt.Sprintf("❌ Failed to send stop signal: %v", err))
		return
	}
	r.metrics.ObserveControlCall("ok")
	r.replyTo(ctx, msg, fmt.Sprintf("⏹ **Stop signal sent.**\nResult: `%s`", status))
}

func (r *Relay) replyTo(ctx context.Context, msg chat.Message, text string) {
	if _, err := r.chat.Reply(ctx, msg, text); err != nil {
		log.Printf("reply to %s failed: %v", msg.Sender, err)
	}
}

func summarize(text string) string {
	if len(text) <= 80 {
		return text
	}
	return text[:80] + "..."
}
