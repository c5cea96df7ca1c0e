package chat

import "context"

// Message is one inbound chat message as seen by the relay. Sender is the
// platform-assigned identity, carried as an opaque string and never parsed.
type Message struct {
	Sender string
	Text   string

	// Ref is the platform handle of the triggering message, used to
	// address replies. Opaque to everything outside the adapter.
	Ref any
}

// MessageRef identifies a message the relay sent and may edit later.
type MessageRef any

// Adapter is the chat platform boundary. Implementations own credentials,
// transport, and formatting limits; callers pre-truncate text that would
// exceed the platform's edit length limit.
type Adapter interface {
	// SelfIdentity resolves the identity of the account the relay is
	// attached to. Failure before the first message is a fatal startup
	// error.
	SelfIdentity(ctx context.Context) (string, error)

	// Listen delivers every incoming message to handler until ctx is
	// cancelled.
	Listen(ctx context.Context, handler func(Message)) error

	// Reply posts a new message answering to.
	Reply(ctx context.Context, to Message, text string) (MessageRef, error)

	// Edit replaces the text of a previously sent message.
	Edit(ctx context.Context, ref MessageRef, text string) error
}
