package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	dialHandshakeTimeout = 4 * time.Second
	taskWriteTimeout     = 3 * time.Second
)

// ErrClosed is returned by Next once the backend has closed the channel.
var ErrClosed = errors.New("backend channel closed")

type taskPayload struct {
	Task string `json:"task"`
}

// Stream is one open task channel to the backend. It owns the websocket
// connection; callers must Close on every exit path.
type Stream struct {
	conn *websocket.Conn
	msgs chan []byte
	errs chan error
}

// Dial opens the backend streaming channel.
func Dial(ctx context.Context, wsURL string) (*Stream, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: dialHandshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("backend dial failed (%s): %w", resp.Status, err)
		}
		return nil, fmt.Errorf("backend dial failed: %w", err)
	}

	s := &Stream{
		conn: conn,
		msgs: make(chan []byte, 256),
		errs: make(chan error, 1),
	}
	go func() {
		defer close(s.msgs)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				s.errs <- err
				return
			}
			s.msgs <- data
		}
	}()
	return s, nil
}

// SendTask transmits the task payload that starts backend execution.
func (s *Stream) SendTask(text string) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(taskWriteTimeout))
	defer s.conn.SetWriteDeadline(time.Time{})
	if err := s.conn.WriteJSON(taskPayload{Task: text}); err != nil {
		return fmt.Errorf("send task payload: %w", err)
	}
	return nil
}

// Next yields the next raw backend event, in emission order. A clean close
// from the backend surfaces as ErrClosed. Buffered events are always
// delivered before the read error that ended the stream, so a terminal
// event followed by an abrupt close is never lost.
func (s *Stream) Next(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case data, ok := <-s.msgs:
		if !ok {
			// The reader sends its error before closing msgs, so this
			// receive never blocks.
			return nil, closeOr(<-s.errs)
		}
		return data, nil
	}
}

func (s *Stream) Close() error {
	return s.conn.Close()
}

func closeOr(err error) error {
	if err == nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return ErrClosed
	}
	return err
}
