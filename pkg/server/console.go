package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/crystal-mush/bwho/pkg/events"
	"github.com/crystal-mush/bwho/pkg/roster"
	"github.com/crystal-mush/bwho/pkg/steamid"
)

// ConsoleWriter renders events to an io.Writer, one line each. Notices are
// prefixed so they stand apart from command replies.
type ConsoleWriter struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

// NewConsoleWriter wraps w.
func NewConsoleWriter(w io.Writer) *ConsoleWriter {
	return &ConsoleWriter{w: w}
}

// Receive implements events.Subscriber.
func (cw *ConsoleWriter) Receive(ev events.Event) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.closed {
		return
	}
	if ev.Type == events.EvNotice {
		fmt.Fprintf(cw.w, "NOTICE: %s\n", ev.Text)
		return
	}
	fmt.Fprintln(cw.w, ev.Text)
}

// Closed implements events.Subscriber.
func (cw *ConsoleWriter) Closed() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.closed
}

// Close stops further output.
func (cw *ConsoleWriter) Close() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.closed = true
}

// ConsoleCaller returns the player the console acts as. An empty id means
// the bare server console (nil). A player present in the roster is used
// as-is; otherwise a stand-in player with that SteamID is returned.
func ConsoleCaller(r roster.Provider, id string) (*roster.Player, error) {
	if id == "" {
		return nil, nil
	}
	sid, err := steamid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("server: console player: %w", err)
	}
	for _, p := range r.ConnectedPlayers() {
		if p.SteamID == uint64(sid) {
			return &p, nil
		}
	}
	return &roster.Player{Slot: 0, Name: "Console", SteamID: uint64(sid), Identity: sid.SteamID2()}, nil
}

// Console reads command lines and runs them against a Server.
type Console struct {
	Server  *Server
	Session Session
	Out     io.Writer
	Prompt  string
}

// Run executes lines from in until EOF or until ctx is done. Replies for
// the console slot are written to Out. Lines are read on a separate
// goroutine so cancellation is seen while waiting for input; that goroutine
// exits once in returns from its pending Read.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	cw := NewConsoleWriter(c.Out)
	c.Server.Bus.Subscribe(c.Session.Slot, cw)
	defer func() {
		cw.Close()
		c.Server.Bus.Cleanup()
	}()

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.Prompt != "" {
			fmt.Fprint(c.Out, c.Prompt)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("server: console input: %w", err)
				}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			c.Server.Execute(c.Session, line)
		}
	}
}
