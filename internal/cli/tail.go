// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/muesli/termenv"

	"github.com/jeranaias/aptui/internal/archipelago"
	"github.com/jeranaias/aptui/internal/session"
	"github.com/jeranaias/aptui/internal/ui/styles"
)

// tailTimestampLayout prefixes lines when --timestamps is set.
const tailTimestampLayout = "15:04:05"

// tailFlushEvery bounds how many printed lines the tail session keeps.
const tailFlushEvery = 1000

// TailCmd streams decoded server messages until interrupted.
type TailCmd struct {
	Conn       ConnectFlags `embed:""`
	Timestamps bool         `short:"t" help:"Prefix lines with their arrival time."`
	Plain      bool         `help:"Print without color."`
}

// Run implements the tail command.
func (c *TailCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := TailOptions{Timestamps: c.Timestamps}
	if c.Plain {
		opts.Output = termenv.NewOutput(g.Stdout, termenv.WithProfile(termenv.Ascii))
	}

	client := NewClient(g.Config)
	tailer := NewTailer(client, g.Stdout, opts)

	t, err := Connect(ctx, g, client, c.Conn)
	if err != nil {
		tailer.Close()
		return err
	}
	// The tailer lets go of the read loop before Disconnect waits for it.
	defer func() {
		tailer.Close()
		client.Disconnect()
	}()

	fmt.Fprintln(g.Stderr, TitleStyle.Render("Connected")+" "+ValueStyle.Render(t.Slot+" @ "+client.Address()))
	return tailer.Run(ctx)
}

// =============================================================================
// TAILER
// =============================================================================

// Source is a session.EventSource that also reports the end of the
// connection. *archipelago.Client implements it.
type Source interface {
	session.EventSource
	OnDisconnect(fn func(archipelago.DisconnectEvent)) *archipelago.Subscription
}

// TailOptions controls Tailer output.
type TailOptions struct {
	// Output colors lines; nil means NewOutput(w)
	Output     *termenv.Output
	Timestamps bool
}

// Tailer prints every message from a Source. Events are queued by the
// client goroutine and applied to a session on the goroutine running Run.
type Tailer struct {
	w    io.Writer
	out  *termenv.Output
	opts TailOptions

	sess     *session.Session
	queue    chan func()
	done     chan error
	stop     chan struct{}
	haltOnce sync.Once
	stopOnce sync.Once
	sub      *archipelago.Subscription
	printed  int
}

// NewTailer subscribes to src. Call it before logging in.
func NewTailer(src Source, w io.Writer, opts TailOptions) *Tailer {
	t := &Tailer{
		w:     w,
		out:   opts.Output,
		opts:  opts,
		sess:  session.New(),
		queue: make(chan func(), 256),
		done:  make(chan error, 1),
		stop:  make(chan struct{}),
	}
	if t.out == nil {
		t.out = NewOutput(w)
	}

	t.sub = src.OnDisconnect(func(ev archipelago.DisconnectEvent) {
		select {
		case t.done <- ev.Err:
		default:
		}
	})
	t.sess.Attach(src, t.dispatch)
	return t
}

func (t *Tailer) dispatch(fn func()) {
	select {
	case t.queue <- fn:
	case <-t.stop:
	}
}

// Run prints lines until ctx is done or the source disconnects. It
// returns the disconnect error, or nil. Events arriving after Run returns
// are dropped.
func (t *Tailer) Run(ctx context.Context) error {
	defer t.halt()
	for {
		select {
		case <-ctx.Done():
			t.drain()
			return nil

		case err := <-t.done:
			// Messages emitted before the disconnect are already queued.
			t.drain()
			return err

		case fn := <-t.queue:
			fn()
			t.flush()
		}
	}
}

// Close releases the subscriptions. It is safe to call more than once.
func (t *Tailer) Close() {
	t.stopOnce.Do(func() {
		t.halt()
		t.sess.Detach()
		t.sub.Unsubscribe()
	})
}

// halt unblocks senders waiting on a full queue.
func (t *Tailer) halt() {
	t.haltOnce.Do(func() { close(t.stop) })
}

// drain applies every queued event without blocking and prints.
func (t *Tailer) drain() {
	for {
		select {
		case fn := <-t.queue:
			fn()
		default:
			t.flush()
			return
		}
	}
}

// flush prints lines added since the last flush.
func (t *Tailer) flush() {
	for _, line := range t.sess.Log().Since(t.printed) {
		text := styles.TermenvLine(t.out, line.Text)
		if t.opts.Timestamps {
			text = line.At.Format(tailTimestampLayout) + " " + text
		}
		fmt.Fprintln(t.w, text)
		t.printed++
	}
	if t.printed >= tailFlushEvery {
		t.sess.Log().Clear()
		t.printed = 0
	}
}
