package patch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pfrederiksen/mtb-routes/internal/reconcile"
)

// ErrAborted is returned by a prompter when the operator quits the session.
var ErrAborted = errors.New("session aborted")

// LinePrompter reads y/n answers, one per line. It asks again until it
// gets a valid answer; "q" aborts the session.
//
// Lines are read by a background goroutine so that a cancelled context ends
// a pending Confirm. The goroutine lives until the input ends.
type LinePrompter struct {
	in    *bufio.Reader
	out   io.Writer
	lines chan line
	once  sync.Once
}

type line struct {
	text string
	err  error
}

// NewLinePrompter creates a prompter reading from in and asking on out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out, lines: make(chan line)}
}

func (p *LinePrompter) read() {
	defer close(p.lines)
	for {
		text, err := p.in.ReadString('\n')
		p.lines <- line{text: text, err: err}
		if err != nil {
			return
		}
	}
}

// Confirm blocks until the operator answers or ctx is done.
func (p *LinePrompter) Confirm(ctx context.Context, _ reconcile.Fix) (bool, error) {
	p.once.Do(func() { go p.read() })

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		fmt.Fprint(p.out, "Apply? [y/n/q] ") // nolint:errcheck

		var l line
		select {
		case <-ctx.Done():
			fmt.Fprintln(p.out) // nolint:errcheck
			return false, ctx.Err()
		case got, ok := <-p.lines:
			if !ok {
				return false, ErrAborted
			}
			l = got
		}

		switch strings.ToLower(strings.TrimSpace(l.text)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		case "q", "quit":
			return false, ErrAborted
		}
		if l.err != nil {
			if errors.Is(l.err, io.EOF) {
				return false, ErrAborted
			}
			return false, fmt.Errorf("reading answer: %w", l.err)
		}
	}
}

// AcceptAll approves every fix without asking.
type AcceptAll struct{}

// Confirm always returns true.
func (AcceptAll) Confirm(ctx context.Context, _ reconcile.Fix) (bool, error) {
	return true, ctx.Err()
}
