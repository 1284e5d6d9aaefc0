package patch

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/pfrederiksen/mtb-routes/internal/logger"
	"github.com/pfrederiksen/mtb-routes/internal/reconcile"
	"github.com/pfrederiksen/mtb-routes/internal/route"
)

// Prompter asks the operator whether a fix should be applied.
type Prompter interface {
	Confirm(ctx context.Context, fix reconcile.Fix) (bool, error)
}

// Saver persists a complete dataset.
type Saver interface {
	Save(d *route.Dataset) error
}

// Summary counts the decisions taken during a session.
type Summary struct {
	Accepted int
	Rejected int
	// Pending is the number of fixes never offered because the session stopped early.
	Pending int
}

// Session applies operator-approved fixes to a working copy of a dataset.
type Session struct {
	id       string
	working  *route.Dataset
	prompter Prompter
	saver    Saver
	out      io.Writer
	log      *logger.Logger
}

// NewSession creates a session over a deep copy of persisted.
func NewSession(persisted *route.Dataset, prompter Prompter, saver Saver, out io.Writer) *Session {
	if persisted == nil {
		persisted = route.NewDataset()
	}
	id := uuid.NewString()
	return &Session{
		id:       id,
		working:  persisted.Clone(),
		prompter: prompter,
		saver:    saver,
		out:      out,
		log:      logger.Default().With(logger.Fields{"session": id}),
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Dataset returns the working copy.
func (s *Session) Dataset() *route.Dataset {
	return s.working
}

// Run offers each fix in order. It returns early, with the summary so far,
// when ctx is cancelled or the prompter, apply or save fails. Fixes accepted
// before that point are already saved.
func (s *Session) Run(ctx context.Context, fixes []reconcile.Fix) (Summary, error) {
	var sum Summary
	current := ""
	first := true

	for i, fix := range fixes {
		if err := ctx.Err(); err != nil {
			sum.Pending = len(fixes) - i
			return sum, err
		}

		if first || fix.Route != current {
			fmt.Fprintf(s.out, "On route %s\n", fix.Route) // nolint:errcheck
			current = fix.Route
			first = false
		}
		fmt.Fprintf(s.out, " - %s\n", fix.Description()) // nolint:errcheck

		ok, err := s.prompter.Confirm(ctx, fix)
		if err != nil {
			sum.Pending = len(fixes) - i
			return sum, fmt.Errorf("prompting for %s: %w", fix, err)
		}
		if !ok {
			sum.Rejected++
			logger.IncrCounter("fixes.rejected")
			continue
		}

		if err := fix.Apply(s.working); err != nil {
			sum.Pending = len(fixes) - i
			return sum, fmt.Errorf("applying %s: %w", fix, err)
		}
		if err := s.saver.Save(s.working); err != nil {
			sum.Pending = len(fixes) - i
			return sum, fmt.Errorf("saving after %s: %w", fix, err)
		}
		sum.Accepted++
		logger.IncrCounter("fixes.accepted")
		s.log.Debug("fix applied", logger.Fields{
			"route": fix.Route,
			"kind":  fix.Kind.String(),
			"field": string(fix.Field),
		})
	}

	s.log.Info("session finished", logger.Fields{
		"accepted": sum.Accepted,
		"rejected": sum.Rejected,
	})
	return sum, nil
}
