// Package metrics computes the dashboard KPIs over a filtered view of a
// snapshot. Every method is a pure function of its view and the engine
// options: the same inputs always produce bit-identical outputs.
package metrics

import (
	"sort"
	"strings"
	"time"
)

type Options struct {
	// ReturnStatuses are the order statuses counted as returns. The
	// store has no refund table, so status is the only available proxy.
	ReturnStatuses []string
	// ChurnWindowMonths is how long a customer may go without ordering,
	// measured back from the latest purchase in the snapshot.
	ChurnWindowMonths int
	// TopN bounds the ranked customer and seller lists.
	TopN int
}

var DefaultOptions = Options{
	ReturnStatuses:    []string{"canceled"},
	ChurnWindowMonths: 6,
	TopN:              10,
}

type Engine struct {
	opts     Options
	returned map[string]bool
}

// NewEngine fills unset options from DefaultOptions.
func NewEngine(opts Options) *Engine {
	if len(opts.ReturnStatuses) == 0 {
		opts.ReturnStatuses = DefaultOptions.ReturnStatuses
	}
	if opts.ChurnWindowMonths <= 0 {
		opts.ChurnWindowMonths = DefaultOptions.ChurnWindowMonths
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultOptions.TopN
	}

	returned := make(map[string]bool, len(opts.ReturnStatuses))
	statuses := make([]string, 0, len(opts.ReturnStatuses))
	for _, s := range opts.ReturnStatuses {
		s = strings.ToLower(strings.TrimSpace(s))
		if !returned[s] {
			returned[s] = true
			statuses = append(statuses, s)
		}
	}
	sort.Strings(statuses)
	opts.ReturnStatuses = statuses

	return &Engine{opts: opts, returned: returned}
}

func (e *Engine) Options() Options { return e.opts }

func (e *Engine) isReturned(status string) bool { return e.returned[status] }

func days(from, to time.Time) float64 { return to.Sub(from).Hours() / 24 }
