// Package dashboard lays out the metric panels into pages and serves them
// to sessions. A session owns one snapshot and a cache keyed by the
// filter it last saw; changing the filter invalidates every panel.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"commerce-insights/internal/cache"
	"commerce-insights/internal/dataset"
	"commerce-insights/internal/metrics"
	"commerce-insights/internal/segmentation"
)

var ErrUnknownPanel = errors.New("unknown panel")

type UnknownPanelError struct {
	Page, Panel string
}

func (e *UnknownPanelError) Error() string {
	return fmt.Sprintf("unknown panel %s/%s", e.Page, e.Panel)
}

func (e *UnknownPanelError) Is(target error) bool { return target == ErrUnknownPanel }

// viewEntry caches the filtered view next to the panels computed from it.
const viewEntry = "\x00view"

type Session struct {
	ID string

	ds      *dataset.Dataset
	engine  *metrics.Engine
	segOpts segmentation.Options
	pages   Registry
	cache   *cache.Cache
	logger  *slog.Logger

	mu       sync.Mutex
	lastUsed time.Time
}

func NewSession(ds *dataset.Dataset, engine *metrics.Engine, segOpts segmentation.Options, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()
	return &Session{
		ID:       id,
		ds:       ds,
		engine:   engine,
		segOpts:  segOpts,
		pages:    Pages(),
		cache:    cache.New(),
		logger:   logger.With("session", id),
		lastUsed: time.Now(),
	}
}

func (s *Session) Dataset() *dataset.Dataset          { return s.ds }
func (s *Session) Engine() *metrics.Engine            { return s.engine }
func (s *Session) Segmentation() segmentation.Options { return s.segOpts }
func (s *Session) Pages() Registry                    { return s.pages }
func (s *Session) CacheStats() cache.Stats            { return s.cache.Stats() }

func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

// View returns the orders matching f, reusing the view of the current
// filter.
func (s *Session) View(f dataset.Filter) *dataset.View {
	v, _ := s.cache.Load(f.Key(), viewEntry, func() (interface{}, error) {
		return s.ds.Select(f), nil
	})
	return v.(*dataset.View)
}

// Panel computes page/name under filter f, or returns the cached result
// when f has not changed since it was computed. A panic inside the panel
// is returned as its error so sibling panels are unaffected.
func (s *Session) Panel(ctx context.Context, page, name string, f dataset.Filter) (interface{}, error) {
	fn, err := s.pages.Lookup(page, name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.touch()

	key := f.Key()
	return s.cache.Load(key, page+"/"+name, func() (result interface{}, err error) {
		defer func() {
			if p := recover(); p != nil {
				s.logger.Error("panel panicked", "page", page, "panel", name, "panic", p, "stack", string(debug.Stack()))
				err = fmt.Errorf("panel %s/%s panicked: %v", page, name, p)
			}
		}()
		return fn(ctx, s, s.View(f))
	})
}
