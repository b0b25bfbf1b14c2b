package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-insights/internal/dataset"
	"commerce-insights/internal/dataset/datasettest"
	"commerce-insights/internal/metrics"
	"commerce-insights/internal/segmentation"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	return NewSession(datasettest.Dataset(t), metrics.NewEngine(metrics.DefaultOptions), segmentation.DefaultOptions, nil)
}

func TestLayout(t *testing.T) {
	layout := Pages().Layout()
	names := make([]string, len(layout))
	for i, p := range layout {
		names[i] = p.Name
		assert.NotEmpty(t, p.Panels, p.Name)
	}
	assert.Equal(t, []string{"business", "customers", "geography", "products", "sales", "segmentation", "shipping"}, names)
}

func TestSessionID(t *testing.T) {
	a, b := newSession(t), newSession(t)
	_, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPanel(t *testing.T) {
	s := newSession(t)
	got, err := s.Panel(context.Background(), "business", "aov", dataset.Filter{})
	require.NoError(t, err)
	assert.Equal(t, metrics.Some(120), got)

	got, err = s.Panel(context.Background(), "business", "aov", dataset.Filter{State: "SP"})
	require.NoError(t, err)
	assert.Equal(t, metrics.Some(115), got)
}

func TestUnknownPanel(t *testing.T) {
	s := newSession(t)
	for _, tc := range [][2]string{{"business", "nope"}, {"nope", "aov"}} {
		_, err := s.Panel(context.Background(), tc[0], tc[1], dataset.Filter{})
		assert.ErrorIs(t, err, ErrUnknownPanel)
		assert.Contains(t, err.Error(), tc[0]+"/"+tc[1])
	}
}

func TestEveryPanelHandlesEmptyAndFullViews(t *testing.T) {
	s := newSession(t)
	for _, f := range []dataset.Filter{{}, {State: "AC"}, {City: "campinas"}} {
		for _, page := range s.Pages().Layout() {
			for _, panel := range page.Panels {
				_, err := s.Panel(context.Background(), page.Name, panel, f)
				assert.NoError(t, err, "%s/%s with %+v", page.Name, panel, f)
			}
		}
	}
}

func TestPanelCacheFollowsFilter(t *testing.T) {
	s := newSession(t)
	calls := 0
	s.pages["test"] = map[string]PanelFunc{
		"count": func(ctx context.Context, s *Session, v *dataset.View) (interface{}, error) {
			calls++
			return v.Len(), nil
		},
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := s.Panel(ctx, "test", "count", dataset.Filter{})
		require.NoError(t, err)
		assert.Equal(t, 5, got)
	}
	assert.Equal(t, 1, calls)

	got, err := s.Panel(ctx, "test", "count", dataset.Filter{State: "RJ"})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, 2, calls)

	// Going back to the first filter recomputes: only one filter is kept.
	_, err = s.Panel(ctx, "test", "count", dataset.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Positive(t, s.CacheStats().Invalidations)
}

func TestPanelErrorsAreNotCached(t *testing.T) {
	s := newSession(t)
	calls := 0
	s.pages["test"] = map[string]PanelFunc{
		"flaky": func(ctx context.Context, s *Session, v *dataset.View) (interface{}, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("transient")
			}
			return "ok", nil
		},
	}

	_, err := s.Panel(context.Background(), "test", "flaky", dataset.Filter{})
	require.Error(t, err)
	got, err := s.Panel(context.Background(), "test", "flaky", dataset.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestPanelPanicIsIsolated(t *testing.T) {
	s := newSession(t)
	s.pages["test"] = map[string]PanelFunc{
		"boom": func(ctx context.Context, s *Session, v *dataset.View) (interface{}, error) {
			var m map[string]int
			m["x"]++
			return nil, nil
		},
	}

	_, err := s.Panel(context.Background(), "test", "boom", dataset.Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test/boom panicked")

	_, err = s.Panel(context.Background(), "business", "overview", dataset.Filter{})
	assert.NoError(t, err)
}

func TestPanelCancelled(t *testing.T) {
	s := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Panel(ctx, "business", "aov", dataset.Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSegmentsPanelUsesSessionOptions(t *testing.T) {
	opts := segmentation.DefaultOptions
	opts.K = 2
	s := NewSession(datasettest.Dataset(t), metrics.NewEngine(metrics.DefaultOptions), opts, nil)

	got, err := s.Panel(context.Background(), "segmentation", "segments", dataset.Filter{})
	require.NoError(t, err)
	res, ok := got.(*segmentation.Result)
	require.True(t, ok)
	assert.Equal(t, 2, res.Options.K)
	assert.Len(t, res.Segments, 2)
}
