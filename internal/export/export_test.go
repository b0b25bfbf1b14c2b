package export_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-insights/internal/export"
)

func TestTimestampedFilename(t *testing.T) {
	now := time.Date(2018, 8, 1, 14, 5, 9, 0, time.UTC)
	got := export.TimestampedFilename("reports", "business", now)
	assert.Equal(t, filepath.Join("reports", "business_20180801_140509.json"), got)
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "nested", "report.json")
	now := time.Date(2018, 8, 1, 0, 0, 0, 0, time.UTC)

	env := export.Wrap(map[string]float64{"aov": 120}, now)
	require.NoError(t, export.ExportJSON(name, env))

	raw, err := os.ReadFile(name)
	require.NoError(t, err)

	var got struct {
		RunID       string             `json:"run_id"`
		GeneratedAt time.Time          `json:"generated_at"`
		Data        map[string]float64 `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	_, err = uuid.Parse(got.RunID)
	assert.NoError(t, err)
	assert.True(t, got.GeneratedAt.Equal(now))
	assert.Equal(t, 120.0, got.Data["aov"])
}

func TestExportJSONUnencodable(t *testing.T) {
	name := filepath.Join(t.TempDir(), "bad.json")
	err := export.ExportJSON(name, map[string]interface{}{"ch": make(chan int)})
	assert.ErrorContains(t, err, "write report")
}
