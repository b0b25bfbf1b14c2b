// Package export writes dashboard reports to JSON files.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const timestampLayout = "20060102_150405"

// Envelope wraps exported data with the identity of the run that made it.
type Envelope struct {
	RunID       string      `json:"run_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	Data        interface{} `json:"data"`
}

func Wrap(data interface{}, now time.Time) Envelope {
	return Envelope{RunID: uuid.New().String(), GeneratedAt: now.UTC(), Data: data}
}

// ExportJSON writes data as indented JSON, creating parent directories.
func ExportJSON(filename string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		file.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	return nil
}

// TimestampedFilename returns baseDir/name_YYYYMMDD_HHMMSS.json.
func TimestampedFilename(baseDir, name string, now time.Time) string {
	return filepath.Join(baseDir, fmt.Sprintf("%s_%s.json", name, now.Format(timestampLayout)))
}
