// Package storage records coordinator sessions and persists them as a
// metadata.json plus frames.csv per run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/nestscroll/internal/config"
)

var ErrRunNotFound = errors.New("storage: run not found")

var frameHeader = []string{"time_ms", "kind", "phase", "translation", "velocity", "dt_ms", "outer", "inner", "locked", "content", "viewport"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID               string             `json:"id"`
	Source           string             `json:"source"`
	Preset           string             `json:"preset,omitempty"`
	Timestamp        time.Time          `json:"timestamp"`
	Layout           config.Layout      `json:"layout"`
	DecelerationRate float64            `json:"deceleration_rate"`
	FPS              int                `json:"fps"`
	ResetLockOnBegin bool               `json:"reset_lock_on_begin"`
	Frames           int                `json:"frames"`
	Metrics          map[string]float64 `json:"metrics"`
}

// Save writes a run and returns its ID. ID and Timestamp are filled in when empty.
func (s *Store) Save(meta RunMetadata, frames []Frame) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%s", meta.Source, uuid.NewString()[:8])
	}
	meta.Frames = len(frames)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, "frames.csv"), frames); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrames(path string, frames []Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(frameHeader); err != nil {
		return err
	}
	for _, fr := range frames {
		row := []string{
			formatMillis(fr.Time),
			fr.Kind,
			fr.Phase,
			formatFloat(fr.Translation),
			formatFloat(fr.Velocity),
			formatMillis(fr.Dt),
			formatFloat(fr.Outer),
			formatFloat(fr.Inner),
			strconv.FormatBool(fr.Locked),
			formatFloat(fr.Content),
			formatFloat(fr.Viewport),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(frameHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Frame{}, nil
	}

	frames := make([]Frame, 0, len(records)-1)
	for i, rec := range records[1:] {
		f, err := parseFrame(rec)
		if err != nil {
			return nil, fmt.Errorf("frames.csv line %d: %w", i+2, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func parseFrame(rec []string) (Frame, error) {
	var (
		f    Frame
		err  error
		nums [8]float64
	)
	for i, idx := range []int{0, 3, 4, 5, 6, 7, 9, 10} {
		if nums[i], err = strconv.ParseFloat(rec[idx], 64); err != nil {
			return f, err
		}
	}
	locked, err := strconv.ParseBool(rec[8])
	if err != nil {
		return f, err
	}

	return Frame{
		Time:        millis(nums[0]),
		Kind:        rec[1],
		Phase:       rec[2],
		Translation: nums[1],
		Velocity:    nums[2],
		Dt:          millis(nums[3]),
		Outer:       nums[4],
		Inner:       nums[5],
		Locked:      locked,
		Content:     nums[6],
		Viewport:    nums[7],
	}, nil
}

type exportData struct {
	Metadata *RunMetadata `json:"metadata"`
	Frames   []Frame      `json:"frames"`
}

// ExportJSON writes a run's metadata and frames to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData{Metadata: meta, Frames: frames})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatMillis(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 6, 64)
}

func millis(ms float64) time.Duration {
	return time.Duration(math.Round(ms * float64(time.Millisecond)))
}
