package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/integrators"
	"github.com/san-kum/lorenzsim/internal/physics"
	"github.com/san-kum/lorenzsim/internal/trajectory"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var ErrRunNotFound = errors.New("run not found")

// Store keeps one directory per run under baseDir holding metadata.json
// and states.csv.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Params     physics.Params     `json:"params"`
	Initial    []float64          `json:"initial_state"`
	Duration   float64            `json:"duration"`
	Dt         float64            `json:"dt"`
	Integrator string             `json:"integrator"`
	Tolerance  dynamo.Tolerance   `json:"tolerance"`
	Stats      integrators.Stats  `json:"stats"`
	Points     int                `json:"points"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// Save assigns meta a fresh id and timestamp and writes it together with
// the sampled states.
func (s *Store) Save(meta RunMetadata, tr *trajectory.Trajectory) (string, error) {
	meta.ID = uuid.NewString()
	meta.Timestamp = s.now().UTC()
	meta.Points = tr.Len()
	meta.Stats = tr.Stats

	runDir := s.Dir(meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	if err := writeStates(filepath.Join(runDir, statesFile), tr); err != nil {
		return "", fmt.Errorf("write states: %w", err)
	}
	return meta.ID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}
	return f.Close()
}

func writeStates(path string, tr *trajectory.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"t", "x", "y", "z"}); err != nil {
		return err
	}

	// shortest round-trip formatting so reloaded runs are bit-identical
	for i, x := range tr.Points {
		row := make([]string, 0, len(x)+1)
		row = append(row, strconv.FormatFloat(tr.Times[i], 'g', -1, 64))
		for _, v := range x {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// SetMetric records a derived quantity of a stored run, such as its
// Lyapunov exponent, in the run's metadata. Earlier values are replaced.
func (s *Store) SetMetric(runID, name string, value float64) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	if meta.Metrics == nil {
		meta.Metrics = make(map[string]float64)
	}
	meta.Metrics[name] = value
	if err := writeMetadata(filepath.Join(s.Dir(runID), metadataFile), *meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

// Resolve expands a unique prefix of a run id.
func (s *Store) Resolve(prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	entries, err := os.ReadDir(s.baseDir)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			matches = append(matches, entry.Name())
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("run id %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrajectory reads a run's states back into a trajectory.
func (s *Store) LoadTrajectory(runID string) (*trajectory.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.Dir(runID), statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read states: %w", err)
	}

	tr := &trajectory.Trajectory{Dt: meta.Dt, Stats: meta.Stats}
	for i, record := range records {
		if i == 0 {
			continue
		}
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("states.csv line %d: %w", i+1, err)
			}
			vals[j] = v
		}
		tr.Times = append(tr.Times, vals[0])
		tr.Points = append(tr.Points, dynamo.State(vals[1:]))
	}
	return tr, nil
}
