package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/ripple/internal/config"
	"github.com/san-kum/ripple/internal/sim"
)

const (
	metadataFile = "metadata.json"
	heightsFile  = "heights.csv"
	seriesFile   = "series.csv"
)

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
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Scenario   string             `json:"scenario,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	StepsTaken int                `json:"steps_taken"`
	Config     config.Config      `json:"config"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

// NewRunID returns a short unique id prefixed with name.
func NewRunID(name string) string {
	if name == "" {
		name = "run"
	}
	return fmt.Sprintf("%s_%s", name, uuid.NewString()[:8])
}

// Save writes metadata.json, heights.csv (one row per recorded frame) and
// series.csv (volume and energy per tick) into a fresh run directory.
func (s *Store) Save(cfg *config.Config, scenario string, result *sim.Result) (string, error) {
	name := cfg.Preset
	if name == "" {
		name = "custom"
	}
	runID := NewRunID(name)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Scenario:   scenario,
		Timestamp:  time.Now(),
		Dt:         cfg.Dt().Seconds(),
		Steps:      cfg.Steps,
		StepsTaken: result.StepsTaken,
		Config:     *cfg,
		Metrics:    result.Metrics,
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, heightsFile), func(w io.Writer) error {
		return ExportCSV(w, result)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, seriesFile), func(w io.Writer) error {
		return writeSeries(w, result)
	}); err != nil {
		return "", err
	}

	return runID, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeSeries(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"step", "volume", "energy"}); err != nil {
		return err
	}
	for i := range result.Volumes {
		energy := 0.0
		if i < len(result.Energies) {
			energy = result.Energies[i]
		}
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(result.Volumes[i], 'f', 6, 64),
			strconv.FormatFloat(energy, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
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

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFrames reads heights.csv back into frames and their times.
func (s *Store) LoadFrames(runID string) ([][]float64, []float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, heightsFile))
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	frames := make([][]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		frame := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			frame = append(frame, val)
		}
		frames = append(frames, frame)
	}

	return frames, times, nil
}

// LoadSeries reads the per-tick volume and energy columns.
func (s *Store) LoadSeries(runID string) (volumes, energies []float64, err error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, nil, err
	}
	for i, record := range records {
		if i == 0 || len(record) < 3 {
			continue
		}
		v, err1 := strconv.ParseFloat(record[1], 64)
		e, err2 := strconv.ParseFloat(record[2], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		volumes = append(volumes, v)
		energies = append(energies, e)
	}
	return volumes, energies, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
