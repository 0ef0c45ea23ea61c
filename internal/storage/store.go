// Package storage writes the numbers behind a portrait to disk so they can
// be inspected or re-plotted elsewhere.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/phaseportrait/internal/dynamo"
	"github.com/san-kum/phaseportrait/internal/field"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	fieldFile      = "field.csv"
)

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

type RunMetadata struct {
	ID           string             `json:"id"`
	Timestamp    time.Time          `json:"timestamp"`
	Integrator   string             `json:"integrator"`
	InitialState []float64          `json:"initial_state"`
	TStart       float64            `json:"t_start"`
	TEnd         float64            `json:"t_end"`
	Samples      int                `json:"samples"`
	GridRows     int                `json:"grid_rows"`
	GridCols     int                `json:"grid_cols"`
	FixedPoint   string             `json:"fixed_point,omitempty"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Run is everything one invocation produced.
type Run struct {
	Integrator string
	Grid       *field.Grid
	Trajectory *dynamo.Result
	FixedPoint string
}

// Save writes metadata.json, trajectory.csv and field.csv under a new run
// directory and returns its ID.
func (s *Store) Save(run Run) (string, error) {
	if run.Trajectory == nil || len(run.Trajectory.States) == 0 {
		return "", fmt.Errorf("storage: empty trajectory")
	}

	ts := s.now()
	runID := fmt.Sprintf("portrait_%d", ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	traj := run.Trajectory
	rows, cols := run.Grid.Dims()
	meta := RunMetadata{
		ID:           runID,
		Timestamp:    ts,
		Integrator:   run.Integrator,
		InitialState: traj.States[0],
		TStart:       traj.Times[0],
		TEnd:         traj.Times[len(traj.Times)-1],
		Samples:      len(traj.States),
		GridRows:     rows,
		GridCols:     cols,
		FixedPoint:   run.FixedPoint,
		Metrics:      traj.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), traj); err != nil {
		return "", err
	}
	if err := writeField(filepath.Join(runDir, fieldFile), run.Grid); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", path, err)
	}
	return nil
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeTrajectory(path string, traj *dynamo.Result) error {
	header := []string{"time"}
	for i := range traj.States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}

	records := [][]string{header}
	for i, x := range traj.States {
		row := []string{formatFloat(traj.Times[i])}
		for _, val := range x {
			row = append(row, formatFloat(val))
		}
		records = append(records, row)
	}
	return writeCSV(path, records)
}

func writeField(path string, g *field.Grid) error {
	records := [][]string{{"i", "j", "x0", "x1", "dx0", "dx1"}}
	rows, cols := g.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			records = append(records, []string{
				strconv.Itoa(i), strconv.Itoa(j),
				formatFloat(g.X0[i][j]), formatFloat(g.X1[i][j]),
				formatFloat(g.DX0[i][j]), formatFloat(g.DX1[i][j]),
			})
		}
	}
	return writeCSV(path, records)
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

// LoadStates reads trajectory.csv back into states and times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: %s row %d: %w", trajectoryFile, i, err)
		}
		times = append(times, t)

		state := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: %s row %d: %w", trajectoryFile, i, err)
			}
			state = append(state, val)
		}
		states = append(states, state)
	}

	return states, times, nil
}

// LoadField reads field.csv back into a grid of the shape recorded in the
// run metadata.
func (s *Store) LoadField(runID string) (*field.Grid, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, fieldFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	rows, cols := meta.GridRows, meta.GridCols
	g := &field.Grid{
		X0:  make([][]float64, rows),
		X1:  make([][]float64, rows),
		DX0: make([][]float64, rows),
		DX1: make([][]float64, rows),
	}
	for i := 0; i < rows; i++ {
		g.X0[i] = make([]float64, cols)
		g.X1[i] = make([]float64, cols)
		g.DX0[i] = make([]float64, cols)
		g.DX1[i] = make([]float64, cols)
	}

	if len(records)-1 != rows*cols {
		return nil, fmt.Errorf("storage: %s has %d cells, metadata says %dx%d", fieldFile, len(records)-1, rows, cols)
	}
	for n, record := range records[1:] {
		if len(record) != 6 {
			return nil, fmt.Errorf("storage: %s row %d: want 6 columns, got %d", fieldFile, n+1, len(record))
		}
		i, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("storage: %s row %d: %w", fieldFile, n+1, err)
		}
		j, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("storage: %s row %d: %w", fieldFile, n+1, err)
		}
		if i < 0 || i >= rows || j < 0 || j >= cols {
			return nil, fmt.Errorf("storage: %s row %d: cell (%d, %d) outside %dx%d", fieldFile, n+1, i, j, rows, cols)
		}
		var vals [4]float64
		for k := range vals {
			if vals[k], err = strconv.ParseFloat(record[2+k], 64); err != nil {
				return nil, fmt.Errorf("storage: %s row %d: %w", fieldFile, n+1, err)
			}
		}
		g.X0[i][j], g.X1[i][j], g.DX0[i][j], g.DX1[i][j] = vals[0], vals[1], vals[2], vals[3]
	}

	return g, nil
}

// Path returns the location of name inside a run directory.
func (s *Store) Path(runID, name string) string {
	return filepath.Join(s.baseDir, runID, name)
}
