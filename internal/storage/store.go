package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/bifsim/internal/cont"
)

const (
	metadataFile     = "metadata.json"
	pointsFile       = "points.csv"
	bifurcationsFile = "bifurcations.json"
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

type ParamsRecord struct {
	Parameter          string  `json:"parameter"`
	Start              float64 `json:"par_start"`
	End                float64 `json:"par_end"`
	Ds                 float64 `json:"ds"`
	DsMin              float64 `json:"ds_min"`
	DsMax              float64 `json:"ds_max"`
	MaxSteps           int     `json:"max_steps"`
	NewtonTol          float64 `json:"newton_tol"`
	NewtonMaxIter      int     `json:"newton_max_iter"`
	DetectBifurcations bool    `json:"detect_bifurcations"`
	SwitchPerturbation float64 `json:"switch_perturbation"`
}

func NewParamsRecord(p cont.Params) ParamsRecord {
	return ParamsRecord(p)
}

func (r ParamsRecord) Params() cont.Params {
	return cont.Params(r)
}

type StatsRecord struct {
	Steps               int `json:"steps"`
	NewtonIterations    int `json:"newton_iterations"`
	JacobianEvaluations int `json:"jacobian_evaluations"`
	StepReductions      int `json:"step_reductions"`
	Bifurcations        int `json:"bifurcations"`
	BranchSwitches      int `json:"branch_switches"`
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Branch      string             `json:"branch"`
	Model       string             `json:"model"`
	Method      string             `json:"method"`
	Vars        []string           `json:"vars"`
	ModelParams map[string]float64 `json:"model_params,omitempty"`
	Params      ParamsRecord       `json:"params"`
	Timestamp   time.Time          `json:"timestamp"`
	Points      int                `json:"points"`
	Stats       StatsRecord        `json:"stats"`

	// Error is set when the run stopped early and the branch is partial.
	Error string `json:"error,omitempty"`

	// Parent and ParentBifurcation identify the bifurcation a switched
	// branch started from.
	Parent            string `json:"parent,omitempty"`
	ParentBifurcation int    `json:"parent_bifurcation,omitempty"`
}

// Save writes b under a new run directory and returns the run ID. Fields of
// meta derived from b are filled in; an empty ID gets a random UUID.
func (s *Store) Save(meta RunMetadata, b *cont.Branch) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Branch = b.Name
	meta.Points = len(b.Points)
	meta.Stats = StatsRecord(b.Stats)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, pointsFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := WriteCSV(f, b, meta.Vars); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, bifurcationsFile), bifurcationRecords(b.Bifurcations)); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns the metadata of every readable run, newest first.
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

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := readJSON(filepath.Join(s.baseDir, runID, metadataFile), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadPoints(runID string) ([]cont.SolutionPoint, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, pointsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// LoadBranch reassembles a saved branch with its metadata.
func (s *Store) LoadBranch(runID string) (*cont.Branch, *RunMetadata, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	points, err := s.LoadPoints(runID)
	if err != nil {
		return nil, nil, err
	}

	var records []BifurcationRecord
	err = readJSON(filepath.Join(s.baseDir, runID, bifurcationsFile), &records)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, err
	}

	b := &cont.Branch{
		Name:         meta.Branch,
		Points:       points,
		Bifurcations: make([]cont.BifurcationPoint, len(records)),
		Stats:        cont.Stats(meta.Stats),
	}
	for i, r := range records {
		b.Bifurcations[i] = r.point()
	}
	return b, meta, nil
}

// Resolve expands a unique prefix of a run ID.
func (s *Store) Resolve(prefix string) (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	var match string
	for _, r := range runs {
		if r.ID == prefix {
			return r.ID, nil
		}
		if len(prefix) > 0 && len(r.ID) >= len(prefix) && r.ID[:len(prefix)] == prefix {
			if match != "" {
				return "", fmt.Errorf("run id prefix %q is ambiguous", prefix)
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("run %q: %w", prefix, os.ErrNotExist)
	}
	return match, nil
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

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
