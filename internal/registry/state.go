package registry

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// FileName is the run record written into the download directory.
const FileName = ".repackget-run.json"

type PartRecord struct {
	PartNumber int    `json:"part_number"` // 1-based index
	URL        string `json:"url"`
	Status     string `json:"status"` // "success", "timed_out", "automation_error", ...
	Error      string `json:"error,omitempty"`
	Popup      string `json:"popup,omitempty"` // host of the pop-up seen on the first click
}

type RunState struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Mirror     string       `json:"mirror"`
	Directory  string       `json:"directory"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Parts      []PartRecord `json:"parts"`
}

// Completed counts parts that finished downloading.
func (s *RunState) Completed() int {
	n := 0
	for _, p := range s.Parts {
		if p.Status == "success" {
			n++
		}
	}
	return n
}

func LoadRunState(fs afero.Fs, dir string) (*RunState, error) {
	f, err := fs.Open(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var state RunState
	if err := json.NewDecoder(f).Decode(&state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RunState) Save(fs afero.Fs) error {
	if err := fs.MkdirAll(s.Directory, 0755); err != nil {
		return err
	}

	f, err := fs.Create(filepath.Join(s.Directory, FileName))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
