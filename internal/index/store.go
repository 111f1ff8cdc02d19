package index

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"repackget/internal/registry"
)

// FileName is the history file kept in the download root, one JSON line per run.
const FileName = ".repackget-history.jsonl"

// Entry is one line of the history file.
type Entry struct {
	RunID      string    `json:"run_id"`
	Title      string    `json:"title"`
	Directory  string    `json:"directory"`
	Parts      int       `json:"parts"`
	Completed  int       `json:"completed"`
	FinishedAt time.Time `json:"finished_at"`
}

func EntryFor(s *registry.RunState) Entry {
	return Entry{
		RunID:      s.ID,
		Title:      s.Title,
		Directory:  s.Directory,
		Parts:      len(s.Parts),
		Completed:  s.Completed(),
		FinishedAt: s.FinishedAt,
	}
}

type Store struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

func NewStore(fs afero.Fs, root string) *Store {
	return &Store{fs: fs, path: filepath.Join(root, FileName)}
}

// Append adds e at the end of the history file, creating it if needed.
func (s *Store) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	f, err := s.fs.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(e)
}

// Load returns all entries, oldest first. A missing file is an empty history;
// lines that do not decode are skipped.
func (s *Store) Load() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.fs.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if json.Unmarshal(sc.Bytes(), &e) == nil {
			entries = append(entries, e)
		}
	}
	return entries, sc.Err()
}
