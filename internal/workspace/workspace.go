// Package workspace prepares the per-title download directory.
//
// Preparing a title that already has a directory deletes that directory
// and everything in it. Reusing a title therefore discards the files of the
// earlier run.
package workspace

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"repackget/internal/common"
	"repackget/internal/i18n"
	"repackget/internal/logger"
)

// MaxNameLength caps sanitized directory names.
const MaxNameLength = 50

// Sanitize keeps ASCII letters, digits, space, hyphen and underscore,
// truncates to MaxNameLength and trims trailing whitespace.
func Sanitize(title string) string {
	var b strings.Builder
	for _, r := range title {
		if isSafe(r) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if len(name) > MaxNameLength {
		name = name[:MaxNameLength]
	}
	return strings.TrimRight(name, " ")
}

func isSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '-', r == '_':
		return true
	}
	return false
}

type Manager struct {
	fs   afero.Fs
	base string
}

func New(fs afero.Fs, base string) *Manager {
	return &Manager{fs: fs, base: base}
}

// Path returns the directory a title maps to without touching the filesystem.
func (m *Manager) Path(title string) (string, error) {
	name := Sanitize(title)
	if name == "" {
		return "", fmt.Errorf("%q: %w", title, common.ErrEmptyName)
	}
	return filepath.Join(m.base, name), nil
}

// Prepare returns an empty directory for title, recreating it if it exists.
// Filesystem errors are returned unchanged in meaning and are fatal to a run.
func (m *Manager) Prepare(title string) (string, error) {
	dir, err := m.Path(title)
	if err != nil {
		return "", err
	}

	exists, err := afero.DirExists(m.fs, dir)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", dir, err)
	}
	if exists {
		logger.Warn(i18n.T("dir_replaced"), dir)
		if err := m.fs.RemoveAll(dir); err != nil {
			return "", fmt.Errorf("remove %s: %w", dir, err)
		}
	}

	if err := m.fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}

// Release removes dir only if it is still empty.
func (m *Manager) Release(dir string) error {
	exists, err := afero.DirExists(m.fs, dir)
	if err != nil || !exists {
		return err
	}
	empty, err := afero.IsEmpty(m.fs, dir)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}
	return m.fs.Remove(dir)
}
