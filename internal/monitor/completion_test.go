package monitor

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repackget/internal/common"
	"repackget/internal/logger"
	"repackget/internal/poll/polltest"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

const dir = "/downloads/Test Game"

func setup(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(dir, 0755))
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, dir+"/"+f, []byte("x"), 0644))
	}
	return fs
}

func TestIsComplete(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  bool
	}{
		{"finished file", []string{"part1.zip"}, true},
		{"in progress", []string{"part1.zip.crdownload"}, false},
		{"mixed", []string{"part1.zip", "Unconfirmed 4242.crdownload"}, false},
		{"empty", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(setup(t, tt.files...), Options{})
			got, err := m.IsComplete(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsCompleteCustomSuffixes(t *testing.T) {
	m := New(setup(t, "a.bin.part"), Options{Suffixes: []string{".crdownload", ".part"}})
	got, err := m.IsComplete(dir)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestIsCompleteMissingDirectory(t *testing.T) {
	m := New(afero.NewMemMapFs(), Options{})
	_, err := m.IsComplete(dir)
	assert.Error(t, err)
}

func TestWaitCompletesWithinOneIntervalOfRename(t *testing.T) {
	fs := setup(t, "part1.zip.crdownload")
	clock := polltest.NewClock()
	m := New(fs, Options{Interval: time.Second, Timeout: time.Minute, Clock: clock})

	renamedAt := 3 * time.Second
	clock.OnSleep = func(now time.Time) {
		if clock.Elapsed() == renamedAt {
			require.NoError(t, fs.Rename(dir+"/part1.zip.crdownload", dir+"/part1.zip"))
		}
	}

	var polls int
	err := m.Wait(context.Background(), dir, nil, 0, func(int) { polls++ })

	require.NoError(t, err)
	assert.Equal(t, renamedAt, clock.Elapsed())
	assert.Equal(t, 4, polls)
}

func TestWaitTimesOutAndKeepsPartialFiles(t *testing.T) {
	fs := setup(t, "part1.zip.crdownload")
	clock := polltest.NewClock()
	m := New(fs, Options{Clock: clock})

	err := m.Wait(context.Background(), dir, nil, 10*time.Second, nil)

	require.ErrorIs(t, err, common.ErrTimedOut)
	assert.Equal(t, 10*time.Second, clock.Elapsed())
	ok, _ := afero.Exists(fs, dir+"/part1.zip.crdownload")
	assert.True(t, ok)
}

func TestWaitUsesDefaultTimeout(t *testing.T) {
	clock := polltest.NewClock()
	m := New(setup(t, "x.crdownload"), Options{Clock: clock})

	err := m.Wait(context.Background(), dir, nil, 0, nil)

	require.ErrorIs(t, err, common.ErrTimedOut)
	assert.Equal(t, 600*time.Second, clock.Elapsed())
	assert.Equal(t, 600*time.Second, m.Timeout())
}

func TestWaitRequiresNewEntryOverBaseline(t *testing.T) {
	fs := setup(t, "part1.zip")
	clock := polltest.NewClock()
	m := New(fs, Options{Clock: clock})

	baseline, err := m.List(dir)
	require.NoError(t, err)

	clock.OnSleep = func(time.Time) {
		switch clock.Elapsed() {
		case 2 * time.Second:
			require.NoError(t, afero.WriteFile(fs, dir+"/part2.zip.crdownload", []byte("x"), 0644))
		case 5 * time.Second:
			require.NoError(t, fs.Rename(dir+"/part2.zip.crdownload", dir+"/part2.zip"))
		}
	}

	err = m.Wait(context.Background(), dir, baseline, time.Minute, nil)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, clock.Elapsed())
}
