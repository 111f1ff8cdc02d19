package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"

	"repackget/internal/poll"
)

// DefaultSuffixes mark files Chrome is still writing.
var DefaultSuffixes = []string{".crdownload"}

// Monitor watches a download directory.
type Monitor struct {
	fs       afero.Fs
	suffixes []string
	interval time.Duration
	timeout  time.Duration
	clock    poll.Clock
}

type Options struct {
	Suffixes []string
	Interval time.Duration // listing interval, default 1s
	Timeout  time.Duration // completion wait bound, default 600s
	Clock    poll.Clock
}

func New(fs afero.Fs, opts Options) *Monitor {
	m := &Monitor{
		fs:       fs,
		suffixes: opts.Suffixes,
		interval: opts.Interval,
		timeout:  opts.Timeout,
		clock:    opts.Clock,
	}
	if len(m.suffixes) == 0 {
		m.suffixes = DefaultSuffixes
	}
	if m.interval <= 0 {
		m.interval = time.Second
	}
	if m.timeout <= 0 {
		m.timeout = 600 * time.Second
	}
	if m.clock == nil {
		m.clock = poll.Real
	}
	return m
}

func (m *Monitor) Timeout() time.Duration { return m.timeout }

// Listing is the set of entry names in a directory.
type Listing map[string]struct{}

func (m *Monitor) List(dir string) (Listing, error) {
	entries, err := afero.ReadDir(m.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	l := make(Listing, len(entries))
	for _, e := range entries {
		l[e.Name()] = struct{}{}
	}
	return l, nil
}

func (m *Monitor) inProgress(name string) bool {
	for _, s := range m.suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// IsComplete reports whether no entry in dir carries an in-progress suffix.
func (m *Monitor) IsComplete(dir string) (bool, error) {
	l, err := m.List(dir)
	if err != nil {
		return false, err
	}
	return m.complete(l, nil), nil
}

// complete is IsComplete over a listing; with a baseline it additionally
// requires an entry that was not in the baseline.
func (m *Monitor) complete(l, baseline Listing) bool {
	grew := baseline == nil
	for name := range l {
		if m.inProgress(name) {
			return false
		}
		if _, seen := baseline[name]; !seen {
			grew = true
		}
	}
	return grew
}

// Wait polls dir every interval until the download is complete or timeout
// passes (the monitor's own timeout when timeout <= 0). With a non-nil
// baseline, a directory that has not gained an entry since the baseline is
// not complete. onPoll runs before every check. Partial files are never
// removed.
func (m *Monitor) Wait(ctx context.Context, dir string, baseline Listing, timeout time.Duration, onPoll func(attempt int)) error {
	if timeout <= 0 {
		timeout = m.timeout
	}
	s := poll.Schedule{Interval: m.interval, Timeout: timeout, Clock: m.clock}
	return s.Run(ctx, func(attempt int) (bool, error) {
		if onPoll != nil {
			onPoll(attempt)
		}
		l, err := m.List(dir)
		if err != nil {
			return false, err
		}
		return m.complete(l, baseline), nil
	})
}
