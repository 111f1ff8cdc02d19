package monitor

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"repackget/internal/i18n"
	"repackget/internal/logger"
)

// Reporter displays progress for one part.
type Reporter interface {
	Report(s Sample)
	Finish(completed bool)
}

// LogReporter prints a status line whenever the reading changes.
type LogReporter struct {
	last    float64
	printed bool
	unknown bool
}

func (r *LogReporter) Report(s Sample) {
	pct, ok := s.Percent()
	if !ok {
		if !r.unknown {
			logger.Info("%s", i18n.T("progress_unknown"))
			r.unknown = true
		}
		return
	}
	if r.printed && pct == r.last {
		return
	}
	r.last, r.printed, r.unknown = pct, true, false
	logger.Info(i18n.T("progress"), pct)
}

func (r *LogReporter) Finish(bool) {}

// BarReporter draws a terminal progress bar in hundredths of a percent.
type BarReporter struct {
	bar         *progressbar.ProgressBar
	description string
	unknown     bool // description currently says the total is unknown
}

func NewBarReporter(w io.Writer, description string) *BarReporter {
	if w == nil {
		w = os.Stdout
	}
	return &BarReporter{description: description, bar: progressbar.NewOptions(10000,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)}
}

func (r *BarReporter) Report(s Sample) {
	pct, ok := s.Percent()
	if !ok {
		if !r.unknown {
			r.unknown = true
			r.bar.Describe(r.description + " " + i18n.T("progress_unknown"))
		}
		return
	}
	if r.unknown {
		r.unknown = false
		r.bar.Describe(r.description)
	}
	_ = r.bar.Set(int(pct * 100))
}

func (r *BarReporter) Finish(completed bool) {
	if completed {
		_ = r.bar.Finish()
		return
	}
	_ = r.bar.Exit()
}

// Reporters builds a fresh Reporter per part.
type Reporters func(part int) Reporter

func LogReporters() Reporters {
	return func(int) Reporter { return &LogReporter{} }
}

func BarReporters(w io.Writer) Reporters {
	return func(part int) Reporter {
		return NewBarReporter(w, fmt.Sprintf(i18n.T("part_label"), part))
	}
}
