// Package orchestrator drives one complete run: title, directory, search,
// mirror, part links, sequential download.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"repackget/internal/browser"
	"repackget/internal/common"
	"repackget/internal/downloader"
	"repackget/internal/i18n"
	"repackget/internal/logger"
	"repackget/internal/poll"
	"repackget/internal/registry"
	"repackget/internal/search"
	"repackget/internal/site"
	"repackget/internal/workspace"
)

// Operator is the person at the terminal.
type Operator interface {
	AskTitle(ctx context.Context) (string, error)
	search.Chooser
}

type Deps struct {
	FS         afero.Fs
	Workspace  *workspace.Manager
	Open       browser.Opener // search session
	Site       site.Adapter
	Operator   Operator
	Downloader *downloader.Downloader
	Search     search.Options
	Clock      poll.Clock
}

type Orchestrator struct {
	d Deps
}

func New(d Deps) *Orchestrator {
	if d.Clock == nil {
		d.Clock = poll.Real
	}
	if d.Search.Clock == nil {
		d.Search.Clock = d.Clock
	}
	return &Orchestrator{d: d}
}

// Run downloads title, asking the operator for one when title is empty.
// Filesystem and browser-launch failures are returned as errors; a run in
// which some part failed returns the state together with
// common.ErrIncomplete.
func (o *Orchestrator) Run(ctx context.Context, title string) (*registry.RunState, error) {
	state := &registry.RunState{ID: uuid.NewString(), StartedAt: o.d.Clock.Now()}

	title, dir, err := o.prepare(ctx, title, "")
	if err != nil {
		return nil, err
	}
	logger.With("run", state.ID).Infof(i18n.T("run_start"), title)

	drv, err := o.d.Open(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("open search session: %w", err)
	}
	closeSearch := sync.OnceFunc(func() {
		if err := drv.Close(); err != nil {
			logger.Debug("closing search session: %v", err)
		}
	})
	defer closeSearch()

	sel := search.New(drv, o.d.Site, o.d.Search)
	var mirror string
	for {
		res := sel.Select(ctx, title, o.d.Operator)
		if res.OK() {
			mirror = res.Value
			break
		}
		if errors.Is(res.Err(), common.ErrAborted) {
			o.release(dir)
			return nil, common.ErrAborted
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Info("%s", i18n.T("game_not_found"))

		next, nextDir, err := o.prepare(ctx, "", dir)
		if err != nil {
			if errors.Is(err, common.ErrAborted) {
				o.release(dir)
			}
			return nil, err
		}
		title, dir = next, nextDir
	}

	state.Title, state.Mirror, state.Directory = title, mirror, dir

	parts := sel.PartLinks(ctx, mirror)
	closeSearch()
	if !parts.OK() {
		logger.Error("%v", parts.Err())
		o.finish(state)
		return state, parts.Err()
	}

	results, err := o.d.Downloader.Run(ctx, parts.Value, dir)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		rec := registry.PartRecord{PartNumber: r.Part, URL: r.URL, Status: r.Kind.String(), Popup: r.Attempt.PopupHost}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		state.Parts = append(state.Parts, rec)
	}
	o.finish(state)

	logger.Info(i18n.T("run_summary"), state.Completed(), len(parts.Value), dir)
	if state.Completed() < len(parts.Value) {
		return state, common.ErrIncomplete
	}
	return state, nil
}

// release removes dir if nothing was written to it.
func (o *Orchestrator) release(dir string) {
	if err := o.d.Workspace.Release(dir); err != nil {
		logger.Warn("Could not remove %s: %v", dir, err)
	}
}

func (o *Orchestrator) finish(state *registry.RunState) {
	state.FinishedAt = o.d.Clock.Now()
	if err := state.Save(o.d.FS); err != nil {
		logger.Warn("Could not write run record: %v", err)
	}
}

// prepare settles on a title with a filesystem-safe name and returns its
// empty directory. An empty title is asked for. current, if set, is the
// directory of the previous title; it is released when the name changes.
func (o *Orchestrator) prepare(ctx context.Context, title, current string) (string, string, error) {
	for {
		if strings.TrimSpace(title) == "" {
			var err error
			title, err = o.d.Operator.AskTitle(ctx)
			if err != nil || strings.TrimSpace(title) == "" {
				return "", "", common.ErrAborted
			}
		}

		dir, err := o.d.Workspace.Path(title)
		if errors.Is(err, common.ErrEmptyName) {
			logger.Warn("%s", i18n.T("invalid_choice"))
			title = ""
			continue
		}
		if err != nil {
			return "", "", err
		}
		if dir == current {
			return title, dir, nil
		}

		if current != "" {
			o.release(current)
		}
		if prev, err := registry.LoadRunState(o.d.FS, dir); err == nil {
			logger.Warn("Replacing run %s of %q (%d/%d parts downloaded)", prev.ID, prev.Title, prev.Completed(), len(prev.Parts))
		}
		dir, err = o.d.Workspace.Prepare(title)
		if err != nil {
			return "", "", err
		}
		logger.Info(i18n.T("dir_ready"), dir)
		return title, dir, nil
	}
}
