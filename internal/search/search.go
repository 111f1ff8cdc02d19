// Package search finds a title on the repack site and resolves the chosen
// result to its mirror link.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"repackget/internal/browser"
	"repackget/internal/common"
	"repackget/internal/i18n"
	"repackget/internal/logger"
	"repackget/internal/outcome"
	"repackget/internal/poll"
	"repackget/internal/site"
)

// Chooser presents results to the operator and returns the 1-based choice.
type Chooser interface {
	Choose(ctx context.Context, results []site.Result) (int, error)
}

type Options struct {
	Settle     time.Duration // after loading search and result pages
	PageSettle time.Duration // after loading the mirror page
	Clock      poll.Clock
}

type Selector struct {
	drv  browser.Driver
	site site.Adapter
	opts Options
}

func New(drv browser.Driver, adapter site.Adapter, opts Options) *Selector {
	if opts.Clock == nil {
		opts.Clock = poll.Real
	}
	return &Selector{drv: drv, site: adapter, opts: opts}
}

func (s *Selector) load(ctx context.Context, url string, settle time.Duration) (pageURL, html string, err error) {
	if err := s.drv.Navigate(ctx, url); err != nil {
		return "", "", err
	}
	if err := s.opts.Clock.Sleep(ctx, settle); err != nil {
		return "", "", err
	}
	if pageURL, err = s.drv.CurrentURL(ctx); err != nil {
		return "", "", err
	}
	if html, err = s.drv.HTML(ctx); err != nil {
		return "", "", err
	}
	return pageURL, html, nil
}

// Search loads the result listing for title. No results is NotFound.
func (s *Selector) Search(ctx context.Context, title string) outcome.Result[[]site.Result] {
	url := s.site.SearchURL(title)
	logger.Info(i18n.T("searching"), url)

	pageURL, html, err := s.load(ctx, url, s.opts.Settle)
	if err != nil {
		return outcome.Failed[[]site.Result](fmt.Errorf("search %q: %w", title, err))
	}
	results, err := s.site.ParseResults(pageURL, html)
	if err != nil {
		return outcome.Failed[[]site.Result](err)
	}
	if len(results) == 0 {
		logger.Info("%s", i18n.T("no_results"))
		return outcome.Missing[[]site.Result](fmt.Errorf("search %q: %w", title, common.ErrNotFound))
	}
	return outcome.Ok(results)
}

// Resolve opens the result's page and extracts its mirror link.
func (s *Selector) Resolve(ctx context.Context, r site.Result) outcome.Result[string] {
	pageURL, html, err := s.load(ctx, r.URL, s.opts.Settle)
	if err != nil {
		return outcome.Failed[string](fmt.Errorf("open %s: %w", r.URL, err))
	}
	link, err := s.site.MirrorLink(pageURL, html, r)
	return outcome.From(link, err)
}

// Select searches, lets the operator choose and resolves the choice.
// Anything short of a mirror link is NotFound so the caller re-prompts,
// except an operator abort, which is AutomationError wrapping
// common.ErrAborted.
func (s *Selector) Select(ctx context.Context, title string, chooser Chooser) outcome.Result[string] {
	found := s.Search(ctx, title)
	if !found.OK() {
		return notFound[string](found.Err())
	}
	results := found.Value

	choice, err := chooser.Choose(ctx, results)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, common.ErrAborted) || ctx.Err() != nil {
			return outcome.Failed[string](fmt.Errorf("%w: %v", common.ErrAborted, err))
		}
		logger.Warn("%s", i18n.T("invalid_choice"))
		return outcome.Missing[string](err)
	}
	if choice < 1 || choice > len(results) {
		logger.Warn("%s", i18n.T("invalid_choice"))
		return outcome.Missing[string](fmt.Errorf("choice %d out of range 1..%d: %w", choice, len(results), common.ErrNotFound))
	}

	mirror := s.Resolve(ctx, results[choice-1])
	if !mirror.OK() {
		return notFound[string](mirror.Err())
	}
	logger.Info(i18n.T("mirror_selected"), mirror.Value)
	return mirror
}

// notFound logs unexpected failures and downgrades them to NotFound.
func notFound[T any](err error) outcome.Result[T] {
	if outcome.Classify(err) != outcome.NotFound {
		logger.Error("%v", err)
	}
	return outcome.Missing[T](err)
}

// PartLinks opens the mirror page and collects the part download links.
func (s *Selector) PartLinks(ctx context.Context, mirror string) outcome.Result[[]string] {
	pageURL, html, err := s.load(ctx, mirror, s.opts.PageSettle)
	if err != nil {
		return outcome.Failed[[]string](fmt.Errorf("open mirror %s: %w", mirror, err))
	}
	links, err := s.site.PartLinks(pageURL, html)
	if err != nil {
		return outcome.Failed[[]string](err)
	}
	if len(links) == 0 {
		return outcome.Missing[[]string](fmt.Errorf("%s: %w", mirror, common.ErrNoParts))
	}
	logger.Info(i18n.T("parts_found"), len(links))
	return outcome.Ok(links)
}
