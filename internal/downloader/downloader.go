// Package downloader walks the part links of one title strictly in order
// within a single browser session.
package downloader

import (
	"context"
	"fmt"
	"time"

	"repackget/internal/browser"
	"repackget/internal/i18n"
	"repackget/internal/logger"
	"repackget/internal/monitor"
	"repackget/internal/outcome"
	"repackget/internal/poll"
	"repackget/internal/redirect"
	"repackget/internal/site"
)

type Options struct {
	ElementWait time.Duration // explicit wait for the trigger, default 10s
	PageSettle  time.Duration
	PartPause   time.Duration
	Clock       poll.Clock
}

// PartResult is the fate of one part link. Part is 1-based.
type PartResult struct {
	Part    int
	URL     string
	Kind    outcome.Kind
	Err     error
	Attempt redirect.Attempt
}

func (p PartResult) OK() bool { return p.Kind == outcome.Success }

type Downloader struct {
	open      browser.Opener
	site      site.Adapter
	handler   *redirect.Handler
	reporters monitor.Reporters
	opts      Options
}

func New(open browser.Opener, adapter site.Adapter, handler *redirect.Handler, reporters monitor.Reporters, opts Options) *Downloader {
	if opts.Clock == nil {
		opts.Clock = poll.Real
	}
	if opts.ElementWait <= 0 {
		opts.ElementWait = 10 * time.Second
	}
	if reporters == nil {
		reporters = monitor.LogReporters()
	}
	return &Downloader{open: open, site: adapter, handler: handler, reporters: reporters, opts: opts}
}

// Run opens one session for all links and closes it after the last one.
// A failing part is logged and the loop moves on; only a session that
// cannot be opened is returned as an error.
func (d *Downloader) Run(ctx context.Context, links []string, dir string) ([]PartResult, error) {
	drv, err := d.open(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("open download session: %w", err)
	}
	defer func() {
		if err := drv.Close(); err != nil {
			logger.Debug("closing download session: %v", err)
		}
	}()

	main := drv.CurrentTab()

	results := make([]PartResult, 0, len(links))
	for i, link := range links {
		if ctx.Err() != nil {
			break
		}
		part := i + 1
		logger.Info(i18n.T("part_start"), part)

		res := d.part(ctx, drv, main, link, dir, part)
		pr := PartResult{Part: part, URL: link, Kind: res.Kind, Err: res.Err(), Attempt: res.Value}
		if !pr.OK() {
			logger.Error(i18n.T("part_failed"), part, pr.Kind, pr.Err)
		}
		results = append(results, pr)

		if part < len(links) {
			if err := d.opts.Clock.Sleep(ctx, d.opts.PartPause); err != nil {
				break
			}
		}
	}
	return results, nil
}

func (d *Downloader) part(ctx context.Context, drv browser.Driver, main browser.TabID, link, dir string, part int) outcome.Result[redirect.Attempt] {
	if drv.CurrentTab() != main {
		if err := drv.SwitchTab(ctx, main); err != nil {
			return outcome.Failed[redirect.Attempt](fmt.Errorf("restore main tab: %w", err))
		}
	}
	if err := drv.Navigate(ctx, link); err != nil {
		return outcome.Failed[redirect.Attempt](err)
	}
	if err := d.opts.Clock.Sleep(ctx, d.opts.PageSettle); err != nil {
		return outcome.Failed[redirect.Attempt](err)
	}

	trigger, err := drv.WaitClickable(ctx, d.site.DownloadTrigger(), d.opts.ElementWait)
	if err != nil {
		return outcome.From(redirect.Attempt{}, err)
	}
	return d.handler.Handle(ctx, drv, trigger, dir, d.reporters(part))
}
