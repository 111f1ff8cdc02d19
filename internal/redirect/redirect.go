// Package redirect performs one click-to-download attempt on a page whose
// first click is often swallowed by an ad pop-up.
//
// The attempt clicks the trigger, inspects the first tab that appeared
// because of the click, closes it when it belongs to another domain,
// clicks the trigger again and then waits for the download directory to
// settle. Only the first new tab is inspected; further pop-ups from the
// same click stay open.
package redirect

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"repackget/internal/browser"
	"repackget/internal/common"
	"repackget/internal/i18n"
	"repackget/internal/logger"
	"repackget/internal/monitor"
	"repackget/internal/outcome"
	"repackget/internal/poll"
)

type Options struct {
	ClickSettle time.Duration // after the first click
	Inspect     time.Duration // before reading a pop-up's URL
	Reclick     time.Duration // before the second click
	Timeout     time.Duration // download wait after the second click
	Clock       poll.Clock
}

// Attempt describes what happened during one Handle call.
type Attempt struct {
	PopupTab       browser.TabID
	PopupHost      string
	ClosedRedirect bool
	Sample         monitor.Sample
}

type Handler struct {
	mon  *monitor.Monitor
	opts Options
}

func New(mon *monitor.Monitor, opts Options) *Handler {
	if opts.Clock == nil {
		opts.Clock = poll.Real
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 300 * time.Second
	}
	return &Handler{mon: mon, opts: opts}
}

func host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

// Handle runs the attempt. The result is Success once the download
// completed, TimedOut when it did not finish in time and AutomationError
// for any browser or listing failure.
func (h *Handler) Handle(ctx context.Context, drv browser.Driver, trigger browser.Element, dir string, rep monitor.Reporter) outcome.Result[Attempt] {
	if rep == nil {
		rep = &monitor.LogReporter{}
	}
	var a Attempt

	mainTab := drv.CurrentTab()
	mainURL, err := drv.CurrentURL(ctx)
	if err != nil {
		return outcome.Failed[Attempt](fmt.Errorf("read page url: %w", err))
	}
	before, err := drv.Tabs(ctx)
	if err != nil {
		return outcome.Failed[Attempt](fmt.Errorf("list tabs: %w", err))
	}
	baseline, err := h.mon.List(dir)
	if err != nil {
		return outcome.Failed[Attempt](err)
	}
	mark := len(drv.NetworkLog())

	if err := trigger.Click(ctx); err != nil {
		return outcome.Failed[Attempt](fmt.Errorf("first click: %w", err))
	}
	if err := h.opts.Clock.Sleep(ctx, h.opts.ClickSettle); err != nil {
		return outcome.Failed[Attempt](err)
	}

	if err := h.dismissPopup(ctx, drv, mainTab, host(mainURL), before, &a); err != nil {
		return outcome.Failed[Attempt](err)
	}

	if err := h.opts.Clock.Sleep(ctx, h.opts.Reclick); err != nil {
		return outcome.Failed[Attempt](err)
	}
	if err := trigger.Click(ctx); err != nil {
		return outcome.Failed[Attempt](fmt.Errorf("second click: %w", err))
	}

	timeout := min(h.opts.Timeout, h.mon.Timeout())
	err = h.mon.Wait(ctx, dir, baseline, timeout, func(int) {
		log := drv.NetworkLog()
		if mark <= len(log) {
			log = log[mark:]
		}
		a.Sample = monitor.Estimate(log)
		rep.Report(a.Sample)
	})
	switch {
	case err == nil:
		rep.Finish(true)
		logger.Info("%s", i18n.T("download_done"))
		return outcome.Ok(a)
	case errors.Is(err, common.ErrTimedOut):
		rep.Finish(false)
		logger.Warn("%s", i18n.T("download_timeout"))
		res := outcome.Expired[Attempt](err)
		res.Value = a
		return res
	default:
		rep.Finish(false)
		return outcome.Result[Attempt]{Kind: outcome.Classify(err), Value: a, Detail: err}
	}
}

// dismissPopup inspects the first tab that was not open before the click.
func (h *Handler) dismissPopup(ctx context.Context, drv browser.Driver, mainTab browser.TabID, mainHost string, before []browser.TabID, a *Attempt) (err error) {
	after, err := drv.Tabs(ctx)
	if err != nil {
		return fmt.Errorf("list tabs: %w", err)
	}
	known := make(map[browser.TabID]bool, len(before))
	for _, id := range before {
		known[id] = true
	}
	for _, id := range after {
		if id == mainTab || known[id] {
			continue
		}
		a.PopupTab = id
		break
	}
	if a.PopupTab == "" {
		return nil
	}

	if err := drv.SwitchTab(ctx, a.PopupTab); err != nil {
		return err
	}
	// the session is shared by later parts; always come back to the main tab
	defer func() {
		if serr := drv.SwitchTab(context.WithoutCancel(ctx), mainTab); serr != nil && err == nil {
			err = fmt.Errorf("return to main tab: %w", serr)
		}
	}()
	if err := h.opts.Clock.Sleep(ctx, h.opts.Inspect); err != nil {
		return err
	}
	popupURL, err := drv.CurrentURL(ctx)
	if err != nil {
		return fmt.Errorf("read pop-up url: %w", err)
	}
	a.PopupHost = host(popupURL)

	if a.PopupHost != mainHost {
		logger.Info(i18n.T("redirect_detected"), a.PopupHost)
		if err := drv.CloseTab(ctx); err != nil {
			return fmt.Errorf("close pop-up: %w", err)
		}
		a.ClosedRedirect = true
	}
	return nil
}
