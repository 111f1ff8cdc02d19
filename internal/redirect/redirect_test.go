package redirect

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repackget/internal/browser"
	"repackget/internal/browser/browsertest"
	"repackget/internal/common"
	"repackget/internal/logger"
	"repackget/internal/monitor"
	"repackget/internal/outcome"
	"repackget/internal/poll/polltest"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

const (
	dir     = "/downloads/Test Game"
	partURL = "https://fuckingfast.example/abc123#part1.rar"
)

type fixture struct {
	fs      afero.Fs
	clock   *polltest.Clock
	drv     *browsertest.Driver
	trigger *browsertest.Element
	handler *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(dir, 0755))
	clock := polltest.NewClock()
	drv := browsertest.New()
	require.NoError(t, drv.Navigate(context.Background(), partURL))

	mon := monitor.New(fs, monitor.Options{Interval: time.Second, Timeout: 600 * time.Second, Clock: clock})
	return &fixture{
		fs:      fs,
		clock:   clock,
		drv:     drv,
		trigger: &browsertest.Element{},
		handler: New(mon, Options{
			ClickSettle: 2 * time.Second,
			Inspect:     2 * time.Second,
			Reclick:     time.Second,
			Timeout:     300 * time.Second,
			Clock:       clock,
		}),
	}
}

// startDownloadOnClick makes click n create an in-progress file that is
// renamed after renameAfter of simulated time.
func (f *fixture) startDownloadOnClick(t *testing.T, n int, renameAfter time.Duration) {
	var started time.Duration = -1
	f.trigger.OnClick = func(click int) error {
		if click == n {
			started = f.clock.Elapsed()
			return afero.WriteFile(f.fs, dir+"/part1.rar.crdownload", []byte("x"), 0644)
		}
		return nil
	}
	f.clock.OnSleep = func(time.Time) {
		if started >= 0 && f.clock.Elapsed()-started >= renameAfter {
			if ok, _ := afero.Exists(f.fs, dir+"/part1.rar.crdownload"); ok {
				require.NoError(t, f.fs.Rename(dir+"/part1.rar.crdownload", dir+"/part1.rar"))
			}
		}
	}
}

type recorder struct {
	samples  []monitor.Sample
	finished []bool
}

func (r *recorder) Report(s monitor.Sample) { r.samples = append(r.samples, s) }
func (r *recorder) Finish(ok bool)          { r.finished = append(r.finished, ok) }

func TestHandleClosesForeignPopup(t *testing.T) {
	f := newFixture(t)
	f.startDownloadOnClick(t, 2, 5*time.Second)
	mainTab := f.drv.CurrentTab()

	var popup browser.TabID
	first := f.trigger.OnClick
	f.trigger.OnClick = func(n int) error {
		if n == 1 {
			popup = f.drv.OpenTab("https://ads.example/landing")
		}
		return first(n)
	}

	res := f.handler.Handle(context.Background(), f.drv, f.trigger, dir, nil)

	require.True(t, res.OK(), res.Err())
	assert.True(t, res.Value.ClosedRedirect)
	assert.Equal(t, "ads.example", res.Value.PopupHost)
	assert.Equal(t, []browser.TabID{popup}, f.drv.ClosedTabs())
	assert.Equal(t, mainTab, f.drv.CurrentTab())
	assert.Equal(t, 2, f.trigger.Clicks())

	ok, _ := afero.Exists(f.fs, dir+"/part1.rar")
	assert.True(t, ok)
}

func TestHandleKeepsSameDomainPopup(t *testing.T) {
	f := newFixture(t)
	f.startDownloadOnClick(t, 2, 3*time.Second)
	mainTab := f.drv.CurrentTab()

	var popup browser.TabID
	first := f.trigger.OnClick
	f.trigger.OnClick = func(n int) error {
		if n == 1 {
			popup = f.drv.OpenTab("https://fuckingfast.example/other")
		}
		return first(n)
	}

	res := f.handler.Handle(context.Background(), f.drv, f.trigger, dir, nil)

	require.True(t, res.OK(), res.Err())
	assert.False(t, res.Value.ClosedRedirect)
	assert.Equal(t, popup, res.Value.PopupTab)
	assert.Empty(t, f.drv.ClosedTabs())
	tabs, _ := f.drv.Tabs(context.Background())
	assert.Contains(t, tabs, popup)
	assert.Equal(t, mainTab, f.drv.CurrentTab())
}

func TestHandleWithoutPopup(t *testing.T) {
	f := newFixture(t)
	f.startDownloadOnClick(t, 2, 4*time.Second)

	res := f.handler.Handle(context.Background(), f.drv, f.trigger, dir, nil)

	require.True(t, res.OK(), res.Err())
	assert.Empty(t, res.Value.PopupTab)
	assert.Equal(t, 2, f.trigger.Clicks())
}

func TestHandleInspectsOnlyFirstPopup(t *testing.T) {
	f := newFixture(t)
	f.startDownloadOnClick(t, 2, 2*time.Second)

	var first, second browser.TabID
	next := f.trigger.OnClick
	f.trigger.OnClick = func(n int) error {
		if n == 1 {
			first = f.drv.OpenTab("https://ads.example/a")
			second = f.drv.OpenTab("https://ads2.example/b")
		}
		return next(n)
	}

	res := f.handler.Handle(context.Background(), f.drv, f.trigger, dir, nil)

	require.True(t, res.OK(), res.Err())
	assert.Equal(t, []browser.TabID{first}, f.drv.ClosedTabs())
	tabs, _ := f.drv.Tabs(context.Background())
	assert.Contains(t, tabs, second)
}

func TestHandleIgnoresTabsOpenBeforeClick(t *testing.T) {
	f := newFixture(t)
	f.startDownloadOnClick(t, 2, 2*time.Second)
	f.drv.OpenTab("https://ads.example/left-over")

	res := f.handler.Handle(context.Background(), f.drv, f.trigger, dir, nil)

	require.True(t, res.OK(), res.Err())
	assert.Empty(t, res.Value.PopupTab)
	assert.Empty(t, f.drv.ClosedTabs())
}

func TestHandleReportsProgressFromThisAttemptOnly(t *testing.T) {
	f := newFixture(t)
	f.startDownloadOnClick(t, 2, 3*time.Second)
	f.drv.Emit(browser.NetworkEvent{Method: browser.MethodDataReceived, DataLength: 9999})

	next := f.trigger.OnClick
	f.trigger.OnClick = func(n int) error {
		if n == 2 {
			f.drv.Emit(
				browser.NetworkEvent{Method: browser.MethodResponseExtraInfo, Headers: map[string]string{"Content-Length": "1000"}},
				browser.NetworkEvent{Method: browser.MethodDataReceived, DataLength: 200},
				browser.NetworkEvent{Method: browser.MethodDataReceived, DataLength: 300},
				browser.NetworkEvent{Method: browser.MethodDataReceived, DataLength: 250},
			)
		}
		return next(n)
	}
	rec := &recorder{}

	res := f.handler.Handle(context.Background(), f.drv, f.trigger, dir, rec)

	require.True(t, res.OK(), res.Err())
	require.NotEmpty(t, rec.samples)
	pct, ok := rec.samples[0].Percent()
	assert.True(t, ok)
	assert.Equal(t, 75.0, pct)
	assert.Equal(t, []bool{true}, rec.finished)
}

func TestHandleTimesOut(t *testing.T) {
	f := newFixture(t)
	f.trigger.OnClick = func(n int) error {
		if n == 2 {
			return afero.WriteFile(f.fs, dir+"/part1.rar.crdownload", []byte("x"), 0644)
		}
		return nil
	}
	rec := &recorder{}

	res := f.handler.Handle(context.Background(), f.drv, f.trigger, dir, rec)

	assert.Equal(t, outcome.TimedOut, res.Kind)
	assert.Equal(t, []bool{false}, rec.finished)
	// settle + reclick + the 300s download bound
	assert.Equal(t, 303*time.Second, f.clock.Elapsed())
	ok, _ := afero.Exists(f.fs, dir+"/part1.rar.crdownload")
	assert.True(t, ok)
}

func TestHandlePopupErrorReturnsToMainTab(t *testing.T) {
	f := newFixture(t)
	mainTab := f.drv.CurrentTab()
	f.trigger.OnClick = func(n int) error {
		if n == 1 {
			popup := f.drv.OpenTab("https://ads.example/landing")
			f.drv.URLErr[popup] = errors.New("target closed")
		}
		return nil
	}

	res := f.handler.Handle(context.Background(), f.drv, f.trigger, dir, nil)

	assert.Equal(t, outcome.AutomationError, res.Kind)
	assert.ErrorContains(t, res.Err(), "read pop-up url: target closed")
	assert.Equal(t, mainTab, f.drv.CurrentTab())
	assert.Equal(t, 1, f.trigger.Clicks())
}

func TestHandleTimeoutKeepsAttempt(t *testing.T) {
	f := newFixture(t)
	f.trigger.OnClick = func(n int) error {
		if n == 1 {
			f.drv.OpenTab("https://ads.example/landing")
		}
		return nil
	}

	res := f.handler.Handle(context.Background(), f.drv, f.trigger, dir, nil)

	assert.Equal(t, outcome.TimedOut, res.Kind)
	assert.ErrorIs(t, res.Err(), common.ErrTimedOut)
	assert.True(t, res.Value.ClosedRedirect)
	assert.Equal(t, "ads.example", res.Value.PopupHost)
}

func TestHandleNeverStartedTimesOut(t *testing.T) {
	f := newFixture(t)

	res := f.handler.Handle(context.Background(), f.drv, f.trigger, dir, nil)

	assert.Equal(t, outcome.TimedOut, res.Kind)
}

func TestHandleClickError(t *testing.T) {
	f := newFixture(t)
	f.trigger.OnClick = func(int) error { return errors.New("element detached") }

	res := f.handler.Handle(context.Background(), f.drv, f.trigger, dir, nil)

	assert.Equal(t, outcome.AutomationError, res.Kind)
	assert.ErrorContains(t, res.Err(), "first click")
}

func TestHandleMissingDirectory(t *testing.T) {
	f := newFixture(t)

	res := f.handler.Handle(context.Background(), f.drv, f.trigger, "/nowhere", nil)

	assert.Equal(t, outcome.AutomationError, res.Kind)
	assert.Zero(t, f.trigger.Clicks())
}
