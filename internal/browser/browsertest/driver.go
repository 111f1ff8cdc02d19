// Package browsertest provides a scripted in-memory browser.Driver.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"repackget/internal/browser"
)

// Element counts clicks and runs OnClick for each one.
type Element struct {
	mu      sync.Mutex
	clicks  int
	OnClick func(n int) error
}

func (e *Element) Click(ctx context.Context) error {
	e.mu.Lock()
	e.clicks++
	n := e.clicks
	hook := e.OnClick
	e.mu.Unlock()
	if hook != nil {
		return hook(n)
	}
	return nil
}

func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// Driver serves HTML per URL and tracks tabs. Navigation changes the URL of
// the current tab.
type Driver struct {
	mu sync.Mutex

	Pages       map[string]string   // url -> html
	Elements    map[string]*Element // locator value -> element
	NavigateErr map[string]error
	URLErr      map[browser.TabID]error // CurrentURL fails while this tab is active

	tabs    []browser.TabID
	urls    map[browser.TabID]string
	current browser.TabID
	nextID  int

	events    []browser.NetworkEvent
	navigated []string
	closedTab []browser.TabID
	closed    bool
}

func New() *Driver {
	d := &Driver{
		Pages:       map[string]string{},
		Elements:    map[string]*Element{},
		NavigateErr: map[string]error{},
		URLErr:      map[browser.TabID]error{},
		urls:        map[browser.TabID]string{},
	}
	d.current = d.newTab("about:blank")
	return d
}

func (d *Driver) newTab(url string) browser.TabID {
	d.nextID++
	id := browser.TabID(fmt.Sprintf("tab-%d", d.nextID))
	d.tabs = append(d.tabs, id)
	d.urls[id] = url
	return id
}

// OpenTab simulates a pop-up; the current tab does not change.
func (d *Driver) OpenTab(url string) browser.TabID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.newTab(url)
}

// Emit appends events to the network log.
func (d *Driver) Emit(events ...browser.NetworkEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, events...)
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errors.New("browser closed")
	}
	if err := d.NavigateErr[url]; err != nil {
		return err
	}
	if d.current == "" {
		return errors.New("no active tab")
	}
	d.urls[d.current] = url
	d.navigated = append(d.navigated, url)
	return nil
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == "" {
		return "", errors.New("no active tab")
	}
	if err := d.URLErr[d.current]; err != nil {
		return "", err
	}
	return d.urls[d.current], nil
}

func (d *Driver) HTML(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == "" {
		return "", errors.New("no active tab")
	}
	return d.Pages[d.urls[d.current]], nil
}

func (d *Driver) WaitClickable(ctx context.Context, loc browser.Locator, timeout time.Duration) (browser.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.Elements[loc.Value]; ok {
		return el, nil
	}
	return nil, fmt.Errorf("%s after %s: %w", loc, timeout, browser.ErrTimeout)
}

func (d *Driver) Tabs(ctx context.Context) ([]browser.TabID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]browser.TabID(nil), d.tabs...), nil
}

func (d *Driver) CurrentTab() browser.TabID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

func (d *Driver) SwitchTab(ctx context.Context, id browser.TabID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.urls[id]; !ok {
		return fmt.Errorf("no tab %s", id)
	}
	d.current = id
	return nil
}

func (d *Driver) CloseTab(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == "" {
		return errors.New("no active tab")
	}
	for i, id := range d.tabs {
		if id == d.current {
			d.tabs = append(d.tabs[:i], d.tabs[i+1:]...)
			break
		}
	}
	delete(d.urls, d.current)
	d.closedTab = append(d.closedTab, d.current)
	d.current = ""
	return nil
}

func (d *Driver) NetworkLog() []browser.NetworkEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]browser.NetworkEvent(nil), d.events...)
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Driver) Navigated() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.navigated...)
}

func (d *Driver) ClosedTabs() []browser.TabID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]browser.TabID(nil), d.closedTab...)
}

var _ browser.Driver = (*Driver)(nil)
