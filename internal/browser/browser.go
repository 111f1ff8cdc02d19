package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"repackget/internal/logger"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

var errNoTab = errors.New("no active tab")

type Options struct {
	Bin           string // empty: look up the system browser
	UserDataDir   string
	ExtensionPath string // unpacked extension directory
	DownloadDir   string
	Headless      bool
}

// Session is a rod-backed Driver. It records network events of the first
// tab for progress estimation.
type Session struct {
	Browser *rod.Browser

	mu      sync.Mutex
	main    *rod.Page
	current *rod.Page
	events  []NetworkEvent
	cancel  context.CancelFunc
}

func newLauncher(opts Options, bin string) *launcher.Launcher {
	l := launcher.New().
		Headless(opts.Headless).
		Devtools(false).
		Set("disable-blink-features", "AutomationControlled").
		Set("exclude-switches", "enable-automation").
		Set("use-automation-extension", "false").
		Set("disable-notifications").
		Set("disable-infobars").
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("log-level", "3")

	if opts.UserDataDir != "" {
		l = l.UserDataDir(opts.UserDataDir)
	}
	if !opts.Headless {
		l = l.Set("start-maximized")
	}
	if opts.ExtensionPath != "" {
		if _, err := os.Stat(opts.ExtensionPath); err == nil {
			l = l.Set("load-extension", opts.ExtensionPath).
				Set("disable-extensions-except", opts.ExtensionPath)
		} else {
			logger.Warn("Extension %s not found, continuing without it", opts.ExtensionPath)
		}
	}
	if bin != "" {
		l = l.Bin(bin)
	}
	return l
}

// New launches a browser configured for unattended downloads into
// opts.DownloadDir.
func New(opts Options) (*Session, error) {
	bin := opts.Bin
	if bin == "" {
		if path, ok := launcher.LookPath(); ok {
			logger.Debug("Using system browser: %s", path)
			bin = path
		}
	}

	url, err := newLauncher(opts, bin).Launch()
	if err != nil && bin != "" {
		// the system binary failed; let rod fetch its own build
		logger.Info("System browser failed to start (%v), downloading a managed one...", err)
		url, err = newLauncher(opts, "").Launch()
	}
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	s, err := attach(b, opts.DownloadDir)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return s, nil
}

// Open is an Opener for rod sessions sharing base options.
func Open(base Options) Opener {
	return func(ctx context.Context, downloadDir string) (Driver, error) {
		opts := base
		opts.DownloadDir = downloadDir
		return New(opts)
	}
}

func attach(b *rod.Browser, downloadDir string) (*Session, error) {
	if downloadDir != "" {
		err := proto.BrowserSetDownloadBehavior{
			Behavior:     proto.BrowserSetDownloadBehaviorBehaviorAllow,
			DownloadPath: downloadDir,
		}.Call(b)
		if err != nil {
			return nil, fmt.Errorf("set download behavior: %w", err)
		}
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	if err := (proto.NetworkEnable{}).Call(page); err != nil {
		return nil, fmt.Errorf("enable network events: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{Browser: b, main: page, current: page, cancel: cancel}

	wait := page.Context(ctx).EachEvent(
		func(e *proto.NetworkResponseReceivedExtraInfo) {
			headers := make(map[string]string, len(e.Headers))
			for k, v := range e.Headers {
				headers[k] = v.Str()
			}
			s.record(NetworkEvent{
				Method:      MethodResponseExtraInfo,
				Headers:     headers,
				HeadersText: e.HeadersText,
			})
		},
		func(e *proto.NetworkDataReceived) {
			s.record(NetworkEvent{Method: MethodDataReceived, DataLength: int64(e.DataLength)})
		},
	)
	go wait()

	return s, nil
}

func (s *Session) record(e NetworkEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *Session) page(ctx context.Context) (*rod.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, errNoTab
	}
	return s.current.Context(ctx), nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	p, err := s.page(ctx)
	if err != nil {
		return err
	}
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("load %s: %w", url, err)
	}
	return nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	p, err := s.page(ctx)
	if err != nil {
		return "", err
	}
	info, err := p.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	p, err := s.page(ctx)
	if err != nil {
		return "", err
	}
	return p.HTML()
}

type rodElement struct {
	el *rod.Element
}

func (e rodElement) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (s *Session) WaitClickable(ctx context.Context, loc Locator, timeout time.Duration) (Element, error) {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p, err := s.page(wctx)
	if err != nil {
		return nil, err
	}

	var el *rod.Element
	if loc.Kind == XPath {
		el, err = p.ElementX(loc.Value)
	} else {
		el, err = p.Element(loc.Value)
	}
	if err == nil {
		err = el.WaitVisible()
	}
	if err == nil {
		err = el.WaitEnabled()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%s after %s: %w", loc, timeout, ErrTimeout)
		}
		return nil, fmt.Errorf("%s: %w", loc, err)
	}
	// detach from the wait deadline
	return rodElement{el: el.Context(context.Background())}, nil
}

func (s *Session) Tabs(ctx context.Context) ([]TabID, error) {
	pages, err := s.Browser.Context(ctx).Pages()
	if err != nil {
		return nil, err
	}
	ids := make([]TabID, 0, len(pages))
	for _, p := range pages {
		ids = append(ids, TabID(p.TargetID))
	}
	return ids, nil
}

func (s *Session) CurrentTab() TabID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return TabID(s.current.TargetID)
}

func (s *Session) SwitchTab(ctx context.Context, id TabID) error {
	s.mu.Lock()
	if s.main != nil && TabID(s.main.TargetID) == id {
		s.current = s.main
		s.mu.Unlock()
		_, err := s.main.Context(ctx).Activate()
		return err
	}
	s.mu.Unlock()

	p, err := s.Browser.Context(ctx).PageFromTarget(proto.TargetTargetID(id))
	if err != nil {
		return fmt.Errorf("switch to tab %s: %w", id, err)
	}
	if _, err := p.Activate(); err != nil {
		return fmt.Errorf("activate tab %s: %w", id, err)
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	return nil
}

func (s *Session) CloseTab(ctx context.Context) error {
	p, err := s.page(ctx)
	if err != nil {
		return err
	}
	if err := p.Close(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.current != nil && s.main != nil && s.current.TargetID == s.main.TargetID {
		s.main = nil
	}
	s.current = nil
	s.mu.Unlock()
	return nil
}

func (s *Session) NetworkLog() []NetworkEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]NetworkEvent(nil), s.events...)
}

// Close quits the browser.
func (s *Session) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.Browser != nil {
		return s.Browser.Close()
	}
	return nil
}
