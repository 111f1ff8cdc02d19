package browser

import (
	"context"
	"fmt"
	"time"

	"repackget/internal/common"
)

// ErrTimeout is returned by WaitClickable when the element never became
// clickable.
var ErrTimeout = fmt.Errorf("element wait: %w", common.ErrTimedOut)

type LocatorKind int

const (
	CSS LocatorKind = iota
	XPath
)

type Locator struct {
	Kind  LocatorKind
	Value string
}

func (l Locator) String() string {
	if l.Kind == XPath {
		return "xpath=" + l.Value
	}
	return "css=" + l.Value
}

// TabID identifies a browser tab (a CDP target).
type TabID string

// CDP methods recorded in the network log.
const (
	MethodResponseExtraInfo = "Network.responseReceivedExtraInfo"
	MethodDataReceived      = "Network.dataReceived"
)

// NetworkEvent is one recorded entry of the network log.
type NetworkEvent struct {
	Method      string
	Headers     map[string]string // responseReceivedExtraInfo
	HeadersText string            // responseReceivedExtraInfo, raw header block when sent
	DataLength  int64             // dataReceived
}

type Element interface {
	Click(ctx context.Context) error
}

// Driver is everything the downloader needs from a browser.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	// WaitClickable waits up to timeout for loc to be visible and enabled.
	WaitClickable(ctx context.Context, loc Locator, timeout time.Duration) (Element, error)

	Tabs(ctx context.Context) ([]TabID, error)
	CurrentTab() TabID
	SwitchTab(ctx context.Context, id TabID) error
	// CloseTab closes the current tab. Switch to another tab afterwards.
	CloseTab(ctx context.Context) error

	// NetworkLog returns every event recorded since the session started.
	NetworkLog() []NetworkEvent
	Close() error
}

// Opener starts a session that saves downloads into downloadDir.
type Opener func(ctx context.Context, downloadDir string) (Driver, error)
