package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocatorString(t *testing.T) {
	assert.Equal(t, "xpath=//button", Locator{Kind: XPath, Value: "//button"}.String())
	assert.Equal(t, "css=#go", Locator{Value: "#go"}.String())
}

func TestNewLauncherFlags(t *testing.T) {
	dir := t.TempDir()
	l := newLauncher(Options{ExtensionPath: dir, UserDataDir: dir, Headless: false}, "/usr/bin/chromium")

	assert.Equal(t, "AutomationControlled", l.Get("disable-blink-features"))
	assert.Equal(t, dir, l.Get("load-extension"))
	assert.True(t, l.Has("start-maximized"))
	assert.True(t, l.Has("disable-notifications"))
	assert.Equal(t, "/usr/bin/chromium", l.Get("rod-bin"))
}

func TestNewLauncherSkipsMissingExtension(t *testing.T) {
	l := newLauncher(Options{ExtensionPath: "/nonexistent/ublock", Headless: true}, "")

	assert.False(t, l.Has("load-extension"))
	assert.False(t, l.Has("start-maximized"))
}
