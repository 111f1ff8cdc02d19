package prompt

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repackget/internal/site"
)

func TestAsk(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   string
		want  string
		err   error
	}{
		{"answer", "Test Game\n", "", "Test Game", nil},
		{"trimmed", "  spaced  \n", "", "spaced", nil},
		{"default on enter", "\n", "/data", "/data", nil},
		{"last line without newline", "Test Game", "", "Test Game", nil},
		{"eof", "", "", "", io.EOF},
		{"eof with default", "", "/data", "/data", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := NewConsole(strings.NewReader(tt.input), &out)

			got, err := c.Ask("Label", tt.def)

			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, strings.HasPrefix(out.String(), "Label"))
		})
	}
}

func TestAskKeepsBufferedLines(t *testing.T) {
	c := NewConsole(strings.NewReader("first\nsecond\n"), io.Discard)

	a, err := c.Ask("one", "")
	require.NoError(t, err)
	b, err := c.Ask("two", "")
	require.NoError(t, err)

	assert.Equal(t, "first", a)
	assert.Equal(t, "second", b)
}

func TestChoose(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("2\nabc\n"), &out)
	results := []site.Result{
		{Index: 1, Title: "Test Game 2", URL: "https://fitgirl-repacks.site/test-game-2/"},
		{Index: 2, Title: "Test Game 2 Deluxe", URL: "https://fitgirl-repacks.site/test-game-2-deluxe/"},
	}

	n, err := c.Choose(context.Background(), results)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, out.String(), "1. Test Game 2 - https://fitgirl-repacks.site/test-game-2/\n")
	assert.Contains(t, out.String(), "2. Test Game 2 Deluxe - ")

	_, err = c.Choose(context.Background(), results)
	assert.Error(t, err)
}
