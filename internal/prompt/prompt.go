// Package prompt talks to the operator over a terminal.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"repackget/internal/i18n"
	"repackget/internal/site"
)

type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Ask prints label and reads one line. If defaultVal is not empty it is
// shown and used when the operator just presses Enter. io.EOF is returned
// when input is closed without an answer.
func (c *Console) Ask(label, defaultVal string) (string, error) {
	msg := label
	if defaultVal != "" {
		msg = fmt.Sprintf("%s [%s]", label, defaultVal)
	}
	fmt.Fprintf(c.out, "%s: ", msg)

	input, err := c.in.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		if err != nil && defaultVal == "" {
			return "", err
		}
		return defaultVal, nil
	}
	if err != nil && err != io.EOF {
		return "", err
	}
	return input, nil
}

// AskTitle asks for the title to download.
func (c *Console) AskTitle(ctx context.Context) (string, error) {
	return c.Ask(i18n.T("prompt_title"), "")
}

// Choose lists results as "1. Title - URL" and reads the chosen number.
func (c *Console) Choose(ctx context.Context, results []site.Result) (int, error) {
	for _, r := range results {
		fmt.Fprintf(c.out, "%d. %s - %s\n", r.Index, r.Title, r.URL)
	}
	answer, err := c.Ask(i18n.T("prompt_choice"), "")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(answer)
}
