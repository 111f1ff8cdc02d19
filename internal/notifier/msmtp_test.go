package notifier

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repackget/internal/logger"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func fake(m *Mailer, found bool, out string, err error) (calls *[]string) {
	var got []string
	m.lookPath = func(string) (string, error) {
		if !found {
			return "", errors.New("not in PATH")
		}
		return "/usr/bin/msmtp", nil
	}
	m.run = func(stdin, name string, args ...string) ([]byte, error) {
		got = append(got, stdin, name)
		got = append(got, args...)
		return []byte(out), err
	}
	return &got
}

func TestSendWithoutRecipient(t *testing.T) {
	m := New("")
	calls := fake(m, true, "", nil)

	require.NoError(t, m.Send("s", "b"))
	assert.Empty(t, *calls)
}

func TestSend(t *testing.T) {
	m := New("me@example.com")
	calls := fake(m, true, "", nil)

	require.NoError(t, m.Send("repackget: Test Game 2 1/1", "Part 01: success"))
	assert.Equal(t, []string{
		"To: me@example.com\r\nSubject: repackget: Test Game 2 1/1\r\n\r\nPart 01: success",
		"msmtp",
		"me@example.com",
	}, *calls)
}

func TestSendErrors(t *testing.T) {
	m := New("me@example.com")
	fake(m, false, "", nil)
	assert.ErrorContains(t, m.Send("s", "b"), "msmtp not found")

	m = New("me@example.com")
	fake(m, true, "account default not found\n", errors.New("exit status 78"))
	err := m.Send("s", "b")
	assert.ErrorContains(t, err, "exit status 78")
	assert.ErrorContains(t, err, "account default not found")
}
