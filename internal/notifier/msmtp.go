// Package notifier mails the run summary through the host's msmtp.
package notifier

import (
	"fmt"
	"os/exec"
	"strings"

	"repackget/internal/logger"
)

type Mailer struct {
	To string

	lookPath func(string) (string, error)
	run      func(stdin string, name string, args ...string) ([]byte, error)
}

func New(to string) *Mailer {
	return &Mailer{To: to, lookPath: exec.LookPath, run: runCommand}
}

func runCommand(stdin string, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	return cmd.CombinedOutput()
}

// Message builds the RFC 822 text handed to msmtp.
func Message(to, subject, body string) string {
	return fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s", to, subject, body)
}

// Send is a no-op without a recipient. It assumes msmtp is already
// configured on the host.
func (m *Mailer) Send(subject, body string) error {
	if m.To == "" {
		logger.Debug("notify_email not set, skipping summary mail")
		return nil
	}
	if _, err := m.lookPath("msmtp"); err != nil {
		return fmt.Errorf("msmtp not found: %w", err)
	}

	logger.Info("📧 Sending run summary to %s", m.To)
	if output, err := m.run(Message(m.To, subject, body), "msmtp", m.To); err != nil {
		return fmt.Errorf("msmtp failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
