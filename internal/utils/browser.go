package utils

import (
	"os/exec"
	"runtime"
)

// OpenPath opens a file, folder or URL with the system's default handler.
func OpenPath(target string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", ""}
	case "darwin":
		cmd = "open"
	default: // Linux, BSD, etc
		cmd = "xdg-open"
	}

	args = append(args, target)
	return exec.Command(cmd, args...).Start()
}
