package tui

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// ErrNoClipboard is returned when no clipboard command can be found.
var ErrNoClipboard = errors.New("no clipboard command available")

// copyText copies text to the system clipboard using command, or an
// auto-detected command when it is empty.
func copyText(text, command string) error {
	if command == "" {
		command = detectClipboardCommand()
	}

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return ErrNoClipboard
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := exec.CommandContext(ctx, parts[0], parts[1:]...)
	c.Stdin = strings.NewReader(text)

	return c.Run()
}

// detectClipboardCommand returns the first clipboard tool found on PATH.
func detectClipboardCommand() string {
	if _, err := exec.LookPath("wl-copy"); err == nil {
		return "wl-copy"
	}
	if _, err := exec.LookPath("xclip"); err == nil {
		return "xclip -selection clipboard"
	}
	if _, err := exec.LookPath("xsel"); err == nil {
		return "xsel --clipboard --input"
	}
	return ""
}
