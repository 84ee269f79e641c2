package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Desktop shows notifications through the platform notification tool
// (notify-send or osascript). Permission is granted when the tool exists.
type Desktop struct {
	goos     string
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

func NewDesktop() *Desktop {
	return &Desktop{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

func (d *Desktop) RequestPermission(context.Context) bool {
	name, _ := desktopCommand(d.goos, "", "")
	if name == "" {
		return false
	}
	_, err := d.lookPath(name)
	return err == nil
}

func (d *Desktop) Notify(ctx context.Context, title, body, _ string) error {
	name, args := desktopCommand(d.goos, title, body)
	if name == "" {
		return fmt.Errorf("desktop notifications unsupported on %s", d.goos)
	}
	if err := d.run(ctx, name, args...); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

func desktopCommand(goos, title, body string) (string, []string) {
	switch goos {
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s", appleQuote(body), appleQuote(title))
		return "osascript", []string{"-e", script}
	case "linux", "freebsd", "openbsd", "netbsd":
		return "notify-send", []string{"--app-name=teletext", "--expire-time=8000", title, body}
	default:
		return "", nil
	}
}

func appleQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
