package main

import (
	"fmt"
	"os/exec"
	"runtime"
)

// osOpener opens files and URLs with the operating system's default handler.
// It implements preview.FileOpener and preview.URLOpener.
type osOpener struct{}

func (osOpener) OpenFile(path string) error { return openWithOS(path) }
func (osOpener) OpenURL(url string) error   { return openWithOS(url) }

func openWithOS(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	// Detach; the handler owns the target from here.
	go func() { _ = cmd.Wait() }()
	return nil
}
