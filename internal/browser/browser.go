// Package browser launches a Chrome process with the batch-save extension
// loaded and drives it over the DevTools protocol.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/mafredri/cdp"
	"github.com/mafredri/cdp/devtool"
	"github.com/mafredri/cdp/rpcc"

	"urlsnap/internal/logger"
)

// LaunchConfig describes how to start the browser process.
type LaunchConfig struct {
	ChromePath    string // empty means probe well-known binary names
	DebuggingPort int
	Headless      bool
	ExtensionDir  string
	ExtraArgs     []string
}

// Browser is a running Chrome process reachable over DevTools.
type Browser struct {
	cmd         *exec.Cmd
	profileDir  string
	devtoolsURL string
	log         logger.Logger
}

var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
}

// Launch starts Chrome with a temporary profile and the extension loaded,
// then waits until the DevTools endpoint answers.
func Launch(ctx context.Context, cfg LaunchConfig, l logger.Logger) (*Browser, error) {
	if l == nil {
		l = logger.NewNop()
	}
	path := cfg.ChromePath
	if path == "" {
		path = findChrome()
	}
	if path == "" {
		return nil, errors.New("no chrome binary found")
	}

	profile, err := os.MkdirTemp("", "urlsnap-profile-*")
	if err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", cfg.DebuggingPort),
		"--user-data-dir=" + profile,
		"--disable-extensions-except=" + cfg.ExtensionDir,
		"--load-extension=" + cfg.ExtensionDir,
		"--no-first-run",
		"--no-default-browser-check",
		"--enable-logging=stderr",
		"--v=1",
		"--log-level=0",
	}
	if cfg.Headless {
		args = append(args, "--headless=new")
	}
	args = append(args, cfg.ExtraArgs...)

	cmd := exec.CommandContext(ctx, path, args...)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(profile)
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	b := &Browser{
		cmd:         cmd,
		profileDir:  profile,
		devtoolsURL: fmt.Sprintf("http://127.0.0.1:%d", cfg.DebuggingPort),
		log:         l,
	}
	if err := b.waitReady(ctx); err != nil {
		b.Close(context.Background())
		return nil, err
	}
	l.Info("browser launched", "path", path, "devtools", b.devtoolsURL)
	return b, nil
}

// DevToolsURL returns the HTTP endpoint of the DevTools server.
func (b *Browser) DevToolsURL() string { return b.devtoolsURL }

func (b *Browser) waitReady(ctx context.Context) error {
	dt := devtool.New(b.devtoolsURL)
	deadline := time.Now().Add(30 * time.Second)
	for {
		if _, err := dt.Version(ctx); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.New("devtools endpoint did not become ready")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// Close shuts the browser down: a graceful Browser.close over DevTools
// first, then process termination if it does not exit in time. The
// temporary profile is removed in every case.
func (b *Browser) Close(ctx context.Context) {
	b.closeGracefully(ctx)

	done := make(chan error, 1)
	go func() { done <- b.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		b.log.Warn("browser did not exit gracefully, killing process")
		_ = b.cmd.Process.Kill()
		<-done
	}

	if err := os.RemoveAll(b.profileDir); err != nil {
		b.log.Warn("remove profile dir failed", "dir", b.profileDir, "error", err.Error())
	}
	b.log.Info("browser closed")
}

func (b *Browser) closeGracefully(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	v, err := devtool.New(b.devtoolsURL).Version(ctx)
	if err != nil {
		return
	}
	conn, err := rpcc.DialContext(ctx, v.WebSocketDebuggerURL)
	if err != nil {
		return
	}
	defer conn.Close()
	_ = cdp.NewClient(conn).Browser.Close(ctx)
}

func findChrome() string {
	for _, name := range chromeCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
