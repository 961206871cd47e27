package plugin

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"gridview/app/settings"
)

// Mode is passed to the plugin executable as --mode
type Mode string

// ModeStream asks for the whole file as CSV with a header row
const ModeStream Mode = "stream"

// Plugin is a validated converter ready to run
type Plugin struct {
	Config   settings.PluginConfig
	Manifest Manifest
	ExecPath string // resolved path of the executable
}

// Name returns the manifest name
func (p *Plugin) Name() string {
	return p.Manifest.Name
}

// Execute runs the executable as "<exec> --mode=<mode> --file=<path>" and
// returns its stdout. Stderr is folded into the error on failure.
func (p *Plugin) Execute(ctx context.Context, mode Mode, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, p.ExecPath,
		fmt.Sprintf("--mode=%s", mode),
		fmt.Sprintf("--file=%s", path),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("plugin %s failed: %v\nstderr: %s", p.Name(), err, msg)
		}
		return nil, fmt.Errorf("plugin %s failed: %v", p.Name(), err)
	}
	return stdout.Bytes(), nil
}

// Convert runs the plugin in stream mode
func (p *Plugin) Convert(ctx context.Context, path string) ([]byte, error) {
	out, err := p.Execute(ctx, ModeStream, path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, fmt.Errorf("plugin %s returned empty output for %s", p.Name(), path)
	}
	return out, nil
}
