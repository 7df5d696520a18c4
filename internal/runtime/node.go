package runtime

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Node locates and queries a Node.js installation.
type Node struct {
	// Bin is the executable name or path. Empty means "node" on PATH.
	Bin string
}

// Info describes an installed runtime.
type Info struct {
	Path    string
	Version *semver.Version
}

// Detect resolves the node binary and reads its version.
func (n *Node) Detect(ctx context.Context) (*Info, error) {
	bin := n.Bin
	if bin == "" {
		bin = "node"
	}

	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("node runtime requires Node.js: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "--version")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("running %s --version: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	v, err := ParseVersion(stdout.String())
	if err != nil {
		return nil, err
	}
	return &Info{Path: path, Version: v}, nil
}

// ParseVersion parses "node --version" output such as "v20.11.1\n".
func ParseVersion(out string) (*semver.Version, error) {
	s := strings.TrimPrefix(strings.TrimSpace(out), "v")
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("parsing node version %q: %w", strings.TrimSpace(out), err)
	}
	return v, nil
}
