package transform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// DefaultCommand runs the project's local Babel CLI.
const DefaultCommand = "npx babel"

// Command runs an external compiler once per (file, environment). The
// command line is split with shell quoting rules, then
// "--env-name <env> --filename <file>" is appended. The source is written
// to stdin and stdout is taken as the generated code.
type Command struct {
	// Line is the compiler invocation, e.g. "npx babel". Empty means
	// DefaultCommand.
	Line string

	// Dir is the working directory, normally the project root so the
	// compiler finds its config file.
	Dir string

	// Env is the process environment; nil inherits the current one.
	Env []string

	// Stderr, when set, also receives the compiler's stderr stream.
	Stderr io.Writer
}

// Argv returns the full argument vector for one invocation.
func (c *Command) Argv(filename string, env Environment) ([]string, error) {
	line := c.Line
	if strings.TrimSpace(line) == "" {
		line = DefaultCommand
	}

	args, err := shell.Fields(line, c.lookupEnv)
	if err != nil {
		return nil, fmt.Errorf("parsing transform command %q: %w", line, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("transform command %q is empty", line)
	}
	return append(args, "--env-name", string(env), "--filename", filename), nil
}

// Transform implements Transformer.
func (c *Command) Transform(ctx context.Context, filename string, src []byte, env Environment) ([]byte, error) {
	argv, err := c.Argv(filename, env)
	if err != nil {
		return nil, wrap(filename, env, "", err)
	}

	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, wrap(filename, env, "", fmt.Errorf("transform command requires %s: %w", argv[0], err))
	}

	cmd := exec.CommandContext(ctx, bin, argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdin = bytes.NewReader(src)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(c.Stderr, &stderrBuf)
	}

	if err := cmd.Run(); err != nil {
		return nil, wrap(filename, env, stderrBuf.String(), err)
	}

	// Exactly one trailing newline, whether or not the compiler printed one.
	code := bytes.TrimSuffix(stdoutBuf.Bytes(), []byte("\n"))
	return append(code, '\n'), nil
}

func (c *Command) lookupEnv(name string) string {
	if c.Env == nil {
		return os.Getenv(name)
	}
	prefix := name + "="
	for _, kv := range c.Env {
		if strings.HasPrefix(kv, prefix) {
			return kv[len(prefix):]
		}
	}
	return ""
}
