package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Environment names a target output mode understood by the compiler config.
type Environment string

// Supported environments.
const (
	EnvCommonJS Environment = "cjs"
	EnvModule   Environment = "mjs"
)

// Environments lists the environments every code file is built for, in
// build order.
func Environments() []Environment {
	return []Environment{EnvCommonJS, EnvModule}
}

// OutputPath returns the artifact path for a code file built for env. The
// CommonJS output keeps the source name; the module output swaps the
// trailing .js for .mjs.
func (e Environment) OutputPath(rel string) string {
	if e == EnvModule {
		return strings.TrimSuffix(rel, ".js") + ".mjs"
	}
	return rel
}

// Transformer generates code for a single source file. Implementations must
// be deterministic for a given (file, env) pair.
type Transformer interface {
	Transform(ctx context.Context, filename string, src []byte, env Environment) ([]byte, error)
}

// Func adapts an ordinary function to the Transformer interface.
type Func func(ctx context.Context, filename string, src []byte, env Environment) ([]byte, error)

// Transform calls f. Errors are reported as *Error.
func (f Func) Transform(ctx context.Context, filename string, src []byte, env Environment) ([]byte, error) {
	out, err := f(ctx, filename, src, env)
	if err != nil {
		return nil, wrap(filename, env, "", err)
	}
	return out, nil
}

// Error reports a failed transformation of one file.
type Error struct {
	File   string
	Env    Environment
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("transforming %s for %s: %v", e.File, e.Env, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\n" + s
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// wrap returns err unchanged when it already is an *Error.
func wrap(file string, env Environment, stderr string, err error) error {
	var te *Error
	if errors.As(err, &te) {
		return err
	}
	return &Error{File: file, Env: env, Stderr: stderr, Err: err}
}
