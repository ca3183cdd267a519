// Package exec implements the toolchain interfaces by running external
// processes.
package exec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/syssam/splitwrap/compiler/load"
	"github.com/syssam/splitwrap/schema"
	"github.com/syssam/splitwrap/toolchain"
)

// Command is the fixed part of a process invocation. Per-call arguments are
// appended to Args.
type Command struct {
	Path string
	Args []string
	// Dir is the working directory. Empty means the current one.
	Dir string
	// Env is appended to the parent environment.
	Env []string
}

// ParseCommand splits a whitespace separated command line. Quoting is not
// supported.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, errors.New("exec: empty command")
	}
	return Command{Path: fields[0], Args: fields[1:]}, nil
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// ExitError is returned when a process exits with a non-zero status. Stderr
// holds what the process printed, trimmed.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	var b strings.Builder
	b.WriteString(e.Command)
	b.WriteString(": exit status ")
	b.WriteString(strconv.Itoa(e.ExitCode))
	if e.Stderr != "" {
		b.WriteString(": ")
		b.WriteString(e.Stderr)
	}
	return b.String()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// run executes cmd with args appended, feeding stdin, and returns stdout.
func run(ctx context.Context, log *zap.Logger, cmd Command, args []string, stdin []byte) ([]byte, error) {
	if cmd.Path == "" {
		return nil, errors.New("exec: command not configured")
	}
	argv := append(append([]string(nil), cmd.Args...), args...)
	c := osexec.CommandContext(ctx, cmd.Path, argv...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	if stdin != nil {
		c.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	log.Debug("running", zap.String("cmd", cmd.Path), zap.Strings("args", argv))
	if err := c.Run(); err != nil {
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{
				Command:  cmd.Path,
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
				Err:      err,
			}
		}
		return nil, fmt.Errorf("exec: start %s: %w", cmd.Path, err)
	}
	if stderr.Len() > 0 {
		log.Debug("process stderr", zap.String("cmd", cmd.Path), zap.String("stderr", strings.TrimSpace(stderr.String())))
	}
	return stdout.Bytes(), nil
}

func nopIfNil(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// Resolver runs `<cmd> --search-path P... --jobs N FILE...` and reads a JSON
// declaration set from its stdout.
type Resolver struct {
	Cmd    Command
	Logger *zap.Logger
}

// Resolve implements toolchain.Resolver.
func (r *Resolver) Resolve(ctx context.Context, files, searchPaths []string, parallelism int) (*schema.Set, error) {
	args := make([]string, 0, 2*len(searchPaths)+2+len(files))
	for _, p := range searchPaths {
		args = append(args, "--search-path", p)
	}
	args = append(args, "--jobs", strconv.Itoa(parallelism))
	args = append(args, files...)

	out, err := run(ctx, nopIfNil(r.Logger), r.Cmd, args, nil)
	if err != nil {
		return nil, err
	}
	return load.UnmarshalSet(out)
}

// Generator writes the request as JSON to the process stdin and reads a
// JSON array of include directories from its stdout. Empty output means no
// include directories.
type Generator struct {
	Cmd    Command
	Logger *zap.Logger
}

// Generate implements toolchain.Generator.
func (g *Generator) Generate(ctx context.Context, req *toolchain.GenerateRequest) ([]string, error) {
	in, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("exec: encode generate request: %w", err)
	}
	out, err := run(ctx, nopIfNil(g.Logger), g.Cmd, nil, in)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, nil
	}
	var dirs []string
	if err := json.Unmarshal(out, &dirs); err != nil {
		return nil, fmt.Errorf("exec: decode include dirs: %w", err)
	}
	return dirs, nil
}

// Compiler runs `<cmd> -I DIR... SOURCE`.
type Compiler struct {
	Cmd    Command
	Logger *zap.Logger
}

// Compile implements toolchain.Compiler.
func (c *Compiler) Compile(ctx context.Context, source string, includeDirs []string) error {
	args := make([]string, 0, 2*len(includeDirs)+1)
	for _, d := range includeDirs {
		args = append(args, "-I", d)
	}
	args = append(args, source)
	_, err := run(ctx, nopIfNil(c.Logger), c.Cmd, args, nil)
	return err
}

var (
	_ toolchain.Resolver  = (*Resolver)(nil)
	_ toolchain.Generator = (*Generator)(nil)
	_ toolchain.Compiler  = (*Compiler)(nil)
)
