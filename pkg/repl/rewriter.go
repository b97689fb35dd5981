package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/vanderheijden86/eva/pkg/loader"
	"github.com/vanderheijden86/eva/pkg/model"
)

// Rewriter produces the derivation tree for one input line.
type Rewriter interface {
	Rewrite(ctx context.Context, line string) (*model.Term, error)
}

// ErrRewriterUnavailable is returned when the configured command is not on
// PATH.
var ErrRewriterUnavailable = errors.New("rewriter command not found")

// LiteralRewriter shows the parsed input term itself. It is the fallback
// when no external rewriter is configured.
type LiteralRewriter struct{}

// Rewrite parses line as a term literal.
func (LiteralRewriter) Rewrite(_ context.Context, line string) (*model.Term, error) {
	return Parse(line)
}

// ExecRewriter runs an external rewrite engine. The input line is written to
// the command's stdin and the derivation tree is read from its stdout.
type ExecRewriter struct {
	path    string
	args    []string
	format  loader.Format
	timeout time.Duration
}

// NewExecRewriter resolves command[0] on PATH. Output is decoded as JSON
// unless the command is configured otherwise with WithFormat.
func NewExecRewriter(command []string, timeout time.Duration) (*ExecRewriter, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrRewriterUnavailable)
	}
	path, err := exec.LookPath(command[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRewriterUnavailable, command[0])
	}
	return &ExecRewriter{
		path:    path,
		args:    command[1:],
		format:  loader.FormatJSON,
		timeout: timeout,
	}, nil
}

// WithFormat sets how the command's stdout is decoded.
func (r *ExecRewriter) WithFormat(f loader.Format) *ExecRewriter {
	r.format = f
	return r
}

// Rewrite runs the command once for line.
func (r *ExecRewriter) Rewrite(ctx context.Context, line string) (*model.Term, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.path, r.args...)
	cmd.Stdin = strings.NewReader(line + "\n")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("rewriter: %w", ctxErr)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("rewriter: %s: %w", msg, err)
		}
		return nil, fmt.Errorf("rewriter: %w", err)
	}

	term, err := loader.Decode(&stdout, r.format)
	if err != nil {
		return nil, fmt.Errorf("rewriter output: %w", err)
	}
	return term, nil
}
