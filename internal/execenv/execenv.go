// Package execenv runs a child process with secrets injected as ephemeral
// environment variables. Values arrive sealed in secure buffers and are only
// decrypted at the moment the child environment is assembled.
package execenv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	egerrors "github.com/amannirala13/envguard/internal/errors"
	"github.com/amannirala13/envguard/internal/logging"
	"github.com/amannirala13/envguard/internal/secure"
	"github.com/amannirala13/envguard/internal/session"
)

// Runner executes commands with injected secret environments.
type Runner struct {
	logger *logging.Logger
}

// NewRunner creates a runner.
func NewRunner(logger *logging.Logger) *Runner {
	return &Runner{logger: logger}
}

// Options configures a single run.
type Options struct {
	Command     []string                  // command and arguments
	Environment string                    // deployment environment the secrets belong to
	Secrets     map[string]*secure.Buffer // key -> sealed value
	Session     *session.Session          // loaded-keys tracker, may be nil
	WorkingDir  string
	Timeout     time.Duration // zero means no timeout
	PrintKeys   bool          // print injected key names (never values)
}

// Run executes the command with the parent environment plus the injected
// secrets. The child's stdio is attached to the parent's. A non-zero exit is
// reported as a CommandError carrying the exit code.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	if len(opts.Command) == 0 {
		return egerrors.UserError{
			Message:    "No command specified",
			Suggestion: "Provide a command after -- (e.g., envguard run -- npm start)",
		}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	name := opts.Command[0]
	if _, err := exec.LookPath(name); err != nil {
		return egerrors.CommandError{
			Command:    name,
			Message:    "command not found",
			Suggestion: fmt.Sprintf("Make sure '%s' is installed and in your PATH", name),
		}
	}

	env, err := r.buildEnvironment(opts)
	if err != nil {
		return err
	}

	if opts.PrintKeys {
		r.printKeys(opts.Secrets)
	}

	cmd := exec.CommandContext(ctx, name, opts.Command[1:]...)
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if opts.WorkingDir != "" {
		cmd.Dir = opts.WorkingDir
	}

	r.logger.Debug("running %s with %d injected secrets", strings.Join(opts.Command, " "), len(opts.Secrets))

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return egerrors.CommandError{
				Command:  strings.Join(opts.Command, " "),
				ExitCode: exitErr.ExitCode(),
			}
		}
		return egerrors.CommandError{
			Command: strings.Join(opts.Command, " "),
			Message: err.Error(),
		}
	}
	return nil
}

// buildEnvironment unseals the secrets on top of the parent environment.
// Injected keys win over inherited variables of the same name.
func (r *Runner) buildEnvironment(opts Options) ([]string, error) {
	injected := make(map[string]bool, len(opts.Secrets))
	env := make([]string, 0, len(os.Environ())+len(opts.Secrets))

	for key, buf := range opts.Secrets {
		value, err := buf.String()
		if err != nil {
			return nil, egerrors.UserError{
				Message: fmt.Sprintf("Failed to unseal value for %s", key),
				Err:     err,
			}
		}
		env = append(env, key+"="+value)
		injected[key] = true
		if opts.Session != nil {
			opts.Session.MarkLoaded(opts.Environment, key)
		}
	}

	for _, kv := range os.Environ() {
		name := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			name = kv[:i]
		}
		if !injected[name] {
			env = append(env, kv)
		}
	}

	return env, nil
}

func (r *Runner) printKeys(secrets map[string]*secure.Buffer) {
	keys := make([]string, 0, len(secrets))
	for k := range secrets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.logger.Info("injecting %s=%s", k, logging.Secret("masked"))
	}
}
