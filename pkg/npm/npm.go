// Package npm runs the npm command line for lpm.
//
// Installing, removing and publishing packages is npm's job; lpm only
// invokes it as a process in the project directory and reads what it left
// in node_modules.
package npm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/loupeteam/lpm/pkg/deps"
	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
)

// DefaultBin is the npm executable looked up on PATH.
const DefaultBin = "npm"

// Client runs npm in Dir.
type Client struct {
	Bin    string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger

	run func(*exec.Cmd) error
}

var _ deps.Registry = (*Client)(nil)

// New returns a Client running bin in dir. An empty bin means DefaultBin.
// Output is passed through to the process's stdout and stderr. If logger is
// nil, log.Default() is used.
func New(bin, dir string, logger *log.Logger) *Client {
	if bin == "" {
		bin = DefaultBin
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		Bin:    bin,
		Dir:    dir,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
		run:    (*exec.Cmd).Run,
	}
}

// Init creates a default package.json.
func (c *Client) Init(ctx context.Context) error {
	return c.Run(ctx, "init", "-y")
}

// Install installs specs, or every declared dependency when specs is empty.
func (c *Client) Install(ctx context.Context, specs ...string) error {
	return c.Run(ctx, append([]string{"install"}, specs...)...)
}

// Uninstall removes names from node_modules and the manifest.
func (c *Client) Uninstall(ctx context.Context, names ...string) error {
	return c.Run(ctx, append([]string{"uninstall"}, names...)...)
}

// InstallRefs installs refs at their pinned versions.
func (c *Client) InstallRefs(ctx context.Context, refs []deps.Reference) error {
	specs := make([]string, len(refs))
	for i, r := range refs {
		specs[i] = r.Spec()
	}
	return c.Install(ctx, specs...)
}

// View returns the output of npm view for spec and fields.
func (c *Client) View(ctx context.Context, spec string, fields ...string) (string, error) {
	var out bytes.Buffer
	cmd := c.command(ctx, append([]string{"view", spec}, fields...)...)
	cmd.Stdout = &out
	cmd.Stderr = io.Discard
	if err := c.run(cmd); err != nil {
		return "", lpmerrors.OperationFailed(err, "npm view %s", spec)
	}
	return strings.TrimSpace(out.String()), nil
}

// Exists reports whether the registry knows ref. A lookup that npm
// answers with a non-zero exit means the package does not exist; failing
// to start npm is an error.
func (c *Client) Exists(ctx context.Context, ref deps.Reference) (bool, error) {
	cmd := c.command(ctx, "view", ref.FullName(), "name")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	err := c.run(cmd)
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return true, nil
	case ctx.Err() != nil:
		return false, ctx.Err()
	case errors.As(err, &exitErr):
		c.Logger.Debug("not in registry", "package", ref.FullName(), "exit", exitErr.ExitCode())
		return false, nil
	default:
		return false, lpmerrors.OperationFailed(err, "npm view %s", ref.FullName())
	}
}

// Run runs npm with args, passing its output through.
func (c *Client) Run(ctx context.Context, args ...string) error {
	cmd := c.command(ctx, args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	c.Logger.Debug("running", "cmd", c.Bin, "args", args)
	if err := c.run(cmd); err != nil {
		return lpmerrors.OperationFailed(err, "npm %s", strings.Join(args, " "))
	}
	return nil
}

func (c *Client) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	cmd.Dir = c.Dir
	return cmd
}
