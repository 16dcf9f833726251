// Package git clones library sources for lpm's source mode.
package git

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
)

// DefaultBin is the git executable looked up on PATH.
const DefaultBin = "git"

// DefaultHost is where library repositories live.
const DefaultHost = "https://github.com/loupeteam"

// Client runs git.
type Client struct {
	Bin    string
	Host   string
	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger

	run   func(*exec.Cmd) error
	start func(*exec.Cmd) error
}

// New returns a Client for bin cloning from host. Empty values mean
// DefaultBin and DefaultHost. If logger is nil, log.Default() is used.
func New(bin, host string, logger *log.Logger) *Client {
	if bin == "" {
		bin = DefaultBin
	}
	if host == "" {
		host = DefaultHost
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		Bin:    bin,
		Host:   strings.TrimSuffix(host, "/"),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
		run:    (*exec.Cmd).Run,
		start:  (*exec.Cmd).Start,
	}
}

// URL returns the repository URL of the library name.
func (c *Client) URL(name string) string {
	return c.Host + "/" + strings.ToLower(name)
}

// Clone clones url into dir and checks out version when it is not empty.
// dir must not exist.
func (c *Client) Clone(ctx context.Context, url, dir, version string) error {
	if _, err := os.Stat(dir); err == nil {
		return lpmerrors.New(lpmerrors.ErrCodeOperationFailed, "clone %s: %s already exists", url, dir)
	}
	if err := c.git(ctx, "clone", url, dir); err != nil {
		return lpmerrors.OperationFailed(err, "git clone %s", url)
	}
	if version == "" {
		return nil
	}
	if err := c.git(ctx, "-C", dir, "checkout", version); err != nil {
		return lpmerrors.OperationFailed(err, "git checkout %s", version)
	}
	return nil
}

// Head returns the commit checked out in dir.
func (c *Client) Head(ctx context.Context, dir string) (string, error) {
	var out strings.Builder
	cmd := exec.CommandContext(ctx, c.Bin, "-C", dir, "rev-parse", "HEAD")
	cmd.Stdout = &out
	cmd.Stderr = c.Stderr
	if err := c.run(cmd); err != nil {
		return "", lpmerrors.OperationFailed(err, "git rev-parse %s", dir)
	}
	return strings.TrimSpace(out.String()), nil
}

func (c *Client) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	c.Logger.Debug("running", "cmd", c.Bin, "args", args)
	return c.run(cmd)
}
