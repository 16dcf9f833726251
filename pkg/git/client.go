package git

import (
	"os/exec"

	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
)

// Git clients a project can name in lpmConfig.gitClient.
const (
	ClientGitExtensions = "GitExtensions"
	ClientGitKraken     = "GitKraken"
	ClientSourceTree    = "SourceTree"
)

// Clients lists the selectable git clients. The empty name means none.
var Clients = []string{ClientGitExtensions, ClientGitKraken, ClientSourceTree, ""}

// ClientCommand returns the command line opening the repository in dir
// with client. Only Git Extensions can be opened on a repository.
func ClientCommand(client, dir string) ([]string, error) {
	switch client {
	case ClientGitExtensions:
		return []string{"gitex.cmd", "openrepo", dir}, nil
	case "":
		return nil, lpmerrors.New(lpmerrors.ErrCodeInvalidInput, "no git client configured, run lpm configure")
	}
	return nil, lpmerrors.New(lpmerrors.ErrCodeUnsupported, "git client %s cannot open repositories", client)
}

// OpenClient starts client on the repository in dir and returns without
// waiting for it to exit.
func (c *Client) OpenClient(client, dir string) error {
	args, err := ClientCommand(client, dir)
	if err != nil {
		return err
	}
	cmd := exec.Command(args[0], args[1:]...)
	c.Logger.Debug("starting", "cmd", args[0], "args", args[1:])
	if err := c.start(cmd); err != nil {
		return lpmerrors.OperationFailed(err, "start %s", client)
	}
	return nil
}
