package cli

import (
	"fmt"
	"net"
	"os"
	"regexp"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/64andrewwalker/calvin/internal/calvinerr"
	"github.com/64andrewwalker/calvin/internal/destination"
)

var remoteSpecPattern = regexp.MustCompile(`^([^@]+)@([^:]+):(.+)$`)

// parseRemoteSpec splits a "user@host:/abs/path" or "user@host:~/rel"
// destination specifier into its user, host, and base path components
// (spec section 6).
func parseRemoteSpec(spec string) (user, host, basePath string, err error) {
	m := remoteSpecPattern.FindStringSubmatch(spec)
	if m == nil {
		return "", "", "", calvinerr.Newf(calvinerr.KindConfig, "invalid remote destination %q, expected user@host:path", spec)
	}
	return m[1], m[2], m[3], nil
}

// dialRemote connects to a remote destination specifier over SSH,
// authenticating via a running ssh-agent (SSH_AUTH_SOCK) and verifying
// the host key against ~/.ssh/known_hosts. There is no password or
// interactive prompt path, matching the out-of-scope "interactive
// menus" restriction on this CLI.
func dialRemote(spec string) (destination.Destination, error) {
	user, host, basePath, err := parseRemoteSpec(spec)
	if err != nil {
		return nil, err
	}

	authMethod, err := agentAuth()
	if err != nil {
		return nil, err
	}

	hostKeyCallback, err := knownHostsCallback()
	if err != nil {
		return nil, err
	}

	addr := host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		addr = net.JoinHostPort(host, "22")
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{authMethod},
		HostKeyCallback: hostKeyCallback,
	}

	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, calvinerr.Wrap(calvinerr.KindRemote, err, fmt.Sprintf("connecting to %s", addr))
	}

	return destination.NewRemote(client, basePath), nil
}

func agentAuth() (ssh.AuthMethod, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, calvinerr.New(calvinerr.KindRemote, "SSH_AUTH_SOCK is not set; start ssh-agent and add a key with ssh-add").
			WithFix("run `eval $(ssh-agent) && ssh-add`")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, calvinerr.Wrap(calvinerr.KindRemote, err, "connecting to ssh-agent")
	}
	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers), nil
}

func knownHostsCallback() (ssh.HostKeyCallback, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, calvinerr.Wrap(calvinerr.KindRemote, err, "resolving home directory for known_hosts")
	}
	callback, err := knownhosts.New(home + "/.ssh/known_hosts")
	if err != nil {
		return nil, calvinerr.Wrap(calvinerr.KindRemote, err, "loading known_hosts")
	}
	return callback, nil
}
