package destination

import (
	"bufio"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"

	"github.com/64andrewwalker/calvin/internal/calvinerr"
	"github.com/64andrewwalker/calvin/internal/model"
)

// Remote talks to a "user@host:/abs/path" or "user@host:~/rel"
// destination over SSH (spec section 4.9). Every operation opens its
// own session over a shared, long-lived connection; writes are atomic
// via a remote temp file plus rename, and hashing shells out to
// sha256sum (falling back to shasum -a 256 on BSD/macOS remotes).
//
// Grounded on the teacher's internal/discovery/git_tracked.go
// subprocess-invoke-then-parse-stdout shape, adapted from a local
// os/exec call to a remote SSH command.
type Remote struct {
	client   *ssh.Client
	basePath string

	homeOnce sync.Once
	homeDir  string
	homeErr  error
}

// NewRemote wraps an already-dialed SSH client, rooted at basePath
// (the path component of the destination specifier, spec section 6).
func NewRemote(client *ssh.Client, basePath string) *Remote {
	return &Remote{client: client, basePath: strings.TrimSuffix(basePath, "/")}
}

// shellQuote wraps s in single quotes for safe inclusion in a remote
// shell command, escaping any embedded single quote as '\'' (spec
// section 4.9, section 6).
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func (r *Remote) remotePath(path string) string {
	expanded := r.ExpandHome(path)
	if strings.HasPrefix(expanded, "/") || strings.HasPrefix(expanded, "~") {
		return expanded
	}
	return r.basePath + "/" + expanded
}

func (r *Remote) run(cmd string) (string, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return "", calvinerr.Wrap(calvinerr.KindRemote, err, "opening SSH session")
	}
	defer session.Close()

	var out strings.Builder
	session.Stdout = &out
	if err := session.Run(cmd); err != nil {
		return "", calvinerr.Wrap(calvinerr.KindRemote, err, "remote command failed: "+cmd)
	}
	return out.String(), nil
}

func (r *Remote) Exists(path string) (bool, error) {
	full := r.remotePath(path)
	cmd := fmt.Sprintf("test -e %s && echo yes || echo no", shellQuote(full))
	out, err := r.run(cmd)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "yes", nil
}

func (r *Remote) Hash(path string) (model.ContentHash, error) {
	full := r.remotePath(path)
	cmd := fmt.Sprintf("sha256sum %[1]s 2>/dev/null || shasum -a 256 %[1]s", shellQuote(full))
	out, err := r.run(cmd)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", calvinerr.New(calvinerr.KindRemote, "hash command produced no output").WithLocation(path, 0)
	}
	return model.ContentHash("sha256:" + fields[0]), nil
}

func (r *Remote) Write(path string, content []byte) error {
	full := r.remotePath(path)
	dir := full[:strings.LastIndex(full, "/")]
	tmpPath := full + ".calvin-write.tmp"

	session, err := r.client.NewSession()
	if err != nil {
		return calvinerr.Wrap(calvinerr.KindRemote, err, "opening SSH session")
	}
	defer session.Close()

	stdin, err := session.StdinPipe()
	if err != nil {
		return calvinerr.Wrap(calvinerr.KindRemote, err, "opening stdin pipe")
	}

	cmd := fmt.Sprintf("mkdir -p %s && cat > %s && mv %s %s",
		shellQuote(dir), shellQuote(tmpPath), shellQuote(tmpPath), shellQuote(full))

	if err := session.Start(cmd); err != nil {
		return calvinerr.Wrap(calvinerr.KindRemote, err, "starting remote write")
	}

	if _, err := stdin.Write(content); err != nil {
		return calvinerr.Wrap(calvinerr.KindRemote, err, "streaming content to remote").WithLocation(path, 0)
	}
	if err := stdin.Close(); err != nil {
		return calvinerr.Wrap(calvinerr.KindRemote, err, "closing remote stdin").WithLocation(path, 0)
	}

	if err := session.Wait(); err != nil {
		return calvinerr.Wrap(calvinerr.KindRemote, err, "remote write failed").WithLocation(path, 0)
	}
	return nil
}

// Read fetches path's raw bytes over a `cat` session, used by the
// conflict resolver's diff view (ContentReader).
func (r *Remote) Read(path string) ([]byte, error) {
	full := r.remotePath(path)

	session, err := r.client.NewSession()
	if err != nil {
		return nil, calvinerr.Wrap(calvinerr.KindRemote, err, "opening SSH session")
	}
	defer session.Close()

	var out strings.Builder
	session.Stdout = &out
	if err := session.Run(fmt.Sprintf("cat %s", shellQuote(full))); err != nil {
		return nil, calvinerr.Wrap(calvinerr.KindRemote, err, "reading remote file").WithLocation(path, 0)
	}
	return []byte(out.String()), nil
}

func (r *Remote) Delete(path string) error {
	full := r.remotePath(path)
	_, err := r.run(fmt.Sprintf("rm -f %s", shellQuote(full)))
	return err
}

// BatchStatus resolves every path's existence and hash in a single
// remote shell pipeline emitting "path\thash" lines (spec section
// 4.9's batch round-trip requirement).
func (r *Remote) BatchStatus(paths []string) (map[string]Status, error) {
	out := make(map[string]Status, len(paths))
	if len(paths) == 0 {
		return out, nil
	}

	var script strings.Builder
	script.WriteString("for p in")
	for _, p := range paths {
		script.WriteString(" " + shellQuote(r.remotePath(p)))
	}
	script.WriteString("; do if [ -e \"$p\" ]; then h=$(sha256sum \"$p\" 2>/dev/null || shasum -a 256 \"$p\"); printf '%s\\t%s\\n' \"$p\" \"$h\"; else printf '%s\\t\\n' \"$p\"; fi; done")

	raw, err := r.run(script.String())
	if err != nil {
		return nil, err
	}

	lineByRemotePath := make(map[string]string, len(paths))
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, "\t")
		if idx < 0 {
			continue
		}
		lineByRemotePath[line[:idx]] = line[idx+1:]
	}

	for _, p := range paths {
		remote := r.remotePath(p)
		hashLine, ok := lineByRemotePath[remote]
		if !ok || hashLine == "" {
			out[p] = Status{Exists: false}
			continue
		}
		fields := strings.Fields(hashLine)
		if len(fields) == 0 {
			out[p] = Status{Exists: true}
			continue
		}
		out[p] = Status{Exists: true, Hash: model.ContentHash("sha256:" + fields[0])}
	}
	return out, nil
}

// ExpandHome resolves a "~/"-prefixed path against the remote user's
// home directory, fetched once via `echo ~` and cached.
func (r *Remote) ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") && path != "~" {
		return path
	}

	r.homeOnce.Do(func() {
		out, err := r.run("echo ~")
		if err != nil {
			r.homeErr = err
			return
		}
		r.homeDir = strings.TrimSpace(out)
	})
	if r.homeErr != nil || r.homeDir == "" {
		return path
	}

	if path == "~" {
		return r.homeDir
	}
	return r.homeDir + "/" + strings.TrimPrefix(path, "~/")
}

func (r *Remote) ListUnder(prefix string) ([]string, error) {
	full := r.remotePath(prefix)
	out, err := r.run(fmt.Sprintf("find %s -type f 2>/dev/null", shellQuote(full)))
	if err != nil {
		return nil, err
	}

	var entries []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entries = append(entries, strings.TrimPrefix(line, r.basePath+"/"))
	}
	return entries, nil
}

var (
	_ Destination   = (*Remote)(nil)
	_ ContentReader = (*Remote)(nil)
)
