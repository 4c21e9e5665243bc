package auth

import (
	"bufio"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"
)

// fallbackShell is used when the user database carries no shell field.
const fallbackShell = "/bin/sh"

// User is the subset of the system user database a login hand-off needs.
type User struct {
	Name  string
	UID   int
	GID   int
	Home  string
	Shell string
}

// LookupUser resolves name against the system user database. The shell
// field comes from /etc/passwd, which os/user does not expose.
func LookupUser(name string) (*User, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("auth: lookup %s: %w", name, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return nil, fmt.Errorf("auth: uid of %s: %w", name, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return nil, fmt.Errorf("auth: gid of %s: %w", name, err)
	}

	shell, err := shellFromPasswd("/etc/passwd", name)
	if err != nil || shell == "" {
		shell = fallbackShell
	}

	return &User{
		Name:  u.Username,
		UID:   uid,
		GID:   gid,
		Home:  u.HomeDir,
		Shell: shell,
	}, nil
}

// shellFromPasswd scans a passwd-format file for name's shell field.
func shellFromPasswd(path, name string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 7 || fields[0] != name {
			continue
		}
		return strings.TrimSpace(fields[6]), nil
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("auth: %s not in %s", name, path)
}
