package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// LoginShell drops privileges to the user and replaces the current process
// image with their login shell. It only returns on error.
//
// Order matters: groups before uid, because after Setuid the process no
// longer has the privilege to change its groups.
func LoginShell(u *User) error {
	if u == nil {
		return fmt.Errorf("auth: no user")
	}
	shell := u.Shell
	if shell == "" {
		shell = fallbackShell
	}

	if err := unix.Setgid(u.GID); err != nil {
		return fmt.Errorf("auth: setgid %d: %w", u.GID, err)
	}
	if err := unix.Setuid(u.UID); err != nil {
		return fmt.Errorf("auth: setuid %d: %w", u.UID, err)
	}
	if err := os.Chdir(u.Home); err != nil {
		// A missing home directory should not block the login.
		_ = os.Chdir("/")
	}

	env := append(sanitizedEnv(),
		"USER="+u.Name,
		"LOGNAME="+u.Name,
		"HOME="+u.Home,
		"SHELL="+shell,
	)

	// argv[0] gets the historic "-" prefix so the shell initializes as a
	// login shell.
	argv := []string{"-" + filepath.Base(shell)}
	if err := unix.Exec(shell, argv, env); err != nil {
		return fmt.Errorf("auth: exec %s: %w", shell, err)
	}
	return nil
}

// sanitizedEnv keeps only the variables a fresh login session should
// inherit from the login manager.
func sanitizedEnv() []string {
	var env []string
	for _, key := range []string{"TERM", "PATH", "LANG"} {
		if v, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+v)
		}
	}
	return env
}
