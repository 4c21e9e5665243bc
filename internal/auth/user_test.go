package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func writePasswd(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "passwd")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write passwd fixture: %v", err)
	}
	return path
}

func TestShellFromPasswdFindsShell(t *testing.T) {
	path := writePasswd(t, "root:x:0:0:root:/root:/bin/bash\nalice:x:1000:1000:Alice:/home/alice:/usr/bin/zsh\n")

	shell, err := shellFromPasswd(path, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shell != "/usr/bin/zsh" {
		t.Fatalf("expected /usr/bin/zsh, got %q", shell)
	}
}

func TestShellFromPasswdSkipsCommentsAndBlanks(t *testing.T) {
	path := writePasswd(t, "# system accounts\n\nbob:x:1001:1001::/home/bob:/bin/sh\n")

	shell, err := shellFromPasswd(path, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shell != "/bin/sh" {
		t.Fatalf("expected /bin/sh, got %q", shell)
	}
}

func TestShellFromPasswdUnknownUser(t *testing.T) {
	path := writePasswd(t, "root:x:0:0:root:/root:/bin/bash\n")

	if _, err := shellFromPasswd(path, "nobody-here"); err == nil {
		t.Fatalf("expected an error for an unknown user")
	}
}

func TestShellFromPasswdIgnoresShortLines(t *testing.T) {
	path := writePasswd(t, "broken:line\ncarol:x:1002:1002::/home/carol:/bin/fish\n")

	shell, err := shellFromPasswd(path, "carol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shell != "/bin/fish" {
		t.Fatalf("expected /bin/fish, got %q", shell)
	}
}

func TestShellFromPasswdTrimsTrailingWhitespace(t *testing.T) {
	path := writePasswd(t, "dave:x:1003:1003::/home/dave:/bin/bash \n")

	shell, err := shellFromPasswd(path, "dave")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shell != "/bin/bash" {
		t.Fatalf("expected trimmed shell, got %q", shell)
	}
}
