// Package auth delegates credential verification to the host's PAM stack
// and hands an authenticated session over to the user's login shell.
package auth

import (
	"errors"
	"fmt"

	"github.com/msteinert/pam/v2"
)

// Authenticate runs username/password through the named PAM service and
// opens a session on success. The session stays open for the lifetime of
// the process image, which is about to become the user's shell.
func Authenticate(service, username, password string) error {
	if service == "" {
		service = "login"
	}

	tx, err := pam.StartFunc(service, username, func(style pam.Style, msg string) (string, error) {
		switch style {
		case pam.PromptEchoOff:
			return password, nil
		case pam.PromptEchoOn:
			return username, nil
		case pam.ErrorMsg, pam.TextInfo:
			return "", nil
		}
		return "", errors.New("unsupported conversation style")
	})
	if err != nil {
		return fmt.Errorf("auth: start %s: %w", service, err)
	}
	defer func() { _ = tx.End() }()

	if err := tx.Authenticate(0); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := tx.AcctMgmt(0); err != nil {
		return fmt.Errorf("auth: account: %w", err)
	}
	if err := tx.OpenSession(0); err != nil {
		return fmt.Errorf("auth: session: %w", err)
	}
	return nil
}
