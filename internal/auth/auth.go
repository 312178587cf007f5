// Package auth is the authentication gate that runs before any policy
// evaluation. Identity and password are presumed valid; only MFA gates access.
package auth

import (
	"crypto/subtle"

	"github.com/ppiankov/ztbench/internal/model"
)

// ExpectedMFACode is the one-time code every simulated device accepts.
const ExpectedMFACode = model.DefaultMFACode

// Authenticate reports whether creds pass the gate.
func Authenticate(creds model.Credentials, mfaEnabled bool) bool {
	if !mfaEnabled {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(creds.MFACode), []byte(ExpectedMFACode)) == 1
}
