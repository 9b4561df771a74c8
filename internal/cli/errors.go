package cli

import "errors"

// Exit codes for the stackpact binary. Failed and blocked runs get distinct
// codes so scripts can tell "fix the config" from "get authorization".
const (
	ExitOK       = 0
	ExitInternal = 1
	ExitFailed   = 2
	ExitBlocked  = 3
)

var (
	// ErrPolicyFailed is returned when a run terminates with policy
	// violations.
	ErrPolicyFailed = errors.New("policy validation failed")

	// ErrGateBlocked is returned when a production apply is blocked by a
	// closed authorization gate.
	ErrGateBlocked = errors.New("production gate closed")
)

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrGateBlocked):
		return ExitBlocked
	case errors.Is(err, ErrPolicyFailed):
		return ExitFailed
	default:
		return ExitInternal
	}
}
