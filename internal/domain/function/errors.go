// Where: cli/internal/domain/function/errors.go
// What: Error kinds shared by the resolver, reconciler, and commands.
// Why: Let the command layer classify failures with errors.Is.
package function

import "errors"

var (
	// ErrNotFound reports a function name missing from the local definitions.
	ErrNotFound = errors.New("function not found")
	// ErrConfiguration reports fatal local configuration problems such as an
	// unsupported runtime, a missing archive, or malformed override input.
	ErrConfiguration = errors.New("configuration error")
	// ErrCredentialStoreMissing reports an absent local credential or config file.
	ErrCredentialStoreMissing = errors.New("credential store missing")
	// ErrPlatform reports transport or server failures from the remote platform.
	ErrPlatform = errors.New("platform error")
	// ErrProbeUnknown reports that remote existence could not be determined.
	ErrProbeUnknown = errors.New("remote function state unknown")
)
