// Where: cli/internal/usecase/deploy/platform.go
// What: Remote platform contract used by the reconciler.
// Why: Keep the management API behind a narrow interface so tests can fake it.
package deploy

import (
	"context"
	"errors"
)

// ErrRemoteNotFound is returned by a Platform when the function does not exist.
var ErrRemoteNotFound = errors.New("remote function not found")

// RemoteFunction is the subset of platform responses the CLI reads.
type RemoteFunction struct {
	Name       string
	Runtime    string
	Arn        string
	Version    string
	CodeSHA256 string
	// Raw holds the untranslated platform response.
	Raw any
}

// CreateInput mirrors the platform's CreateFunction request.
type CreateInput struct {
	Name        string
	Description string
	Handler     string
	Memory      int
	Region      string
	ZipBase64   string
	Publish     bool
	Runtime     string
	Timeout     int
	DryRun      bool
}

// UpdateCodeInput mirrors the platform's UpdateFunctionCode request.
type UpdateCodeInput struct {
	Name      string
	ZipBase64 string
	Publish   bool
}

// Platform is the remote function management API.
type Platform interface {
	GetFunction(ctx context.Context, name string) (RemoteFunction, error)
	CreateFunction(ctx context.Context, in CreateInput) (RemoteFunction, error)
	UpdateFunctionCode(ctx context.Context, in UpdateCodeInput) (RemoteFunction, error)
}
