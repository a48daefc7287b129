// Where: cli/internal/usecase/deploy/probe.go
// What: Three-state remote existence probe with bounded retry.
// Why: Distinguish "absent" from "could not tell" before choosing create or update.
package deploy

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// ProbeState is the observed remote state of a function.
type ProbeState int

const (
	ProbeUnknown ProbeState = iota
	ProbePresent
	ProbeAbsent
)

func (s ProbeState) String() string {
	switch s {
	case ProbePresent:
		return "present"
	case ProbeAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

const (
	defaultProbeAttempts = 3
	defaultProbeBackoff  = 500 * time.Millisecond
)

// sleep waits for d or until ctx ends. Tests swap it out.
var sleep = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// probe asks the platform about name, retrying transient failures with
// exponential backoff. The last error is returned with ProbeUnknown.
func probe(ctx context.Context, platform Platform, name string, attempts int, backoff time.Duration) (ProbeState, error) {
	if attempts <= 0 {
		attempts = defaultProbeAttempts
	}
	if backoff <= 0 {
		backoff = defaultProbeBackoff
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		state, err := probeOnce(ctx, platform, name)
		if state != ProbeUnknown {
			return state, nil
		}
		lastErr = err
		log.Debugf("probe %s attempt %d/%d failed: %v", name, attempt, attempts, err)
		if attempt == attempts {
			break
		}
		if err := sleep(ctx, backoff); err != nil {
			return ProbeUnknown, err
		}
		backoff *= 2
	}
	return ProbeUnknown, lastErr
}

func probeOnce(ctx context.Context, platform Platform, name string) (ProbeState, error) {
	remote, err := platform.GetFunction(ctx, name)
	if err != nil {
		if errors.Is(err, ErrRemoteNotFound) {
			return ProbeAbsent, nil
		}
		if ctx.Err() != nil {
			return ProbeUnknown, ctx.Err()
		}
		return ProbeUnknown, err
	}
	if remote.Name == "" || remote.Name != name {
		return ProbeAbsent, nil
	}
	return ProbePresent, nil
}
