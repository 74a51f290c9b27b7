package document

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Sentinel error kinds per §7. Callers use errors.Is against these.
var (
	// ErrInvariantViolation marks a programming error: slot collision,
	// orphan node, a Connection referencing a node that no longer exists.
	// It is never expected in a correctly-driven document; see Assert.
	ErrInvariantViolation = errors.New("document: invariant violation")

	ErrNotFound      = errors.New("document: not found")
	ErrSlotOccupied  = errors.New("document: slot occupied")
	ErrDeviceUnavailable = errors.New("document: device unavailable")
)

// Debug toggles whether Assert panics (debug builds) or only logs
// (release), matching §7's InvariantViolation handling: "must assert and
// abort in debug, log in release." Generalizes the teacher's
// DefaultErrorHandler/PanicErrorHandler pair (errors.go) from two
// concrete handler types into one policy switch.
var Debug = false

var log = logrus.WithField("component", "document")

// Assert reports cond as an invariant violation when false. In a Debug
// build it panics; otherwise it logs at Error level and returns the
// violation so callers can decide whether to proceed.
func Assert(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	err := fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
	if Debug {
		panic(err)
	}
	log.Error(err)
	return err
}
