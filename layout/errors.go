package layout

import (
	"fmt"
)

// InvalidStateError reports a modification-model invariant violated at
// construction time. It is a programming or configuration error and is
// never retried.
type InvalidStateError struct {
	Reason string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("Invalid modification state: %s", e.Reason)
}
