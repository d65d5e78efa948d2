package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhoshcheemala/zkcredit/artifacts"
)

// MissingSharedError lists the shared artifacts absent when a per-subject run
// was requested. No stage executes when this is returned.
type MissingSharedError struct {
	Missing []artifacts.Name
}

func (e *MissingSharedError) Error() string {
	names := make([]string, len(e.Missing))
	for i, n := range e.Missing {
		names[i] = string(n)
	}
	return fmt.Sprintf("shared circuit artifacts missing (run setup-common first): %s",
		strings.Join(names, ", "))
}

// ErrMissingSubjectInput means the subject directory has no input record.
var ErrMissingSubjectInput = errors.New("subject input file not found")

// VerificationError marks a proof that was produced but failed local
// verification. The proof file is retained for forensic replay.
type VerificationError struct {
	Subject string
	Err     error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("proof for %s failed verification: %v", e.Subject, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }
