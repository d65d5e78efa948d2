package ezkl

import (
	"fmt"
	"strings"
)

// ToolError reports a non-zero exit from the proving engine. The stderr
// excerpt is the engine's own diagnostic, bounded so a verbose panic cannot
// flood logs.
type ToolError struct {
	Stage    string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("ezkl %s failed with exit code %d", e.Stage, e.ExitCode)
	}
	return fmt.Sprintf("ezkl %s failed with exit code %d: %s", e.Stage, e.ExitCode, e.Stderr)
}

// OutputError reports an engine run that exited zero but did not leave the
// artifact it promised. Kept distinct from ToolError because it signals a
// broken tool contract, not a legitimate proving failure.
type OutputError struct {
	Stage   string
	Missing []string
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("ezkl %s reported success but did not produce: %s",
		e.Stage, strings.Join(e.Missing, ", "))
}
