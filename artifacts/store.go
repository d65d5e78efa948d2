package artifacts

// Package artifacts maps logical artifact names to filesystem locations. Two
// scopes exist: Shared holds the circuit artifacts produced once per model,
// Subject holds everything produced for a single address. The store is pure
// path and file bookkeeping; it never invokes the proving engine.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Scope selects which root a logical name resolves under.
type Scope int

const (
	Shared Scope = iota
	Subject
)

// Name is a logical artifact name. The value doubles as the on-disk filename
// relative to its scope root.
type Name string

const (
	CompiledCircuit Name = "model.compiled"
	Settings        Name = "settings.json"
	ProvingKey      Name = "pk.key"
	VerificationKey Name = "vk.key"
	SRS             Name = "kzg.srs"

	SubjectInput Name = "subject.json"
	CircuitInput Name = "input.json"
	Witness      Name = "witness.json"
	Proof        Name = "proof.json"
	Metadata     Name = "metadata.json"

	VerifierContract Name = "contract/Halo2Verifier.sol"
	Calldata         Name = "contract/calldata.json"
)

// SharedSet is every artifact the common phase must have produced before a
// per-subject run may start.
var SharedSet = []Name{CompiledCircuit, Settings, ProvingKey, VerificationKey, SRS}

// ErrSubjectRequired is returned when a subject-scoped name is resolved
// without a subject id.
var ErrSubjectRequired = errors.New("artifacts: subject-scoped name requires a subject id")

// Store resolves logical names against configured shared and subject roots.
type Store struct {
	sharedRoot   string
	subjectsRoot string
}

func NewStore(sharedRoot, subjectsRoot string) *Store {
	return &Store{sharedRoot: sharedRoot, subjectsRoot: subjectsRoot}
}

func (s *Store) SharedDir() string { return s.sharedRoot }

// SubjectDir returns the directory owned by one subject. Addresses are
// normalized (lowercase, no 0x prefix) so the same subject always maps to the
// same directory regardless of how the caller spelled the address.
func (s *Store) SubjectDir(subjectID string) string {
	return filepath.Join(s.subjectsRoot, normalizeID(subjectID))
}

// RegistryDir holds address-keyed metadata copies for downstream lookups.
func (s *Store) RegistryDir() string {
	return filepath.Join(s.subjectsRoot, "registry")
}

// Resolve maps a logical name to a concrete path. Deterministic: the same
// inputs always yield the same location.
func (s *Store) Resolve(scope Scope, name Name, subjectID string) (string, error) {
	switch scope {
	case Shared:
		return filepath.Join(s.sharedRoot, filepath.FromSlash(string(name))), nil
	case Subject:
		if subjectID == "" {
			return "", ErrSubjectRequired
		}
		return filepath.Join(s.SubjectDir(subjectID), filepath.FromSlash(string(name))), nil
	default:
		return "", fmt.Errorf("artifacts: unknown scope %d", scope)
	}
}

// Exists reports whether the artifact file is present. Directories do not
// count: a half-created contract dir must not satisfy an existence gate.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// EnsureDir creates the parent directories of an artifact location.
// Idempotent.
func (s *Store) EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// Copy duplicates src to dst, creating parent directories as needed. Used to
// stage shared artifacts into a subject's scope.
func (s *Store) Copy(src, dst string) error {
	if err := s.EnsureDir(dst); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	return out.Sync()
}

// MissingShared lists the shared artifacts that are not on disk yet. Empty
// means the common phase is complete.
func (s *Store) MissingShared() []Name {
	var missing []Name
	for _, name := range SharedSet {
		path, _ := s.Resolve(Shared, name, "")
		if !s.Exists(path) {
			missing = append(missing, name)
		}
	}
	return missing
}

func normalizeID(subjectID string) string {
	return strings.TrimPrefix(strings.ToLower(subjectID), "0x")
}
