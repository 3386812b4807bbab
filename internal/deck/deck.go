// Package deck assigns evaluation identities and maps them to workspace
// directories. Each evaluation owns one deck directory; the directory name is
// the join key between the in-memory evaluation record and the solver
// artifacts on disk.
package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sobench/sobench/internal/model"
)

// Policy selects how evaluation ids are issued.
type Policy int

const (
	// Sequential issues ids from a per-instance counter starting at 1.
	Sequential Policy = iota
	// Explicit requires the caller to supply a positive id on every call,
	// used by population-based callers that manage parallel evaluations.
	Explicit
)

// InvalidIdentityError reports identity misuse: a non-positive explicit id or
// mixing of identity policies on one instance.
type InvalidIdentityError struct {
	Reason string
}

func (e *InvalidIdentityError) Error() string {
	return "invalid evaluation identity: " + e.Reason
}

func (e *InvalidIdentityError) Is(target error) bool {
	_, ok := target.(*InvalidIdentityError)
	return ok
}

// Identity issues evaluation ids under one policy. The counter is owned by
// the problem instance that creates it, never shared across instances.
type Identity struct {
	mu     sync.Mutex
	policy Policy
	next   int
}

// NewIdentity creates an identity source. Sequential counters start at 1.
func NewIdentity(policy Policy) *Identity {
	return &Identity{policy: policy, next: 1}
}

// Policy returns the identity policy in force.
func (id *Identity) Policy() Policy {
	return id.policy
}

// Assign returns the evaluation id for the next accepted evaluation. Under
// Sequential the explicit argument must be zero; under Explicit it must be
// positive.
func (id *Identity) Assign(explicit int) (int, error) {
	id.mu.Lock()
	defer id.mu.Unlock()

	switch id.policy {
	case Sequential:
		if explicit != 0 {
			return 0, &InvalidIdentityError{Reason: "explicit id supplied to a sequential-id instance"}
		}
		n := id.next
		id.next++
		return n, nil
	case Explicit:
		if explicit <= 0 {
			return 0, &InvalidIdentityError{Reason: fmt.Sprintf("explicit id must be positive, got %d", explicit)}
		}
		return explicit, nil
	default:
		return 0, &InvalidIdentityError{Reason: "unknown identity policy"}
	}
}

// Name returns the deterministic deck directory name for an evaluation.
func Name(family model.Family, id int) string {
	return fmt.Sprintf("%s_deck%d", strings.ToLower(family.String()), id)
}

// Path returns the deck directory path under baseDir without creating it.
func Path(baseDir string, family model.Family, id int) string {
	return filepath.Join(baseDir, Name(family, id))
}

// Prepare creates the deck directory for an evaluation and returns its path.
func Prepare(baseDir string, family model.Family, id int) (string, error) {
	dir := Path(baseDir, family, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create deck directory: %w", err)
	}
	return dir, nil
}
