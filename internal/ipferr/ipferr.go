// Package ipferr defines the IPF engine's fatal error taxonomy as sentinel
// values, following causalgo's fmt.Errorf("...: %w", err) wrapping idiom.
package ipferr

import "errors"

var (
	// ErrShapeMismatch covers seed/DimIndices rank mismatch, seed/margin
	// extent mismatch, and factor extent mismatch on construction.
	ErrShapeMismatch = errors.New("ipf: shape mismatch")

	// ErrInvalidDimIndices covers a missing axis, a duplicated axis within
	// a group, or a duplicated group-set.
	ErrInvalidDimIndices = errors.New("ipf: invalid dim indices")

	// ErrInconsistentOverlap covers margins disagreeing on a shared
	// dimension subset when ForceConsistency is not requested.
	ErrInconsistentOverlap = errors.New("ipf: inconsistent overlapping margins")

	// ErrDegenerateSeed covers a zero seed marginal paired with a non-zero
	// target.
	ErrDegenerateSeed = errors.New("ipf: zero seed marginal with non-zero target")

	// ErrInvalidOption covers an out-of-range engine option (e.g. a negative
	// MaxIter).
	ErrInvalidOption = errors.New("ipf: invalid option")
)
