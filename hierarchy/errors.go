// SPDX-License-Identifier: MIT

package hierarchy

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/humap/associate"
	"github.com/katalvlaran/humap/sampler"
)

var (
	// ErrOutOfRange indicates an accessor level outside [0, NumLevels()).
	ErrOutOfRange = errors.New("hierarchy: level out of range")

	// ErrUnsupported indicates an accessor without a value at that level:
	// Labels(0), Sigmas and LandmarkIndices of the last level, SparseData of
	// level 0 or of a dense level.
	ErrUnsupported = errors.New("hierarchy: unsupported for this level")

	// ErrLevelTooSmall indicates a landmark target not above the neighbour count.
	ErrLevelTooSmall = errors.New("hierarchy: level too small")

	// ErrNotFitted indicates an accessor call before a successful Fit.
	ErrNotFitted = errors.New("hierarchy: not fitted")

	// ErrInvalidOptions indicates inconsistent builder options.
	ErrInvalidOptions = errors.New("hierarchy: invalid options")

	// ErrLabelMismatch indicates labels whose length differs from the dataset's.
	ErrLabelMismatch = errors.New("hierarchy: label count mismatch")

	// ErrInvalidDistribution is sampler.ErrInvalidDistribution.
	ErrInvalidDistribution = sampler.ErrInvalidDistribution

	// ErrAssociationFailure is associate.ErrAssociationFailure.
	ErrAssociationFailure = associate.ErrAssociationFailure
)

// BuildError reports the level and phase at which a Fit failed.
type BuildError struct {
	Level int
	Phase Phase
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("hierarchy: level %d, phase %s: %v", e.Level, e.Phase, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
