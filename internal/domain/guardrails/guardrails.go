// Package guardrails verifies the non-negotiable output invariants of the
// segmentation engine: partition completeness, role uniqueness and
// ordering, key-play bounds, and the block-count ceiling. A violation means
// the result must not be passed downstream.
package guardrails

import (
	"errors"
	"fmt"

	"github.com/okian/storyarc/internal/domain/allocate"
	"github.com/okian/storyarc/internal/domain/blocks"
)

// Sentinel kinds for guardrail violations. Callers match with errors.Is.
var (
	ErrPartition    = errors.New("blocks do not partition the moment sequence")
	ErrBlockCount   = errors.New("block count outside allowed range")
	ErrRoleOrdering = errors.New("role ordering violated")
	ErrRoleQuota    = errors.New("role quota exceeded")
	ErrBlowoutArc   = errors.New("three-block arc mismatch")
	ErrKeyPlays     = errors.New("key-play selection out of bounds")
)

// Check validates every §-level output invariant and returns the joined
// violations, or nil. It never mutates the output.
func Check(out blocks.Output) error {
	var errs []error

	if err := checkPartition(out); err != nil {
		errs = append(errs, err)
	}
	if err := checkBlockCount(out); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, checkRoles(out)...)
	errs = append(errs, checkKeyPlays(out)...)

	return errors.Join(errs...)
}

func checkPartition(out blocks.Output) error {
	next := 0
	for i, b := range out.Blocks {
		if b.Index != i {
			return fmt.Errorf("%w: block %d carries index %d", ErrPartition, i, b.Index)
		}
		if b.MomentStart != next {
			return fmt.Errorf("%w: block %d starts at %d, want %d", ErrPartition, i, b.MomentStart, next)
		}
		if b.MomentEnd <= b.MomentStart {
			return fmt.Errorf("%w: block %d is empty", ErrPartition, i)
		}
		next = b.MomentEnd
	}
	if next != out.TotalMoments {
		return fmt.Errorf("%w: blocks cover %d of %d moments", ErrPartition, next, out.TotalMoments)
	}
	return nil
}

func checkBlockCount(out blocks.Output) error {
	count := len(out.Blocks)
	if count != out.BlockCount {
		return fmt.Errorf("%w: block_count %d does not match %d blocks", ErrBlockCount, out.BlockCount, count)
	}
	if count > allocate.MaxBlocks {
		return fmt.Errorf("%w: %d blocks exceeds ceiling %d", ErrBlockCount, count, allocate.MaxBlocks)
	}
	if out.TotalMoments == 0 {
		if count != 0 {
			return fmt.Errorf("%w: %d blocks for empty input", ErrBlockCount, count)
		}
		return nil
	}
	// Tiny inputs cannot reach the floor; otherwise only the three-block
	// blowout arc may undershoot it.
	if count < allocate.MinBlocks && count != 3 && out.TotalMoments >= allocate.MinBlocks {
		return fmt.Errorf("%w: %d blocks below floor %d", ErrBlockCount, count, allocate.MinBlocks)
	}
	return nil
}

func checkRoles(out blocks.Output) []error {
	var errs []error
	if len(out.Blocks) == 0 {
		return nil
	}

	counts := make(map[blocks.Role]int)
	for _, b := range out.Blocks {
		counts[b.Role]++
	}
	for role, c := range counts {
		if role == blocks.RoleUnassigned {
			errs = append(errs, fmt.Errorf("%w: %d unassigned blocks", ErrRoleOrdering, c))
			continue
		}
		if c > 2 {
			errs = append(errs, fmt.Errorf("%w: role %s used %d times", ErrRoleQuota, role, c))
		}
	}

	if len(out.Blocks) == 3 {
		want := []blocks.Role{blocks.RoleSetup, blocks.RoleDecisionPoint, blocks.RoleResolution}
		for i, b := range out.Blocks {
			if b.Role != want[i] {
				errs = append(errs, fmt.Errorf("%w: block %d is %s, want %s", ErrBlowoutArc, i, b.Role, want[i]))
			}
		}
		return errs
	}

	if out.Blocks[0].Role != blocks.RoleSetup {
		errs = append(errs, fmt.Errorf("%w: block 0 is %s, want %s", ErrRoleOrdering, out.Blocks[0].Role, blocks.RoleSetup))
	}
	if counts[blocks.RoleSetup] != 1 {
		errs = append(errs, fmt.Errorf("%w: %s used %d times, want exactly 1", ErrRoleOrdering, blocks.RoleSetup, counts[blocks.RoleSetup]))
	}
	if len(out.Blocks) > 1 {
		last := out.Blocks[len(out.Blocks)-1]
		if last.Role != blocks.RoleResolution {
			errs = append(errs, fmt.Errorf("%w: final block is %s, want %s", ErrRoleOrdering, last.Role, blocks.RoleResolution))
		}
		if counts[blocks.RoleResolution] != 1 {
			errs = append(errs, fmt.Errorf("%w: %s used %d times, want exactly 1", ErrRoleOrdering, blocks.RoleResolution, counts[blocks.RoleResolution]))
		}
	}
	return errs
}

func checkKeyPlays(out blocks.Output) []error {
	var errs []error
	for _, b := range out.Blocks {
		if len(b.PlayIDs) == 0 {
			// nothing to select from; upstream produced a playless span
			continue
		}
		if len(b.KeyPlayIDs) < 1 || len(b.KeyPlayIDs) > blocks.MaxKeyPlays {
			errs = append(errs, fmt.Errorf("%w: block %d selected %d key plays", ErrKeyPlays, b.Index, len(b.KeyPlayIDs)))
			continue
		}
		members := make(map[int]bool, len(b.PlayIDs))
		for _, id := range b.PlayIDs {
			members[id] = true
		}
		for _, id := range b.KeyPlayIDs {
			if !members[id] {
				errs = append(errs, fmt.Errorf("%w: block %d key play %d is not a member play", ErrKeyPlays, b.Index, id))
			}
		}
	}
	return errs
}
