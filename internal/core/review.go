// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"time"

	"github.com/google/uuid"
)

// RefreshSide identifies which branch of a review an operation targets.
type RefreshSide string

const (
	SideBase   RefreshSide = "base"
	SideTarget RefreshSide = "target"
)

// Review is a persisted comparison between a base branch and a target branch.
// The SHA fields record the heads as of the last synchronization; the
// *SHAChanged fields hold a newly observed head that the user has not yet
// accepted. The persistence layer owns the source of truth; everything the
// core holds is a copy.
type Review struct {
	ID           string `db:"id"`
	BaseBranch   string `db:"base_branch"`
	TargetBranch string `db:"target_branch"`

	BaseSHA   *string `db:"base_sha"`
	TargetSHA *string `db:"target_sha"`

	// Set by a branch probe when the live head differs from the stored SHA.
	// Cleared exactly when a refresh is accepted and the value is copied
	// into the corresponding SHA field.
	BaseSHAChanged   *string `db:"base_sha_changed"`
	TargetSHAChanged *string `db:"target_sha_changed"`

	// Nullable: nil means the branch has never been probed.
	BaseBranchExists   *bool `db:"base_branch_exists"`
	TargetBranchExists *bool `db:"target_branch_exists"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewReview constructs a review bound to the given branch pair with a fresh id.
func NewReview(baseBranch, targetBranch string) *Review {
	now := time.Now().UTC()
	return &Review{
		ID:           uuid.NewString(),
		BaseBranch:   baseBranch,
		TargetBranch: targetBranch,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Branch returns the branch name for the given side.
func (r *Review) Branch(side RefreshSide) string {
	if side == SideBase {
		return r.BaseBranch
	}
	return r.TargetBranch
}

// StoredSHA returns the last-synchronized head for the given side, or nil.
func (r *Review) StoredSHA(side RefreshSide) *string {
	if side == SideBase {
		return r.BaseSHA
	}
	return r.TargetSHA
}

// PendingSHA returns the detected-but-unaccepted head for the given side, or nil.
func (r *Review) PendingSHA(side RefreshSide) *string {
	if side == SideBase {
		return r.BaseSHAChanged
	}
	return r.TargetSHAChanged
}

// BranchExists reports the last-probed existence of the branch on the given side.
func (r *Review) BranchExists(side RefreshSide) *bool {
	if side == SideBase {
		return r.BaseBranchExists
	}
	return r.TargetBranchExists
}

// HasDrift reports whether either side has a pending head change.
func (r *Review) HasDrift() bool {
	return r.BaseSHAChanged != nil || r.TargetSHAChanged != nil
}

// Title renders the review's branch pair for list display.
func (r *Review) Title() string {
	return r.BaseBranch + " → " + r.TargetBranch
}
