package core

import "context"

// BranchStatus carries the result of probing a review's branches. Nil fields
// leave the stored value untouched, mirroring the partial update the probe
// performs.
type BranchStatus struct {
	BaseSHAChanged   *string
	TargetSHAChanged *string
	BaseExists       *bool
	TargetExists     *bool
}

// Store is the persistence collaborator. Deleting a review cascades to its
// comments and file-view records.
type Store interface {
	CreateReview(ctx context.Context, review *Review) error
	GetReview(ctx context.Context, id string) (*Review, error)
	ListReviews(ctx context.Context) ([]*Review, error)
	DeleteReview(ctx context.Context, id string) error

	// UpdateBranchStatus records probe results without touching the stored SHAs.
	// A pending marker matching the stored SHA is dropped as already accepted.
	UpdateBranchStatus(ctx context.Context, id string, status BranchStatus) error
	// AcceptRefresh copies the pending head into the stored SHA for one side
	// and clears the pending marker.
	AcceptRefresh(ctx context.Context, id string, side RefreshSide, newSHA string) error

	CreateComment(ctx context.Context, comment *Comment) error
	ListComments(ctx context.Context, reviewID string) ([]*Comment, error)
	ListFileComments(ctx context.Context, reviewID, filePath string) ([]*Comment, error)
	ResolveComment(ctx context.Context, id string) error
	ResolveAllComments(ctx context.Context, reviewID string) error
	ResolveAllFileComments(ctx context.Context, reviewID, filePath string) error
	CopyComments(ctx context.Context, fromReviewID, toReviewID string) error

	CreateFileView(ctx context.Context, record *FileViewRecord) error
	DeleteFileView(ctx context.Context, reviewID, filePath string) error
	DeleteFileViews(ctx context.Context, reviewID string, filePaths []string) (int64, error)
	ListFileViews(ctx context.Context, reviewID string) ([]*FileViewRecord, error)
}

// DiffFile is one file of a diff with its rendered patch text.
type DiffFile struct {
	Path  string
	Patch string
}

// Diff is the structured diff between two commits, sorted by path.
type Diff struct {
	Files []DiffFile
}

// Git is the collaborator for all repository questions the core asks.
type Git interface {
	// Branches lists local branch names, sorted.
	Branches(ctx context.Context) ([]string, error)
	// BranchSHA resolves a branch name to its head commit SHA. Returns
	// ErrBranchNotFound when the branch does not resolve.
	BranchSHA(ctx context.Context, name string) (string, error)
	// ChangedFiles lists the paths that differ between two commits
	// (added, modified and deleted).
	ChangedFiles(ctx context.Context, oldSHA, newSHA string) ([]string, error)
	// IsAncestor reports whether old is an ancestor of new in the commit graph.
	IsAncestor(ctx context.Context, oldSHA, newSHA string) (bool, error)
	// Diff computes the per-file patch between two commits.
	Diff(ctx context.Context, baseSHA, targetSHA string) (*Diff, error)
}
