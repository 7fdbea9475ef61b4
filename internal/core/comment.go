package core

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a note attached to a file (or a specific line) of a review.
// Comments are cascade-deleted with their review and are never deleted
// individually through the UI; they can only be resolved.
type Comment struct {
	ID         string    `db:"id"`
	ReviewID   string    `db:"review_id"`
	FilePath   string    `db:"file_path"`
	LineNumber *int      `db:"line_number"` // nil means a file-level comment
	Content    string    `db:"content"`
	Resolved   bool      `db:"resolved"`
	CreatedAt  time.Time `db:"created_at"`
}

// NewComment constructs a comment with a fresh id. lineNumber may be nil for
// a file-level comment.
func NewComment(reviewID, filePath string, lineNumber *int, content string) *Comment {
	return &Comment{
		ID:         uuid.NewString(),
		ReviewID:   reviewID,
		FilePath:   filePath,
		LineNumber: lineNumber,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
}

// FileViewRecord marks a file of a review as viewed since its current
// content. At most one record exists per (review, path) pair. Records are
// removed by an explicit toggle or by the sync engine when the file's
// content changed between the old and the new head.
type FileViewRecord struct {
	ReviewID  string    `db:"review_id"`
	FilePath  string    `db:"file_path"`
	CreatedAt time.Time `db:"created_at"`
}
