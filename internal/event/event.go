// Package event defines the application's event union and the bus that
// sequences input, timer and business-logic events for the dispatch loop.
package event

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/gitreview/internal/core"
)

// Kind discriminates the event union.
type Kind int

const (
	// KindTick is emitted on a regular schedule by the timer source.
	KindTick Kind = iota
	// KindKey carries raw terminal input.
	KindKey
	// KindApp carries an application-level event.
	KindApp
)

// Event is the tagged union flowing through the bus. Exactly one payload
// field is meaningful, selected by Kind. App payloads are immutable once
// published and may be inspected by multiple consumers without copying.
type Event struct {
	Kind Kind
	Key  tea.KeyMsg
	App  AppEvent
}

// Tick constructs a timer event.
func Tick() *Event { return &Event{Kind: KindTick} }

// Key constructs an input event from a terminal key message.
func Key(msg tea.KeyMsg) *Event { return &Event{Kind: KindKey, Key: msg} }

// App constructs an application event.
func App(ev AppEvent) *Event { return &Event{Kind: KindApp, App: ev} }

// AppEvent is the closed set of application-level events. Views and services
// type-switch on the concrete variants; unmatched variants are ignored.
type AppEvent interface {
	appEvent()
}

// Phase describes the lifecycle of an asynchronous load.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseError
)

// ReviewsState is the loading state of the review list.
type ReviewsState struct {
	Phase   Phase
	Reviews []*core.Review
	Err     string
}

// BranchesState is the loading state of the local branch list.
type BranchesState struct {
	Phase    Phase
	Branches []string
	Err      string
}

// DiffState is the loading state of a review's diff.
type DiffState struct {
	Phase Phase
	Diff  *core.Diff
	Err   string
}

// CommentsState is the loading state of a comment list.
type CommentsState struct {
	Phase    Phase
	Comments []*core.Comment
	Err      string
}

// KeyBinding describes one key of a view for the help modal.
type KeyBinding struct {
	Key         string
	Description string
}

// RefreshInfo describes one pending head change. Rebase is true when the new
// head does not descend from the old one, which means history was rewritten
// and accepting the refresh deserves a stronger warning.
type RefreshInfo struct {
	Side    core.RefreshSide
	OldSHA  string
	NewSHA  string
	Rebase  bool
	Missing bool
}

// ReviewCreateData is the submitted review-create form.
type ReviewCreateData struct {
	BaseBranch   string
	TargetBranch string
}

// Application lifecycle.
type (
	// QuitRequested terminates the dispatch loop in the global phase.
	QuitRequested struct{}
	// ViewCloseRequested pops the top view in the global phase.
	ViewCloseRequested struct{}
	// ErrorOccurred surfaces a failure as a dismissible message.
	ErrorOccurred struct{ Message string }
)

// Review list and lifecycle.
type (
	ReviewsLoad         struct{}
	ReviewsLoading      struct{}
	ReviewsLoadingState struct{ State ReviewsState }

	ReviewCreateOpen   struct{}
	ReviewCreateSubmit struct{ Data *ReviewCreateData }
	ReviewCreated      struct{ Review *core.Review }
	ReviewCreateFailed struct{ Message string }

	ReviewDeleteConfirm struct{ ReviewID string }
	ReviewDelete        struct{ ReviewID string }
	ReviewDeleted       struct{ ReviewID string }
	ReviewDeleteFailed  struct {
		ReviewID string
		Message  string
	}

	ReviewDetailsOpen struct{ ReviewID string }
	ReviewLoad        struct{ ReviewID string }
	ReviewLoaded      struct{ Review *core.Review }
	ReviewNotFound    struct{ ReviewID string }
)

// Git collaborator loading.
type (
	GitBranchesLoad         struct{}
	GitBranchesLoading      struct{}
	GitBranchesLoadingState struct{ State BranchesState }

	GitDiffLoad struct {
		ReviewID  string
		BaseSHA   string
		TargetSHA string
	}
	GitDiffLoading struct {
		ReviewID  string
		BaseSHA   string
		TargetSHA string
	}
	GitDiffLoadingState struct {
		ReviewID string
		State    DiffState
	}
)

// File view markers.
type (
	FileViewToggle struct {
		ReviewID string
		FilePath string
	}
	FileViewsLoad   struct{ ReviewID string }
	FileViewsLoaded struct {
		ReviewID string
		Records  []*core.FileViewRecord
	}
)

// Comments.
type (
	CommentsOpen struct {
		ReviewID   string
		FilePath   string
		LineNumber *int
	}
	CommentsLoad struct {
		ReviewID string
		FilePath string
	}
	CommentsLoadingState struct {
		ReviewID string
		FilePath string
		State    CommentsState
	}
	CommentCreate struct {
		ReviewID   string
		FilePath   string
		LineNumber *int
		Content    string
	}
	CommentCreated      struct{ Comment *core.Comment }
	CommentCreateFailed struct{ Message string }
	CommentResolve      struct {
		CommentID string
		ReviewID  string
		FilePath  string
	}
	CommentResolveAll struct {
		ReviewID string
		FilePath string
	}
)

// Synchronization.
type (
	// BranchStatusCheck triggers a probe of every review's branches.
	BranchStatusCheck struct{}

	RefreshOpen struct{ ReviewID string }
	// RefreshInfoLoaded carries the pending sides of a review with their
	// history classification for the refresh chooser.
	RefreshInfoLoaded struct {
		ReviewID string
		Infos    []RefreshInfo
	}
	RefreshApply struct {
		ReviewID string
		Sides    []core.RefreshSide
	}
	RefreshApplied struct {
		ReviewID string
		Side     core.RefreshSide
	}
	RefreshFailed struct {
		ReviewID string
		Side     core.RefreshSide
		Message  string
	}

	ReviewDuplicate  struct{ ReviewID string }
	ReviewDuplicated struct{ Review *core.Review }
)

// Help.
type (
	HelpOpen struct{ Bindings []KeyBinding }
)

func (QuitRequested) appEvent()       {}
func (ViewCloseRequested) appEvent()  {}
func (ErrorOccurred) appEvent()       {}
func (ReviewsLoad) appEvent()         {}
func (ReviewsLoading) appEvent()      {}
func (ReviewsLoadingState) appEvent() {}
func (ReviewCreateOpen) appEvent()    {}
func (ReviewCreateSubmit) appEvent()  {}
func (ReviewCreated) appEvent()       {}
func (ReviewCreateFailed) appEvent()  {}
func (ReviewDeleteConfirm) appEvent() {}
func (ReviewDelete) appEvent()        {}
func (ReviewDeleted) appEvent()       {}
func (ReviewDeleteFailed) appEvent()  {}
func (ReviewDetailsOpen) appEvent()   {}
func (ReviewLoad) appEvent()          {}
func (ReviewLoaded) appEvent()        {}
func (ReviewNotFound) appEvent()      {}

func (GitBranchesLoad) appEvent()         {}
func (GitBranchesLoading) appEvent()      {}
func (GitBranchesLoadingState) appEvent() {}
func (GitDiffLoad) appEvent()             {}
func (GitDiffLoading) appEvent()          {}
func (GitDiffLoadingState) appEvent()     {}

func (FileViewToggle) appEvent()  {}
func (FileViewsLoad) appEvent()   {}
func (FileViewsLoaded) appEvent() {}

func (CommentsOpen) appEvent()         {}
func (CommentsLoad) appEvent()         {}
func (CommentsLoadingState) appEvent() {}
func (CommentCreate) appEvent()        {}
func (CommentCreated) appEvent()       {}
func (CommentCreateFailed) appEvent()  {}
func (CommentResolve) appEvent()       {}
func (CommentResolveAll) appEvent()    {}

func (BranchStatusCheck) appEvent() {}
func (RefreshOpen) appEvent()       {}
func (RefreshInfoLoaded) appEvent() {}
func (RefreshApply) appEvent()      {}
func (RefreshApplied) appEvent()    {}
func (RefreshFailed) appEvent()     {}
func (ReviewDuplicate) appEvent()   {}
func (ReviewDuplicated) appEvent()  {}
func (HelpOpen) appEvent()          {}
