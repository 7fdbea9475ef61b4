package services

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/gitreview/internal/core"
	"github.com/sevigo/gitreview/internal/db"
	"github.com/sevigo/gitreview/internal/event"
	"github.com/sevigo/gitreview/internal/storage"
	"github.com/sevigo/gitreview/internal/syncer"
)

// fakeGit serves branch heads and diffs from fixed maps.
type fakeGit struct {
	heads    map[string]string
	branches []string
	changed  map[string][]string
	diff     *core.Diff
}

func (g *fakeGit) Branches(ctx context.Context) ([]string, error) {
	return g.branches, nil
}

func (g *fakeGit) BranchSHA(ctx context.Context, name string) (string, error) {
	sha, ok := g.heads[name]
	if !ok {
		return "", fmt.Errorf("branch %q: %w", name, core.ErrBranchNotFound)
	}
	return sha, nil
}

func (g *fakeGit) ChangedFiles(ctx context.Context, oldSHA, newSHA string) ([]string, error) {
	return g.changed[oldSHA+".."+newSHA], nil
}

func (g *fakeGit) IsAncestor(ctx context.Context, oldSHA, newSHA string) (bool, error) {
	return true, nil
}

func (g *fakeGit) Diff(ctx context.Context, baseSHA, targetSHA string) (*core.Diff, error) {
	if g.diff == nil {
		return &core.Diff{}, nil
	}
	return g.diff, nil
}

type testEnv struct {
	bus   *event.Bus
	store core.Store
	git   *fakeGit
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database, cleanup, err := db.NewMemoryDatabase()
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return &testEnv{
		bus:   event.NewBus(),
		store: storage.NewStore(database.DB),
		git: &fakeGit{
			heads:    map[string]string{"main": "aaa", "feature": "bbb"},
			branches: []string{"feature", "main"},
		},
	}
}

// nextApp blocks for the next application event on the bus.
func nextApp(t *testing.T, bus *event.Bus) event.AppEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ev, err := bus.Next(ctx)
	require.NoError(t, err, "timed out waiting for event")
	require.Equal(t, event.KindApp, ev.Kind)
	return ev.App
}

func TestReviewServiceLoadPublishesLoadingThenLoaded(t *testing.T) {
	env := newTestEnv(t)
	svc := NewReviewService(env.store, env.git, env.bus, slog.Default())

	require.NoError(t, svc.Handle(context.Background(), event.ReviewsLoad{}))

	loading, ok := nextApp(t, env.bus).(event.ReviewsLoadingState)
	require.True(t, ok)
	assert.Equal(t, event.PhaseLoading, loading.State.Phase)

	loaded, ok := nextApp(t, env.bus).(event.ReviewsLoadingState)
	require.True(t, ok)
	assert.Equal(t, event.PhaseLoaded, loaded.State.Phase)
	assert.Empty(t, loaded.State.Reviews)
}

func TestReviewServiceCreateResolvesHeads(t *testing.T) {
	env := newTestEnv(t)
	svc := NewReviewService(env.store, env.git, env.bus, slog.Default())

	require.NoError(t, svc.Handle(context.Background(), event.ReviewCreateSubmit{
		Data: &event.ReviewCreateData{BaseBranch: "main", TargetBranch: "feature"},
	}))

	created, ok := nextApp(t, env.bus).(event.ReviewCreated)
	require.True(t, ok)
	require.NotNil(t, created.Review.BaseSHA)
	assert.Equal(t, "aaa", *created.Review.BaseSHA)
	require.NotNil(t, created.Review.TargetSHA)
	assert.Equal(t, "bbb", *created.Review.TargetSHA)

	_, ok = nextApp(t, env.bus).(event.ReviewsLoad)
	require.True(t, ok)

	stored, err := env.store.GetReview(context.Background(), created.Review.ID)
	require.NoError(t, err)
	assert.Equal(t, "main", stored.BaseBranch)
}

func TestReviewServiceCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		data event.ReviewCreateData
	}{
		{"empty base", event.ReviewCreateData{BaseBranch: "  ", TargetBranch: "feature"}},
		{"empty target", event.ReviewCreateData{BaseBranch: "main", TargetBranch: ""}},
		{"same branch", event.ReviewCreateData{BaseBranch: "main", TargetBranch: "main"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			svc := NewReviewService(env.store, env.git, env.bus, slog.Default())

			data := tt.data
			require.NoError(t, svc.Handle(context.Background(), event.ReviewCreateSubmit{Data: &data}))

			_, ok := nextApp(t, env.bus).(event.ReviewCreateFailed)
			require.True(t, ok)
		})
	}
}

func TestReviewServiceCreateLeavesSubmittedDataUntouched(t *testing.T) {
	env := newTestEnv(t)
	svc := NewReviewService(env.store, env.git, env.bus, slog.Default())

	data := &event.ReviewCreateData{BaseBranch: " main ", TargetBranch: " feature "}
	require.NoError(t, svc.Handle(context.Background(), event.ReviewCreateSubmit{Data: data}))

	created, ok := nextApp(t, env.bus).(event.ReviewCreated)
	require.True(t, ok)
	assert.Equal(t, "main", created.Review.BaseBranch)
	assert.Equal(t, "feature", created.Review.TargetBranch)

	// The published payload keeps its submitted form.
	assert.Equal(t, " main ", data.BaseBranch)
	assert.Equal(t, " feature ", data.TargetBranch)
}

func TestReviewServiceCreateUnknownBranch(t *testing.T) {
	env := newTestEnv(t)
	svc := NewReviewService(env.store, env.git, env.bus, slog.Default())

	require.NoError(t, svc.Handle(context.Background(), event.ReviewCreateSubmit{
		Data: &event.ReviewCreateData{BaseBranch: "main", TargetBranch: "gone"},
	}))

	failed, ok := nextApp(t, env.bus).(event.ReviewCreateFailed)
	require.True(t, ok)
	assert.Contains(t, failed.Message, "gone")
}

func TestReviewServiceDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := NewReviewService(env.store, env.git, env.bus, slog.Default())
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	require.NoError(t, env.store.CreateReview(ctx, review))

	require.NoError(t, svc.Handle(ctx, event.ReviewDelete{ReviewID: review.ID}))

	deleted, ok := nextApp(t, env.bus).(event.ReviewDeleted)
	require.True(t, ok)
	assert.Equal(t, review.ID, deleted.ReviewID)

	_, err := env.store.GetReview(ctx, review.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestReviewServiceLoadMissing(t *testing.T) {
	env := newTestEnv(t)
	svc := NewReviewService(env.store, env.git, env.bus, slog.Default())

	require.NoError(t, svc.Handle(context.Background(), event.ReviewLoad{ReviewID: "nope"}))

	missing, ok := nextApp(t, env.bus).(event.ReviewNotFound)
	require.True(t, ok)
	assert.Equal(t, "nope", missing.ReviewID)
}

func TestGitServiceBranches(t *testing.T) {
	env := newTestEnv(t)
	svc := NewGitService(env.git, env.bus, slog.Default())

	require.NoError(t, svc.Handle(context.Background(), event.GitBranchesLoad{}))

	loading, ok := nextApp(t, env.bus).(event.GitBranchesLoadingState)
	require.True(t, ok)
	assert.Equal(t, event.PhaseLoading, loading.State.Phase)

	loaded, ok := nextApp(t, env.bus).(event.GitBranchesLoadingState)
	require.True(t, ok)
	assert.Equal(t, event.PhaseLoaded, loaded.State.Phase)
	assert.Equal(t, []string{"feature", "main"}, loaded.State.Branches)
}

func TestGitServiceDiff(t *testing.T) {
	env := newTestEnv(t)
	env.git.diff = &core.Diff{Files: []core.DiffFile{{Path: "a.go", Patch: "+x"}}}
	svc := NewGitService(env.git, env.bus, slog.Default())

	require.NoError(t, svc.Handle(context.Background(), event.GitDiffLoad{
		ReviewID: "r1", BaseSHA: "aaa", TargetSHA: "bbb",
	}))

	loading, ok := nextApp(t, env.bus).(event.GitDiffLoadingState)
	require.True(t, ok)
	assert.Equal(t, event.PhaseLoading, loading.State.Phase)

	loaded, ok := nextApp(t, env.bus).(event.GitDiffLoadingState)
	require.True(t, ok)
	assert.Equal(t, "r1", loaded.ReviewID)
	require.NotNil(t, loaded.State.Diff)
	require.Len(t, loaded.State.Diff.Files, 1)
	assert.Equal(t, "a.go", loaded.State.Diff.Files[0].Path)
}

func TestCommentServiceCreateAndReload(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCommentService(env.store, env.bus, slog.Default())
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	require.NoError(t, env.store.CreateReview(ctx, review))

	require.NoError(t, svc.Handle(ctx, event.CommentCreate{
		ReviewID: review.ID, FilePath: "a.go", Content: "  needs a test  ",
	}))

	created, ok := nextApp(t, env.bus).(event.CommentCreated)
	require.True(t, ok)
	assert.Equal(t, "needs a test", created.Comment.Content)

	_, ok = nextApp(t, env.bus).(event.CommentsLoad)
	require.True(t, ok)
}

func TestCommentServiceRejectsEmptyContent(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCommentService(env.store, env.bus, slog.Default())

	require.NoError(t, svc.Handle(context.Background(), event.CommentCreate{
		ReviewID: "r1", FilePath: "a.go", Content: "   ",
	}))

	_, ok := nextApp(t, env.bus).(event.CommentCreateFailed)
	require.True(t, ok)
}

func TestCommentServiceResolveAllHonorsFileScope(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCommentService(env.store, env.bus, slog.Default())
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	require.NoError(t, env.store.CreateReview(ctx, review))
	require.NoError(t, env.store.CreateComment(ctx, core.NewComment(review.ID, "a.go", nil, "scoped")))
	require.NoError(t, env.store.CreateComment(ctx, core.NewComment(review.ID, "b.go", nil, "untouched")))

	require.NoError(t, svc.Handle(ctx, event.CommentResolveAll{ReviewID: review.ID, FilePath: "a.go"}))
	_, ok := nextApp(t, env.bus).(event.CommentsLoad)
	require.True(t, ok)

	resolved, err := env.store.ListFileComments(ctx, review.ID, "a.go")
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.True(t, resolved[0].Resolved)

	other, err := env.store.ListFileComments(ctx, review.ID, "b.go")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.False(t, other[0].Resolved)
}

func TestFileViewServiceToggle(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFileViewService(env.store, env.bus, slog.Default())
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	require.NoError(t, env.store.CreateReview(ctx, review))

	// First toggle marks the file viewed.
	require.NoError(t, svc.Handle(ctx, event.FileViewToggle{ReviewID: review.ID, FilePath: "a.go"}))
	_, ok := nextApp(t, env.bus).(event.FileViewsLoad)
	require.True(t, ok)

	views, err := env.store.ListFileViews(ctx, review.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)

	// Second toggle clears it.
	require.NoError(t, svc.Handle(ctx, event.FileViewToggle{ReviewID: review.ID, FilePath: "a.go"}))
	_, ok = nextApp(t, env.bus).(event.FileViewsLoad)
	require.True(t, ok)

	views, err = env.store.ListFileViews(ctx, review.ID)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestSyncServiceBranchSweepDetectsDrift(t *testing.T) {
	env := newTestEnv(t)
	engine := syncer.NewEngine(env.store, env.git, slog.Default())
	svc := NewSyncService(engine, env.bus, slog.Default())
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	oldSHA := "old"
	review.BaseSHA = &oldSHA
	targetSHA := "bbb"
	review.TargetSHA = &targetSHA
	require.NoError(t, env.store.CreateReview(ctx, review))

	require.NoError(t, svc.Handle(ctx, event.BranchStatusCheck{}))
	_, ok := nextApp(t, env.bus).(event.ReviewsLoad)
	require.True(t, ok)

	got, err := env.store.GetReview(ctx, review.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BaseSHAChanged)
	assert.Equal(t, "aaa", *got.BaseSHAChanged)
	assert.Nil(t, got.TargetSHAChanged)
}

func TestSyncServiceRefreshApply(t *testing.T) {
	env := newTestEnv(t)
	env.git.changed = map[string][]string{"old..aaa": {"a.go"}}
	engine := syncer.NewEngine(env.store, env.git, slog.Default())
	svc := NewSyncService(engine, env.bus, slog.Default())
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	oldSHA := "old"
	review.BaseSHA = &oldSHA
	targetSHA := "bbb"
	review.TargetSHA = &targetSHA
	require.NoError(t, env.store.CreateReview(ctx, review))
	newHead := "aaa"
	require.NoError(t, env.store.UpdateBranchStatus(ctx, review.ID, core.BranchStatus{
		BaseSHAChanged: &newHead,
	}))

	require.NoError(t, svc.Handle(ctx, event.RefreshApply{
		ReviewID: review.ID,
		Sides:    []core.RefreshSide{core.SideBase},
	}))

	applied, ok := nextApp(t, env.bus).(event.RefreshApplied)
	require.True(t, ok)
	assert.Equal(t, core.SideBase, applied.Side)

	_, ok = nextApp(t, env.bus).(event.ReviewLoad)
	require.True(t, ok)
	_, ok = nextApp(t, env.bus).(event.FileViewsLoad)
	require.True(t, ok)

	got, err := env.store.GetReview(ctx, review.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BaseSHA)
	assert.Equal(t, "aaa", *got.BaseSHA)
}

func TestSyncServiceRefreshFailureIsPerSide(t *testing.T) {
	env := newTestEnv(t)
	engine := syncer.NewEngine(env.store, env.git, slog.Default())
	svc := NewSyncService(engine, env.bus, slog.Default())
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	require.NoError(t, env.store.CreateReview(ctx, review))

	// No pending change recorded, so the refresh must fail.
	require.NoError(t, svc.Handle(ctx, event.RefreshApply{
		ReviewID: review.ID,
		Sides:    []core.RefreshSide{core.SideTarget},
	}))

	failed, ok := nextApp(t, env.bus).(event.RefreshFailed)
	require.True(t, ok)
	assert.Equal(t, core.SideTarget, failed.Side)
}

func TestSyncServiceDuplicate(t *testing.T) {
	env := newTestEnv(t)
	engine := syncer.NewEngine(env.store, env.git, slog.Default())
	svc := NewSyncService(engine, env.bus, slog.Default())
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	require.NoError(t, env.store.CreateReview(ctx, review))

	require.NoError(t, svc.Handle(ctx, event.ReviewDuplicate{ReviewID: review.ID}))

	dup, ok := nextApp(t, env.bus).(event.ReviewDuplicated)
	require.True(t, ok)
	assert.NotEqual(t, review.ID, dup.Review.ID)

	_, ok = nextApp(t, env.bus).(event.ReviewsLoad)
	require.True(t, ok)
}
