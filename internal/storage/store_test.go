package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/gitreview/internal/core"
	"github.com/sevigo/gitreview/internal/db"
)

func newTestStore(t *testing.T) core.Store {
	t.Helper()
	conn, cleanup, err := db.NewMemoryDatabase()
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return NewStore(conn.DB)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestReviewRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	review.BaseSHA = strPtr("aaa111")
	review.TargetSHA = strPtr("bbb222")
	require.NoError(t, store.CreateReview(ctx, review))

	got, err := store.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "main", got.BaseBranch)
	assert.Equal(t, "feature", got.TargetBranch)
	require.NotNil(t, got.BaseSHA)
	assert.Equal(t, "aaa111", *got.BaseSHA)
	assert.Nil(t, got.BaseSHAChanged)
	assert.Nil(t, got.BaseBranchExists)
}

func TestGetReviewNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetReview(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListReviewsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := core.NewReview("main", "feature-1")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := core.NewReview("main", "feature-2")
	require.NoError(t, store.CreateReview(ctx, older))
	require.NoError(t, store.CreateReview(ctx, newer))

	reviews, err := store.ListReviews(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, newer.ID, reviews[0].ID)
	assert.Equal(t, older.ID, reviews[1].ID)
}

func TestUpdateBranchStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	review.BaseSHA = strPtr("aaa111")
	review.TargetSHA = strPtr("bbb222")
	require.NoError(t, store.CreateReview(ctx, review))

	exists := true
	require.NoError(t, store.UpdateBranchStatus(ctx, review.ID, core.BranchStatus{
		TargetSHAChanged: strPtr("ccc333"),
		BaseExists:       &exists,
		TargetExists:     &exists,
	}))

	got, err := store.GetReview(ctx, review.ID)
	require.NoError(t, err)
	// Stored SHAs are untouched by a probe.
	assert.Equal(t, "aaa111", *got.BaseSHA)
	assert.Equal(t, "bbb222", *got.TargetSHA)
	require.NotNil(t, got.TargetSHAChanged)
	assert.Equal(t, "ccc333", *got.TargetSHAChanged)
	assert.Nil(t, got.BaseSHAChanged)
	require.NotNil(t, got.TargetBranchExists)
	assert.True(t, *got.TargetBranchExists)
}

func TestUpdateBranchStatusDropsAcceptedMarker(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	review.BaseSHA = strPtr("aaa111")
	review.TargetSHA = strPtr("bbb222")
	require.NoError(t, store.CreateReview(ctx, review))
	require.NoError(t, store.UpdateBranchStatus(ctx, review.ID, core.BranchStatus{
		BaseSHAChanged: strPtr("ccc333"),
	}))

	// A refresh lands between a probe's read and its write.
	require.NoError(t, store.AcceptRefresh(ctx, review.ID, core.SideBase, "ccc333"))
	require.NoError(t, store.UpdateBranchStatus(ctx, review.ID, core.BranchStatus{
		BaseSHAChanged: strPtr("ccc333"),
	}))

	got, err := store.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Nil(t, got.BaseSHAChanged, "marker for the already accepted head must not come back")

	// Genuine drift past the accepted head is still recorded.
	require.NoError(t, store.UpdateBranchStatus(ctx, review.ID, core.BranchStatus{
		BaseSHAChanged: strPtr("ddd444"),
	}))
	got, err = store.GetReview(ctx, review.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BaseSHAChanged)
	assert.Equal(t, "ddd444", *got.BaseSHAChanged)
}

func TestAcceptRefresh(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	review.TargetSHA = strPtr("bbb222")
	require.NoError(t, store.CreateReview(ctx, review))
	require.NoError(t, store.UpdateBranchStatus(ctx, review.ID, core.BranchStatus{
		TargetSHAChanged: strPtr("ccc333"),
	}))

	require.NoError(t, store.AcceptRefresh(ctx, review.ID, core.SideTarget, "ccc333"))

	got, err := store.GetReview(ctx, review.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TargetSHA)
	assert.Equal(t, "ccc333", *got.TargetSHA)
	assert.Nil(t, got.TargetSHAChanged)
}

func TestDeleteReviewCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	require.NoError(t, store.CreateReview(ctx, review))

	for i := 0; i < 3; i++ {
		c := core.NewComment(review.ID, "a.go", intPtr(i+1), "needs work")
		require.NoError(t, store.CreateComment(ctx, c))
	}
	for _, path := range []string{"a.go", "b.go"} {
		require.NoError(t, store.CreateFileView(ctx, &core.FileViewRecord{
			ReviewID: review.ID, FilePath: path, CreatedAt: time.Now().UTC(),
		}))
	}

	require.NoError(t, store.DeleteReview(ctx, review.ID))

	_, err := store.GetReview(ctx, review.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	comments, err := store.ListComments(ctx, review.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	views, err := store.ListFileViews(ctx, review.ID)
	require.NoError(t, err)
	assert.Empty(t, views)

	reviews, err := store.ListReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestCommentsNewestFirstAndFileFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	require.NoError(t, store.CreateReview(ctx, review))

	first := core.NewComment(review.ID, "a.go", nil, "first")
	first.CreatedAt = time.Now().UTC().Add(-time.Minute)
	second := core.NewComment(review.ID, "b.go", intPtr(10), "second")
	require.NoError(t, store.CreateComment(ctx, first))
	require.NoError(t, store.CreateComment(ctx, second))

	all, err := store.ListComments(ctx, review.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Content)

	only, err := store.ListFileComments(ctx, review.ID, "a.go")
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "first", only[0].Content)
	assert.Nil(t, only[0].LineNumber)
}

func TestResolveComments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	require.NoError(t, store.CreateReview(ctx, review))

	one := core.NewComment(review.ID, "a.go", nil, "one")
	two := core.NewComment(review.ID, "a.go", nil, "two")
	require.NoError(t, store.CreateComment(ctx, one))
	require.NoError(t, store.CreateComment(ctx, two))

	require.NoError(t, store.ResolveComment(ctx, one.ID))
	comments, err := store.ListFileComments(ctx, review.ID, "a.go")
	require.NoError(t, err)
	resolved := 0
	for _, c := range comments {
		if c.Resolved {
			resolved++
		}
	}
	assert.Equal(t, 1, resolved)

	require.NoError(t, store.ResolveAllComments(ctx, review.ID))
	comments, err = store.ListComments(ctx, review.ID)
	require.NoError(t, err)
	for _, c := range comments {
		assert.True(t, c.Resolved)
	}
}

func TestResolveAllFileCommentsLeavesOtherFiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	require.NoError(t, store.CreateReview(ctx, review))

	require.NoError(t, store.CreateComment(ctx, core.NewComment(review.ID, "a.go", intPtr(3), "one")))
	require.NoError(t, store.CreateComment(ctx, core.NewComment(review.ID, "a.go", nil, "two")))
	require.NoError(t, store.CreateComment(ctx, core.NewComment(review.ID, "b.go", nil, "elsewhere")))

	require.NoError(t, store.ResolveAllFileComments(ctx, review.ID, "a.go"))

	scoped, err := store.ListFileComments(ctx, review.ID, "a.go")
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	for _, c := range scoped {
		assert.True(t, c.Resolved)
	}

	other, err := store.ListFileComments(ctx, review.ID, "b.go")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.False(t, other[0].Resolved)
}

func TestResolveCommentNotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.ResolveComment(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCopyComments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	src := core.NewReview("main", "feature")
	dst := core.NewReview("main", "feature")
	require.NoError(t, store.CreateReview(ctx, src))
	require.NoError(t, store.CreateReview(ctx, dst))

	require.NoError(t, store.CreateComment(ctx, core.NewComment(src.ID, "a.go", intPtr(3), "keep me")))
	require.NoError(t, store.CreateComment(ctx, core.NewComment(src.ID, "b.go", nil, "me too")))

	require.NoError(t, store.CopyComments(ctx, src.ID, dst.ID))

	copied, err := store.ListComments(ctx, dst.ID)
	require.NoError(t, err)
	require.Len(t, copied, 2)
	for _, c := range copied {
		assert.Equal(t, dst.ID, c.ReviewID)
	}

	original, err := store.ListComments(ctx, src.ID)
	require.NoError(t, err)
	assert.Len(t, original, 2)
}

func TestFileViewUniquePerPath(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	require.NoError(t, store.CreateReview(ctx, review))

	record := &core.FileViewRecord{ReviewID: review.ID, FilePath: "a.go", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateFileView(ctx, record))
	assert.Error(t, store.CreateFileView(ctx, record))
}

func TestDeleteFileViewsSubset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	review := core.NewReview("main", "feature")
	require.NoError(t, store.CreateReview(ctx, review))

	for _, path := range []string{"a.go", "b.go", "c.go"} {
		require.NoError(t, store.CreateFileView(ctx, &core.FileViewRecord{
			ReviewID: review.ID, FilePath: path, CreatedAt: time.Now().UTC(),
		}))
	}

	n, err := store.DeleteFileViews(ctx, review.ID, []string{"b.go", "unrelated.go"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	records, err := store.ListFileViews(ctx, review.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a.go", records[0].FilePath)
	assert.Equal(t, "c.go", records[1].FilePath)

	n, err = store.DeleteFileViews(ctx, review.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
