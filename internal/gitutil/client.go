// Package gitutil provides a client for working with Git repositories.
package gitutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/sevigo/gitreview/internal/core"
)

// Client implements core.Git against a single local repository.
type Client struct {
	repo   *git.Repository
	logger *slog.Logger
}

// NewClient opens the repository at path.
func NewClient(path string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return &Client{repo: repo, logger: logger}, nil
}

// Branches lists local branch names, sorted alphabetically.
func (c *Client) Branches(_ context.Context) ([]string, error) {
	iter, err := c.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer iter.Close()

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}

	sort.Strings(names)
	return names, nil
}

// BranchSHA resolves a branch name to its head commit SHA. Returns
// core.ErrBranchNotFound when the branch does not exist.
func (c *Client) BranchSHA(_ context.Context, name string) (string, error) {
	ref, err := c.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", fmt.Errorf("branch %q: %w", name, core.ErrBranchNotFound)
		}
		return "", fmt.Errorf("failed to resolve branch %q: %w", name, err)
	}
	return ref.Hash().String(), nil
}

// ChangedFiles lists the paths that differ between two commits. Renames show
// up as a delete plus an add; both paths are reported.
func (c *Client) ChangedFiles(_ context.Context, oldSHA, newSHA string) ([]string, error) {
	changes, err := c.treeDiff(oldSHA, newSHA)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, change := range changes {
		if change.From.Name != "" {
			seen[change.From.Name] = struct{}{}
		}
		if change.To.Name != "" {
			seen[change.To.Name] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

// IsAncestor reports whether old is an ancestor of new in the commit graph.
func (c *Client) IsAncestor(_ context.Context, oldSHA, newSHA string) (bool, error) {
	oldCommit, err := c.commit(oldSHA)
	if err != nil {
		return false, err
	}
	newCommit, err := c.commit(newSHA)
	if err != nil {
		return false, err
	}

	ok, err := oldCommit.IsAncestor(newCommit)
	if err != nil {
		return false, fmt.Errorf("failed to check ancestry %s..%s: %w", oldSHA, newSHA, err)
	}
	return ok, nil
}

// Diff computes the per-file patch between two commits, sorted by path.
func (c *Client) Diff(_ context.Context, baseSHA, targetSHA string) (*core.Diff, error) {
	changes, err := c.treeDiff(baseSHA, targetSHA)
	if err != nil {
		return nil, err
	}

	files := make([]core.DiffFile, 0, len(changes))
	for _, change := range changes {
		patch, err := change.Patch()
		if err != nil {
			c.logger.Error("failed to render patch for change, skipping", "error", err)
			continue
		}

		path := change.To.Name
		if path == "" {
			path = change.From.Name
		}
		files = append(files, core.DiffFile{Path: path, Patch: patch.String()})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return &core.Diff{Files: files}, nil
}

func (c *Client) commit(sha string) (*object.Commit, error) {
	commit, err := c.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, fmt.Errorf("failed to get commit object for %s: %w", sha, err)
	}
	return commit, nil
}

func (c *Client) treeDiff(oldSHA, newSHA string) (object.Changes, error) {
	oldCommit, err := c.commit(oldSHA)
	if err != nil {
		return nil, err
	}
	newCommit, err := c.commit(newSHA)
	if err != nil {
		return nil, err
	}

	oldTree, err := oldCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree for commit %s: %w", oldSHA, err)
	}
	newTree, err := newCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree for commit %s: %w", newSHA, err)
	}

	changes, err := object.DiffTree(oldTree, newTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees between %s and %s: %w", oldSHA, newSHA, err)
	}
	return changes, nil
}
