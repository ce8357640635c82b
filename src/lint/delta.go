package lint

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"go.uber.org/zap"
)

// EnvTargetBranch overrides the branch that changes are measured against.
const EnvTargetBranch = "LOCKDOWN_TARGET_BRANCH"

// baseBranchVars name the pull/merge request target on the CI hosts whose
// annotations lockdown writes.
var baseBranchVars = []string{
	"GITHUB_BASE_REF",
	"CI_MERGE_REQUEST_TARGET_BRANCH_NAME",
}

// ChangeSet is the set of repo-relative slash paths touched since a
// baseline. A nil *ChangeSet stands for "everything": no repository, or
// no usable baseline.
type ChangeSet struct {
	// Base describes what was diffed against, e.g. "main" or "HEAD^".
	Base  string
	paths map[string]bool
}

// Has reports whether path is in the set. A nil set contains every path.
func (c *ChangeSet) Has(p string) bool {
	if c == nil {
		return true
	}
	return c.paths[strings.TrimPrefix(path.Clean(p), "./")]
}

// Len returns the number of changed paths, or -1 for a nil set.
func (c *ChangeSet) Len() int {
	if c == nil {
		return -1
	}
	return len(c.paths)
}

// Filter keeps the files present in the set, preserving order.
func (c *ChangeSet) Filter(files []FileInfo) []FileInfo {
	if c == nil {
		return files
	}
	kept := make([]FileInfo, 0, len(c.paths))
	for _, f := range files {
		if c.Has(f.Path) {
			kept = append(kept, f)
		}
	}
	return kept
}

// Delta finds the manifests a changed-only lint run has to look at.
type Delta struct {
	RootDir      string
	TargetBranch string
	// Relevant narrows the set to paths some module would check. Nil keeps
	// every changed path.
	Relevant func(path string) bool
	Log      *zap.Logger
}

func (d *Delta) log() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// Changes merges uncommitted worktree edits with the commits between the
// baseline and HEAD. Deleted files are left out since there is nothing
// left to inspect. It returns nil when RootDir is not a repository or the
// baseline cannot be resolved, which callers treat as a full scan.
func (d *Delta) Changes(ctx context.Context) (*ChangeSet, error) {
	repo, err := git.PlainOpen(d.RootDir)
	if err != nil {
		d.log().Debug("delta: not a git repo, scanning all files", zap.String("root", d.RootDir))
		return nil, nil
	}

	set := &ChangeSet{paths: make(map[string]bool)}

	if err := d.addWorktree(repo, set); err != nil {
		d.log().Debug("delta: worktree status failed, scanning all files", zap.Error(err))
		return nil, nil
	}

	base, label, err := d.baseline(repo)
	if err != nil {
		return nil, err
	}
	if base == nil {
		d.log().Debug("delta: no baseline, scanning all files")
		return nil, nil
	}
	set.Base = label

	if err := d.addCommitted(ctx, repo, base, set); err != nil {
		return nil, err
	}

	d.log().Debug("delta", zap.String("base", set.Base), zap.Int("relevant", set.Len()))
	return set, nil
}

func (d *Delta) add(set *ChangeSet, p string) {
	if p == "" {
		return
	}
	if d.Relevant != nil && !d.Relevant(p) {
		return
	}
	set.paths[p] = true
}

func (d *Delta) addWorktree(repo *git.Repository, set *ChangeSet) error {
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	status, err := wt.Status()
	if err != nil {
		return err
	}
	for p, s := range status {
		switch {
		case s.Worktree == git.Unmodified && s.Staging == git.Unmodified:
		case s.Worktree == git.Deleted || s.Staging == git.Deleted:
		default:
			d.add(set, p)
		}
	}
	return nil
}

// baseline resolves the commit HEAD is compared with. On the target branch
// itself the parent of HEAD is used, so a push to main still checks the
// manifests its last commit touched. A nil commit means no baseline.
func (d *Delta) baseline(repo *git.Repository) (*object.Commit, string, error) {
	head, err := repo.Head()
	if err != nil {
		// Unborn branch: nothing committed yet.
		return nil, "", nil
	}
	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, "", fmt.Errorf("delta: reading HEAD commit: %w", err)
	}

	branch := d.targetBranch(repo)
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		if ref, err = repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true); err != nil {
			d.log().Debug("delta: target branch not found", zap.String("branch", branch))
			return nil, "", nil
		}
	}

	if ref.Hash() != headCommit.Hash {
		base, err := repo.CommitObject(ref.Hash())
		if err != nil {
			return nil, "", fmt.Errorf("delta: reading %s: %w", branch, err)
		}
		return base, branch, nil
	}

	if headCommit.NumParents() == 0 {
		return nil, "", nil
	}
	parent, err := headCommit.Parent(0)
	if err != nil {
		return nil, "", fmt.Errorf("delta: reading HEAD^: %w", err)
	}
	return parent, "HEAD^", nil
}

func (d *Delta) addCommitted(ctx context.Context, repo *git.Repository, base *object.Commit, set *ChangeSet) error {
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("delta: reading HEAD: %w", err)
	}
	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("delta: reading HEAD commit: %w", err)
	}

	from, err := base.Tree()
	if err != nil {
		return err
	}
	to, err := headCommit.Tree()
	if err != nil {
		return err
	}

	changes, err := object.DiffTreeWithOptions(ctx, from, to, &object.DiffTreeOptions{DetectRenames: true})
	if err != nil {
		return fmt.Errorf("delta: diffing %s..HEAD: %w", set.Base, err)
	}
	for _, change := range changes {
		action, err := change.Action()
		if err != nil || action == merkletrie.Delete {
			continue
		}
		// Renames and modifications both land on the new name.
		d.add(set, change.To.Name)
	}
	return nil
}

// targetBranch resolves, in order: LOCKDOWN_TARGET_BRANCH, the configured
// branch, the CI request target, origin/HEAD, then "main".
func (d *Delta) targetBranch(repo *git.Repository) string {
	if branch := os.Getenv(EnvTargetBranch); branch != "" {
		return branch
	}
	if d.TargetBranch != "" {
		return d.TargetBranch
	}
	for _, v := range baseBranchVars {
		if branch := os.Getenv(v); branch != "" {
			return branch
		}
	}
	if repo != nil {
		// Unresolved, so Target() is the symbolic name like refs/remotes/origin/main.
		if ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "HEAD"), false); err == nil {
			if branch, ok := strings.CutPrefix(ref.Target().String(), "refs/remotes/origin/"); ok {
				return branch
			}
		}
	}
	return "main"
}
