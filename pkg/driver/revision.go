package driver

import (
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/pkg/errors"
)

// ErrNoRepository is returned by SourceRevision for files outside any git repository.
var ErrNoRepository = errors.New("revision: not inside a git repository")

// dirtySuffix marks a revision whose source file differs from HEAD.
const dirtySuffix = "+dirty"

// SourceRevision returns the HEAD commit hash of the repository holding path.
// When path itself has uncommitted changes the hash carries a "+dirty" suffix.
func SourceRevision(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "revision: resolve %s", path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	repo, err := git.PlainOpenWithOptions(filepath.Dir(abs), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", ErrNoRepository
		}
		return "", errors.Wrapf(err, "revision: open repository for %s", path)
	}
	head, err := repo.Head()
	if err != nil {
		return "", errors.Wrap(err, "revision: resolve HEAD")
	}
	revision := head.Hash().String()

	worktree, err := repo.Worktree()
	if err != nil {
		return "", errors.Wrap(err, "revision: open worktree")
	}
	root := worktree.Filesystem.Root()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", errors.Wrapf(err, "revision: locate %s in %s", path, root)
	}
	status, err := worktree.Status()
	if err != nil {
		return "", errors.Wrap(err, "revision: worktree status")
	}
	if file, ok := status[filepath.ToSlash(rel)]; ok {
		if file.Worktree != git.Unmodified || file.Staging != git.Unmodified {
			revision += dirtySuffix
		}
	}
	return revision, nil
}
