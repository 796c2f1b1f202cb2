package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

func setupStore(t *testing.T) (*GitStore, *git.Repository, billy.Filesystem) {
	t.Helper()

	fs := memfs.New()
	repo, err := git.Init(memory.NewStorage(), fs)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}

	return NewGitStore(repo), repo, fs
}

func commitFile(t *testing.T, repo *git.Repository, fs billy.Filesystem, name, content, message string) plumbing.Hash {
	t.Helper()

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}

	f, err := fs.Create(name)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	if _, err := f.Write([]byte(content)); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	f.Close()

	if _, err := wt.Add(name); err != nil {
		t.Fatalf("add %s: %v", name, err)
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Alice",
			Email: "alice@example.com",
			When:  time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC),
		},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash
}

func TestGitStoreCommitRoundtrip(t *testing.T) {
	store, repo, fs := setupStore(t)
	ctx := context.Background()

	hash := commitFile(t, repo, fs, "a.txt", "hello", "first commit\n\nwith a body\n")

	c, err := store.Commit(ctx, hash)
	if err != nil {
		t.Fatalf("get commit: %v", err)
	}

	if c.Hash != hash {
		t.Errorf("hash = %s, want %s", c.Hash, hash)
	}
	if c.Message != "first commit\n\nwith a body\n" {
		t.Errorf("message not verbatim: %q", c.Message)
	}
	if c.Author.Name != "Alice" || c.Author.Email != "alice@example.com" {
		t.Errorf("author = %+v", c.Author)
	}
	if len(c.Parents) != 0 {
		t.Errorf("root commit has %d parents", len(c.Parents))
	}
}

func TestGitStoreCommitNotFound(t *testing.T) {
	store, _, _ := setupStore(t)

	_, err := store.Commit(context.Background(), testHash(0x42))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGitStoreWriteCommitContentAddressed(t *testing.T) {
	store, repo, fs := setupStore(t)
	ctx := context.Background()

	hash := commitFile(t, repo, fs, "a.txt", "hello", "first")
	src, err := store.Commit(ctx, hash)
	if err != nil {
		t.Fatalf("get commit: %v", err)
	}

	rewritten := &Commit{
		Tree:      src.Tree,
		Parents:   src.Parents,
		Author:    src.Author,
		Committer: src.Committer,
		Message:   AppendTrailer(src.Message, testKey, testValue),
	}

	first, err := store.WriteCommit(ctx, rewritten)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	second, err := store.WriteCommit(ctx, rewritten)
	if err != nil {
		t.Fatalf("write again: %v", err)
	}

	if first != second {
		t.Errorf("identical content produced different ids: %s != %s", first, second)
	}
	if first == hash {
		t.Error("changed message kept the same id")
	}

	got, err := store.Commit(ctx, first)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got.Tree != src.Tree {
		t.Errorf("tree changed: %s != %s", got.Tree, src.Tree)
	}
	if got.Message != rewritten.Message {
		t.Errorf("message = %q, want %q", got.Message, rewritten.Message)
	}
}

func TestGitStoreResolveRef(t *testing.T) {
	store, repo, fs := setupStore(t)
	ctx := context.Background()

	hash := commitFile(t, repo, fs, "a.txt", "hello", "first")

	for _, ref := range []string{"master", "refs/heads/master", "HEAD"} {
		got, err := store.ResolveRef(ctx, ref)
		if err != nil {
			t.Fatalf("resolve %s: %v", ref, err)
		}
		if got != hash {
			t.Errorf("resolve %s = %s, want %s", ref, got, hash)
		}
	}

	if _, err := store.ResolveRef(ctx, "no-such-branch"); err == nil {
		t.Error("expected error for unknown ref")
	}
}

func TestGitStoreHead(t *testing.T) {
	store, repo, fs := setupStore(t)

	hash := commitFile(t, repo, fs, "a.txt", "hello", "first")

	name, got, err := store.Head(context.Background())
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if name != "refs/heads/master" {
		t.Errorf("head name = %s", name)
	}
	if got != hash {
		t.Errorf("head hash = %s, want %s", got, hash)
	}
}

func TestGitStorePublishRef(t *testing.T) {
	store, repo, fs := setupStore(t)
	ctx := context.Background()

	old := commitFile(t, repo, fs, "a.txt", "hello", "first")
	src, err := store.Commit(ctx, old)
	if err != nil {
		t.Fatalf("get commit: %v", err)
	}

	updated, err := store.WriteCommit(ctx, &Commit{
		Tree:      src.Tree,
		Author:    src.Author,
		Committer: src.Committer,
		Message:   AppendTrailer(src.Message, testKey, testValue),
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := store.PublishRef(ctx, "master", old, updated); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ref, err := repo.Reference(plumbing.NewBranchReferenceName("master"), false)
	if err != nil {
		t.Fatalf("read ref: %v", err)
	}
	if ref.Hash() != updated {
		t.Errorf("ref = %s, want %s", ref.Hash(), updated)
	}
}

func TestGitStorePublishRefConflict(t *testing.T) {
	store, repo, fs := setupStore(t)
	ctx := context.Background()

	commitFile(t, repo, fs, "a.txt", "hello", "first")
	expected, err := store.ResolveRef(ctx, "master")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// Another actor advances the branch after the walk captured expected.
	moved := commitFile(t, repo, fs, "b.txt", "more", "second")

	err = store.PublishRef(ctx, "master", expected, testHash(0x55))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Expected != expected || conflict.Actual != moved {
		t.Errorf("conflict values %s/%s, want %s/%s", conflict.Expected, conflict.Actual, expected, moved)
	}

	// The ref must be left exactly where the other actor put it.
	ref, err := repo.Reference(plumbing.NewBranchReferenceName("master"), false)
	if err != nil {
		t.Fatalf("read ref: %v", err)
	}
	if ref.Hash() != moved {
		t.Errorf("ref = %s, want untouched %s", ref.Hash(), moved)
	}
}
