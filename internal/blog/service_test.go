package blog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/vasantisuthar/journal/internal/model"
	"github.com/vasantisuthar/journal/internal/repository"
)

// --- モック定義 ---

type mockBlogRepo struct {
	createFn             func(ctx context.Context, blog *model.Blog) error
	listByUserIDFn       func(ctx context.Context, userID string) ([]*model.Blog, error)
	findByUserAndTitleFn func(ctx context.Context, userID, title string) (*model.Blog, error)
	findByIDFn           func(ctx context.Context, userID, id string) (*model.Blog, error)
	updateFn             func(ctx context.Context, blog *model.Blog) error
	deleteByIDFn         func(ctx context.Context, userID, id string) error
}

func (m *mockBlogRepo) Create(ctx context.Context, blog *model.Blog) error {
	if m.createFn != nil {
		return m.createFn(ctx, blog)
	}
	return nil
}

func (m *mockBlogRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Blog, error) {
	if m.listByUserIDFn != nil {
		return m.listByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockBlogRepo) FindByUserAndTitle(ctx context.Context, userID, title string) (*model.Blog, error) {
	if m.findByUserAndTitleFn != nil {
		return m.findByUserAndTitleFn(ctx, userID, title)
	}
	return nil, nil
}

func (m *mockBlogRepo) FindByID(ctx context.Context, userID, id string) (*model.Blog, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockBlogRepo) Update(ctx context.Context, blog *model.Blog) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, blog)
	}
	return nil
}

func (m *mockBlogRepo) DeleteByID(ctx context.Context, userID, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, userID, id)
	}
	return nil
}

type mockRecorder struct {
	ops []string
}

func (m *mockRecorder) RecordBlogOperation(op string) {
	m.ops = append(m.ops, op)
}

var _ repository.BlogRepository = (*mockBlogRepo)(nil)
var _ OperationRecorder = (*mockRecorder)(nil)

// --- テスト ---

func TestCreate_CapitalizesTitleAndSetsOwner(t *testing.T) {
	var saved *model.Blog
	repo := &mockBlogRepo{
		createFn: func(ctx context.Context, blog *model.Blog) error {
			saved = blog
			return nil
		},
	}
	svc := NewService(repo)
	rec := &mockRecorder{}
	svc.SetOperationRecorder(rec)

	blog, err := svc.Create(context.Background(), "user-1", "hello world", "body")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if saved == nil {
		t.Fatal("expected blog to be saved")
	}
	if saved.Title != "Hello world" {
		t.Errorf("title = %q, want %q", saved.Title, "Hello world")
	}
	if saved.UserID != "user-1" {
		t.Errorf("userID = %q, want %q", saved.UserID, "user-1")
	}
	if saved.Post != "body" {
		t.Errorf("post = %q, want %q", saved.Post, "body")
	}
	if _, err := uuid.Parse(blog.ID); err != nil {
		t.Errorf("blog ID %q is not a UUID", blog.ID)
	}
	if saved.CreatedAt.IsZero() || !saved.CreatedAt.Equal(saved.UpdatedAt) {
		t.Errorf("timestamps not initialized: created=%v updated=%v", saved.CreatedAt, saved.UpdatedAt)
	}
	if len(rec.ops) != 1 || rec.ops[0] != OpCreate {
		t.Errorf("recorded ops = %v, want [%s]", rec.ops, OpCreate)
	}
}

func TestCreate_EmptyTitle(t *testing.T) {
	called := false
	repo := &mockBlogRepo{
		createFn: func(ctx context.Context, blog *model.Blog) error {
			called = true
			return nil
		},
	}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), "user-1", "   ", "body")
	if !errors.Is(err, model.ErrEmptyTitle) {
		t.Errorf("err = %v, want ErrEmptyTitle", err)
	}
	if called {
		t.Error("repository must not be called for an empty title")
	}
}

func TestCreate_RejectsUnstorableInput(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		post    string
		wantErr error
	}{
		{"タイトルが上限超過", strings.Repeat("a", MaxTitleLength+1), "body", ErrTitleTooLong},
		{"タイトルにNULバイト", "bad\x00title", "body", ErrUnstorableText},
		{"タイトルが不正なUTF-8", "bad\xfftitle", "body", ErrUnstorableText},
		{"本文にNULバイト", "title", "body\x00", ErrUnstorableText},
		{"本文が不正なUTF-8", "title", "\xff", ErrUnstorableText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			repo := &mockBlogRepo{
				createFn: func(ctx context.Context, blog *model.Blog) error {
					called = true
					return nil
				},
			}
			svc := NewService(repo)

			_, err := svc.Create(context.Background(), "user-1", tt.title, tt.post)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, model.ErrInvalidInput) {
				t.Errorf("err = %v, should wrap ErrInvalidInput", err)
			}
			if called {
				t.Error("repository must not be called for unstorable input")
			}
		})
	}
}

func TestCreate_AcceptsTitleAtLimit(t *testing.T) {
	var saved *model.Blog
	repo := &mockBlogRepo{
		createFn: func(ctx context.Context, blog *model.Blog) error {
			saved = blog
			return nil
		},
	}
	svc := NewService(repo)

	// マルチバイト文字でもバイト数ではなく文字数で数える
	title := strings.Repeat("日", MaxTitleLength)
	if _, err := svc.Create(context.Background(), "user-1", title, "body"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if saved == nil || saved.Title != title {
		t.Error("title at the limit should be saved unchanged")
	}
}

func TestFindByTitle_UnstorableTitleIsNotFound(t *testing.T) {
	called := false
	repo := &mockBlogRepo{
		findByUserAndTitleFn: func(ctx context.Context, userID, title string) (*model.Blog, error) {
			called = true
			return nil, errors.New("invalid byte sequence for encoding \"UTF8\"")
		},
	}
	svc := NewService(repo)

	for _, title := range []string{"\xff", "a\x00b", strings.Repeat("a", MaxTitleLength+1)} {
		if _, err := svc.FindByTitle(context.Background(), "user-1", title); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("FindByTitle(%q) err = %v, want ErrNotFound", title, err)
		}
		if _, err := svc.Search(context.Background(), "user-1", title); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("Search(%q) err = %v, want ErrNotFound", title, err)
		}
	}
	if called {
		t.Error("repository must not be queried with an unstorable title")
	}
}

func TestCreate_StoreError(t *testing.T) {
	repo := &mockBlogRepo{
		createFn: func(ctx context.Context, blog *model.Blog) error {
			return model.ErrStoreUnavailable
		},
	}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), "user-1", "title", "body")
	if !errors.Is(err, model.ErrStoreUnavailable) {
		t.Errorf("err = %v, want ErrStoreUnavailable", err)
	}
}

func TestList_ReturnsEmptySliceWhenNoBlogs(t *testing.T) {
	svc := NewService(&mockBlogRepo{})

	blogs, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if blogs == nil || len(blogs) != 0 {
		t.Errorf("List() = %v, want empty slice", blogs)
	}
}

func TestList_PassesOwner(t *testing.T) {
	var gotUserID string
	repo := &mockBlogRepo{
		listByUserIDFn: func(ctx context.Context, userID string) ([]*model.Blog, error) {
			gotUserID = userID
			return []*model.Blog{{ID: "b1", UserID: userID}}, nil
		},
	}
	svc := NewService(repo)

	blogs, err := svc.List(context.Background(), "user-7")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if gotUserID != "user-7" {
		t.Errorf("userID = %q, want %q", gotUserID, "user-7")
	}
	if len(blogs) != 1 {
		t.Errorf("len = %d, want 1", len(blogs))
	}
}

func TestFindByTitle_ExactMatchWithoutNormalization(t *testing.T) {
	var gotTitle string
	repo := &mockBlogRepo{
		findByUserAndTitleFn: func(ctx context.Context, userID, title string) (*model.Blog, error) {
			gotTitle = title
			return nil, nil
		},
	}
	svc := NewService(repo)

	_, err := svc.FindByTitle(context.Background(), "user-1", "hello world")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if gotTitle != "hello world" {
		t.Errorf("lookup title = %q, want %q (no normalization)", gotTitle, "hello world")
	}
}

func TestSearch_UsesSameNormalizationAsCreate(t *testing.T) {
	stored := map[string]*model.Blog{}
	repo := &mockBlogRepo{
		createFn: func(ctx context.Context, blog *model.Blog) error {
			stored[blog.Title] = blog
			return nil
		},
		findByUserAndTitleFn: func(ctx context.Context, userID, title string) (*model.Blog, error) {
			return stored[title], nil
		},
	}
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), "user-1", "hello world", "body")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := svc.Search(context.Background(), "user-1", " hello world")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("Search() = %q, want %q", found.ID, created.ID)
	}

	if _, err := svc.Search(context.Background(), "user-1", "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Search(missing) err = %v, want ErrNotFound", err)
	}
}

func TestGet_InvalidIDIsNotFound(t *testing.T) {
	called := false
	repo := &mockBlogRepo{
		findByIDFn: func(ctx context.Context, userID, id string) (*model.Blog, error) {
			called = true
			return nil, nil
		},
	}
	svc := NewService(repo)

	_, err := svc.Get(context.Background(), "user-1", "not-a-uuid")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if called {
		t.Error("repository must not be queried for a malformed ID")
	}
}

func TestGet_ScopedToOwner(t *testing.T) {
	id := uuid.New().String()
	repo := &mockBlogRepo{
		findByIDFn: func(ctx context.Context, userID, blogID string) (*model.Blog, error) {
			if userID == "owner" && blogID == id {
				return &model.Blog{ID: id, UserID: "owner", Title: "T"}, nil
			}
			return nil, nil
		},
	}
	svc := NewService(repo)

	if _, err := svc.Get(context.Background(), "owner", id); err != nil {
		t.Errorf("Get() by owner error = %v", err)
	}
	if _, err := svc.Get(context.Background(), "intruder", id); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Get() by other user err = %v, want ErrNotFound", err)
	}
}

func TestUpdate_CapitalizesAndKeepsIdentity(t *testing.T) {
	id := uuid.New().String()
	var updated *model.Blog
	repo := &mockBlogRepo{
		updateFn: func(ctx context.Context, blog *model.Blog) error {
			updated = blog
			return nil
		},
	}
	svc := NewService(repo)
	rec := &mockRecorder{}
	svc.SetOperationRecorder(rec)

	_, err := svc.Update(context.Background(), "user-1", id, "new title", "new body")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ID != id || updated.UserID != "user-1" {
		t.Errorf("identity changed: id=%q user=%q", updated.ID, updated.UserID)
	}
	if updated.Title != "New title" {
		t.Errorf("title = %q, want %q", updated.Title, "New title")
	}
	if updated.Post != "new body" {
		t.Errorf("post = %q, want %q", updated.Post, "new body")
	}
	if len(rec.ops) != 1 || rec.ops[0] != OpUpdate {
		t.Errorf("recorded ops = %v, want [%s]", rec.ops, OpUpdate)
	}
}

func TestUpdate_Errors(t *testing.T) {
	validID := uuid.New().String()
	repo := &mockBlogRepo{
		updateFn: func(ctx context.Context, blog *model.Blog) error {
			return model.ErrNotFound
		},
	}
	svc := NewService(repo)

	tests := []struct {
		name    string
		id      string
		title   string
		wantErr error
	}{
		{"malformed ID", "xyz", "title", model.ErrNotFound},
		{"empty title", validID, "  ", model.ErrEmptyTitle},
		{"missing blog", validID, "title", model.ErrNotFound},
		{"title too long", validID, strings.Repeat("a", MaxTitleLength+1), ErrTitleTooLong},
		{"NUL in title", validID, "bad\x00title", ErrUnstorableText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), "user-1", tt.id, tt.title, "body")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDelete_MissingOrMalformedIsNotAnError(t *testing.T) {
	var calls int
	repo := &mockBlogRepo{
		deleteByIDFn: func(ctx context.Context, userID, id string) error {
			calls++
			return nil
		},
	}
	svc := NewService(repo)

	if err := svc.Delete(context.Background(), "user-1", "garbage"); err != nil {
		t.Errorf("Delete(malformed) error = %v", err)
	}
	if err := svc.Delete(context.Background(), "user-1", uuid.New().String()); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
	if calls != 1 {
		t.Errorf("repository calls = %d, want 1", calls)
	}
}

func TestDelete_StoreError(t *testing.T) {
	repo := &mockBlogRepo{
		deleteByIDFn: func(ctx context.Context, userID, id string) error {
			return model.ErrStoreUnavailable
		},
	}
	svc := NewService(repo)

	err := svc.Delete(context.Background(), "user-1", uuid.New().String())
	if !errors.Is(err, model.ErrStoreUnavailable) {
		t.Errorf("err = %v, want ErrStoreUnavailable", err)
	}
}
