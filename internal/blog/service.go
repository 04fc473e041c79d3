// Package blog は記事の作成・一覧・検索・編集・削除のビジネスロジックを提供する。
package blog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vasantisuthar/journal/internal/model"
	"github.com/vasantisuthar/journal/internal/repository"
)

// 記事操作の種別。メトリクスのラベルに使用する。
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// OperationRecorder は記事の変更操作を記録する。metrics.Collectorが実装する。
type OperationRecorder interface {
	RecordBlogOperation(op string)
}

type nopRecorder struct{}

func (nopRecorder) RecordBlogOperation(string) {}

// Service は記事に関するビジネスロジックを提供する。
// すべての操作はuserIDで指定された所有者の記事に限定される。
type Service struct {
	blogRepo repository.BlogRepository
	recorder OperationRecorder
}

// NewService はServiceを生成する。
func NewService(blogRepo repository.BlogRepository) *Service {
	return &Service{blogRepo: blogRepo, recorder: nopRecorder{}}
}

// SetOperationRecorder は変更操作の記録先を設定する。
func (s *Service) SetOperationRecorder(r OperationRecorder) {
	if r == nil {
		r = nopRecorder{}
	}
	s.recorder = r
}

// Create は記事を作成する。タイトルはNormalizeTitleで正規化し、ValidateContentで検証して保存する。
// 所有者は常に引数のuserIDであり、クライアントからの指定は受け付けない。
func (s *Service) Create(ctx context.Context, userID, title, post string) (*model.Blog, error) {
	normalized := NormalizeTitle(title)
	if err := ValidateContent(normalized, post); err != nil {
		return nil, err
	}

	now := time.Now()
	blog := &model.Blog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     normalized,
		Post:      post,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, fmt.Errorf("failed to create blog: %w", err)
	}

	s.recorder.RecordBlogOperation(OpCreate)
	slog.Info("blog created",
		slog.String("user_id", userID),
		slog.String("blog_id", blog.ID),
	)
	return blog, nil
}

// List はユーザーの記事一覧を作成日時の降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Blog, error) {
	blogs, err := s.blogRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	if blogs == nil {
		blogs = []*model.Blog{}
	}
	return blogs, nil
}

// FindByTitle はタイトル完全一致で記事を取得する。正規化は行わない。
// 見つからない場合、および保存され得ないタイトルの場合はmodel.ErrNotFoundを返す。
func (s *Service) FindByTitle(ctx context.Context, userID, title string) (*model.Blog, error) {
	if !isLookupableTitle(title) {
		return nil, model.ErrNotFound
	}

	blog, err := s.blogRepo.FindByUserAndTitle(ctx, userID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to find blog: %w", err)
	}
	if blog == nil {
		return nil, model.ErrNotFound
	}
	return blog, nil
}

// Search は作成時と同じ正規化を検索語に適用してから記事を検索する。
// 見つからない場合はmodel.ErrNotFoundを返す。
func (s *Service) Search(ctx context.Context, userID, query string) (*model.Blog, error) {
	return s.FindByTitle(ctx, userID, NormalizeTitle(query))
}

// Get は指定IDの記事を取得する。IDの形式が不正な場合も見つからない扱いとする。
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Blog, error) {
	if !isValidID(id) {
		return nil, model.ErrNotFound
	}

	blog, err := s.blogRepo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get blog: %w", err)
	}
	if blog == nil {
		return nil, model.ErrNotFound
	}
	return blog, nil
}

// Update は記事のタイトルと本文を更新する。IDと所有者は変更しない。
func (s *Service) Update(ctx context.Context, userID, id, title, post string) (*model.Blog, error) {
	if !isValidID(id) {
		return nil, model.ErrNotFound
	}
	normalized := NormalizeTitle(title)
	if err := ValidateContent(normalized, post); err != nil {
		return nil, err
	}

	blog := &model.Blog{
		ID:        id,
		UserID:    userID,
		Title:     normalized,
		Post:      post,
		UpdatedAt: time.Now(),
	}
	if err := s.blogRepo.Update(ctx, blog); err != nil {
		return nil, fmt.Errorf("failed to update blog: %w", err)
	}

	s.recorder.RecordBlogOperation(OpUpdate)
	slog.Info("blog updated",
		slog.String("user_id", userID),
		slog.String("blog_id", id),
	)
	return blog, nil
}

// Delete は指定IDの記事を削除する。対象が存在しない場合もエラーにしない。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if !isValidID(id) {
		return nil
	}

	if err := s.blogRepo.DeleteByID(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete blog: %w", err)
	}

	s.recorder.RecordBlogOperation(OpDelete)
	slog.Info("blog deleted",
		slog.String("user_id", userID),
		slog.String("blog_id", id),
	)
	return nil
}

// isValidID はIDがUUID形式かどうかを判定する。
func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
