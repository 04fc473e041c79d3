// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/vasantisuthar/journal/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// CreateLocal はローカル認証情報を持つユーザーを作成する。
	// ユーザー名が既に存在する場合はmodel.ErrDuplicateUsernameを返す。
	CreateLocal(ctx context.Context, user *model.User) error

	// FindOrCreateByGoogleID はGoogleIDでユーザーを取得し、存在しなければ作成する。
	// 同一GoogleIDの同時呼び出しでも作成されるユーザーは1件のみ。
	// createdは今回の呼び出しで新規作成された場合にtrueとなる。
	FindOrCreateByGoogleID(ctx context.Context, googleID string) (user *model.User, created bool, err error)
}

// BlogRepository は記事データの永続化インターフェース。
// 参照・更新・削除はすべて所有ユーザーでスコープする。
type BlogRepository interface {
	// Create は記事を作成する。
	Create(ctx context.Context, blog *model.Blog) error

	// ListByUserID はユーザーの記事一覧をcreated_at降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Blog, error)

	// FindByUserAndTitle はタイトル完全一致で記事を取得する。見つからない場合はnilを返す。
	// 同一タイトルが複数ある場合は最も新しい記事を返す。
	FindByUserAndTitle(ctx context.Context, userID, title string) (*model.Blog, error)

	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, userID, id string) (*model.Blog, error)

	// Update は記事のタイトルと本文を更新する。
	// 対象が存在しない場合はmodel.ErrNotFoundを返す。
	Update(ctx context.Context, blog *model.Blog) error

	// DeleteByID は指定IDの記事を削除する。対象が存在しなくてもエラーにしない。
	DeleteByID(ctx context.Context, userID, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
