// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ドメインエラー。サービス層・リポジトリ層はこれらを%wでラップして返す。
var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrEmptyTitle         = errors.New("title is empty")
	ErrInvalidInput       = errors.New("invalid input")
)

// AppError は画面に表示する統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type AppError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, blog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeDuplicateUsername  = "DUPLICATE_USERNAME"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeBlogNotFound       = "BLOG_NOT_FOUND"
	ErrCodeEmptyTitle         = "EMPTY_TITLE"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewDuplicateUsernameError はユーザー名重複エラーを生成する。
func NewDuplicateUsernameError() *AppError {
	return &AppError{
		Code:     ErrCodeDuplicateUsername,
		Message:  "That username is already taken.",
		Category: "auth",
		Action:   "Choose a different username or log in.",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// ユーザー名とパスワードのどちらが誤っているかは区別しない。
func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Incorrect username or password.",
		Category: "auth",
		Action:   "Check your details and try again.",
	}
}

// NewBlogNotFoundError は記事未検出エラーを生成する。
func NewBlogNotFoundError() *AppError {
	return &AppError{
		Code:     ErrCodeBlogNotFound,
		Message:  "That entry could not be found.",
		Category: "blog",
		Action:   "Pick an entry from your journal.",
	}
}

// NewEmptyTitleError はタイトル未入力エラーを生成する。
func NewEmptyTitleError() *AppError {
	return &AppError{
		Code:     ErrCodeEmptyTitle,
		Message:  "Please enter a title.",
		Category: "validation",
		Action:   "Fill in the title and post, then publish.",
	}
}

// NewInvalidInputError は入力値不正エラーを生成する。
func NewInvalidInputError(reason string) *AppError {
	return &AppError{
		Code:     ErrCodeInvalidInput,
		Message:  fmt.Sprintf("Invalid input: %s.", reason),
		Category: "validation",
		Action:   "Check what you entered and try again.",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *AppError {
	return &AppError{
		Code:     ErrCodeInternal,
		Message:  "Something went wrong on our side.",
		Category: "system",
		Action:   "Please try again in a moment.",
	}
}
