// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// ローカル認証情報（Username + PasswordHash）と外部IdPのID（GoogleID）の
// 少なくとも一方を必ず持つ。ユーザーはこのシステムからは削除されない。
type User struct {
	ID           string
	Username     string // ローカル認証のユーザー名。未設定の場合は空文字
	PasswordHash string // bcryptハッシュ。外部に返却・ログ出力しない
	GoogleID     string // Google OAuthのsub。未設定の場合は空文字
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasLocalCredential はローカル認証情報を持つかどうかを返す。
func (u *User) HasLocalCredential() bool {
	return u.Username != "" && u.PasswordHash != ""
}

// HasExternalIdentity は外部IdPのIDを持つかどうかを返す。
func (u *User) HasExternalIdentity() bool {
	return u.GoogleID != ""
}

// DisplayName は画面表示用のユーザー名を返す。
// ユーザー名を持たない外部IdPのみのユーザーは認証元の名前で表示する。
func (u *User) DisplayName() string {
	switch {
	case u.Username != "":
		return u.Username
	case u.HasExternalIdentity():
		return "Google user"
	default:
		return "Guest"
	}
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time

	// Token はCookieに格納する署名済みトークン。永続化しない。
	Token string
}
