package model

import "time"

// Blog はユーザーが投稿した記事を表す。
// UserIDとIDは作成後に変更されない。タイトルの一意性は保証しない。
type Blog struct {
	ID        string
	UserID    string
	Title     string
	Post      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
