package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vasantisuthar/journal/internal/model"
)

const userColumns = `id, username, password_hash, google_id, created_at, updated_at`

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreError("failed to find user by ID", err)
	}
	return user, nil
}

// FindByUsername はユーザー名でユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreError("failed to find user by username", err)
	}
	return user, nil
}

// CreateLocal はローカル認証情報を持つユーザーを作成する。
// usersテーブルのUNIQUE(username)制約違反はmodel.ErrDuplicateUsernameに変換する。
func (r *PostgresUserRepo) CreateLocal(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Username, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return model.ErrDuplicateUsername
	}
	if err != nil {
		return wrapStoreError("failed to insert user", err)
	}
	return nil
}

// FindOrCreateByGoogleID はGoogleIDでユーザーを取得し、存在しなければ作成する。
// INSERT ... ON CONFLICT DO UPDATE を1文で実行するため、同時実行されても
// UNIQUE(google_id)によりユーザーは1件しか作成されない。
// xmax = 0 の行は今回のINSERTで作成された行を示す。
func (r *PostgresUserRepo) FindOrCreateByGoogleID(ctx context.Context, googleID string) (*model.User, bool, error) {
	if googleID == "" {
		return nil, false, fmt.Errorf("google ID is required: %w", model.ErrInvalidInput)
	}

	var (
		user     model.User
		username sql.NullString
		hash     sql.NullString
		gid      sql.NullString
		created  bool
	)
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (google_id)
		 VALUES ($1)
		 ON CONFLICT (google_id) DO UPDATE SET google_id = EXCLUDED.google_id
		 RETURNING `+userColumns+`, (xmax = 0) AS created`,
		googleID,
	).Scan(&user.ID, &username, &hash, &gid, &user.CreatedAt, &user.UpdatedAt, &created)
	if err != nil {
		return nil, false, wrapStoreError("failed to find or create user by google ID", err)
	}

	user.Username = username.String
	user.PasswordHash = hash.String
	user.GoogleID = gid.String
	return &user, created, nil
}

// scanUser は1行をmodel.Userに変換する。NULL許容カラムは空文字として扱う。
func scanUser(row rowScanner) (*model.User, error) {
	var (
		user     model.User
		username sql.NullString
		hash     sql.NullString
		googleID sql.NullString
	)
	if err := row.Scan(&user.ID, &username, &hash, &googleID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	user.Username = username.String
	user.PasswordHash = hash.String
	user.GoogleID = googleID.String
	return &user, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
