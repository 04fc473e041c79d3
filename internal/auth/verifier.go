package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/vasantisuthar/journal/internal/model"
	"github.com/vasantisuthar/journal/internal/repository"
)

// AuthMethod はログイン方式を表す。
type AuthMethod string

const (
	// AuthMethodLocal はユーザー名とパスワードによる認証。
	AuthMethodLocal AuthMethod = "local"
	// AuthMethodOAuth は外部IdP（Google）による認証。
	AuthMethodOAuth AuthMethod = "oauth"
)

// Credentials はログイン時に提示される認証情報。
// Methodに応じてUsername/PasswordまたはCodeのいずれかを使用する。
type Credentials struct {
	Method   AuthMethod
	Username string
	Password string
	Code     string // OAuthの認可コード
}

// CredentialVerifier は認証情報を検証し、対応するユーザーを返す。
type CredentialVerifier interface {
	Method() AuthMethod
	Verify(ctx context.Context, creds Credentials) (*model.User, error)
}

// MaxUsernameLength はユーザー名の最大文字数。users.usernameのVARCHAR(255)に合わせる。
const MaxUsernameLength = 255

// isStorableUsername はユーザー名がストアに保存され得るかどうかを返す。
func isStorableUsername(username string) bool {
	return model.IsStorableText(username) && utf8.RuneCountInString(username) <= MaxUsernameLength
}

// LocalVerifier はローカル認証情報の登録と検証を行う。
type LocalVerifier struct {
	userRepo repository.UserRepository
	hasher   *PasswordHasher
}

// NewLocalVerifier はLocalVerifierを生成する。
func NewLocalVerifier(userRepo repository.UserRepository, hasher *PasswordHasher) *LocalVerifier {
	return &LocalVerifier{userRepo: userRepo, hasher: hasher}
}

// Method はAuthMethodLocalを返す。
func (v *LocalVerifier) Method() AuthMethod {
	return AuthMethodLocal
}

// Register はローカルユーザーを作成する。
// ユーザー名が既に使われている場合はmodel.ErrDuplicateUsernameを返す。
func (v *LocalVerifier) Register(ctx context.Context, username, password string) (*model.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("username is required: %w", model.ErrInvalidInput)
	}
	if !isStorableUsername(username) {
		return nil, fmt.Errorf("username is invalid: %w", model.ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("password is required: %w", model.ErrInvalidInput)
	}

	hash, err := v.hasher.Hash(password)
	if err != nil {
		if isPasswordTooLong(err) {
			return nil, fmt.Errorf("password is too long: %w", model.ErrInvalidInput)
		}
		return nil, err
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := v.userRepo.CreateLocal(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("local user registered", slog.String("user_id", user.ID))
	return user, nil
}

// Verify はユーザー名とパスワードを照合する。
// ユーザー不在・パスワード不一致はいずれもmodel.ErrInvalidCredentialsとし、区別しない。
// 保存され得ないユーザー名はストアに問い合わせず、同じく認証失敗とする。
func (v *LocalVerifier) Verify(ctx context.Context, creds Credentials) (*model.User, error) {
	if !isStorableUsername(creds.Username) {
		v.hasher.CompareDummy(creds.Password)
		return nil, model.ErrInvalidCredentials
	}

	user, err := v.userRepo.FindByUsername(ctx, creds.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil || !user.HasLocalCredential() {
		v.hasher.CompareDummy(creds.Password)
		return nil, model.ErrInvalidCredentials
	}
	if !v.hasher.Compare(user.PasswordHash, creds.Password) {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// OAuthVerifier は外部IdPの認可コードを検証し、ユーザーを特定または作成する。
type OAuthVerifier struct {
	provider OAuthProvider
	userRepo repository.UserRepository
}

// NewOAuthVerifier はOAuthVerifierを生成する。
func NewOAuthVerifier(provider OAuthProvider, userRepo repository.UserRepository) *OAuthVerifier {
	return &OAuthVerifier{provider: provider, userRepo: userRepo}
}

// Method はAuthMethodOAuthを返す。
func (v *OAuthVerifier) Method() AuthMethod {
	return AuthMethodOAuth
}

// Verify は認可コードをユーザー情報に交換し、対応するユーザーを返す。
func (v *OAuthVerifier) Verify(ctx context.Context, creds Credentials) (*model.User, error) {
	info, err := v.provider.ExchangeCode(ctx, creds.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w: %w", model.ErrInvalidCredentials, err)
	}
	return v.FindOrCreateByExternalID(ctx, info.ProviderUserID)
}

// FindOrCreateByExternalID は外部IDに対応するユーザーを返し、存在しなければ作成する。
// 作成はストア側の単一のupsertで行うため、同時呼び出しでも重複しない。
func (v *OAuthVerifier) FindOrCreateByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	user, created, err := v.userRepo.FindOrCreateByGoogleID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}

	if created {
		slog.Info("new user created", slog.String("user_id", user.ID), slog.String("provider", "google"))
	} else {
		slog.Info("existing user logged in", slog.String("user_id", user.ID), slog.String("provider", "google"))
	}
	return user, nil
}

// compile-time interface checks
var (
	_ CredentialVerifier = (*LocalVerifier)(nil)
	_ CredentialVerifier = (*OAuthVerifier)(nil)
)
