// Package auth はローカル認証・OAuth認証フロー、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vasantisuthar/journal/internal/model"
	"github.com/vasantisuthar/journal/internal/repository"
)

// LoginRecorder はログイン結果を記録する。metrics.Collectorが実装する。
type LoginRecorder interface {
	RecordLogin(method string, success bool)
}

type nopLoginRecorder struct{}

func (nopLoginRecorder) RecordLogin(string, bool) {}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth       OAuthProvider
	local       *LocalVerifier
	verifiers   map[AuthMethod]CredentialVerifier
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	tokens      *SessionTokenCodec
	recorder    LoginRecorder
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher *PasswordHasher,
	tokens *SessionTokenCodec,
	config ServiceConfig,
) *Service {
	local := NewLocalVerifier(userRepo, hasher)
	oauthVerifier := NewOAuthVerifier(oauth, userRepo)

	return &Service{
		oauth: oauth,
		local: local,
		verifiers: map[AuthMethod]CredentialVerifier{
			local.Method():         local,
			oauthVerifier.Method(): oauthVerifier,
		},
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		recorder:    nopLoginRecorder{},
		config:      config,
	}
}

// SetLoginRecorder はログイン結果の記録先を設定する。
func (s *Service) SetLoginRecorder(r LoginRecorder) {
	if r == nil {
		r = nopLoginRecorder{}
	}
	s.recorder = r
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// Register はローカルユーザーを登録し、そのままログインさせたセッションを返す。
func (s *Service) Register(ctx context.Context, username, password string) (*model.Session, error) {
	user, err := s.local.Register(ctx, username, password)
	if err != nil {
		return nil, err
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Authenticate は認証情報を検証し、成功した場合にセッションを発行する。
// 検証に失敗した場合はmodel.ErrInvalidCredentialsを返す。
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*model.Session, error) {
	verifier, ok := s.verifiers[creds.Method]
	if !ok {
		return nil, fmt.Errorf("unsupported auth method %q: %w", creds.Method, model.ErrInvalidInput)
	}

	user, err := verifier.Verify(ctx, creds)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			s.recorder.RecordLogin(string(creds.Method), false)
			slog.Warn("login failed", slog.String("method", string(creds.Method)))
		}
		return nil, err
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.recorder.RecordLogin(string(creds.Method), true)
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("method", string(creds.Method)),
	)
	return session, nil
}

// Logout はトークンが指すセッションを破棄する。
// トークンが無効な場合は破棄対象がないため何もしない。
func (s *Service) Logout(ctx context.Context, token string) error {
	sessionID, err := s.tokens.Decode(token)
	if err != nil {
		return nil
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// GetCurrentUser はトークンから現在のユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, token string) (*model.User, error) {
	sessionID, err := s.tokens.Decode(token)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	return user, nil
}

// createSession はセッションを作成し永続化する。返すセッションには署名済みトークンを含む。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	token, err := s.tokens.Encode(session)
	if err != nil {
		return nil, err
	}
	session.Token = token

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
