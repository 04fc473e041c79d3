package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/vasantisuthar/journal/internal/model"
)

// ErrInvalidSessionToken はCookieのトークンが改ざん・期限切れ等で無効な場合のエラー。
var ErrInvalidSessionToken = errors.New("invalid session token")

const sessionTokenIssuer = "journal"

// SessionTokenCodec はセッションIDをHS256署名付きJWTに変換する。
// jtiにセッションIDを格納し、SESSION_SECRETで署名する。
type SessionTokenCodec struct {
	secret []byte
}

// NewSessionTokenCodec はSessionTokenCodecを生成する。
func NewSessionTokenCodec(secret string) *SessionTokenCodec {
	return &SessionTokenCodec{secret: []byte(secret)}
}

// Encode はセッションを署名済みトークン文字列に変換する。
func (c *SessionTokenCodec) Encode(session *model.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   session.UserID,
		Issuer:    sessionTokenIssuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Decode はトークンを検証し、セッションIDを返す。
func (c *SessionTokenCodec) Decode(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidSessionToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidSessionToken
	}
	if !claims.VerifyIssuer(sessionTokenIssuer, true) || claims.ID == "" {
		return "", ErrInvalidSessionToken
	}

	return claims.ID, nil
}
