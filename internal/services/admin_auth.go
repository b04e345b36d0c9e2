package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
	"github.com/yungbote/kiosk-backend/internal/platform/ctxutil"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

const (
	adminSubject = "admin"
	tokenIssuer  = "kiosk-backend"
)

// AdminAuth guards the CMS. There is a single operator identified by a
// bcrypt hash from configuration.
type AdminAuth interface {
	Login(ctx context.Context, password string) (token string, expiresAt time.Time, err error)
	SetContextFromToken(ctx context.Context, token string) (context.Context, error)
}

type adminAuth struct {
	log          *logger.Logger
	secret       []byte
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewAdminAuth(log *logger.Logger, jwtSecret, passwordHash string, ttl time.Duration) AdminAuth {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &adminAuth{
		log:          log.With("service", "AdminAuth"),
		secret:       []byte(jwtSecret),
		passwordHash: []byte(passwordHash),
		ttl:          ttl,
		now:          time.Now,
	}
}

func (a *adminAuth) configured() bool {
	return len(a.secret) > 0 && len(a.passwordHash) > 0
}

func (a *adminAuth) Login(ctx context.Context, password string) (string, time.Time, error) {
	const op = "admin.login"
	if !a.configured() {
		return "", time.Time{}, apierr.Unauthorized(op, "admin login is not configured")
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		a.log.Warn("admin login rejected", ctxutil.LogFields(ctx)...)
		return "", time.Time{}, apierr.Unauthorized(op, "invalid credentials")
	}
	now := a.now()
	exp := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign admin token: %w", err)
	}
	return signed, exp, nil
}

func (a *adminAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	const op = "admin.verify"
	if !a.configured() {
		return ctx, apierr.Unauthorized(op, "admin login is not configured")
	}
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(a.now),
	)
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return a.secret, nil })
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, apierr.Unauthorized(op, "token expired")
		}
		return ctx, apierr.Unauthorized(op, "invalid token")
	}
	if claims.Subject != adminSubject {
		return ctx, apierr.Unauthorized(op, "invalid token subject")
	}
	return ctxutil.WithAdmin(ctx, claims.Subject), nil
}
