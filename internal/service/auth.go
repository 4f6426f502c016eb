// Package service holds the use cases of the scheduling backend. Every
// operation receives the caller's Session and checks the matching
// capability before touching the hosted backend.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/access"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/observability"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var authTracer = otel.Tracer("service/auth")

const invalidCredentials = "usuário ou senha inválidos"

// AuthService resolves bearer tokens into sessions and runs the
// login/logout flows against the hosted auth.
type AuthService struct {
	directory port.DirectoryStore
	auth      port.Authenticator
	sessions  port.Cache[*domain.Session]
	jwtSecret []byte
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new auth service.
func NewAuthService(
	directory port.DirectoryStore,
	auth port.Authenticator,
	sessions port.Cache[*domain.Session],
	jwtSecret string,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		directory: directory,
		auth:      auth,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// ============================================================
// Login - POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "usuário é obrigatório"}
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "senha é obrigatória"}
	}
	span.SetAttributes(attribute.String("username", username))

	email, err := s.directory.GetEmailFromUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolve username: %w", err)
	}
	if email == "" {
		s.logger.Warn("login: unknown username", zap.String("username", username))
		return nil, &domain.ErrUnauthorized{Message: invalidCredentials}
	}

	tokens, err := s.auth.SignInWithPassword(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	sess, err := s.buildSession(ctx, tokens.UserID, email, expiresAt)
	if err != nil {
		return nil, err
	}
	sess.AccessToken = tokens.AccessToken
	s.cacheSession(ctx, sessionKey(tokens.AccessToken), sess)

	s.logger.Info("user logged in",
		zap.String("user_id", sess.UserID),
		zap.String("role", string(sess.Role)),
		zap.String("sector", string(sess.Sector)),
	)

	return &domain.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		Session:      sess,
		Capabilities: access.Capabilities(sess.Role, sess.Sector),
	}, nil
}

// ============================================================
// Logout - POST /v1/auth/logout
// ============================================================

// Logout evicts the session and revokes the token at the hosted auth.
// The session is evicted even when revocation fails.
func (s *AuthService) Logout(ctx context.Context, sess *domain.Session) error {
	ctx, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if sess == nil {
		return &domain.ErrUnauthorized{}
	}
	s.sessions.Delete(ctx, sessionKey(sess.AccessToken))

	if err := s.auth.SignOut(ctx, sess.AccessToken); err != nil {
		s.logger.Warn("logout: token revocation failed", zap.String("user_id", sess.UserID), zap.Error(err))
		return err
	}
	s.logger.Info("user logged out", zap.String("user_id", sess.UserID))
	return nil
}

// ============================================================
// Authenticate - used by middleware
// ============================================================

// Claims are the fields read from a hosted-auth access token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ValidateAccessToken checks the HS256 signature and expiry of a token.
func (s *AuthService) ValidateAccessToken(tokenString string) (*Claims, error) {
	if len(s.jwtSecret) == 0 {
		return nil, &domain.ErrUnauthorized{Message: "autenticação não configurada"}
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "token inválido ou expirado"}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, &domain.ErrUnauthorized{Message: "token inválido"}
	}
	return claims, nil
}

// Authenticate turns a bearer token into a Session. Sessions are cached
// per token; an expired cached session is evicted and rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	claims, err := s.ValidateAccessToken(token)
	if err != nil {
		s.sessions.Delete(ctx, sessionKey(token))
		return nil, err
	}

	key := sessionKey(token)
	if sess, ok := s.sessions.Get(ctx, key); ok && sess != nil {
		if sess.Expired(s.now()) {
			s.sessions.Delete(ctx, key)
			return nil, &domain.ErrUnauthorized{Message: "sessão expirada"}
		}
		s.metrics.IncrCacheHit("session")
		cp := *sess
		cp.AccessToken = token
		return &cp, nil
	}
	s.metrics.IncrCacheMiss("session")

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	sess, err := s.buildSession(ctx, claims.Subject, claims.Email, expiresAt)
	if err != nil {
		return nil, err
	}
	sess.AccessToken = token
	s.cacheSession(ctx, key, sess)
	return sess, nil
}

// cacheSession stores a copy of sess. Cached sessions are shared between
// requests and never handed out directly.
func (s *AuthService) cacheSession(ctx context.Context, key string, sess *domain.Session) {
	cp := *sess
	s.sessions.Set(ctx, key, &cp)
}

// buildSession loads role and profile concurrently. A user without a
// profile row gets the null sector.
func (s *AuthService) buildSession(ctx context.Context, userID, email string, expiresAt time.Time) (*domain.Session, error) {
	var (
		role    domain.Role
		profile *domain.Profile
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.directory.GetUserRole(gCtx, userID)
		if err != nil {
			s.metrics.IncrExternalError("user_roles")
			return fmt.Errorf("load role: %w", err)
		}
		role = r
		return nil
	})
	g.Go(func() error {
		p, err := s.directory.GetProfile(gCtx, userID)
		if err != nil {
			var notFound *domain.ErrNotFound
			if errors.As(err, &notFound) {
				return nil
			}
			s.metrics.IncrExternalError("profiles")
			return fmt.Errorf("load profile: %w", err)
		}
		profile = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sess := &domain.Session{
		UserID:    userID,
		Email:     email,
		Role:      role,
		ExpiresAt: expiresAt,
	}
	if profile != nil {
		sess.Username = profile.Username
		sess.Sector = profile.Sector
		if sess.Email == "" {
			sess.Email = profile.Email
		}
	}
	return sess, nil
}

// sessionKey hashes the token so raw tokens never become cache keys.
func sessionKey(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
