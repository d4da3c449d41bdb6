package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"advent-calendar/internal/infra/logging"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ===== Visitor session primitives =====

const visitorCookie = "advent_visitor"

type SessionConfig struct {
	HMACSecret   []byte
	CookieName   string
	SecureCookie bool
	TTL          time.Duration
}

// VisitorSessions mints and verifies the signed cookie that identifies a
// browser. The subject claim is the visitor id.
type VisitorSessions struct {
	cfg SessionConfig
	dev bool
	now func() time.Time
}

// NewVisitorSessions builds the cookie codec. Outside dev the visitor id is
// redacted before it reaches request logs.
func NewVisitorSessions(secret string, secure, dev bool, ttl time.Duration) *VisitorSessions {
	return &VisitorSessions{
		cfg: SessionConfig{
			HMACSecret:   []byte(secret),
			CookieName:   visitorCookie,
			SecureCookie: secure,
			TTL:          ttl,
		},
		dev: dev,
		now: time.Now,
	}
}

type VisitorClaims struct {
	jwt.RegisteredClaims
}

// Mint issues a fresh visitor id and sets its cookie on w.
func (s *VisitorSessions) Mint(w http.ResponseWriter) (string, error) {
	id := uuid.NewString()
	now := s.now()
	claims := VisitorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
			Subject:   id,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.cfg.HMACSecret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

// ParseFromRequest returns the visitor id carried by the request cookie.
func (s *VisitorSessions) ParseFromRequest(r *http.Request) (string, error) {
	c, err := r.Cookie(s.cfg.CookieName)
	if err != nil {
		return "", errors.New("missing visitor cookie")
	}
	return s.parse(c.Value)
}

func (s *VisitorSessions) parse(tok string) (string, error) {
	claims := &VisitorClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return s.cfg.HMACSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return "", errors.New("invalid visitor token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", errors.New("invalid visitor id")
	}
	return claims.Subject, nil
}

type visitorKey struct{}

// Middleware resolves the visitor for every request, minting a new one
// when the cookie is missing or does not verify.
func (s *VisitorSessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.ParseFromRequest(r)
		if err != nil {
			id, err = s.Mint(w)
			if err != nil {
				http.Error(w, "session error", http.StatusInternalServerError)
				return
			}
		}
		ctx := context.WithValue(r.Context(), visitorKey{}, id)
		ctx = logging.WithVisitorID(ctx, logging.Redact(id, s.dev))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VisitorID returns the id stored by Middleware.
func VisitorID(ctx context.Context) string {
	id, _ := ctx.Value(visitorKey{}).(string)
	return id
}
