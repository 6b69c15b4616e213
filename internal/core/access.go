// Package core holds the protocol-agnostic services behind the HTTP, websocket
// and CLI surfaces
package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"devdash/pkg/logger"
	"devdash/pkg/models"
)

// SessionCookieName is the cookie carrying the session marker
const SessionCookieName = "access_granted"

// DefaultSessionTTL is how long a verified code stays valid
const DefaultSessionTTL = 8 * time.Hour

// AccessGrant is the session marker issued for a correct code
type AccessGrant struct {
	Token     string
	ExpiresAt time.Time
	MaxAge    time.Duration
}

// AccessService verifies the shared access code and the markers it issues
type AccessService interface {
	Verify(code string) (*AccessGrant, error)
	ValidateSession(token string) error
	Configured() bool
}

// AccessOptions configure NewAccessService
type AccessOptions struct {
	Code          string
	SessionSecret string
	Issuer        string
	TTL           time.Duration
	Now           func() time.Time
}

type accessService struct {
	code   []byte
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// NewAccessService creates the gate service. An empty session secret is
// replaced by a random one, so markers do not survive a restart.
func NewAccessService(opts AccessOptions) AccessService {
	s := &accessService{
		code:   []byte(opts.Code),
		secret: []byte(opts.SessionSecret),
		issuer: opts.Issuer,
		ttl:    opts.TTL,
		now:    opts.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if len(s.secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			panic(fmt.Sprintf("access: generate session secret: %v", err))
		}
		s.secret = []byte(hex.EncodeToString(buf))
		logger.Warn("access.session_secret not set, using a per-process secret; sessions end on restart")
	}
	if len(s.code) == 0 {
		logger.Warn("ACCESS_CODE not set, every access attempt will fail with 'Server not configured'")
	}
	return s
}

func (s *accessService) Configured() bool {
	return len(s.code) > 0
}

// Verify checks code against the configured secret and issues a marker
func (s *accessService) Verify(code string) (*AccessGrant, error) {
	if !s.Configured() {
		return nil, models.ErrAccessNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(code), s.code) != 1 {
		return nil, models.ErrInvalidAccessCode
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   "dashboard",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &AccessGrant{Token: token, ExpiresAt: expiresAt, MaxAge: s.ttl}, nil
}

// ValidateSession checks signature, issuer and expiry of a marker
func (s *accessService) ValidateSession(token string) error {
	if token == "" {
		return models.ErrInvalidSession
	}
	// expiry is checked against s.now below
	parser := jwt.Parser{SkipClaimsValidation: true}
	claims := &sessionClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return models.ErrInvalidSession
	}
	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return models.ErrInvalidSession
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return models.ErrInvalidSession
	}
	return nil
}
