// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/mlavoie-cs/terrastac/internal/config"
	"github.com/mlavoie-cs/terrastac/internal/logging"
)

// ErrUnauthorized rejects a request without a valid credential.
var ErrUnauthorized = errors.New("unauthorized")

// Guard authorizes the administrative refresh endpoints and rate-limits
// them. The limiter applies even with auth disabled: the refresh
// procedures scan whole item tables and must not be triggered in a loop.
type Guard struct {
	tokenHash []byte
	jwtSecret []byte
	replay    ReplayStore
	limiter   *rate.Limiter
	log       zerolog.Logger
}

// NewGuard builds a guard from config. replay may be nil when JWTSecret
// is unset.
func NewGuard(cfg config.AdminConfig, replay ReplayStore) *Guard {
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	burst := cfg.RefreshBurst
	if burst < 1 {
		burst = 1
	}
	return &Guard{
		tokenHash: []byte(cfg.TokenHash),
		jwtSecret: []byte(cfg.JWTSecret),
		replay:    replay,
		limiter:   rate.NewLimiter(rate.Every(interval), burst),
		log:       logging.Component("auth"),
	}
}

// Enabled reports whether any credential is configured.
func (g *Guard) Enabled() bool {
	return len(g.tokenHash) > 0 || len(g.jwtSecret) > 0
}

// Authorize validates the Authorization header. With no credential
// configured every request passes.
func (g *Guard) Authorize(ctx context.Context, header string) error {
	if !g.Enabled() {
		return nil
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return fmt.Errorf("%w: bearer token required", ErrUnauthorized)
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return fmt.Errorf("%w: bearer token required", ErrUnauthorized)
	}

	// bcrypt.CompareHashAndPassword is timing-safe.
	if len(g.tokenHash) > 0 && bcrypt.CompareHashAndPassword(g.tokenHash, []byte(token)) == nil {
		return nil
	}
	if len(g.jwtSecret) > 0 {
		return g.authorizeJWT(ctx, token)
	}
	return fmt.Errorf("%w: invalid token", ErrUnauthorized)
}

// authorizeJWT validates an HS256 token and burns its jti. Tokens without
// jti or exp are rejected; a replayed jti is rejected even while the
// signature is still valid.
func (g *Guard) authorizeJWT(ctx context.Context, token string) error {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.jwtSecret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !parsed.Valid {
		return fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	if claims.ID == "" {
		return fmt.Errorf("%w: token has no jti", ErrUnauthorized)
	}
	if claims.ExpiresAt == nil {
		return fmt.Errorf("%w: token has no exp", ErrUnauthorized)
	}
	if g.replay == nil {
		return fmt.Errorf("%w: replay store unavailable", ErrUnauthorized)
	}

	err = g.replay.CheckAndStore(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
	if errors.Is(err, ErrTokenReplayed) {
		g.log.Warn().Str("jti", claims.ID).Msg("admin token replay detected")
		return fmt.Errorf("%w: token already used", ErrUnauthorized)
	}
	if err != nil {
		// Fail closed: without the store a one-time token could be
		// accepted twice.
		return fmt.Errorf("%w: replay check failed: %v", ErrUnauthorized, err)
	}
	return nil
}

// Middleware applies the rate limit and, when configured, the credential
// check to a route group.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.limiter.Allow() {
			writeGuardError(w, http.StatusTooManyRequests, "TooManyRequests",
				"refresh already triggered recently, try again later")
			return
		}
		if err := g.Authorize(r.Context(), r.Header.Get("Authorization")); err != nil {
			g.log.Debug().Err(err).Str("path", r.URL.Path).Msg("admin request rejected")
			writeGuardError(w, http.StatusUnauthorized, "UnauthorizedError",
				"valid bearer credential required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeGuardError emits the API error body shape without importing the
// api package.
func writeGuardError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":        code,
		"description": description,
	})
}
