// Package admin guards registry administration routes with HS256 bearer
// tokens carrying the registry admin role.
package admin

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "xcmkit/pkg/domain-errors"
	"xcmkit/pkg/platform/audit"
	"xcmkit/pkg/platform/httputil"
	"xcmkit/pkg/requestcontext"
)

// RoleRegistryAdmin is the role claim admin tokens must carry.
const RoleRegistryAdmin = "registry-admin"

// Claims are the claims of an admin token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var errMissingRole = errors.New("token lacks the registry admin role")

// IssueToken signs an admin token for subject valid for ttl.
func IssueToken(secret []byte, subject string, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Role: RoleRegistryAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a signed admin token and returns its claims.
func ParseToken(secret []byte, token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleRegistryAdmin {
		return nil, errMissingRole
	}
	return claims, nil
}

// RequireAdminJWT rejects requests without a valid admin bearer token and
// stores the token subject in the context. Rejections are audited when an
// emitter is given.
func RequireAdminJWT(secret []byte, logger *slog.Logger, auditor audit.Emitter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				reject(w, r, logger, auditor, "missing bearer token", nil)
				return
			}
			claims, err := ParseToken(secret, strings.TrimSpace(token))
			if err != nil {
				reject(w, r, logger, auditor, "invalid admin token", err)
				return
			}
			ctx = requestcontext.WithAdminSubject(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, logger *slog.Logger, auditor audit.Emitter, reason string, err error) {
	ctx := r.Context()
	logger.WarnContext(ctx, "admin authentication failed",
		"request_id", requestcontext.RequestID(ctx),
		"client_ip", requestcontext.ClientIP(ctx),
		"reason", reason,
		"error", err,
	)
	if auditor != nil {
		if aerr := auditor.Emit(ctx, audit.Event{
			Action:  string(audit.EventAdminAuthFailed),
			Subject: requestcontext.ClientIP(ctx),
			Reason:  reason,
		}); aerr != nil {
			logger.WarnContext(ctx, "failed to emit audit event", "error", aerr)
		}
	}
	httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
}
