// Package auth provides HMAC-based API key authentication for the facewire
// gRPC services, plus resolution of the caller's safe-watch-face tier.
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/facewire/facewire/internal/source"
)

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

const (
	hostIDKey contextKey = "host_id"
	safetyKey contextKey = "safe_watch_face"
)

// watchFaceIDHeader names the metadata key a platform host uses to identify
// the watch face behind a request.
const watchFaceIDHeader = "x-watchface-id"

// Queries defines the database operations key verification needs.
// Implemented by *db.Queries.
type Queries interface {
	Get(name string, dest interface{}, args ...interface{}) error
	Exec(name string, args ...interface{}) (sql.Result, error)
}

// Authenticator validates API keys using HMAC-SHA256 signatures and
// resolves safety tiers against the source's allowlist.
type Authenticator struct {
	secrets        map[string][]byte
	queries        Queries
	safeWatchFaces map[string]bool
}

// NewAuthenticator creates an authenticator. safeWatchFaces lists the watch
// face identifiers granted the SAFE tier.
func NewAuthenticator(secrets map[string][]byte, queries Queries, safeWatchFaces []string) *Authenticator {
	allow := make(map[string]bool, len(safeWatchFaces))
	for _, id := range safeWatchFaces {
		allow[id] = true
	}
	return &Authenticator{
		secrets:        secrets,
		queries:        queries,
		safeWatchFaces: allow,
	}
}

// Authenticate validates an API key and returns the platform host it
// belongs to.
func (a *Authenticator) Authenticate(ctx context.Context, apiKey string) (string, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return "", err
	}

	secret, ok := a.secrets[secretID]
	if !ok {
		return "", ErrUnknownKey
	}

	computedHash := ComputeHMAC(secret, apiKey)

	var result struct {
		HostID     string       `db:"host_id"`
		RevokedAt  sql.NullTime `db:"revoked_at"`
		APIKeyID   string       `db:"api_key_id"`
		LastUsedAt sql.NullTime `db:"last_used_at"`
	}

	err = a.queries.Get("get-api-key-by-hash", &result, computedHash)
	if err == sql.ErrNoRows {
		return "", ErrInvalidKey
	}
	if err != nil {
		return "", fmt.Errorf("database error: %w", err)
	}

	if result.RevokedAt.Valid {
		return "", ErrKeyRevoked
	}

	// 1-minute throttle keeps key-activity bookkeeping from write-amplifying
	// under immediate mode, which can request every second.
	if shouldUpdateLastUsed(result.LastUsedAt) {
		_, _ = a.queries.Exec("update-last-used", time.Now().UTC(), result.APIKeyID)
	}

	return result.HostID, nil
}

func shouldUpdateLastUsed(lastUsed sql.NullTime) bool {
	if !lastUsed.Valid {
		return true
	}
	return time.Since(lastUsed.Time) > time.Minute
}

// resolveSafety maps watch face metadata to a tier. No identity means
// UNKNOWN; an identified face is SAFE iff allowlisted.
func (a *Authenticator) resolveSafety(md metadata.MD) source.SafeWatchFace {
	ids := md.Get(watchFaceIDHeader)
	if len(ids) == 0 || ids[0] == "" {
		return source.SafeWatchFaceUnknown
	}
	if a.safeWatchFaces[ids[0]] {
		return source.SafeWatchFaceSafe
	}
	return source.SafeWatchFaceUnsafe
}

// UnaryInterceptor returns a gRPC interceptor that authenticates the
// calling host and annotates the context with the resolved safety tier.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		apiKeys := md.Get("x-api-key")
		if len(apiKeys) == 0 {
			return nil, status.Error(codes.Unauthenticated, ErrMissingKey.Error())
		}

		hostID, err := a.Authenticate(ctx, apiKeys[0])
		if err != nil {
			if err == ErrKeyRevoked {
				return nil, status.Error(codes.PermissionDenied, err.Error())
			}
			if strings.Contains(err.Error(), "database error") {
				return nil, status.Error(codes.Unavailable, err.Error())
			}
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		ctx = context.WithValue(ctx, hostIDKey, hostID)
		ctx = context.WithValue(ctx, safetyKey, a.resolveSafety(md))
		return handler(ctx, req)
	}
}

// SafetyInterceptor resolves safety tiers without requiring API keys, for
// deployments that trust their network but still distinguish watch faces.
func SafetyInterceptor(safeWatchFaces []string) grpc.UnaryServerInterceptor {
	a := NewAuthenticator(nil, nil, safeWatchFaces)
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			ctx = context.WithValue(ctx, safetyKey, a.resolveSafety(md))
		}
		return handler(ctx, req)
	}
}

// HostIDFromContext extracts the authenticated host ID.
// Returns empty string if not found.
func HostIDFromContext(ctx context.Context) string {
	if hostID, ok := ctx.Value(hostIDKey).(string); ok {
		return hostID
	}
	return ""
}

// SafetyFromContext extracts the resolved safety tier, UNKNOWN when absent.
func SafetyFromContext(ctx context.Context) source.SafeWatchFace {
	if tier, ok := ctx.Value(safetyKey).(source.SafeWatchFace); ok {
		return tier
	}
	return source.SafeWatchFaceUnknown
}
