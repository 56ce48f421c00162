// Package session carries the per-browser identity used to authenticate
// calls to the storefront API.
package session

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey struct{}

// Identity is a browser session. ClientID is created once and kept for the
// life of the session; Token is present only while logged in.
type Identity struct {
	SessionID string `json:"sessionId"`
	ClientID  string `json:"clientId"`
	Token     string `json:"-"`
}

// New creates an anonymous identity with fresh session and client ids.
func New() *Identity {
	return &Identity{
		SessionID: uuid.NewString(),
		ClientID:  uuid.NewString(),
	}
}

func (i *Identity) Authenticated() bool {
	return i != nil && i.Token != ""
}

// Roles reads the "roles" claim without verifying the signature. The
// result only drives what the UI offers; the API does the authorizing.
func (i *Identity) Roles() []string {
	if !i.Authenticated() {
		return nil
	}
	return RolesFromToken(i.Token)
}

func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored in ctx, or nil.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(contextKey{}).(*Identity)
	return id
}

// RolesFromToken extracts role names from the token's "roles" claim, which
// may be a list of strings, a list of {"authority": ...} objects, or a
// comma separated string.
func RolesFromToken(token string) []string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	switch raw := claims["roles"].(type) {
	case string:
		var roles []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				roles = append(roles, part)
			}
		}
		return roles
	case []interface{}:
		roles := make([]string, 0, len(raw))
		for _, r := range raw {
			switch v := r.(type) {
			case string:
				roles = append(roles, v)
			case map[string]interface{}:
				if authority, ok := v["authority"].(string); ok {
					roles = append(roles, authority)
				}
			}
		}
		return roles
	}
	return nil
}

type requestIDKey struct{}

// WithRequestID stores the inbound request id for upstream calls and events.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
