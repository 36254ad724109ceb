// Package audit records the security-sensitive actions: register, login,
// refresh, logout and token revocation. Entries share the service's JSON
// log stream and are tagged type=audit for filtering.
package audit

import (
	"context"
	"errors"
	"strings"

	"github.com/talDoFlemis/health-hub/internal/auth"
	"github.com/talDoFlemis/health-hub/internal/obs"
)

type requestIDKey struct{}

// WithRequestID attaches the request identifier so later audit entries can
// be correlated with the request log line.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// LogEvent emits one audit entry, enriched with the request id and the
// acting principal when the context carries them.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}

	entry := map[string]any{
		"type":  "audit",
		"event": event,
	}
	if rid := requestIDFromContext(ctx); rid != "" {
		entry["request_id"] = rid
	}
	if principal, ok := auth.PrincipalFromContext(ctx); ok {
		entry["user_id"] = principal.User.ID
		entry["role"] = string(principal.User.Role)
	}

	details := make(map[string]any, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	entry["fields"] = details

	obs.LogJSON("info", "audit_event", entry)
	return nil
}
