package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// SessionHeader carries the conversation session id in both directions.
const SessionHeader = "X-Session-ID"

type anonymousKey struct{}

// AnonymousSession assigns a fresh session id to every request that names
// none, so clients sharing an address do not share a conversation. Clients
// keep their conversation by sending the echoed X-Session-ID back. Without
// this middleware such requests are keyed by client address.
func AnonymousSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get(SessionHeader)) == "" {
			r = r.WithContext(context.WithValue(r.Context(), anonymousKey{}, uuid.NewString()))
		}
		next.ServeHTTP(w, r)
	})
}

// ResolveSessionID picks the session of a request: the header, then the id
// sent in the body, then the id minted by AnonymousSession, then the client
// address. RealIP should run first so the address is the caller's rather
// than a proxy's.
func ResolveSessionID(r *http.Request, bodyID string) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	if id := strings.TrimSpace(bodyID); id != "" {
		return id
	}
	if id, ok := r.Context().Value(anonymousKey{}).(string); ok {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
