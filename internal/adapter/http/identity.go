package httpadapter

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type identityKey struct{}

// caller is who the gateway says is making the request.
type caller struct {
	Actor        string
	AdvertiserID uuid.UUID
}

// identity reads the gateway headers into the request context. A malformed
// advertiser id is rejected outright.
func identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := caller{Actor: r.Header.Get("X-Actor-ID")}
		if raw := r.Header.Get("X-Advertiser-ID"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				writeMessage(w, http.StatusBadRequest, "invalid X-Advertiser-ID")
				return
			}
			c.AdvertiserID = id
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, c)))
	})
}

// requireActor refuses requests without an actor, since every mutation is
// audited under one.
func requireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callerFrom(r.Context()).Actor == "" {
			writeMessage(w, http.StatusUnauthorized, "missing X-Actor-ID")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func callerFrom(ctx context.Context) caller {
	c, _ := ctx.Value(identityKey{}).(caller)
	return c
}
