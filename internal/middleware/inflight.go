package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/internal/auth"
	inHttp "github.com/Alturino/framedarchive/internal/http"
	"github.com/Alturino/framedarchive/internal/inflight"
	"github.com/Alturino/framedarchive/internal/log"
)

// SingleFlight rejects a request while another request of the same owner and action is
// being served. It must run after the owner is resolved.
func SingleFlight(guard *inflight.Guard, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := r.Context()
			subject := ClientIP(r)
			if owner := auth.OwnerFromContext(c); owner.Valid() {
				subject = owner.Key()
			}
			key := fmt.Sprintf("%s:%s", action, subject)

			release, err := guard.Acquire(key)
			if err != nil {
				zerolog.Ctx(c).Warn().Err(err).Str(log.KeyAction, action).Msg(err.Error())
				inHttp.WriteErrorResponse(c, w, err)
				return
			}
			defer release()
			next.ServeHTTP(w, r)
		})
	}
}
