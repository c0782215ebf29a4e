package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/framedarchive/internal/errors"
	inHttp "github.com/Alturino/framedarchive/internal/http"
	"github.com/Alturino/framedarchive/internal/otel"
)

func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, span := otel.Tracer.Start(r.Context(), "RecoverPanic")
		defer span.End()

		logger := zerolog.Ctx(c).With().Str("tag", "RecoverPanic").Logger()
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			err, ok := recovered.(error)
			if !ok {
				err = fmt.Errorf("%v", recovered)
			}
			if err == http.ErrAbortHandler {
				panic(recovered)
			}
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Stack().Msg("recovered from panic")
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusInternalServerError,
				"message":    "Internal Server Error",
			})
		}()

		next.ServeHTTP(w, r.WithContext(c))
	})
}
