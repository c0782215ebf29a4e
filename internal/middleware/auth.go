package middleware

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/internal/auth"
	"github.com/Alturino/framedarchive/internal/common/constants"
	"github.com/Alturino/framedarchive/internal/config"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	inHttp "github.com/Alturino/framedarchive/internal/http"
	"github.com/Alturino/framedarchive/internal/log"
)

var guestSessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

type Authenticator struct {
	app      config.Application
	admin    config.Admin
	guestTTL time.Duration
}

func NewAuthenticator(app config.Application, admin config.Admin, guestTTL time.Duration) *Authenticator {
	return &Authenticator{app: app, admin: admin, guestTTL: guestTTL}
}

func bearerToken(r *http.Request) (string, bool) {
	authorization := strings.TrimSpace(r.Header.Get(inHttp.KEY_HEADER_AUTHORIZATION))
	if authorization == "" {
		return "", false
	}
	if len(authorization) < len("bearer ") || !strings.EqualFold(authorization[:len("bearer ")], "bearer ") {
		return "", true
	}
	return strings.TrimSpace(authorization[len("bearer "):]), true
}

// GuestSession reads the guest session id from the header first, then the cookie.
// Malformed ids are ignored.
func GuestSession(r *http.Request) string {
	session := strings.TrimSpace(r.Header.Get(constants.HEADER_GUEST_SESSION))
	if session == "" {
		if cookie, err := r.Cookie(constants.COOKIE_GUEST_SESSION); err == nil {
			session = strings.TrimSpace(cookie.Value)
		}
	}
	if !guestSessionPattern.MatchString(session) {
		return ""
	}
	return session
}

func (a *Authenticator) resolveUser(r *http.Request) (auth.Owner, bool, error) {
	token, present := bearerToken(r)
	if !present {
		return auth.Owner{}, false, nil
	}
	if token == "" {
		return auth.Owner{}, true, fmt.Errorf("failed reading bearer token with error=%w", inErrors.ErrTokenInvalid)
	}
	claims, err := auth.VerifyToken(r.Context(), a.app, token)
	if err != nil {
		return auth.Owner{}, true, err
	}
	return auth.Owner{UserID: claims.Subject, Email: claims.Email}, true, nil
}

func (a *Authenticator) setGuestCookie(w http.ResponseWriter, session string) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.COOKIE_GUEST_SESSION,
		Value:    session,
		Path:     "/",
		MaxAge:   int(a.guestTTL.Seconds()),
		HttpOnly: true,
		Secure:   a.app.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAuth rejects requests without a valid bearer token. A guest session sent along
// is kept on the owner so it can be merged.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context()).With().Str(log.KeyTag, "middleware RequireAuth").Logger()
		c := logger.WithContext(r.Context())

		owner, present, err := a.resolveUser(r)
		if !present {
			err = inErrors.ErrEmptyAuth
		}
		if err != nil {
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteErrorResponse(c, w, err)
			return
		}
		owner.GuestSession = GuestSession(r)

		logger = logger.With().Str(log.KeyUserID, owner.UserID).Logger()
		c = auth.AttachOwner(logger.WithContext(c), owner)
		next.ServeHTTP(w, r.WithContext(c))
	})
}

// OptionalAuth resolves a signed-in user when a bearer token is sent and falls back to
// the guest session, issuing a new one when the request carries none.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context()).With().Str(log.KeyTag, "middleware OptionalAuth").Logger()
		c := logger.WithContext(r.Context())

		owner, _, err := a.resolveUser(r)
		if err != nil {
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteErrorResponse(c, w, err)
			return
		}
		owner.GuestSession = GuestSession(r)
		if owner.IsGuest() && owner.GuestSession == "" {
			owner.GuestSession = strings.ReplaceAll(uuid.NewString(), "-", "")
			a.setGuestCookie(w, owner.GuestSession)
			logger.Trace().Msg("issued guest session")
		}

		logger = logger.With().Str(log.KeyOwner, owner.Key()).Logger()
		c = auth.AttachOwner(logger.WithContext(c), owner)
		next.ServeHTTP(w, r.WithContext(c))
	})
}

// AdminOnly must run after RequireAuth.
func (a *Authenticator) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := r.Context()
		owner := auth.OwnerFromContext(c)
		if owner.IsGuest() || !a.admin.IsAdmin(owner.Email) {
			err := fmt.Errorf("failed authorizing admin with error=%w", inErrors.ErrForbidden)
			zerolog.Ctx(c).Error().Err(err).Str(log.KeyUserID, owner.UserID).Msg(err.Error())
			inHttp.WriteErrorResponse(c, w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
