package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"failmarket/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeyUser contextKey = "user"

const accessTokenCookieName = "fm_access_token"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth verifies the access token and resolves the user row for the
// token's subject, creating it on first login. Requests without a valid
// token are rejected.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			s.logger.WithError(err).Debug("authentication failed")
			s.respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth resolves the user when a valid token is present and carries
// on anonymously when it isn't.
func (s *Service) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate extracts the access token from the Authorization header or
// the encrypted cookie, verifies it against the identity provider's JWKS,
// and maps the subject onto a user row.
func (s *Service) authenticate(r *http.Request) (*types.User, error) {
	accessToken, err := s.accessToken(r)
	if err != nil {
		return nil, err
	}

	set, err := s.jwksCache.Lookup(r.Context(), s.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, errors.New("no subject claim in JWT")
	}

	user, err := s.userRepo.UserByAuthSubject(r.Context(), subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, types.ErrUserNotFound) {
		return nil, err
	}

	// First request for this subject: create the row from the claims.
	var email, name string
	_ = token.Get("email", &email)
	_ = token.Get("name", &name)

	return s.userRepo.UpsertIdentity(r.Context(), subject, email, name)
}

func (s *Service) accessToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			return "", errors.New("authorization header is not a bearer token")
		}
		return token, nil
	}

	cookie, err := r.Cookie(accessTokenCookieName)
	if err != nil {
		return "", errors.New("no access token")
	}

	var accessToken string
	if err := s.cookie.Decode(accessTokenCookieName, cookie.Value, &accessToken); err != nil {
		return "", fmt.Errorf("failed to decrypt access token: %w", err)
	}

	return accessToken, nil
}

func (s *Service) userFromContext(ctx context.Context) (*types.User, error) {
	user, ok := ctx.Value(contextKeyUser).(*types.User)
	if !ok {
		return nil, errors.New("user not found in context")
	}
	return user, nil
}
