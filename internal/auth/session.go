package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"FreshBasket/pkg/kit"
)

const CookieName = "fb_session"

type ctxKey struct{}

// Sessions reads the session token from the fb_session cookie or an
// "Authorization: Bearer" header. A missing or invalid token starts a new
// anonymous session.
type Sessions struct {
	Tokens *TokenMaker
	TTL    time.Duration
	Secure bool
	Log    *zap.Logger
}

func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.fromRequest(r)
		if !ok {
			sess = Session{SID: uuid.NewString()}
			if _, err := s.Issue(w, sess); err != nil {
				s.Log.Error("issue session", zap.Error(err))
				kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// Issue signs sess and sets it as the session cookie. The token is returned
// for clients that prefer the Authorization header.
func (s *Sessions) Issue(w http.ResponseWriter, sess Session) (string, error) {
	tok, err := s.Tokens.New(sess, s.TTL)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(s.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return tok, nil
}

func (s *Sessions) fromRequest(r *http.Request) (Session, bool) {
	tok, ok := kit.BearerToken(r)
	if !ok {
		c, err := r.Cookie(CookieName)
		if err != nil || c.Value == "" {
			return Session{}, false
		}
		tok = c.Value
	}

	sess, err := s.Tokens.Parse(tok)
	if err != nil {
		return Session{}, false
	}
	return sess, true
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func SessionFrom(ctx context.Context) Session {
	s, _ := ctx.Value(ctxKey{}).(Session)
	return s
}

// SessionID is the cart key for a request.
func SessionID(r *http.Request) string {
	return SessionFrom(r.Context()).SID
}

// RequireUser rejects anonymous sessions.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFrom(r.Context()).Email == "" {
			kit.WriteError(w, r, http.StatusUnauthorized, "login required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin is the admin gate for catalog mutation.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFrom(r.Context()).Admin {
			kit.WriteError(w, r, http.StatusUnauthorized, "admin login required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
