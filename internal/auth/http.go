package auth

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"FreshBasket/pkg/kit"
)

const (
	loginLimitPerMin  = 5
	signupLimitPerMin = 3
	limitWindow       = 60 * time.Second
)

type Server struct {
	Users    *Directory
	Admin    *Admin
	Sessions *Sessions
	Log      *zap.Logger
	// OnLogout runs before the session is replaced, e.g. to drop the cart.
	OnLogout func(ctx context.Context, sid string) error
}

func (s *Server) Routes(r chi.Router) {
	loginLimiter := kit.NewIPRateLimiter(loginLimitPerMin, limitWindow)
	signupLimiter := kit.NewIPRateLimiter(signupLimitPerMin, limitWindow)
	adminLimiter := kit.NewIPRateLimiter(loginLimitPerMin, limitWindow)

	r.Route("/auth", func(rr chi.Router) {
		rr.With(loginLimiter.Middleware).Post("/login", s.handleLogin)
		rr.With(signupLimiter.Middleware).Post("/signup", s.handleSignup)
		rr.Post("/logout", s.handleLogout)
		rr.Get("/whoami", s.handleWhoAmI)
	})
	r.With(adminLimiter.Middleware).Post("/admin/login", s.handleAdminLogin)
}

type credentials struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResp struct {
	Session
	Token string `json:"token"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, error) {
	var c credentials
	err := kit.DecodeBody(w, r, &c, func(f url.Values) {
		c = credentials{
			Email:    f.Get("email"),
			Username: f.Get("username"),
			Password: f.Get("password"),
		}
	})
	return c, err
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(w, r)
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}

	u, err := s.Users.Signup(r.Context(), c.Email, c.Password)
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}
	// A new account is signed in straight away, on the same session id.
	sess := SessionFrom(r.Context())
	sess.Email = u.Email
	s.issue(w, r, http.StatusCreated, sess)
}

// handleLogin keeps the session id, so the anonymous cart survives login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(w, r)
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}

	u, err := s.Users.Authenticate(r.Context(), c.Email, c.Password)
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}

	sess := SessionFrom(r.Context())
	sess.Email = u.Email
	s.issue(w, r, http.StatusOK, sess)
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(w, r)
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}

	if err := s.Admin.Verify(c.Username, c.Password); err != nil {
		s.Log.Warn("admin login rejected", zap.String("username", c.Username))
		kit.WriteAppError(w, r, s.Log, err)
		return
	}

	sess := SessionFrom(r.Context())
	sess.Admin = true
	s.issue(w, r, http.StatusOK, sess)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	old := SessionFrom(r.Context())
	if s.OnLogout != nil && old.SID != "" {
		if err := s.OnLogout(r.Context(), old.SID); err != nil {
			kit.WriteAppError(w, r, s.Log, err)
			return
		}
	}
	s.issue(w, r, http.StatusOK, Session{SID: uuid.NewString()})
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, SessionFrom(r.Context()))
}

func (s *Server) issue(w http.ResponseWriter, r *http.Request, status int, sess Session) {
	tok, err := s.Sessions.Issue(w, sess)
	if err != nil {
		s.Log.Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, status, sessionResp{Session: sess, Token: tok})
}
