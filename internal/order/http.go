package order

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FreshBasket/internal/auth"
	"FreshBasket/pkg/kit"
)

type Server struct {
	Checkout *Checkout
	Orders   *Service
	Log      *zap.Logger
}

// Routes mounts checkout and order history. Every route needs a logged-in user.
func (s *Server) Routes(r chi.Router) {
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)
		pr.Get("/checkout", s.prepare)
		pr.Post("/checkout", s.place)
		pr.Get("/orders", s.list)
		pr.Get("/orders/{id}", s.get)
	})
}

type placeReq struct {
	auth.Address
	Payment string `json:"payment"`
}

func (s *Server) prepare(w http.ResponseWriter, r *http.Request) {
	sum, err := s.Checkout.Prepare(r.Context(), auth.SessionFrom(r.Context()))
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, sum)
}

func (s *Server) place(w http.ResponseWriter, r *http.Request) {
	var req placeReq
	if err := kit.DecodeBody(w, r, &req, func(f url.Values) {
		req = placeReq{
			Address: auth.Address{
				Name:    f.Get("name"),
				Phone:   f.Get("phone"),
				Address: f.Get("address"),
				Pincode: f.Get("pincode"),
				Taluk:   f.Get("taluk"),
			},
			Payment: f.Get("payment"),
		}
	}); err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}

	o, err := s.Checkout.Place(r.Context(), auth.SessionFrom(r.Context()), req.Address, req.Payment)
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, o)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	orders, err := s.Orders.ListByUser(r.Context(), auth.SessionFrom(r.Context()).Email)
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	kit.WriteJSON(w, http.StatusOK, orders)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	o, err := s.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}
	if o.UserEmail != auth.SessionFrom(r.Context()).Email {
		kit.WriteError(w, r, http.StatusForbidden, "forbidden", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}
