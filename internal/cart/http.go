package cart

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FreshBasket/pkg/kit"
)

type Server struct {
	Carts *Service
	Log   *zap.Logger
	// SessionID resolves the cart key for a request.
	SessionID func(*http.Request) string
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/cart", s.view)
	r.Get("/cart/count", s.count)
	r.Post("/cart/add", s.add)
	r.Post("/cart/update/{id}", s.update)
	r.Post("/cart/remove/{id}", s.remove)
}

// Qty is the field name the storefront forms and scripts post.
type addRequest struct {
	ProductID string      `json:"product_id"`
	Quantity  json.Number `json:"quantity"`
	Qty       json.Number `json:"qty"`
}

type updateRequest struct {
	Quantity json.Number `json:"quantity"`
	Qty      json.Number `json:"qty"`
}

func quantityOf(quantity, qty json.Number) string {
	if quantity != "" {
		return quantity.String()
	}
	return qty.String()
}

func formQuantity(f url.Values) json.Number {
	if v := f.Get("quantity"); v != "" {
		return json.Number(v)
	}
	return json.Number(f.Get("qty"))
}

func (s *Server) view(w http.ResponseWriter, r *http.Request) {
	v, err := s.Carts.View(r.Context(), s.SessionID(r))
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, v)
}

func (s *Server) count(w http.ResponseWriter, r *http.Request) {
	n, err := s.Carts.Count(r.Context(), s.SessionID(r))
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := kit.DecodeBody(w, r, &req, func(f url.Values) {
		req.ProductID = f.Get("product_id")
		req.Quantity = formQuantity(f)
	}); err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}

	qty, err := ParseQuantity(quantityOf(req.Quantity, req.Qty))
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}

	n, err := s.Carts.Add(r.Context(), s.SessionID(r), req.ProductID, qty)
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := kit.DecodeBody(w, r, &req, func(f url.Values) {
		req.Quantity = formQuantity(f)
	}); err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}

	// On the edit form a blank quantity means zero, not one.
	raw := quantityOf(req.Quantity, req.Qty)
	if raw == "" {
		raw = "0"
	}
	qty, err := ParseQuantity(raw)
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}

	v, err := s.Carts.SetQuantity(r.Context(), s.SessionID(r), chi.URLParam(r, "id"), qty)
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, v)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	v, err := s.Carts.Remove(r.Context(), s.SessionID(r), chi.URLParam(r, "id"))
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, v)
}
