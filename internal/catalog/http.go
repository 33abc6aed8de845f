package catalog

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FreshBasket/pkg/kit"
)

type Server struct {
	Catalog *Service
	Log     *zap.Logger
}

// Routes mounts the public product endpoints.
func (s *Server) Routes(r chi.Router) {
	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)
}

// AdminRoutes mounts catalog mutation. The caller is responsible for the admin gate.
func (s *Server) AdminRoutes(r chi.Router) {
	r.Get("/products", s.list)
	r.Post("/products", s.create)
	r.Put("/products/{id}", s.update)
	r.Delete("/products/{id}", s.delete)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	p, err := s.Catalog.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}

	p, err := s.Catalog.Create(r.Context(), in)
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}

	s.Log.Info("product created", zap.String("id", p.ID), zap.String("name", p.Name))
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}

	p, err := s.Catalog.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Catalog.Delete(r.Context(), id); err != nil {
		kit.WriteAppError(w, r, s.Log, err)
		return
	}

	s.Log.Info("product deleted", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func decodeInput(w http.ResponseWriter, r *http.Request) (Input, error) {
	var in Input
	err := kit.DecodeBody(w, r, &in, func(f url.Values) {
		in = Input{
			Name:  f.Get("name"),
			Price: f.Get("price"),
			MRP:   f.Get("mrp"),
			Image: f.Get("image"),
		}
	})
	return in, err
}
