// Package httpapi exposes the search pipeline and assistants over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"pricecompare/internal/service"
)

const defaultSimilarK = 5

type Handler struct {
	session *service.Session
	log     zerolog.Logger
}

func NewHandler(session *service.Session, log zerolog.Logger) *Handler {
	return &Handler{session: session, log: log.With().Str("component", "http").Logger()}
}

// NewRouter builds the chi router with middleware and all routes.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/healthz", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/search", h.Search)
		r.Get("/search/last", h.LastResult)
		r.Get("/products/{index}", h.Product)
		r.Get("/similar", h.Similar)
		r.Post("/chat", h.Chat)
		r.Delete("/session", h.ClearSession)
		r.Delete("/index", h.ClearIndex)
	})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]any{"status": "ok"})
}

type searchRequest struct {
	Query string `json:"query"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidParams, "invalid JSON body")
		return
	}
	q := strings.TrimSpace(req.Query)
	if q == "" {
		writeError(w, http.StatusBadRequest, CodeMissingParams, "query is required")
		return
	}
	var steps []string
	res := h.session.Search(r.Context(), q, func(step string, _ int) { steps = append(steps, step) })
	writeSuccess(w, map[string]any{
		"request":        res.Request,
		"recommendation": res.Recommendation,
		"offers":         res.Offers,
		"steps":          steps,
	})
}

func (h *Handler) LastResult(w http.ResponseWriter, r *http.Request) {
	res, ok := h.session.Last()
	if !ok {
		writeError(w, http.StatusNotFound, CodeNoSearch, "")
		return
	}
	writeSuccess(w, res)
}

func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidParams, "index must be an integer")
		return
	}
	offer, err := h.session.Product(i)
	switch {
	case errors.Is(err, service.ErrNoSearch):
		writeError(w, http.StatusNotFound, CodeNoSearch, "")
	case err != nil:
		writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
	default:
		writeSuccess(w, offer)
	}
}

func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, CodeMissingParams, "q is required")
		return
	}
	k := defaultSimilarK
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, CodeInvalidParams, "k must be a positive integer")
			return
		}
		k = n
	}
	results, err := h.session.Index().QuerySimilar(r.Context(), q, k)
	if err != nil {
		h.log.Error().Err(err).Msg("similarity query failed")
		writeError(w, http.StatusBadGateway, CodeIndexError, err.Error())
		return
	}
	writeSuccess(w, results)
}

type chatRequest struct {
	Message   string `json:"message"`
	Assistant string `json:"assistant"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidParams, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, CodeMissingParams, "message is required")
		return
	}
	var reply string
	switch strings.ToLower(req.Assistant) {
	case "", "shopping":
		reply = h.session.ChatShopping(r.Context(), req.Message)
	case "research":
		reply = h.session.ChatResearch(r.Context(), req.Message)
	default:
		writeError(w, http.StatusBadRequest, CodeInvalidParams, "assistant must be shopping or research")
		return
	}
	writeSuccess(w, map[string]any{"reply": reply})
}

func (h *Handler) ClearSession(w http.ResponseWriter, r *http.Request) {
	h.session.Clear()
	writeSuccess(w, map[string]any{})
}

func (h *Handler) ClearIndex(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Index().Clear(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("clear index failed")
		writeError(w, http.StatusBadGateway, CodeIndexError, err.Error())
		return
	}
	writeSuccess(w, map[string]any{})
}
