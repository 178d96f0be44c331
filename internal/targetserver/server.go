// Package targetserver is a small HTTP service to point simulations at. It
// serves JSON, HTML and binary responses under parameterized paths.
package targetserver

import (
	"encoding/json"
	"html"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// NewRouter returns the demo routes. Requests are logged at debug level.
func NewRouter(logger log.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(allowOptions)
	r.Use(middleware.GetHead)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Post("/users", handleCreate("user"))
	r.Get("/users/{id}", handleUser)
	r.Put("/users/{id}", handleUser)
	r.Delete("/users/{id}", handleDelete)

	r.Post("/orders", handleCreate("order"))
	r.Get("/orders/{id}", handleOrder)
	r.Get("/orders/{id}/items/{itemID}", handleOrderItem)

	r.Get("/search", handleSearch)
	r.Get("/blob", handleBlob)
	r.Get("/broken", handleBroken)
	r.Get("/status/{code}", handleStatus)
	r.HandleFunc("/echo", handleEcho)
	return r
}

// allowOptions answers OPTIONS for every path without routing.
func allowOptions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", "GET, HEAD, POST, PUT, DELETE, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	})
}

func requestLogger(logger log.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.WithFields(log.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"latency_ms": time.Since(start).Milliseconds(),
			}).Debug("served request")
		})
	}
}

func handleUser(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{"id": chi.URLParam(r, "id"), "method": r.Method}
	if r.Method == http.MethodPut {
		payload["updated"] = decodeBody(r)
	}
	respondJSON(w, http.StatusOK, payload)
}

func handleDelete(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"id": chi.URLParam(r, "id"), "deleted": true})
}

func handleCreate(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, map[string]any{
			"kind":    kind,
			"created": decodeBody(r),
		})
	}
}

func handleOrder(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"id":     chi.URLParam(r, "id"),
		"status": "shipped",
		"items":  []string{"alpha", "beta"},
	})
}

func handleOrderItem(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"order_id": chi.URLParam(r, "id"),
		"item_id":  chi.URLParam(r, "itemID"),
	})
}

func handleSearch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, "<html><body><p>results for "+html.EscapeString(r.URL.Query().Get("q"))+"</p></body></html>")
}

func handleBlob(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write([]byte{0x00, 0x01, 0x02, 0xff})
}

func handleBroken(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"truncated":`)
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil || code < 100 || code > 599 {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid status code"})
		return
	}
	respondJSON(w, code, map[string]any{"status": code})
}

func handleEcho(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	respondJSON(w, http.StatusOK, map[string]any{
		"method":       r.Method,
		"path":         r.URL.Path,
		"query":        r.URL.RawQuery,
		"headers":      r.Header,
		"body":         string(body),
		"content_type": r.Header.Get("Content-Type"),
	})
}

// decodeBody returns the JSON request body, or its raw text when it is not JSON.
func decodeBody(r *http.Request) any {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || len(data) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	return v
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
