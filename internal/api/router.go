// internal/api/router.go
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sarcascoder/Netflix-clone/internal/contract"
)

// NewRouter registers every contract operation plus /health and /metrics.
func NewRouter(handler *CatalogHandler, logger *slog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestID, CORS, Observe(logger))

	router.HandleFunc("/health", Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	handlers := map[string]http.HandlerFunc{
		contract.ListTitles.Name:          handler.ListTitles,
		contract.GetTitle.Name:            handler.GetTitle,
		contract.ListWatchlist.Name:       handler.ListWatchlist,
		contract.AddToWatchlist.Name:      handler.AddToWatchlist,
		contract.RemoveFromWatchlist.Name: handler.RemoveFromWatchlist,
	}
	for _, op := range contract.Operations() {
		router.HandleFunc(op.MuxPath(), handlers[op.Name]).
			Methods(op.Method, http.MethodOptions).
			Name(op.Name)
	}

	// a non-numeric id never matches a route, so it lands here as a contract 404
	router.NotFoundHandler = RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusNotFound, contract.ErrorBody{Message: "Not found"})
	}))
	router.MethodNotAllowedHandler = RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusMethodNotAllowed, contract.ErrorBody{Message: "Method not allowed"})
	}))

	return router
}

func writeErrorBody(w http.ResponseWriter, status int, body contract.ErrorBody) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
