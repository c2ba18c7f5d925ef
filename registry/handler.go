package registry

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Handler exposes the registry over HTTP. HEAD answers 200 so that other instances can
// probe this one; GET lists the running applications as JSON.
func Handler(r *Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			apps := r.ListRunning(req.Context())
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(struct {
				Self Webapp   `json:"self"`
				Apps []Webapp `json:"apps"`
			}{Self: r.Self(), Apps: apps}); err != nil {
				r.logger.Error("Failed to write application list", zap.Error(err))
			}
		default:
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		}
	})
}
