package transport

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS answers preflight requests and adds CORS headers for the allowed
// origins. "*" or an empty list allows any origin, without credentials.
// Explicit origins are allowed to send cookies.
func CORS(next http.Handler, origins []string) http.Handler {
	anyOrigin := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			anyOrigin = true
		}
	}
	if anyOrigin {
		origins = []string{"*"}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: !anyOrigin,
		MaxAge:           12 * 60 * 60,
	}).Handler(next)
}
