package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// CORSMiddleware allows every origin. The origin is echoed back rather than
// answered with "*" because credentials are allowed.
func CORSMiddleware(next http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOriginValidator(func(string) bool { return true }),
		handlers.AllowCredentials(),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
		handlers.OptionStatusCode(http.StatusNoContent),
	)(next)
}
