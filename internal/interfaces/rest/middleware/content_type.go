package middleware

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/DanielPopoola/payment-intake/internal/interfaces/rest"
)

// RequireJSON rejects bodies declared as anything other than JSON with 415.
// A request without a Content-Type header is let through.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		if contentType != "" && !isJSON(contentType) {
			rest.WriteErrorResponse(w, rest.NewErrorResponse(
				http.StatusUnsupportedMediaType,
				fmt.Sprintf("Content-Type '%s' is not supported", contentType),
				r.URL.Path,
			))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
