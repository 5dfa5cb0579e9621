package http

import "net/http"

// PayPalConfig handles GET /api/config/paypal. The storefront loads the
// PayPal SDK with this client id; it is returned as plain text.
func PayPalConfig(clientID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(clientID))
	}
}
