package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/camden-git/photocmsbackend/repository"
)

// APIKeyAuth gates the public read API behind bearer API keys. The
// presented token is bcrypt-compared against every stored key, so a
// leaked database never reveals usable plaintext keys.
func APIKeyAuth(keyRepo repository.APIKeyRepositoryInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				http.Error(w, "Authorization header format must be Bearer {token}", http.StatusUnauthorized)
				return
			}
			token := parts[1]

			keys, err := keyRepo.ListAll()
			if err != nil {
				log.Printf("Error loading API keys: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			for i := range keys {
				if keys[i].CheckKey(token) {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
		})
	}
}
