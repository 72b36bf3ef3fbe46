package handlers

import (
	"os"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

var tokenAuth *jwtauth.JWTAuth

func SetRoutes(r *chi.Mux, h *Handler) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Get("/health", h.HealthHandler)
		r.Get("/dashboard/big-wins", h.GetBigWins)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/history", h.GetGameHistory)
			r.Get("/transactions", h.GetTransactions)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/transactions", h.GetAdminTransactions)
				r.Get("/games", h.GetAdminGames)
				r.Get("/statistics", h.GetAdminStatistics)
				r.Get("/users", h.GetAdminUsers)
			})
		})
	})
}

func InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)
}
