package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DimaChup/anki-flashcards-sub000/internal/api/handlers"
	"github.com/DimaChup/anki-flashcards-sub000/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		cardHandler := handlers.NewCardHandler(s.service)
		r.Post("/reviews", cardHandler.SubmitReview)
		r.Route("/cards", func(r chi.Router) {
			r.Get("/{cardID}", cardHandler.GetCard)
		})

		wordHandler := handlers.NewWordHandler(s.service)
		deckHandler := handlers.NewDeckHandler(s.service)
		r.Route("/databases", func(r chi.Router) {
			r.Get("/", wordHandler.ListDatabases)
			r.Post("/", wordHandler.CreateDatabase)

			r.Route("/{databaseID}", func(r chi.Router) {
				r.Post("/words", wordHandler.IngestWords)
				r.Get("/words", wordHandler.ListWords)

				r.Get("/queue", deckHandler.GetQueue)
				r.Get("/due", deckHandler.GetDue)
				r.Get("/deck", deckHandler.GetSummary)
				r.Post("/deck/generate", deckHandler.Generate)
				r.Post("/deck/reset", deckHandler.Reset)
				r.Get("/batches", deckHandler.GetBatches)
				r.Get("/stats", deckHandler.GetStats)
			})
		})

		r.Route("/words", func(r chi.Router) {
			r.Post("/{wordID}/known", wordHandler.SetKnown)
		})
	})
}

// healthCheck reports service and store liveness.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, code, map[string]interface{}{
		"status":  status,
		"service": "flashcards-api",
	})
}
