package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DimaChup/anki-flashcards-sub000/internal/api/response"
	"github.com/DimaChup/anki-flashcards-sub000/internal/deck"
	"github.com/DimaChup/anki-flashcards-sub000/internal/spaced_repetition"
	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

// CardHandler handles card and review API requests.
type CardHandler struct {
	service *deck.Service
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(service *deck.Service) *CardHandler {
	return &CardHandler{service: service}
}

// ReviewRequest is the body of a review submission. Rating uses the
// caller-facing 1-4 scale.
type ReviewRequest struct {
	CardID string `json:"cardId"`
	Owner  string `json:"owner"`
	Rating int    `json:"rating"`
}

// ReviewResponse carries the updated card plus the fields a study client
// shows immediately after grading.
type ReviewResponse struct {
	Card         *models.Card `json:"card"`
	NextReviewAt time.Time    `json:"nextReviewAt"`
	IntervalDays int          `json:"intervalDays"`
}

// SubmitReview applies one rated review to a card.
func (h *CardHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.CardID == "" {
		response.BadRequest(w, errors.New("cardId is required"))
		return
	}
	if req.Owner == "" {
		response.BadRequest(w, errors.New("owner is required"))
		return
	}

	rating, err := spaced_repetition.ParseRating(req.Rating)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	result, err := h.service.Review(r.Context(), req.Owner, req.CardID, rating)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, ReviewResponse{
		Card:         result.Card,
		NextReviewAt: result.NextReviewAt,
		IntervalDays: result.IntervalDays,
	})
}

// GetCard returns a single card scoped to its owner.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	if cardID == "" {
		response.BadRequest(w, errors.New("card ID is required"))
		return
	}
	owner, err := ownerFrom(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	card, err := h.service.Card(r.Context(), owner, cardID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, card)
}
