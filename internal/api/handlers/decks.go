package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/DimaChup/anki-flashcards-sub000/internal/api/response"
	"github.com/DimaChup/anki-flashcards-sub000/internal/deck"
)

// Per-session defaults when the caller does not cap the queue.
const (
	defaultNewLimit    = 20
	defaultReviewLimit = 200
)

// DeckHandler handles study-queue and deck lifecycle requests.
type DeckHandler struct {
	service     *deck.Service
	newLimit    int
	reviewLimit int
}

// NewDeckHandler creates a new DeckHandler. NEW_CARDS_PER_DAY and
// REVIEWS_PER_DAY override the queue cap defaults.
func NewDeckHandler(service *deck.Service) *DeckHandler {
	return &DeckHandler{
		service:     service,
		newLimit:    envIntOr("NEW_CARDS_PER_DAY", defaultNewLimit),
		reviewLimit: envIntOr("REVIEWS_PER_DAY", defaultReviewLimit),
	}
}

// GetQueue returns the study queue for a database: due cards first, then
// new cards gated by the active batch.
func (h *DeckHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	databaseID := chi.URLParam(r, "databaseID")
	owner, err := ownerFrom(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	newLimit := queryIntOr(r, "newLimit", h.newLimit)
	reviewLimit := queryIntOr(r, "reviewLimit", h.reviewLimit)

	queue, err := h.service.BuildStudyQueue(r.Context(), owner, databaseID, newLimit, reviewLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, queue)
}

// GetDue returns the cards whose review is due now.
func (h *DeckHandler) GetDue(w http.ResponseWriter, r *http.Request) {
	databaseID := chi.URLParam(r, "databaseID")
	owner, err := ownerFrom(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	limit := queryIntOr(r, "limit", h.reviewLimit)

	cards, err := h.service.DueCards(r.Context(), owner, databaseID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, cards)
}

// GetSummary returns the deck's per-state counts.
func (h *DeckHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	databaseID := chi.URLParam(r, "databaseID")
	owner, err := ownerFrom(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), owner, databaseID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, summary)
}

// GenerateRequest selects what to mint: the whole candidate pool, or just
// the listed word ids.
type GenerateRequest struct {
	Owner   string   `json:"owner"`
	WordIDs []string `json:"wordIds,omitempty"`
}

// Generate mints cards for a database's eligible words.
func (h *DeckHandler) Generate(w http.ResponseWriter, r *http.Request) {
	databaseID := chi.URLParam(r, "databaseID")

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Owner == "" {
		response.BadRequest(w, errors.New("owner is required"))
		return
	}

	result, err := h.service.Generate(r.Context(), req.Owner, databaseID, req.WordIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, result)
}

// ResetRequest confirms the owner for a destructive deck reset.
type ResetRequest struct {
	Owner string `json:"owner"`
}

// Reset deletes the deck, its history and batches, then regenerates from
// the word source. Clients confirm with the user before calling this.
func (h *DeckHandler) Reset(w http.ResponseWriter, r *http.Request) {
	databaseID := chi.URLParam(r, "databaseID")

	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Owner == "" {
		response.BadRequest(w, errors.New("owner is required"))
		return
	}

	result, err := h.service.Reset(r.Context(), req.Owner, databaseID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, result)
}

// GetBatches returns the database's batch progression.
func (h *DeckHandler) GetBatches(w http.ResponseWriter, r *http.Request) {
	databaseID := chi.URLParam(r, "databaseID")
	owner, err := ownerFrom(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	batches, err := h.service.Batches(r.Context(), owner, databaseID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, batches)
}

// GetStats returns review activity statistics for a database.
func (h *DeckHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	databaseID := chi.URLParam(r, "databaseID")
	owner, err := ownerFrom(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	stats, err := h.service.Stats(r.Context(), owner, databaseID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, stats)
}

// queryIntOr parses a non-negative integer query parameter, falling back
// on absence or garbage. Zero is a valid cap (an explicitly empty
// selection), so only negatives are rejected.
func queryIntOr(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
