package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DimaChup/anki-flashcards-sub000/internal/api/response"
	"github.com/DimaChup/anki-flashcards-sub000/internal/deck"
	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

// WordHandler handles the word-source side: databases, entries and the
// known flag.
type WordHandler struct {
	service *deck.Service
}

// NewWordHandler creates a new WordHandler.
func NewWordHandler(service *deck.Service) *WordHandler {
	return &WordHandler{service: service}
}

// CreateDatabaseRequest registers a word database.
type CreateDatabaseRequest struct {
	Owner    string `json:"owner"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

// CreateDatabase registers a word database to ingest analysis output into.
func (h *WordHandler) CreateDatabase(w http.ResponseWriter, r *http.Request) {
	var req CreateDatabaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Owner == "" {
		response.BadRequest(w, errors.New("owner is required"))
		return
	}
	if req.Name == "" {
		response.BadRequest(w, errors.New("name is required"))
		return
	}

	wdb, err := h.service.CreateDatabase(r.Context(), req.Owner, req.Name, req.Language)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, wdb)
}

// WordInput is one analyzed word as the ingest endpoint accepts it.
// FirstInstance defaults to true when omitted.
type WordInput struct {
	Word          string   `json:"word"`
	PartOfSpeech  string   `json:"partOfSpeech"`
	Lemma         string   `json:"lemma"`
	Translations  []string `json:"translations"`
	Sentence      string   `json:"sentence"`
	Position      int      `json:"position"`
	FirstInstance *bool    `json:"firstInstance,omitempty"`
	Known         bool     `json:"known"`
}

// IngestRequest bulk-loads analyzed words into a database.
type IngestRequest struct {
	Owner string      `json:"owner"`
	Words []WordInput `json:"words"`
}

// IngestWords loads analyzed words into the word source.
func (h *WordHandler) IngestWords(w http.ResponseWriter, r *http.Request) {
	databaseID := chi.URLParam(r, "databaseID")

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Owner == "" {
		response.BadRequest(w, errors.New("owner is required"))
		return
	}
	if len(req.Words) == 0 {
		response.BadRequest(w, errors.New("words is empty"))
		return
	}

	entries := make([]models.WordEntry, 0, len(req.Words))
	for _, in := range req.Words {
		first := true
		if in.FirstInstance != nil {
			first = *in.FirstInstance
		}
		entries = append(entries, models.WordEntry{
			Word:          in.Word,
			PartOfSpeech:  in.PartOfSpeech,
			Lemma:         in.Lemma,
			Translations:  in.Translations,
			Sentence:      in.Sentence,
			Position:      in.Position,
			FirstInstance: first,
			Known:         in.Known,
		})
	}

	result, err := h.service.IngestWords(r.Context(), req.Owner, databaseID, entries)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, result)
}

// ListWords returns a database's word entries; eligible=true narrows to
// minting candidates.
func (h *WordHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	databaseID := chi.URLParam(r, "databaseID")
	owner, err := ownerFrom(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	eligibleOnly := r.URL.Query().Get("eligible") == "true"

	words, err := h.service.Words(r.Context(), owner, databaseID, eligibleOnly)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, words)
}

// KnownRequest flips a word's known flag.
type KnownRequest struct {
	Owner string `json:"owner"`
	Known bool   `json:"known"`
}

// SetKnown marks a word as already known (or unknown again). Known words
// stop being minting candidates; existing cards keep their schedule.
func (h *WordHandler) SetKnown(w http.ResponseWriter, r *http.Request) {
	wordID := chi.URLParam(r, "wordID")

	var req KnownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Owner == "" {
		response.BadRequest(w, errors.New("owner is required"))
		return
	}

	entry, err := h.service.SetWordKnown(r.Context(), req.Owner, wordID, req.Known)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, entry)
}

// ListDatabases returns the word databases visible to the owner.
func (h *WordHandler) ListDatabases(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFrom(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	dbs, err := h.service.Databases(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, dbs)
}
