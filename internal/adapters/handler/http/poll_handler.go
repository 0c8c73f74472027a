package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gatherly/api/internal/core/domain"
	"github.com/gatherly/api/internal/core/ports"
)

type PollHandler struct {
	service ports.PollService
}

func NewPollHandler(service ports.PollService) *PollHandler {
	return &PollHandler{
		service: service,
	}
}

type optionRequest struct {
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

type createPollRequest struct {
	Title                   string          `json:"title"`
	Description             string          `json:"description"`
	Location                string          `json:"location"`
	TimeZone                string          `json:"time_zone"`
	Options                 []optionRequest `json:"options"`
	SpaceID                 *uuid.UUID      `json:"space_id"`
	HideParticipants        bool            `json:"hide_participants"`
	RequireParticipantEmail bool            `json:"require_participant_email"`
}

// CreatePoll godoc
// @Summary      Creates a scheduling poll
// @Description  Creates a poll with its candidate options. Returns the poll including its admin token; the admin token is only ever shown to the creator.
// @Tags         polls
// @Accept       json
// @Produce      json
// @Success      201  {object}  domain.Poll
// @Failure      400
// @Router       /api/polls [post]
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.CreatePollInput{
		Title:                   req.Title,
		Description:             req.Description,
		Location:                req.Location,
		TimeZone:                req.TimeZone,
		SpaceID:                 req.SpaceID,
		HideParticipants:        req.HideParticipants,
		RequireParticipantEmail: req.RequireParticipantEmail,
	}
	for _, opt := range req.Options {
		input.Options = append(input.Options, ports.OptionInput{
			StartTime:       opt.StartTime,
			DurationMinutes: opt.DurationMinutes,
		})
	}

	poll, err := h.service.Create(r.Context(), input, callerFromRequest(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, poll)
}

// GetPoll godoc
// @Summary      Fetches a poll by id
// @Description  Returns the poll with its options. The admin token is redacted unless the caller holds the admin capability.
// @Tags         polls
// @Produce      json
// @Success      200  {object}  domain.Poll
// @Failure      404
// @Router       /api/polls/{id} [get]
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	poll, err := h.service.Get(r.Context(), pollID, callerFromRequest(r), adminTokenFromRequest(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) GetByAdminToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "adminToken")
	if token == "" {
		http.Error(w, "missing admin token", http.StatusBadRequest)
		return
	}

	poll, err := h.service.GetByAdminToken(r.Context(), token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) GetByParticipantToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "participantToken")
	if token == "" {
		http.Error(w, "missing participant token", http.StatusBadRequest)
		return
	}

	poll, err := h.service.GetByParticipantToken(r.Context(), token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, poll)
}

// ListMine godoc
// @Summary      Lists polls owned by the caller
// @Tags         polls
// @Produce      json
// @Success      200  {array}  domain.Poll
// @Router       /api/polls [get]
func (h *PollHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	polls, err := h.service.ListMine(r.Context(), callerFromRequest(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if polls == nil {
		polls = []*domain.Poll{}
	}

	respondJSON(w, http.StatusOK, polls)
}

type updatePollRequest struct {
	Title                   *string `json:"title"`
	Description             *string `json:"description"`
	Location                *string `json:"location"`
	TimeZone                *string `json:"time_zone"`
	HideParticipants        *bool   `json:"hide_participants"`
	RequireParticipantEmail *bool   `json:"require_participant_email"`
}

// UpdatePoll godoc
// @Summary      Updates poll details
// @Description  Partial update of title, description, location, time zone and visibility settings. Finalized polls reject updates.
// @Tags         polls
// @Accept       json
// @Produce      json
// @Success      200  {object}  domain.Poll
// @Failure      403
// @Failure      409
// @Router       /api/polls/{id} [patch]
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	var req updatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.UpdatePollInput{
		PollID:                  pollID,
		Title:                   req.Title,
		Description:             req.Description,
		Location:                req.Location,
		TimeZone:                req.TimeZone,
		HideParticipants:        req.HideParticipants,
		RequireParticipantEmail: req.RequireParticipantEmail,
	}

	poll, err := h.service.Update(r.Context(), input, callerFromRequest(r), adminTokenFromRequest(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, poll)
}

type finalizeRequest struct {
	OptionID uuid.UUID `json:"option_id"`
}

// FinalizePoll godoc
// @Summary      Finalizes a poll on one option
// @Description  Picks the winning option and closes the poll permanently. A second finalize attempt conflicts.
// @Tags         polls
// @Accept       json
// @Produce      json
// @Success      200  {object}  domain.Poll
// @Failure      409
// @Router       /api/polls/{id}/finalize [post]
func (h *PollHandler) FinalizePoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	poll, err := h.service.Finalize(r.Context(), pollID, req.OptionID, callerFromRequest(r), adminTokenFromRequest(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) PausePoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	poll, err := h.service.Pause(r.Context(), pollID, callerFromRequest(r), adminTokenFromRequest(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) ResumePoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	poll, err := h.service.Resume(r.Context(), pollID, callerFromRequest(r), adminTokenFromRequest(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, poll)
}

// DeletePoll godoc
// @Summary      Soft-deletes a poll
// @Description  Marks the poll deleted. It stops appearing in listings and rejects responses; a later housekeeping run purges it permanently.
// @Tags         polls
// @Success      204
// @Failure      403
// @Router       /api/polls/{id} [delete]
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), pollID, callerFromRequest(r), adminTokenFromRequest(r)); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetScores godoc
// @Summary      Aggregated response counts per option
// @Tags         polls
// @Produce      json
// @Success      200
// @Router       /api/polls/{id}/scores [get]
func (h *PollHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	scores, err := h.service.OptionScores(r.Context(), pollID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, scores)
}
