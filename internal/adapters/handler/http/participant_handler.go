package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gatherly/api/internal/core/domain"
	"github.com/gatherly/api/internal/core/ports"
)

type ParticipantHandler struct {
	service ports.ResponseService
}

func NewParticipantHandler(service ports.ResponseService) *ParticipantHandler {
	return &ParticipantHandler{
		service: service,
	}
}

type voteSubmissionRequest struct {
	OptionID uuid.UUID       `json:"option_id"`
	Type     domain.VoteType `json:"type"`
}

type submitResponseRequest struct {
	Name  string                  `json:"name"`
	Email string                  `json:"email"`
	Votes []voteSubmissionRequest `json:"votes"`
}

// SubmitResponse godoc
// @Summary      Submits a new response to a poll
// @Description  Creates a participant and persists their full vote set atomically. Paused polls reject submissions from non-admins; finalized polls reject all.
// @Tags         participants
// @Accept       json
// @Produce      json
// @Success      201  {object}  domain.Participant
// @Failure      400
// @Failure      403
// @Failure      409
// @Router       /api/polls/{id}/participants [post]
func (h *ParticipantHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	var req submitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.SubmitResponseInput{
		PollID: pollID,
		Name:   req.Name,
		Email:  req.Email,
	}
	for _, vote := range req.Votes {
		input.Votes = append(input.Votes, ports.VoteSubmission{
			OptionID: vote.OptionID,
			Type:     vote.Type,
		})
	}

	participant, err := h.service.Submit(r.Context(), input, callerFromRequest(r), adminTokenFromRequest(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, participant)
}

// UpdateResponse godoc
// @Summary      Replaces a participant's vote set
// @Description  Full replace: the submitted votes become the participant's entire response, dropping votes on options left out.
// @Tags         participants
// @Accept       json
// @Produce      json
// @Success      200  {object}  domain.Participant
// @Failure      403
// @Router       /api/polls/{id}/participants/{participantID} [put]
func (h *ParticipantHandler) UpdateResponse(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}
	participantID, err := uuid.Parse(chi.URLParam(r, "participantID"))
	if err != nil {
		http.Error(w, "invalid participant id", http.StatusBadRequest)
		return
	}

	var req submitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.SubmitResponseInput{
		PollID:        pollID,
		ParticipantID: &participantID,
		Name:          req.Name,
		Email:         req.Email,
	}
	for _, vote := range req.Votes {
		input.Votes = append(input.Votes, ports.VoteSubmission{
			OptionID: vote.OptionID,
			Type:     vote.Type,
		})
	}

	participant, err := h.service.Submit(r.Context(), input, callerFromRequest(r), adminTokenFromRequest(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, participant)
}

// ListParticipants godoc
// @Summary      Lists a poll's participants with their votes
// @Description  On polls with hidden participants, non-admin callers only see their own rows.
// @Tags         participants
// @Produce      json
// @Success      200  {array}  domain.Participant
// @Router       /api/polls/{id}/participants [get]
func (h *ParticipantHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	participants, err := h.service.ListParticipants(r.Context(), pollID, callerFromRequest(r), adminTokenFromRequest(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if participants == nil {
		participants = []*domain.Participant{}
	}

	respondJSON(w, http.StatusOK, participants)
}

// DeleteParticipant godoc
// @Summary      Removes a participant and their votes
// @Tags         participants
// @Success      204
// @Failure      403
// @Router       /api/polls/{id}/participants/{participantID} [delete]
func (h *ParticipantHandler) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}
	participantID, err := uuid.Parse(chi.URLParam(r, "participantID"))
	if err != nil {
		http.Error(w, "invalid participant id", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteParticipant(r.Context(), pollID, participantID, callerFromRequest(r), adminTokenFromRequest(r)); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
