package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gatherly/api/internal/core/domain"
	"github.com/gatherly/api/internal/core/ports"
)

type CommentHandler struct {
	service ports.CommentService
}

func NewCommentHandler(service ports.CommentService) *CommentHandler {
	return &CommentHandler{
		service: service,
	}
}

type addCommentRequest struct {
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
}

// AddComment godoc
// @Summary      Adds a comment to a poll
// @Tags         comments
// @Accept       json
// @Produce      json
// @Success      201  {object}  domain.Comment
// @Failure      400
// @Router       /api/polls/{id}/comments [post]
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.AddCommentInput{
		PollID:     pollID,
		AuthorName: req.AuthorName,
		Content:    req.Content,
	}

	comment, err := h.service.Add(r.Context(), input, callerFromRequest(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, comment)
}

// ListComments godoc
// @Summary      Lists a poll's comments, oldest first
// @Tags         comments
// @Produce      json
// @Success      200  {array}  domain.Comment
// @Router       /api/polls/{id}/comments [get]
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	comments, err := h.service.List(r.Context(), pollID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}

	respondJSON(w, http.StatusOK, comments)
}

// DeleteComment godoc
// @Summary      Deletes a comment
// @Description  Allowed for the comment's author or a poll admin.
// @Tags         comments
// @Success      204
// @Failure      403
// @Router       /api/polls/{id}/comments/{commentID} [delete]
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}
	commentID, err := uuid.Parse(chi.URLParam(r, "commentID"))
	if err != nil {
		http.Error(w, "invalid comment id", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), pollID, commentID, callerFromRequest(r), adminTokenFromRequest(r)); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
