package invite

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hqasem/studycircle/pkg/middleware"
	"github.com/hqasem/studycircle/pkg/response"
)

// Handler handles HTTP requests for invite operations
type Handler struct {
	service *Service
}

// NewHandler creates a new invite handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for invite endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Post("/redeem", h.Redeem)
	r.Delete("/{publicId}", h.Delete)

	return r
}

// Create handles POST /invites
// @Summary      Create an invite code
// @Description  Issue a 6-character code for a group, with optional usage and expiry limits
// @Tags         invites
// @Accept       json
// @Produce      json
// @Param        request body CreateInviteRequest true "Invite creation request"
// @Success      201 {object} response.APIResponse{data=InviteResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /invites [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Acting user required")
		return
	}

	var req CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.GroupID == 0 {
		response.BadRequest(w, "Group ID is required")
		return
	}
	if req.MaxUses != nil && *req.MaxUses < 1 {
		response.BadRequest(w, "Max uses must be at least 1")
		return
	}

	inv, err := h.service.Create(r.Context(), actorID, &req)
	if err != nil {
		h.respondError(w, err, "Failed to create invite")
		return
	}

	response.JSON(w, http.StatusCreated, inv.ToResponse())
}

// List handles GET /invites?group_id=
// @Summary      List invites of a group
// @Tags         invites
// @Produce      json
// @Param        group_id query int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]InviteResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /invites [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Acting user required")
		return
	}

	groupID, err := strconv.ParseInt(r.URL.Query().Get("group_id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	invites, err := h.service.ListByGroup(r.Context(), groupID, actorID)
	if err != nil {
		h.respondError(w, err, "Failed to list invites")
		return
	}

	inviteResponses := make([]*InviteResponse, len(invites))
	for i, inv := range invites {
		inviteResponses[i] = inv.ToResponse()
	}

	response.JSON(w, http.StatusOK, inviteResponses)
}

// Redeem handles POST /invites/redeem
// @Summary      Redeem an invite code
// @Description  Join the owning group immediately with a valid code
// @Tags         invites
// @Accept       json
// @Produce      json
// @Param        request body RedeemRequest true "Invite code"
// @Success      200 {object} response.APIResponse{data=group.MemberResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Failure      410 {object} response.APIResponse
// @Router       /invites/redeem [post]
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Acting user required")
		return
	}

	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Code == "" {
		response.BadRequest(w, "Invite code is required")
		return
	}

	member, err := h.service.Redeem(r.Context(), req.Code, actorID)
	if err != nil {
		h.respondError(w, err, "Failed to redeem invite")
		return
	}

	response.JSON(w, http.StatusOK, member.ToResponse())
}

// Delete handles DELETE /invites/{publicId}
// @Summary      Delete an invite
// @Description  Remove an invite; allowed for its issuer or the group creator
// @Tags         invites
// @Produce      json
// @Param        publicId path string true "Invite public ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /invites/{publicId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Acting user required")
		return
	}

	publicID, err := uuid.Parse(chi.URLParam(r, "publicId"))
	if err != nil {
		response.BadRequest(w, "Invalid invite ID")
		return
	}

	if err := h.service.Delete(r.Context(), publicID, actorID); err != nil {
		h.respondError(w, err, "Failed to delete invite")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Invite deleted successfully"})
}

// respondError maps service errors to HTTP responses
func (h *Handler) respondError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInviteNotFound), errors.Is(err, ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrInviteExpired):
		response.Gone(w, err.Error())
	case errors.Is(err, ErrInviteExhausted), errors.Is(err, ErrAlreadyMember):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		response.Forbidden(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}
