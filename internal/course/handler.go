package course

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hqasem/studycircle/pkg/response"
)

// Handler handles HTTP requests for course operations
type Handler struct {
	service *Service
}

// NewHandler creates a new course handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for course endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)

	return r
}

// Create handles POST /courses
// @Summary      Create a new course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Param        request body CreateCourseRequest true "Course creation request"
// @Success      201 {object} response.APIResponse{data=CourseResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /courses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" || req.Code == "" || req.Term == "" {
		response.BadRequest(w, "Name, code and term are required")
		return
	}

	course, err := h.service.Create(r.Context(), &req)
	if err != nil {
		response.InternalError(w, "Failed to create course")
		return
	}

	response.JSON(w, http.StatusCreated, course.ToResponse())
}

// GetByID handles GET /courses/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid course ID")
		return
	}

	course, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get course")
		return
	}

	response.JSON(w, http.StatusOK, course.ToResponse())
}

// List handles GET /courses
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	courses, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list courses")
		return
	}

	courseResponses := make([]*CourseResponse, len(courses))
	for i, c := range courses {
		courseResponses[i] = c.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, courseResponses, meta)
}
