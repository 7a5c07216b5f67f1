package attendance

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/yechale/rollcall/internal/domain"
	"github.com/yechale/rollcall/internal/pkg/httputil"
	"github.com/yechale/rollcall/internal/school"
)

// Handler handles HTTP requests for the attendance module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new attendance handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers all HTTP routes for the attendance module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Post("/", h.Mark)
		r.Get("/{date}", h.ListByDate)
		r.Get("/{date}/{studentID}", h.Get)
		r.Delete("/{date}/{studentID}", h.Unmark)
	})
	r.Get("/students/{id}/attendance", h.ListByStudent)
}

var recordErrorMappings = []httputil.ErrorMapping{
	{Error: ErrRecordNotFound, Status: http.StatusNotFound},
	{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
	{Error: ErrInvalidDate, Status: http.StatusBadRequest},
	{Error: school.ErrStudentNotFound, Status: http.StatusNotFound},
}

// MarkRequest represents the request body for marking attendance.
type MarkRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,oneof=present late absent excused"`
	Note      string `json:"note" validate:"max=1000"`
}

// Mark handles POST /attendance.
func (h *Handler) Mark(w http.ResponseWriter, r *http.Request) {
	var req MarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	result, err := h.service.Mark(r.Context(), req.StudentID, req.Date, domain.AttendanceStatus(req.Status), req.Note)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, recordErrorMappings)
		return
	}
	httputil.Success(w, http.StatusOK, result)
}

// Get handles GET /attendance/{date}/{studentID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(r.Context(), chi.URLParam(r, "studentID"), chi.URLParam(r, "date"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, recordErrorMappings)
		return
	}
	httputil.Success(w, http.StatusOK, record)
}

// ListByDate handles GET /attendance/{date}.
func (h *Handler) ListByDate(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListByDate(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, recordErrorMappings)
		return
	}
	httputil.Success(w, http.StatusOK, records)
}

// ListByStudent handles GET /students/{id}/attendance.
func (h *Handler) ListByStudent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.service.ListByStudent(r.Context(), chi.URLParam(r, "id"), q.Get("from"), q.Get("to"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, recordErrorMappings)
		return
	}
	httputil.Success(w, http.StatusOK, records)
}

// Unmark handles DELETE /attendance/{date}/{studentID}.
func (h *Handler) Unmark(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Unmark(r.Context(), chi.URLParam(r, "studentID"), chi.URLParam(r, "date")); err != nil {
		httputil.HandleError(r.Context(), w, err, recordErrorMappings)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
