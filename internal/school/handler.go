package school

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/yechale/rollcall/internal/domain"
	"github.com/yechale/rollcall/internal/pkg/httputil"
)

// Handler handles HTTP requests for the school module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new school handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers all HTTP routes for the school module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.GetSettings)
		r.Put("/", h.UpdateSettings)
	})

	r.Route("/students", func(r chi.Router) {
		r.Get("/", h.ListStudents)
		r.Post("/", h.CreateStudent)
		r.Get("/{id}", h.GetStudent)
		r.Put("/{id}", h.UpdateStudent)
		r.Delete("/{id}", h.DeleteStudent)
	})
}

var studentErrorMappings = []httputil.ErrorMapping{
	{Error: ErrStudentNotFound, Status: http.StatusNotFound},
	{Error: ErrDuplicateStudentID, Status: http.StatusConflict},
}

// UpdateSettingsRequest represents the request body for updating settings.
type UpdateSettingsRequest struct {
	SchoolName        string `json:"school_name" validate:"max=255"`
	SchoolPhone       string `json:"school_phone" validate:"max=32"`
	NotificationEmail string `json:"notification_email" validate:"omitempty,email"`
	AcademicYear      string `json:"academic_year" validate:"max=32"`
	SendEmail         bool   `json:"send_email"`
	SendSMS           bool   `json:"send_sms"`
	AutoSend          bool   `json:"auto_send"`
}

// GetSettings handles GET /settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Settings(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /settings. The whole document is replaced,
// so clients send every field on each save.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	settings := &domain.SchoolSettings{
		SchoolName:        req.SchoolName,
		SchoolPhone:       req.SchoolPhone,
		NotificationEmail: req.NotificationEmail,
		AcademicYear:      req.AcademicYear,
		SendEmail:         req.SendEmail,
		SendSMS:           req.SendSMS,
		AutoSend:          req.AutoSend,
	}

	if err := h.service.UpdateSettings(r.Context(), settings); err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, settings)
}

// StudentRequest represents the request body for creating or updating a student.
type StudentRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	StudentID   string `json:"student_id" validate:"required,min=1,max=64"`
	Grade       string `json:"grade" validate:"required,max=32"`
	Section     string `json:"section" validate:"max=32"`
	ParentName  string `json:"parent_name" validate:"max=255"`
	ParentEmail string `json:"parent_email" validate:"omitempty,email"`
	ParentPhone string `json:"parent_phone" validate:"max=32"`
}

// ToDomain converts the request to a domain model.
func (r *StudentRequest) ToDomain() *domain.Student {
	return &domain.Student{
		Name:        r.Name,
		StudentID:   r.StudentID,
		Grade:       r.Grade,
		Section:     r.Section,
		ParentName:  r.ParentName,
		ParentEmail: r.ParentEmail,
		ParentPhone: r.ParentPhone,
	}
}

// CreateStudent handles POST /students.
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req StudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	student := req.ToDomain()
	if err := h.service.CreateStudent(r.Context(), student); err != nil {
		httputil.HandleError(r.Context(), w, err, studentErrorMappings)
		return
	}
	httputil.Success(w, http.StatusCreated, student)
}

// GetStudent handles GET /students/{id}.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.service.GetStudent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, studentErrorMappings)
		return
	}
	httputil.Success(w, http.StatusOK, student)
}

// ListStudents handles GET /students.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	var filter StudentFilter
	if grade := r.URL.Query().Get("grade"); grade != "" {
		filter.Grade = &grade
	}
	if section := r.URL.Query().Get("section"); section != "" {
		filter.Section = &section
	}

	students, err := h.service.ListStudents(r.Context(), filter)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, students)
}

// UpdateStudent handles PUT /students/{id}.
func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req StudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	student := req.ToDomain()
	student.ID = chi.URLParam(r, "id")
	if err := h.service.UpdateStudent(r.Context(), student); err != nil {
		httputil.HandleError(r.Context(), w, err, studentErrorMappings)
		return
	}
	httputil.Success(w, http.StatusOK, student)
}

// DeleteStudent handles DELETE /students/{id}.
func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteStudent(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.HandleError(r.Context(), w, err, studentErrorMappings)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
