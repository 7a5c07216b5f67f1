package notifications

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/yechale/rollcall/internal/domain"
	"github.com/yechale/rollcall/internal/pkg/httputil"
)

// StudentSource resolves the students a dispatch request names.
type StudentSource interface {
	GetStudent(ctx context.Context, id string) (*domain.Student, error)
}

// Handler exposes the notification core over HTTP.
type Handler struct {
	dispatcher *Dispatcher
	queue      *Queue
	monitor    *Monitor
	feed       *Feed
	students   StudentSource
	validator  *validator.Validate
}

// NewHandler creates a notifications handler.
func NewHandler(dispatcher *Dispatcher, queue *Queue, monitor *Monitor, feed *Feed, students StudentSource) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		queue:      queue,
		monitor:    monitor,
		feed:       feed,
		students:   students,
		validator:  validator.New(),
	}
}

// RegisterRoutes registers notification routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Post("/dispatch", h.Dispatch)
		r.Get("/queue", h.QueueSize)
		r.Delete("/queue", h.ClearQueue)
		r.Get("/feed", h.Feed)
	})
	r.Put("/connectivity", h.SetConnectivity)
	r.Get("/connectivity", h.GetConnectivity)
}

// DispatchItem is one student notification in a dispatch request.
type DispatchItem struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=absent late excused"`
	Note      string `json:"note"`
}

// DispatchRequest is the request body for POST /notifications/dispatch.
type DispatchRequest struct {
	Items   []DispatchItem `json:"items" validate:"required,min=1,dive"`
	Methods Methods        `json:"methods"`
}

// Dispatch handles POST /notifications/dispatch.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	if !req.Methods.Email && !req.Methods.SMS {
		req.Methods = AllMethods()
	}

	items := make([]BulkItem, 0, len(req.Items))
	for _, item := range req.Items {
		student, err := h.students.GetStudent(r.Context(), item.StudentID)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "student not found: "+item.StudentID)
			return
		}
		items = append(items, BulkItem{
			Student: *student,
			Status:  domain.AttendanceStatus(item.Status),
			Note:    item.Note,
		})
	}

	result := h.dispatcher.SendBulk(r.Context(), items, req.Methods)
	httputil.Success(w, http.StatusOK, result)
}

// QueueSize handles GET /notifications/queue.
func (h *Handler) QueueSize(w http.ResponseWriter, _ *http.Request) {
	httputil.Success(w, http.StatusOK, map[string]int{"size": h.queue.Size()})
}

// ClearQueue handles DELETE /notifications/queue.
func (h *Handler) ClearQueue(w http.ResponseWriter, r *http.Request) {
	if err := h.queue.Clear(r.Context()); err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Feed handles GET /notifications/feed.
func (h *Handler) Feed(w http.ResponseWriter, _ *http.Request) {
	httputil.Success(w, http.StatusOK, h.feed.Recent())
}

// ConnectivityRequest is the request body for PUT /connectivity.
type ConnectivityRequest struct {
	Online *bool `json:"online" validate:"required"`
}

// SetConnectivity handles PUT /connectivity. The surrounding application
// feeds its reachability signal here; the offline-to-online edge kicks off
// a queue drain.
func (h *Handler) SetConnectivity(w http.ResponseWriter, r *http.Request) {
	var req ConnectivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	h.monitor.SetOnline(*req.Online)
	httputil.Success(w, http.StatusOK, map[string]bool{"online": h.monitor.Online()})
}

// GetConnectivity handles GET /connectivity.
func (h *Handler) GetConnectivity(w http.ResponseWriter, _ *http.Request) {
	httputil.Success(w, http.StatusOK, map[string]bool{"online": h.monitor.Online()})
}
