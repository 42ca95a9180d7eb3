package handler

import (
	"net/http"

	"petcare/internal/appointments/repository"
	"petcare/internal/appointments/service"
	apperrors "petcare/pkg/errors"
	httputil "petcare/pkg/http"
	"petcare/pkg/logger"
	"petcare/pkg/middleware"
	"petcare/pkg/model"
	"petcare/pkg/session"
	"petcare/pkg/view"

	"github.com/julienschmidt/httprouter"
)

const appointmentsPath = "/appointments"

type AppointmentHandler struct {
	service  service.AppointmentService
	view     *view.Renderer
	sessions *session.Manager
	log      *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, renderer *view.Renderer, sessions *session.Manager, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service:  service,
		view:     renderer,
		sessions: sessions,
		log:      log,
	}
}

func bookingFromValues(values httputil.Values) service.BookingRequest {
	return service.BookingRequest{
		OwnerID:        values.String("owner"),
		PetID:          values.String("pet"),
		VeterinarianID: values.String("veterinarian"),
		Date:           values.String("date"),
		Time:           values.String("time"),
		Reason:         values.String("reason"),
		Notes:          values.String("notes"),
		Duration:       values.Int("duration", model.DefaultAppointmentDuration),
	}
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	filter := repository.AppointmentFilter{
		Status:         query.Get("status"),
		VeterinarianID: query.Get("veterinarian"),
		Type:           query.Get("type"),
	}
	if filter.Type != repository.TypeHistorical {
		filter.Type = repository.TypeUpcoming
	}
	if raw := query.Get("date"); raw != "" {
		if day, err := model.ParseDate(raw); err == nil {
			filter.Date = &day
		}
	}

	appointments, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	opts, err := h.service.FormOptions(r.Context(), "")
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "appointments/index", "Appointments", view.Data{
		"Appointments":  appointments,
		"Veterinarians": opts.Veterinarians,
		"Statuses":      model.AppointmentStatuses,
		"Filter":        filter,
		"DateFilter":    query.Get("date"),
	})
}

// renderForm shows the booking form; form holds the values to prefill.
func (h *AppointmentHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, form service.BookingRequest) {
	opts, err := h.service.FormOptions(r.Context(), form.OwnerID)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, status, "appointments/new", "Book Appointment", view.Data{
		"Form":          form,
		"Owners":        opts.Owners,
		"Pets":          opts.Pets,
		"Veterinarians": opts.Veterinarians,
		"Slots":         opts.Slots,
		"Reasons":       opts.Reasons,
	})
}

func (h *AppointmentHandler) New(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	h.renderForm(w, r, http.StatusOK, service.BookingRequest{
		OwnerID:  query.Get("owner"),
		PetID:    query.Get("pet"),
		Duration: model.DefaultAppointmentDuration,
	})
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values, err := httputil.ReadValues(r)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	req := bookingFromValues(values)
	if user := session.CurrentUser(r); user != nil {
		req.CreatedBy = user.ID
	}

	if _, err := h.service.Book(r.Context(), req); err != nil {
		if apperrors.HasCode(err, apperrors.CodeInternal) {
			h.view.AppError(w, r, err)
			return
		}
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		h.renderForm(w, r, apperrors.AsAppError(err).StatusCode(), req)
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Appointment scheduled successfully")
	httputil.Redirect(w, r, appointmentsPath)
}

// Show also serves /appointments/new.
func (h *AppointmentHandler) Show(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == httputil.NewResourceID {
		h.New(w, r)
		return
	}

	appt, err := h.service.GetView(r.Context(), id)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "appointments/show", "Appointment Details", view.Data{
		"Appointment": appt,
	})
}

func (h *AppointmentHandler) renderEdit(w http.ResponseWriter, r *http.Request, status int, appt *model.AppointmentView) {
	h.view.Render(w, r, status, "appointments/edit", "Edit Appointment", view.Data{
		"Appointment": appt,
		"Statuses":    model.AppointmentStatuses,
		"Reasons":     model.AppointmentReasons,
	})
}

func (h *AppointmentHandler) Edit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appt, err := h.service.GetView(r.Context(), ps.ByName("id"))
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}
	h.renderEdit(w, r, http.StatusOK, appt)
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	values, err := httputil.ReadValues(r)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	upd := model.AppointmentUpdate{
		Status: values.String("status"),
		Reason: values.String("reason"),
	}
	if values.Has("notes") {
		notes := values.String("notes")
		upd.Notes = &notes
	}

	if _, err := h.service.Update(r.Context(), id, upd); err != nil {
		appErr := apperrors.AsAppError(err)
		if appErr.Code == apperrors.CodeInternal || appErr.Code == apperrors.CodeNotFound {
			h.view.AppError(w, r, err)
			return
		}

		appt, viewErr := h.service.GetView(r.Context(), id)
		if viewErr != nil {
			h.view.AppError(w, r, viewErr)
			return
		}
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		h.renderEdit(w, r, appErr.StatusCode(), appt)
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Appointment updated successfully")
	httputil.Redirect(w, r, appointmentsPath+"/"+id)
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Cancel(r.Context(), ps.ByName("id")); err != nil {
		h.view.AppError(w, r, err)
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Appointment cancelled successfully")
	httputil.Redirect(w, r, appointmentsPath)
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	auth := h.sessions.RequireAuth

	router.GET(appointmentsPath, middleware.Route(h.List, auth))
	router.POST(appointmentsPath, middleware.Route(h.Create, auth))
	router.GET(appointmentsPath+"/:id", middleware.Route(h.Show, auth))
	router.GET(appointmentsPath+"/:id/edit", middleware.Route(h.Edit, auth))
	router.PUT(appointmentsPath+"/:id", middleware.Route(h.Update, auth))
	router.DELETE(appointmentsPath+"/:id", middleware.Route(h.Delete, auth))
}
