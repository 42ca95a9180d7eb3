package handler

import (
	"net/http"

	"petcare/internal/catalog"
	"petcare/internal/vetservices/service"
	apperrors "petcare/pkg/errors"
	httputil "petcare/pkg/http"
	"petcare/pkg/logger"
	"petcare/pkg/middleware"
	"petcare/pkg/model"
	"petcare/pkg/session"
	"petcare/pkg/view"

	"github.com/julienschmidt/httprouter"
)

const servicesPath = "/services"

type ServiceHandler struct {
	service  service.ServiceService
	view     *view.Renderer
	sessions *session.Manager
	log      *logger.Logger
}

func NewServiceHandler(service service.ServiceService, renderer *view.Renderer, sessions *session.Manager, log *logger.Logger) *ServiceHandler {
	return &ServiceHandler{
		service:  service,
		view:     renderer,
		sessions: sessions,
		log:      log,
	}
}

func serviceFromValues(values httputil.Values) *model.Service {
	price, _ := values.Float("price")
	return &model.Service{
		Name:                    values.String("name"),
		Description:             values.String("description"),
		Category:                values.String("category"),
		Price:                   price,
		Duration:                values.Int("duration", model.DefaultAppointmentDuration),
		AvailableFor:            values.Strings("availableFor"),
		RequiresAppointment:     values.Bool("requiresAppointment"),
		IsEmergencyService:      values.Bool("isEmergencyService"),
		PreparationInstructions: values.String("preparationInstructions"),
		FollowUpRequired:        values.Bool("followUpRequired"),
		VeterinarianRequired:    values.String("veterinarianRequired"),
		Icon:                    values.String("icon"),
		PopularityScore:         values.Int("popularityScore", 0),
	}
}

func formData(svc *model.Service) view.Data {
	return view.Data{
		"Service":            svc,
		"Categories":         model.ServiceCategories,
		"PetTypes":           model.ServicePetTypes,
		"VeterinarianLevels": model.VeterinarianLevels,
	}
}

func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := catalog.FilterFromQuery(r.URL.Query())

	listing, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "services/index", "Our Services", view.Data{
		"Services":   listing.Services,
		"Categories": listing.Categories,
		"PetTypes":   model.ServicePetTypes,
		"Filter":     filter,
	})
}

func (h *ServiceHandler) New(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, "services/new", "Add New Service", formData(&model.Service{
		Duration:             model.DefaultAppointmentDuration,
		RequiresAppointment:  true,
		VeterinarianRequired: model.VeterinarianLevels[0],
		Icon:                 model.DefaultServiceIcon,
	}))
}

func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values, err := httputil.ReadValues(r)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	svc := serviceFromValues(values)
	if err := h.service.Create(r.Context(), svc); err != nil {
		if apperrors.HasCode(err, apperrors.CodeInternal) {
			h.view.AppError(w, r, err)
			return
		}
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		h.view.Render(w, r, apperrors.AsAppError(err).StatusCode(), "services/new", "Add New Service", formData(svc))
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Service created successfully")
	httputil.Redirect(w, r, servicesPath+"/"+svc.ID)
}

// Show also serves the admin-only /services/new.
func (h *ServiceHandler) Show(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == httputil.NewResourceID {
		h.sessions.RequireAdmin(http.HandlerFunc(h.New)).ServeHTTP(w, r)
		return
	}

	svc, related, err := h.service.GetWithRelated(r.Context(), id)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "services/show", svc.Name, view.Data{
		"Service": svc,
		"Related": related,
	})
}

func (h *ServiceHandler) Edit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	svc, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "services/edit", "Edit Service", formData(svc))
}

func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	values, err := httputil.ReadValues(r)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	svc := serviceFromValues(values)
	if err := h.service.Update(r.Context(), id, svc); err != nil {
		appErr := apperrors.AsAppError(err)
		if appErr.Code == apperrors.CodeInternal || appErr.Code == apperrors.CodeNotFound {
			h.view.AppError(w, r, err)
			return
		}
		svc.ID = id
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		h.view.Render(w, r, appErr.StatusCode(), "services/edit", "Edit Service", formData(svc))
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Service updated successfully")
	httputil.Redirect(w, r, servicesPath+"/"+id)
}

func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.view.AppError(w, r, err)
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Service deleted successfully")
	httputil.Redirect(w, r, servicesPath)
}

func (h *ServiceHandler) RegisterRoutes(router *httprouter.Router) {
	auth := h.sessions.RequireAuth
	admin := h.sessions.RequireAdmin

	router.GET(servicesPath, middleware.Route(h.List, auth))
	router.POST(servicesPath, middleware.Route(h.Create, admin))
	router.GET(servicesPath+"/:id", middleware.Route(h.Show, auth))
	router.GET(servicesPath+"/:id/edit", middleware.Route(h.Edit, admin))
	router.PUT(servicesPath+"/:id", middleware.Route(h.Update, admin))
	router.DELETE(servicesPath+"/:id", middleware.Route(h.Delete, admin))
}
