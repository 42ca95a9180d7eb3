package handler

import (
	"net/http"

	"petcare/internal/owners/service"
	apperrors "petcare/pkg/errors"
	httputil "petcare/pkg/http"
	"petcare/pkg/logger"
	"petcare/pkg/middleware"
	"petcare/pkg/model"
	"petcare/pkg/session"
	"petcare/pkg/view"

	"github.com/julienschmidt/httprouter"
)

const ownersPath = "/owners"

type OwnerHandler struct {
	service  service.OwnerService
	view     *view.Renderer
	sessions *session.Manager
	log      *logger.Logger
}

func NewOwnerHandler(service service.OwnerService, renderer *view.Renderer, sessions *session.Manager, log *logger.Logger) *OwnerHandler {
	return &OwnerHandler{
		service:  service,
		view:     renderer,
		sessions: sessions,
		log:      log,
	}
}

func ownerFromValues(values httputil.Values) *model.Owner {
	return &model.Owner{
		FirstName: values.String("firstName"),
		LastName:  values.String("lastName"),
		Email:     values.String("email"),
		Phone:     values.String("phone"),
		Address: model.Address{
			Street:  values.String("street"),
			City:    values.String("city"),
			State:   values.String("state"),
			ZipCode: values.String("zipCode"),
		},
		EmergencyContact: model.EmergencyContact{
			Name:         values.String("emergencyName"),
			Phone:        values.String("emergencyPhone"),
			Relationship: values.String("emergencyRelationship"),
		},
	}
}

func (h *OwnerHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	search := r.URL.Query().Get("search")

	owners, err := h.service.List(r.Context(), search)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "owners/index", "Pet Owners", view.Data{
		"Owners": owners,
		"Search": search,
	})
}

func (h *OwnerHandler) New(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, "owners/new", "Add New Owner", view.Data{
		"Owner": &model.Owner{},
	})
}

func (h *OwnerHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values, err := httputil.ReadValues(r)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	owner := ownerFromValues(values)
	if err := h.service.Create(r.Context(), owner); err != nil {
		if apperrors.AsAppError(err).Code == apperrors.CodeInternal {
			h.view.AppError(w, r, err)
			return
		}
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		h.view.Render(w, r, apperrors.AsAppError(err).StatusCode(), "owners/new", "Add New Owner", view.Data{
			"Owner": owner,
		})
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Owner "+owner.FullName()+" added")
	httputil.Redirect(w, r, ownersPath)
}

// Show also serves /owners/new, which httprouter cannot register next to /owners/:id.
func (h *OwnerHandler) Show(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == httputil.NewResourceID {
		h.New(w, r)
		return
	}

	owner, pets, err := h.service.GetWithPets(r.Context(), id)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "owners/show", "Owner: "+owner.FullName(), view.Data{
		"Owner": owner,
		"Pets":  pets,
	})
}

func (h *OwnerHandler) Edit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	owner, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "owners/edit", "Edit Owner", view.Data{
		"Owner": owner,
	})
}

func (h *OwnerHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	values, err := httputil.ReadValues(r)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	owner := ownerFromValues(values)
	if err := h.service.Update(r.Context(), id, owner); err != nil {
		appErr := apperrors.AsAppError(err)
		if appErr.Code == apperrors.CodeInternal || appErr.Code == apperrors.CodeNotFound {
			h.view.AppError(w, r, err)
			return
		}
		owner.ID = id
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		h.view.Render(w, r, appErr.StatusCode(), "owners/edit", "Edit Owner", view.Data{
			"Owner": owner,
		})
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Owner updated successfully")
	httputil.Redirect(w, r, ownersPath+"/"+id)
}

func (h *OwnerHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.view.AppError(w, r, err)
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Owner removed")
	httputil.Redirect(w, r, ownersPath)
}

func (h *OwnerHandler) RegisterRoutes(router *httprouter.Router) {
	auth := h.sessions.RequireAuth

	router.GET(ownersPath, middleware.Route(h.List, auth))
	router.POST(ownersPath, middleware.Route(h.Create, auth))
	router.GET(ownersPath+"/:id", middleware.Route(h.Show, auth))
	router.GET(ownersPath+"/:id/edit", middleware.Route(h.Edit, auth))
	router.PUT(ownersPath+"/:id", middleware.Route(h.Update, auth))
	router.DELETE(ownersPath+"/:id", middleware.Route(h.Delete, auth))
}
