package handler

import (
	"net/http"

	"petcare/internal/dashboard/service"
	apperrors "petcare/pkg/errors"
	httputil "petcare/pkg/http"
	"petcare/pkg/logger"
	"petcare/pkg/middleware"
	"petcare/pkg/model"
	"petcare/pkg/session"
	"petcare/pkg/view"

	"github.com/julienschmidt/httprouter"
)

type DashboardHandler struct {
	service  service.DashboardService
	view     *view.Renderer
	sessions *session.Manager
	log      *logger.Logger
}

func NewDashboardHandler(service service.DashboardService, renderer *view.Renderer, sessions *session.Manager, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:  service,
		view:     renderer,
		sessions: sessions,
		log:      log,
	}
}

func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !session.IsAuthenticated(r) {
		httputil.Redirect(w, r, session.LoginPath)
		return
	}
	httputil.Redirect(w, r, session.DashboardPath)
}

// Dashboard still renders with zeroed figures when loading fails.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	data := view.Data{
		"TotalPets":          int64(0),
		"TotalOwners":        int64(0),
		"TotalAppointments":  int64(0),
		"TodayAppointments":  int64(0),
		"RecentAppointments": []*model.AppointmentView{},
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		data["Error"] = apperrors.UserMessage(err)
	} else {
		data["TotalPets"] = stats.TotalPets
		data["TotalOwners"] = stats.TotalOwners
		data["TotalAppointments"] = stats.TotalAppointments
		data["TodayAppointments"] = stats.TodayAppointments
		data["RecentAppointments"] = stats.RecentAppointments
	}

	h.view.Render(w, r, http.StatusOK, "dashboard/index", "Petcare - Dashboard", data)
}

func (h *DashboardHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/", h.Home)
	router.GET(session.DashboardPath, middleware.Route(h.Dashboard, h.sessions.RequireAuth))
}
