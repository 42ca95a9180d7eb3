package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"petcare/internal/catalog"
	"petcare/internal/vetservices/service"
	"petcare/pkg/logger"
	"petcare/pkg/model"
	"petcare/pkg/session"
	"petcare/pkg/session/sessiontest"
	"petcare/pkg/view"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const serviceID = "64b000000000000000000201"

type mockServiceService struct {
	mock.Mock
}

func (m *mockServiceService) List(ctx context.Context, filter catalog.Filter) (*service.Listing, error) {
	args := m.Called(ctx, filter)
	if l := args.Get(0); l != nil {
		return l.(*service.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockServiceService) GetByID(ctx context.Context, id string) (*model.Service, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*model.Service), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockServiceService) GetWithRelated(ctx context.Context, id string) (*model.Service, []*model.Service, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*model.Service), args.Get(1).([]*model.Service), args.Error(2)
	}
	return nil, nil, args.Error(2)
}

func (m *mockServiceService) Create(ctx context.Context, s *model.Service) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockServiceService) Update(ctx context.Context, id string, s *model.Service) error {
	return m.Called(ctx, id, s).Error(0)
}

func (m *mockServiceService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func newTestRouter(t *testing.T) (*mockServiceService, func(*session.User, *http.Request) *sessiontest.Response) {
	t.Helper()

	renderer, err := view.New("Rs", logger.Discard())
	require.NoError(t, err)

	svc := &mockServiceService{}
	t.Cleanup(func() { svc.AssertExpectations(t) })

	sessions := sessiontest.NewManager(t)
	router := httprouter.New()
	NewServiceHandler(svc, renderer, sessions, logger.Discard()).RegisterRoutes(router)

	return svc, func(user *session.User, req *http.Request) *sessiontest.Response {
		return sessiontest.Serve(sessions, router, user, req)
	}
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func serviceForm() url.Values {
	return url.Values{
		"name":        {"Dental Cleaning"},
		"description": {"Scale and polish under sedation"},
		"category":    {"Dental Care"},
		"price":       {"2500"},
		"duration":    {"60"},
	}
}

func TestMutationsRequireAdmin(t *testing.T) {
	requests := map[string]func() *http.Request{
		"new form":  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/services/new", nil) },
		"create":    func() *http.Request { return formRequest(http.MethodPost, "/services", serviceForm()) },
		"edit form": func() *http.Request { return httptest.NewRequest(http.MethodGet, "/services/"+serviceID+"/edit", nil) },
		"update":    func() *http.Request { return formRequest(http.MethodPost, "/services/"+serviceID+"?_method=PUT", serviceForm()) },
		"delete":    func() *http.Request { return formRequest(http.MethodPost, "/services/"+serviceID, url.Values{"_method": {"DELETE"}}) },
	}

	for name, build := range requests {
		t.Run(name, func(t *testing.T) {
			svc, serve := newTestRouter(t)

			resp := serve(sessiontest.Vet, build())

			assert.Equal(t, http.StatusFound, resp.Code)
			assert.Equal(t, session.DashboardPath, resp.Header().Get("Location"))
			assert.Equal(t, []string{session.MsgAdminRequired}, resp.Flash(session.FlashError))
			svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
			svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		})
	}
}

func TestMutationsRequireAdmin_JSON(t *testing.T) {
	_, serve := newTestRouter(t)

	req := formRequest(http.MethodPost, "/services", serviceForm())
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	resp := serve(sessiontest.Staff, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.JSONEq(t, `{"error":"`+session.MsgAdminRequired+`"}`, resp.Body.String())
}

func TestAdminMutations(t *testing.T) {
	svc, serve := newTestRouter(t)

	svc.On("Create", mock.Anything, mock.MatchedBy(func(s *model.Service) bool {
		return s.Name == "Dental Cleaning" && s.Duration == 60
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Service).ID = serviceID
	}).Return(nil).Once()
	svc.On("Update", mock.Anything, serviceID, mock.Anything).Return(nil).Once()
	svc.On("Delete", mock.Anything, serviceID).Return(nil).Once()

	resp := serve(sessiontest.Admin, formRequest(http.MethodPost, "/services", serviceForm()))
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/services/"+serviceID, resp.Header().Get("Location"))
	assert.Equal(t, []string{"Service created successfully"}, resp.Flash(session.FlashSuccess))

	resp = serve(sessiontest.Admin, formRequest(http.MethodPost, "/services/"+serviceID, url.Values{"_method": {"PUT"}, "name": {"Dental Cleaning"}}))
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, []string{"Service updated successfully"}, resp.Flash(session.FlashSuccess))

	resp = serve(sessiontest.Admin, formRequest(http.MethodPost, "/services/"+serviceID+"?_method=DELETE", url.Values{}))
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/services", resp.Header().Get("Location"))
}
