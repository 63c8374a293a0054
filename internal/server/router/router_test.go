package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/bizdesk/internal/apperror"
	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/export"
	"github.com/mamadbah2/bizdesk/internal/server/handlers"
	"github.com/mamadbah2/bizdesk/internal/service/auth"
)

type fakeAuth struct {
	tokens map[string]models.Caller
	logout string
}

func (f *fakeAuth) Login(_ context.Context, username, _ string) (*auth.LoginResult, error) {
	if username != "admin" {
		return nil, apperror.Unauthorized("Invalid username or password")
	}
	return &auth.LoginResult{Token: "admin-token"}, nil
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (auth.Identity, error) {
	caller, ok := f.tokens[token]
	if !ok {
		return auth.Identity{}, apperror.Unauthorized("Invalid token")
	}
	return auth.Identity{Caller: caller, SessionID: "sid-" + token}, nil
}

func (f *fakeAuth) Logout(_ context.Context, sessionID string) error {
	f.logout = sessionID
	return nil
}

type fakeLogs struct {
	caller  models.Caller
	filter  models.Filter
	created int
}

func (f *fakeLogs) List(_ context.Context, caller models.Caller, filter models.Filter) (models.LogsPage, error) {
	f.caller, f.filter = caller, filter
	return models.LogsPage{
		Logs:      []models.LogView{{LogEntry: models.LogEntry{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Payment: 10}}},
		LogTotals: models.LogTotals{PaymentsSum: 10, DaysCount: 1},
		StartDate: filter.StartDateString(),
		EndDate:   filter.EndDateString(),
		Search:    filter.Search,
	}, nil
}

func (f *fakeLogs) Get(context.Context, models.Caller, string) (*models.LogView, error) {
	return nil, apperror.NotFound("Log not found")
}

func (f *fakeLogs) Create(context.Context, models.LogInput) (*models.LogEntry, error) {
	f.created++
	return &models.LogEntry{}, nil
}

func (f *fakeLogs) Update(context.Context, string, models.LogInput) error { return nil }

func (f *fakeLogs) Delete(context.Context, string) error { return apperror.NotFound("Log not found") }

type fakePayees struct{ deleted string }

func (f *fakePayees) List(context.Context, string) ([]models.Payee, error) {
	return []models.Payee{}, nil
}
func (f *fakePayees) Get(context.Context, string) (*models.Payee, error) { return nil, nil }
func (f *fakePayees) Create(context.Context, models.PayeeInput) (*models.Payee, error) {
	return nil, nil
}
func (f *fakePayees) Update(context.Context, string, models.PayeeInput) error { return nil }
func (f *fakePayees) Delete(_ context.Context, id string) error {
	f.deleted = id
	return nil
}

type fakeUsers struct {
	changedBy models.Caller
}

func (f *fakeUsers) Register(context.Context, models.NewUser) (*models.User, error) { return nil, nil }
func (f *fakeUsers) List(context.Context, string) ([]models.User, error)            { return nil, nil }
func (f *fakeUsers) Get(context.Context, string) (*models.User, error)              { return nil, nil }
func (f *fakeUsers) UpdateProfile(context.Context, string, models.UserProfile) error {
	return nil
}
func (f *fakeUsers) Delete(context.Context, models.Caller, string) error { return nil }
func (f *fakeUsers) ChangePassword(_ context.Context, caller models.Caller, _, _ string) error {
	f.changedBy = caller
	return nil
}
func (f *fakeUsers) UsernameAvailable(context.Context, string) (bool, error) { return true, nil }
func (f *fakeUsers) ResetPassword(context.Context, string, string) error     { return nil }
func (f *fakeUsers) SetAccessLevel(context.Context, models.Caller, string, models.AccessLevel) error {
	return nil
}
func (f *fakeUsers) SetActive(context.Context, models.Caller, string, string) error { return nil }

type fakeDigests struct{}

func (fakeDigests) GenerateWeeklyDigest(context.Context, time.Time) (models.WeeklyDigest, error) {
	return models.WeeklyDigest{Workers: []models.WorkerDigest{}}, nil
}

func (fakeDigests) RunWeeklyDigest(context.Context) error { return nil }

type fixture struct {
	engine *httptestEngine
	auth   *fakeAuth
	logs   *fakeLogs
	payees *fakePayees
	users  *fakeUsers
}

type httptestEngine struct {
	handler http.Handler
}

func (e *httptestEngine) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)

	var decoded map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

var (
	workerID  = primitive.NewObjectID().Hex()
	managerID = primitive.NewObjectID().Hex()
)

func newFixture() *fixture {
	f := &fixture{
		auth: &fakeAuth{tokens: map[string]models.Caller{
			"user-token":    {ID: workerID, AccessLevel: models.AccessUser},
			"manager-token": {ID: managerID, AccessLevel: models.AccessManager},
		}},
		logs:   &fakeLogs{},
		payees: &fakePayees{},
		users:  &fakeUsers{},
	}

	engine := New(Handlers{
		Auth:    handlers.NewAuthHandler(f.auth),
		Logs:    handlers.NewLogHandler(f.logs, nil),
		Payees:  handlers.NewPayeeHandler(f.payees),
		Cheques: handlers.NewChequeHandler(nil),
		Bills:   handlers.NewBillHandler(nil),
		Users:   handlers.NewUserHandler(f.users),
		Reports: handlers.NewReportHandler(fakeDigests{}, fakeDigests{}, nil, nil),
	}, f.auth, Options{AllowedOrigins: []string{"http://localhost:3000"}}, nil)

	f.engine = &httptestEngine{handler: engine}
	return f
}

func TestHealthz(t *testing.T) {
	f := newFixture()
	w, body := f.engine.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestLogin(t *testing.T) {
	f := newFixture()
	w, body := f.engine.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"username":"admin","password":"x"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "admin-token", body["data"].(map[string]any)["token"])

	w, body = f.engine.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"username":"eve","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestLogout(t *testing.T) {
	f := newFixture()
	w, _ := f.engine.do(t, http.MethodPost, "/api/v1/auth/logout", "user-token", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "sid-user-token", f.auth.logout)
}

func TestLogs_RequireAuth(t *testing.T) {
	f := newFixture()
	w, body := f.engine.do(t, http.MethodGet, "/api/v1/logs", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
}

func TestLogs_ListPassesCallerAndFilter(t *testing.T) {
	f := newFixture()
	w, body := f.engine.do(t, http.MethodGet, "/api/v1/logs?search=ali&startDate=2024-01-01&endDate=2024-01-31", "user-token", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, models.Caller{ID: workerID, AccessLevel: models.AccessUser}, f.logs.caller)
	assert.Equal(t, "ali", f.logs.filter.Search)

	data := body["data"].(map[string]any)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 10.0, data["paymentsSum"])
	assert.Equal(t, 1.0, data["daysCount"])
	assert.Equal(t, 0.0, data["OTVSum"])
	assert.Equal(t, "2024-01-01", data["startDate"])
	assert.Equal(t, "2024-01-31", data["endDate"])
	assert.Equal(t, "ali", data["search"])
	assert.Len(t, data["logs"], 1)
}

func TestLogs_ListUnboundedEchoesNullDates(t *testing.T) {
	f := newFixture()
	_, body := f.engine.do(t, http.MethodGet, "/api/v1/logs", "manager-token", "")
	data := body["data"].(map[string]any)
	assert.Nil(t, data["startDate"])
	assert.Nil(t, data["endDate"])
}

func TestLogs_BadDate(t *testing.T) {
	f := newFixture()
	w, body := f.engine.do(t, http.MethodGet, "/api/v1/logs?startDate=31-01-2024", "manager-token", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "startDate must be YYYY-MM-DD", body["message"])
}

func TestLogs_MutationsClosedToUser(t *testing.T) {
	f := newFixture()
	w, _ := f.engine.do(t, http.MethodPost, "/api/v1/logs", "user-token", `{"date":"2024-01-01"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, f.logs.created)

	w, _ = f.engine.do(t, http.MethodPost, "/api/v1/logs", "manager-token", `{"date":"2024-01-01"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Zero(t, w.Body.Len())
	assert.Equal(t, 1, f.logs.created)
}

func TestLogs_UpdateAndDelete(t *testing.T) {
	f := newFixture()
	w, _ := f.engine.do(t, http.MethodPatch, "/api/v1/logs/abc", "manager-token", `{"isAbsent":true}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, body := f.engine.do(t, http.MethodDelete, "/api/v1/logs/abc", "manager-token", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Log not found", body["message"])

	w, _ = f.engine.do(t, http.MethodPatch, "/api/v1/logs/abc", "manager-token", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogs_Export(t *testing.T) {
	f := newFixture()
	w, _ := f.engine.do(t, http.MethodGet, "/api/v1/logs/export?startDate=2024-01-01", "user-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "logs_2024-01-01_all.xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestPayees_ElevatedOnly(t *testing.T) {
	f := newFixture()
	w, _ := f.engine.do(t, http.MethodDelete, "/api/v1/payees/p1", "user-token", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, f.payees.deleted)

	w, _ = f.engine.do(t, http.MethodDelete, "/api/v1/payees/p1", "manager-token", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "p1", f.payees.deleted)
}

func TestUsers_OwnPasswordOpenToEveryone(t *testing.T) {
	f := newFixture()
	w, _ := f.engine.do(t, http.MethodPatch, "/api/v1/users/me/password", "user-token",
		`{"currentPassword":"a","newPassword":"bbbbbb"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, workerID, f.users.changedBy.ID)

	w, _ = f.engine.do(t, http.MethodGet, "/api/v1/users", "user-token", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUsers_AccessLevelIsAdminOnly(t *testing.T) {
	f := newFixture()
	w, _ := f.engine.do(t, http.MethodPatch, "/api/v1/users/u2/access-level", "manager-token", `{"accessLevel":"Admin"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := f.engine.do(t, http.MethodGet, "/api/v1/users/check-username?username=x", "manager-token", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["data"].(map[string]any)["available"])
}

func TestReports(t *testing.T) {
	f := newFixture()
	w, body := f.engine.do(t, http.MethodGet, "/api/v1/reports/weekly", "manager-token", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	w, _ = f.engine.do(t, http.MethodPost, "/api/v1/notifications/whatsapp", "manager-token", `{"to":"1","message":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/logs", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	f.engine.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
