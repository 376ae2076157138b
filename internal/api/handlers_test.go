package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"example.com/timeflow/internal/auth"
	"example.com/timeflow/internal/domain"
	"example.com/timeflow/internal/persistence/memory"
)

const (
	testSecret = "test-secret"
	testIssuer = "timeflow.test"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clock := time.Date(2024, time.January, 1, 7, 0, 0, 0, time.UTC)
	service := domain.NewService(memory.NewRepository(), domain.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))

	mux := http.NewServeMux()
	NewHandler(service, nil).RegisterRoutes(mux)

	authenticator := auth.NewJWTAuthenticator(auth.JWTConfig{Secret: testSecret, Issuer: testIssuer})
	mw := auth.NewMiddleware(authenticator, PublicRoute, nil)
	return &testServer{t: t, handler: mw.Wrap(mux)}
}

func bearer(t *testing.T, userID string, scopes ...string) string {
	t.Helper()
	if len(scopes) == 0 {
		scopes = []string{auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    userID,
		"iss":    testIssuer,
		"exp":    time.Now().Add(time.Hour).Unix(),
		"scopes": scopes,
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func (s *testServer) do(method, path, authorization string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(s.t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func activityBody(name string, minutes int, date string) map[string]interface{} {
	return map[string]interface{}{
		"activity_name":    name,
		"duration_minutes": minutes,
		"activity_date":    date,
	}
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestActivityLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	user := bearer(t, "user-1")

	rr := srv.do(http.MethodPost, "/api/activities", user, activityBody("Sleep", 480, "2024-01-01"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Equal(t, int64(1), decode[CreateActivityResponse](t, rr).ID)

	rr = srv.do(http.MethodPost, "/api/activities", user, activityBody("Work", 960, "2024-01-01"))
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, int64(2), decode[CreateActivityResponse](t, rr).ID)

	rr = srv.do(http.MethodPost, "/api/activities", user, activityBody("Lunch", 1, "2024-01-01"))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	budget := decode[ErrorResponse](t, rr)
	require.Equal(t, "budget_exceeded", budget.Type)
	require.Equal(t, "Total minutes for the day cannot exceed 1440", budget.Detail)
	require.NotNil(t, budget.RemainingMinutes)
	require.Equal(t, 0, *budget.RemainingMinutes)

	rr = srv.do(http.MethodPut, "/api/activities/1", user, activityBody("Sleep", 479, "2024-01-01"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.True(t, decode[SuccessResponse](t, rr).Success)

	rr = srv.do(http.MethodPost, "/api/activities", user, activityBody("Lunch", 1, "2024-01-01"))
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, int64(3), decode[CreateActivityResponse](t, rr).ID)

	rr = srv.do(http.MethodGet, "/api/activities?date=2024-01-01", user, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	listed := decode[[]ActivityView](t, rr)
	require.Len(t, listed, 3)
	require.Equal(t, []string{"Sleep", "Work", "Lunch"}, []string{listed[0].ActivityName, listed[1].ActivityName, listed[2].ActivityName})
	require.Equal(t, []int{479, 960, 1}, []int{listed[0].DurationMinutes, listed[1].DurationMinutes, listed[2].DurationMinutes})
	require.Nil(t, listed[0].Category)
	require.Equal(t, "user-1", listed[0].UserID)

	rr = srv.do(http.MethodDelete, "/api/activities/3", user, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = srv.do(http.MethodDelete, "/api/activities/3", user, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, decode[SuccessResponse](t, rr).Success)
}

func TestListReturnsEmptyArray(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(http.MethodGet, "/api/activities?date=2024-05-05", bearer(t, "user-1"), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, "[]", rr.Body.String())
}

func TestListRequiresDate(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(http.MethodGet, "/api/activities", bearer(t, "user-1"), nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Date parameter is required", decode[ErrorResponse](t, rr).Detail)
}

func TestMalformedDateQueryIsRejected(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/api/activities?date=foo",
		"/api/activities?date=2024-13-40",
		"/api/activities/summary?date=2023-02-29",
	} {
		rr := srv.do(http.MethodGet, path, bearer(t, "user-1"), nil)
		require.Equal(t, http.StatusBadRequest, rr.Code, path)
		body := decode[ErrorResponse](t, rr)
		require.Equal(t, "validation_failed", body.Type, path)
		require.Equal(t, "Invalid date format", body.Detail, path)
	}
}

func TestRequestsWithoutCredentialsAreRejected(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/activities?date=2024-01-01"},
		{http.MethodPost, "/api/activities"},
		{http.MethodPut, "/api/activities/1"},
		{http.MethodDelete, "/api/activities/1"},
		{http.MethodGet, "/api/activities/summary?date=2024-01-01"},
	} {
		rr := srv.do(tc.method, tc.path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", tc.method, tc.path)
		require.Equal(t, "unauthorized", decode[ErrorResponse](t, rr).Type)
	}

	rr := srv.do(http.MethodGet, "/api/activities?date=2024-01-01", "Bearer not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestReadOnlyScopeCannotWrite(t *testing.T) {
	srv := newTestServer(t)
	reader := bearer(t, "user-1", auth.ScopeActivitiesRead)

	rr := srv.do(http.MethodPost, "/api/activities", reader, activityBody("Sleep", 60, "2024-01-01"))
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = srv.do(http.MethodGet, "/api/activities?date=2024-01-01", reader, nil)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	srv := newTestServer(t)
	user := bearer(t, "user-1")

	cases := []struct {
		name  string
		body  interface{}
		field string
		msg   string
	}{
		{"zero duration", activityBody("Sleep", 0, "2024-01-01"), "duration_minutes", "Duration must be at least 1 minute"},
		{"negative duration", activityBody("Sleep", -5, "2024-01-01"), "duration_minutes", "Duration must be at least 1 minute"},
		{"fractional duration", `{"activity_name":"Sleep","duration_minutes":1.5,"activity_date":"2024-01-01"}`, "duration_minutes", "Duration must be at least 1 minute"},
		{"impossible date", activityBody("Sleep", 30, "2024-13-40"), "activity_date", "Invalid date format"},
		{"malformed date", activityBody("Sleep", 30, "01/01/2024"), "activity_date", "Invalid date format"},
		{"missing name", activityBody("", 30, "2024-01-01"), "activity_name", "Activity name is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := srv.do(http.MethodPost, "/api/activities", user, tc.body)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			resp := decode[ErrorResponse](t, rr)
			require.Equal(t, "validation_failed", resp.Type)
			require.Equal(t, tc.msg, resp.Fields[tc.field])
		})
	}

	rr := srv.do(http.MethodPost, "/api/activities", user, `{"activity_name":`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid_request", decode[ErrorResponse](t, rr).Type)

	rr = srv.do(http.MethodGet, "/api/activities?date=2024-01-01", user, nil)
	require.JSONEq(t, "[]", rr.Body.String())
}

func TestActivitiesAreIsolatedPerUser(t *testing.T) {
	srv := newTestServer(t)
	owner := bearer(t, "owner")
	other := bearer(t, "other")

	rr := srv.do(http.MethodPost, "/api/activities", owner, activityBody("Study", 90, "2024-03-03"))
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decode[CreateActivityResponse](t, rr).ID
	path := "/api/activities/" + strconv.FormatInt(id, 10)

	rr = srv.do(http.MethodGet, "/api/activities?date=2024-03-03", other, nil)
	require.JSONEq(t, "[]", rr.Body.String())

	rr = srv.do(http.MethodPut, path, other, activityBody("Hijack", 10, "2024-03-03"))
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "Activity not found", decode[ErrorResponse](t, rr).Detail)

	rr = srv.do(http.MethodDelete, path, other, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = srv.do(http.MethodGet, "/api/activities?date=2024-03-03", owner, nil)
	listed := decode[[]ActivityView](t, rr)
	require.Len(t, listed, 1)
	require.Equal(t, "Study", listed[0].ActivityName)

	rr = srv.do(http.MethodPut, "/api/activities/999", owner, activityBody("Ghost", 10, "2024-03-03"))
	require.Equal(t, http.StatusNotFound, rr.Code)
	rr = srv.do(http.MethodPut, "/api/activities/abc", owner, activityBody("Ghost", 10, "2024-03-03"))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateExcludesOwnContribution(t *testing.T) {
	srv := newTestServer(t)
	user := bearer(t, "user-1")

	rr := srv.do(http.MethodPost, "/api/activities", user, activityBody("Work", 1300, "2024-06-01"))
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = srv.do(http.MethodPost, "/api/activities", user, activityBody("Gym", 100, "2024-06-01"))
	require.Equal(t, http.StatusCreated, rr.Code)
	path := "/api/activities/" + strconv.FormatInt(decode[CreateActivityResponse](t, rr).ID, 10)

	rr = srv.do(http.MethodPut, path, user, activityBody("Gym", 200, "2024-06-01"))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decode[ErrorResponse](t, rr)
	require.Equal(t, "budget_exceeded", resp.Type)
	require.Equal(t, 140, *resp.RemainingMinutes)

	rr = srv.do(http.MethodPut, path, user, activityBody("Gym", 140, "2024-06-01"))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestDailySummaryEndpoint(t *testing.T) {
	srv := newTestServer(t)
	user := bearer(t, "user-1")

	work := activityBody("Deep work on the quarterly report", 300, "2024-07-01")
	work["category"] = "Work"
	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, "/api/activities", user, work).Code)
	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, "/api/activities", user, activityBody("Nap", 60, "2024-07-01")).Code)

	rr := srv.do(http.MethodGet, "/api/activities/summary?date=2024-07-01", user, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	summary := decode[DailySummaryView](t, rr)
	require.Equal(t, 360, summary.TotalMinutes)
	require.Equal(t, 1080, summary.RemainingMinutes)
	require.Equal(t, 25.0, summary.PercentUsed)
	require.Len(t, summary.Categories, 2)
	require.Equal(t, "Work", summary.Categories[0].Category)
	require.Equal(t, domain.UncategorizedLabel, summary.Categories[1].Category)
	require.Equal(t, "Deep work on th...", summary.Timeline[0].Name)

	rr = srv.do(http.MethodGet, "/api/activities/summary?date=bad", user, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCategoriesArePublic(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	styles := decode[[]domain.CategoryStyle](t, rr)
	require.Len(t, styles, 10)
	require.Equal(t, "Work", styles[0].Label)
	require.Equal(t, "Other", styles[9].Label)

	rr = srv.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
}
