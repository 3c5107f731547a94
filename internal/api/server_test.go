package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"worklog/internal/clock"
	"worklog/internal/config"
	"worklog/internal/domain"
	"worklog/internal/export"
	"worklog/internal/repository/sqlite"
	"worklog/internal/services"
)

const password = "correct-horse"

// Wednesday of ISO week 3, 2024
var testNow = time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)

type testServer struct {
	handler  http.Handler
	services *services.ServiceContainer
	clock    *clock.Fixed
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	clk := clock.NewFixed(testNow)
	container := services.NewServiceContainer(repo, clk, services.Settings{
		Location:   time.UTC,
		BcryptCost: bcrypt.MinCost,
	})
	server := NewServer(container, config.ServerConfig{Mode: gin.TestMode})
	return &testServer{handler: server.Router(), services: container, clock: clk}
}

func (s *testServer) register(t *testing.T, username, manager string) *domain.User {
	t.Helper()
	user, err := s.services.UserService.Register(context.Background(), services.RegisterInput{
		Username:        username,
		Password:        password,
		ManagerUsername: manager,
	})
	require.NoError(t, err)
	return user
}

func (s *testServer) logTask(t *testing.T, owner *domain.User, description string, minutes int) *domain.Task {
	t.Helper()
	task, err := s.services.TaskService.CreateTask(context.Background(), owner.ID, description, minutes)
	require.NoError(t, err)
	return task
}

// do sends a request as username; an empty username sends no credentials
func (s *testServer) do(t *testing.T, method, path, username string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if username != "" {
		req.SetBasicAuth(username, password)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestID_Propagated(t *testing.T) {
	s := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestAuthentication(t *testing.T) {
	s := setupServer(t)
	s.register(t, "alice", "")

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
	}{
		{"no credentials", func(r *http.Request) {}, http.StatusUnauthorized},
		{"wrong password", func(r *http.Request) { r.SetBasicAuth("alice", "nope-nope") }, http.StatusUnauthorized},
		{"unknown user", func(r *http.Request) { r.SetBasicAuth("mallory", password) }, http.StatusUnauthorized},
		{"valid credentials", func(r *http.Request) { r.SetBasicAuth("alice", password) }, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/accounts/profile", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			s.handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusUnauthorized {
				assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")
				resp := decode[ErrorResponse](t, w)
				assert.Equal(t, "UNAUTHENTICATED", resp.Code)
			}
		})
	}
}

func TestRegisterAndProfile(t *testing.T) {
	s := setupServer(t)
	boss := s.register(t, "boss", "")

	w := s.do(t, http.MethodPost, "/accounts/register", "", RegisterRequest{
		Username:    "alice",
		DisplayName: "Alice",
		Password:    password,
		Manager:     "boss",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[UserResponse](t, w)
	assert.Equal(t, "alice", created.Username)
	require.NotNil(t, created.ManagerID)
	assert.Equal(t, boss.ID, *created.ManagerID)
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(t, http.MethodGet, "/accounts/profile", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[UserResponse](t, w).ID)

	t.Run("duplicate username", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/accounts/register", "", RegisterRequest{Username: "alice", Password: password})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/accounts/register", "", RegisterRequest{Username: "bob", Password: "short"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/accounts/register", "", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPasswordChange(t *testing.T) {
	s := setupServer(t)
	s.register(t, "alice", "")

	w := s.do(t, http.MethodPost, "/accounts/password_change", "alice", PasswordChangeRequest{
		OldPassword: "wrong-password",
		NewPassword: "brand-new-secret",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/accounts/password_change", "alice", PasswordChangeRequest{
		OldPassword: password,
		NewPassword: "brand-new-secret",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/accounts/profile", "alice", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateTask(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		minutes  int
	}{
		{"numeric time spent", `{"description":"Write docs","time_spent":30}`, http.StatusCreated, 30},
		{"string time spent", `{"description":"Write docs","time_spent":"45"}`, http.StatusCreated, 45},
		{"missing time spent", `{"description":"Write docs"}`, http.StatusBadRequest, 0},
		{"fractional time spent", `{"description":"Write docs","time_spent":1.5}`, http.StatusBadRequest, 0},
		{"negative time spent", `{"description":"Write docs","time_spent":-1}`, http.StatusBadRequest, 0},
		{"empty description", `{"description":"  ","time_spent":10}`, http.StatusBadRequest, 0},
		{"control character in description", `{"description":"bell\u0007char","time_spent":10}`, http.StatusBadRequest, 0},
		{"multi-line description", `{"description":"first\r\nsecond","time_spent":10}`, http.StatusCreated, 10},
		{"time spent beyond cap", `{"description":"Write docs","time_spent":9007199254740993}`, http.StatusBadRequest, 0},
		{"time spent at cap", `{"description":"Write docs","time_spent":10000000}`, http.StatusCreated, 10000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupServer(t)
			owner := s.register(t, "alice", "")

			w := s.do(t, http.MethodPost, "/tasks", "alice", tt.body)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode != http.StatusCreated {
				return
			}

			task := decode[TaskResponse](t, w)
			assert.Equal(t, owner.ID, task.OwnerID)
			assert.Equal(t, tt.minutes, task.TimeSpent)
			assert.True(t, task.Editable)
			assert.True(t, testNow.Add(7*24*time.Hour).Equal(task.EditDeadline))
		})
	}
}

func TestCreateTask_ValidationFields(t *testing.T) {
	s := setupServer(t)
	s.register(t, "alice", "")

	w := s.do(t, http.MethodPost, "/tasks", "alice", `{"description":"bell\u0007char","time_spent":20000000}`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "VALIDATION_FAILED", resp.Code)
	assert.Equal(t, "description contains invalid characters", resp.Fields["description"])
	assert.Contains(t, resp.Fields["time_spent"], "must be between 0 and 10000000 minutes")
}

func TestListSubordinates_Direct(t *testing.T) {
	s := setupServer(t)
	s.register(t, "boss", "")
	s.register(t, "mid", "boss")
	s.register(t, "worker", "mid")

	w := s.do(t, http.MethodGet, "/subordinates", "boss", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]UserResponse](t, w), 2)

	w = s.do(t, http.MethodGet, "/subordinates?direct=true", "boss", nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[[]UserResponse](t, w)
	require.Len(t, users, 1)
	assert.Equal(t, "mid", users[0].Username)
}

func TestGetTask_Permissions(t *testing.T) {
	s := setupServer(t)
	s.register(t, "boss", "")
	s.register(t, "mid", "boss")
	worker := s.register(t, "worker", "mid")
	s.register(t, "outsider", "")
	task := s.logTask(t, worker, "Fix bug", 30)

	tests := []struct {
		user     string
		path     string
		wantCode int
		editable bool
	}{
		{"worker", "/tasks/1", http.StatusOK, true},
		{"mid", "/tasks/1", http.StatusOK, false},
		{"boss", "/tasks/1", http.StatusOK, false},
		{"outsider", "/tasks/1", http.StatusForbidden, false},
		{"worker", "/tasks/99", http.StatusNotFound, false},
		{"worker", "/tasks/abc", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.user+" "+tt.path, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, tt.user, nil)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode == http.StatusOK {
				resp := decode[TaskResponse](t, w)
				assert.Equal(t, task.ID, resp.ID)
				assert.Equal(t, tt.editable, resp.Editable)
			}
		})
	}
}

func TestUpdateTask(t *testing.T) {
	s := setupServer(t)
	s.register(t, "boss", "")
	worker := s.register(t, "worker", "boss")
	task := s.logTask(t, worker, "Draft", 10)
	body := `{"description":"Final","time_spent":25}`
	path := "/tasks/1"
	require.Equal(t, int64(1), task.ID)

	w := s.do(t, http.MethodPut, path, "boss", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, path, "worker", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[TaskResponse](t, w)
	assert.Equal(t, "Final", resp.Description)
	assert.Equal(t, 25, resp.TimeSpent)

	s.clock.Advance(7*24*time.Hour + time.Second)
	w = s.do(t, http.MethodPut, path, "worker", body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "edit window closed")
}

func TestWeeklyListings(t *testing.T) {
	s := setupServer(t)
	s.register(t, "boss", "")
	worker := s.register(t, "worker", "boss")

	s.logTask(t, worker, "This week", 30)
	s.clock.Set(testNow.AddDate(0, 0, 7))
	s.logTask(t, worker, "Next week", 40)
	s.clock.Set(testNow)

	t.Run("current week by default", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/tasks", "worker", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[TaskListResponse](t, w)
		assert.Equal(t, "2024-W03", resp.Week)
		require.Len(t, resp.Tasks, 1)
		assert.Equal(t, "This week", resp.Tasks[0].Description)
	})

	t.Run("explicit week", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/tasks?week=4", "worker", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[TaskListResponse](t, w)
		require.Len(t, resp.Tasks, 1)
		assert.Equal(t, "Next week", resp.Tasks[0].Description)
	})

	t.Run("invalid week", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/tasks?week=60", "worker", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("subordinate tasks", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/subordinates/tasks?week=3", "boss", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[TaskListResponse](t, w)
		require.Len(t, resp.Tasks, 1)
		assert.Equal(t, worker.ID, resp.Tasks[0].OwnerID)
		assert.False(t, resp.Tasks[0].Editable)
	})

	t.Run("leaf has no subordinate tasks", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/subordinates/tasks", "worker", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[TaskListResponse](t, w).Tasks)
	})

	t.Run("subordinates", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/subordinates", "boss", nil)
		require.Equal(t, http.StatusOK, w.Code)
		users := decode[[]UserResponse](t, w)
		require.Len(t, users, 1)
		assert.Equal(t, "worker", users[0].Username)
	})

	t.Run("week report", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/reports/week", "boss", nil)
		require.Equal(t, http.StatusOK, w.Code)
		summary := decode[services.WeekSummary](t, w)
		assert.Equal(t, 30, summary.TotalMinutes)
		require.Len(t, summary.Users, 2)
		assert.Equal(t, "boss", summary.Users[0].Username)
	})
}

func TestExport(t *testing.T) {
	s := setupServer(t)
	alice := s.register(t, "alice", "")
	s.logTask(t, alice, "Write report", 90)

	tests := []struct {
		path        string
		contentType string
		filename    string
		wantCode    int
	}{
		{"/export/text", "text/plain; charset=utf-8", "tasks.txt", http.StatusOK},
		{"/export/excel", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "tasks.xlsx", http.StatusOK},
		{"/export/csv?week=3", "text/csv; charset=utf-8", "tasks.csv", http.StatusOK},
		{"/export/pdf", "application/pdf", "tasks.pdf", http.StatusOK},
		{"/export/docx", "", "", http.StatusBadRequest},
		{"/export/text?week=99", "", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, "alice", nil)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="`+tt.filename+`"`, w.Header().Get("Content-Disposition"))
			assert.NotZero(t, w.Body.Len())
		})
	}

	t.Run("text body", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/export/text", "alice", nil)
		assert.Equal(t, "2024-01-17 - Write report (90 mins)\n", w.Body.String())
	})

	t.Run("xlsx body", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/export/xlsx", "alice", nil)
		rows, err := export.ReadXLSX(w.Body)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Write report", rows[0].Description)
	})
}
