package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/CaptainBerkay35/taskmanager/internal/db"
	"github.com/CaptainBerkay35/taskmanager/internal/domain"
	"github.com/CaptainBerkay35/taskmanager/internal/engine"
	"github.com/CaptainBerkay35/taskmanager/internal/migrate"
)

type testServer struct {
	URL    string
	Engine engine.Engine
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := engine.New(conn)
	handler, err := New(Config{Engine: e, Auth: AuthConfig{JWTSecret: "test-secret"}})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	ts := &testServer{
		URL:    "http://" + ln.Addr().String(),
		Engine: e,
		client: &http.Client{Timeout: 5 * time.Second},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, token string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

// registerAndLogin creates an account and returns a usable bearer token.
func registerAndLogin(t *testing.T, srv *testServer) string {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/auth/register", map[string]any{
		"username": "berkay",
		"email":    "berkay@example.com",
		"fullName": "Berkay Y",
		"password": "sifre123",
	}, "")
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/auth/login", map[string]any{
		"username": "berkay",
		"password": "sifre123",
	}, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login status %d: %s", res.StatusCode, string(data))
	}
	var auth AuthResponse
	if err := json.Unmarshal(data, &auth); err != nil {
		t.Fatalf("unmarshal auth: %v", err)
	}
	if auth.Token == "" || auth.Username != "berkay" || auth.FullName != "Berkay Y" {
		t.Fatalf("unexpected auth payload: %+v", auth)
	}
	return auth.Token
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/tasks", nil, "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", res.StatusCode, string(data))
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Error.Code != "unauthorized" {
		t.Fatalf("code = %q", envelope.Error.Code)
	}

	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/health", nil, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health should be public, got %d", res.StatusCode)
	}
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/tasks", map[string]any{
		"title":    "Rapor yaz",
		"priority": 3,
	}, token)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, string(data))
	}
	var created domain.Task
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if created.Status != domain.StatusPending || created.IsCompleted {
		t.Fatalf("new task state: %+v", created)
	}

	// PUT into completed stamps completedDate
	res, data = doJSON(t, client, http.MethodPut, srv.URL+"/api/tasks/"+created.ID, map[string]any{
		"title":    created.Title,
		"priority": 3,
		"status":   string(domain.StatusCompleted),
	}, token)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("replace status %d: %s", res.StatusCode, string(data))
	}
	var done domain.Task
	if err := json.Unmarshal(data, &done); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !done.IsCompleted || done.CompletedDate == nil {
		t.Fatalf("completed task state: %+v", done)
	}

	// PUT back out clears them
	res, data = doJSON(t, client, http.MethodPut, srv.URL+"/api/tasks/"+created.ID, map[string]any{
		"title":    created.Title,
		"priority": 3,
		"status":   string(domain.StatusInProgress),
	}, token)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("reopen status %d: %s", res.StatusCode, string(data))
	}
	var reopened domain.Task
	if err := json.Unmarshal(data, &reopened); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if reopened.IsCompleted || reopened.CompletedDate != nil {
		t.Fatalf("reopened task state: %+v", reopened)
	}

	res, _ = doJSON(t, client, http.MethodDelete, srv.URL+"/api/tasks/"+created.ID, nil, token)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", res.StatusCode)
	}
	res, _ = doJSON(t, client, http.MethodGet, srv.URL+"/api/tasks/"+created.ID, nil, token)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", res.StatusCode)
	}
}

func TestCategoryDeleteConflict(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/categories", map[string]any{
		"name": "İş", "color": "#3b82f6",
	}, token)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create category %d: %s", res.StatusCode, string(data))
	}
	var cat domain.Category
	if err := json.Unmarshal(data, &cat); err != nil {
		t.Fatalf("unmarshal category: %v", err)
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/api/tasks", map[string]any{
		"title": "t", "categoryId": cat.ID,
	}, token)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create task %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodDelete, srv.URL+"/api/categories/"+cat.ID, nil, token)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", res.StatusCode, string(data))
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Error.Code != "category_in_use" {
		t.Fatalf("code = %q", envelope.Error.Code)
	}
}

func TestProjectCascadeDeleteOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/categories", map[string]any{
		"name": "Web", "color": "#22c55e",
	}, token)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create category %d: %s", res.StatusCode, string(data))
	}
	var cat domain.Category
	_ = json.Unmarshal(data, &cat)

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/api/projects", map[string]any{
		"name": "Yeni Site", "color": "#ef4444", "categoryIds": []string{cat.ID},
	}, token)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create project %d: %s", res.StatusCode, string(data))
	}
	var p domain.Project
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal project: %v", err)
	}

	for i := 0; i < 2; i++ {
		res, data = doJSON(t, client, http.MethodPost, srv.URL+"/api/tasks", map[string]any{
			"title": "t", "projectId": p.ID,
		}, token)
		if res.StatusCode != http.StatusCreated {
			t.Fatalf("create task %d: %s", res.StatusCode, string(data))
		}
	}

	res, data = doJSON(t, client, http.MethodDelete, srv.URL+"/api/projects/"+p.ID, nil, token)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("delete project %d: %s", res.StatusCode, string(data))
	}
	var result DeleteProjectResponse
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.ProjectName != "Yeni Site" || result.DeletedTasksCount != 2 {
		t.Fatalf("cascade result = %+v", result)
	}

	_, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/tasks", nil, token)
	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		t.Fatalf("unmarshal tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("tasks should cascade, %d left", len(tasks))
	}
}

func TestSubTasksOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)
	client := srv.Client()

	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/tasks", map[string]any{
		"title": "parent", "dueDate": due,
	}, token)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create parent %d: %s", res.StatusCode, string(data))
	}
	var parent domain.Task
	_ = json.Unmarshal(data, &parent)

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/api/subtasks", map[string]any{
		"taskId": parent.ID, "title": "late", "dueDate": due.Add(24 * time.Hour),
	}, token)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("late sub-task should be 400, got %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/api/subtasks", map[string]any{
		"taskId": parent.ID, "title": "ok",
	}, token)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create sub-task %d: %s", res.StatusCode, string(data))
	}
	var st domain.SubTask
	_ = json.Unmarshal(data, &st)

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/subtasks/ByTask/"+parent.ID, nil, token)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list sub-tasks %d: %s", res.StatusCode, string(data))
	}
	var list []domain.SubTask
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(list) != 1 || list[0].ID != st.ID {
		t.Fatalf("list = %+v", list)
	}
}
