package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/db"
	apphttp "github.com/geocoder89/taskhub/internal/http"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/repo/mongodb"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
	security.Cost = bcrypt.MinCost
}

func testConfig() config.Config {
	return config.Config{
		Env:                 "test",
		StoreDriver:         config.StoreMemory,
		JWTSecret:           "test-secret-key",
		JWTAccessTTLMinutes: 60,
		AdminEmail:          "admin@example.com",
		AdminPassword:       "admin-pass-123",
		AdminName:           "Test Admin",
		CORSAllowedOrigins:  []string{"http://localhost:5173"},
		RateLimitAuth:       50,
		RateLimitAPI:        500,
		RateLimitWindow:     time.Minute,
	}
}

type stores struct {
	users service.UserStore
	tasks service.TaskStore
	notes service.NoteStore
	ping  func(context.Context) error
}

func memoryStores() stores {
	return stores{
		users: memory.NewUsersRepo(),
		tasks: memory.NewTasksRepo(),
		notes: memory.NewNotesRepo(),
	}
}

func newTestRouter(t *testing.T, cfg config.Config, st stores) *gin.Engine {
	t.Helper()

	if err := db.EnsureAdminUser(context.Background(), st.users, cfg); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	tokens := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())

	users := service.NewUsers(st.users)
	tasks := service.NewTasks(st.tasks, st.users).WithTransitions(prom)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return apphttp.NewRouter(logger, cfg, apphttp.Deps{
		Auth:      service.NewAuth(st.users, tokens),
		Tasks:     tasks,
		Notes:     service.NewNotes(st.notes, st.tasks, st.users),
		Users:     users,
		Dashboard: service.NewDashboard(tasks, users),
		Tokens:    tokens,
		Ping:      st.ping,
		Prom:      prom,
		Gatherer:  reg,
	})
}

// helpers

type response struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Total   *int            `json:"total"`
}

func call(t *testing.T, router *gin.Engine, method, path, token string, body any) (int, response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s %s: %v body=%s", method, path, err, w.Body.String())
		}
	}
	return w.Code, resp
}

func decode(t *testing.T, raw json.RawMessage, dst any) {
	t.Helper()
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("decode data: %v (%s)", err, raw)
	}
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

func login(t *testing.T, router *gin.Engine, email, password string) session {
	t.Helper()

	code, resp := call(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	if code != http.StatusOK {
		t.Fatalf("login %s: got status %d, want %d (%+v)", email, code, http.StatusOK, resp)
	}

	var s session
	decode(t, resp.Data, &s)
	return s
}

// runTaskFlow drives the common admin/user path through the whole stack.
func runTaskFlow(t *testing.T, router *gin.Engine) {
	admin := login(t, router, "ADMIN@example.com", "admin-pass-123")
	if admin.User.Role != "admin" {
		t.Fatalf("seeded admin role = %q", admin.User.Role)
	}

	code, resp := call(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Uma User", "email": "uma@example.com", "password": "secret123",
	})
	if code != http.StatusCreated {
		t.Fatalf("register: got status %d, want %d (%+v)", code, http.StatusCreated, resp)
	}
	var u session
	decode(t, resp.Data, &u)

	code, resp = call(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Again", "email": "UMA@example.com", "password": "secret123",
	})
	if code != http.StatusBadRequest || resp.Code != "email_taken" {
		t.Fatalf("duplicate register: got status %d (%+v)", code, resp)
	}

	// admin creates and assigns
	code, resp = call(t, router, http.MethodPost, "/api/v1/tasks", admin.Token, map[string]any{
		"title": "Quarterly report", "description": "Numbers for Q3", "assignedTo": u.User.ID, "priority": "high",
	})
	if code != http.StatusCreated {
		t.Fatalf("create task: got status %d, want %d (%+v)", code, http.StatusCreated, resp)
	}
	var created struct {
		Task struct {
			ID        string `json:"id"`
			Status    string `json:"status"`
			CreatedBy struct {
				ID string `json:"id"`
			} `json:"createdBy"`
		} `json:"task"`
	}
	decode(t, resp.Data, &created)
	taskID := created.Task.ID

	if created.Task.Status != "pending" || created.Task.CreatedBy.ID != admin.User.ID {
		t.Fatalf("created task = %+v", created.Task)
	}

	// users only ever see their own tasks
	code, resp = call(t, router, http.MethodGet, "/api/v1/tasks", u.Token, nil)
	if code != http.StatusOK || resp.Count == nil || *resp.Count != 1 {
		t.Fatalf("user list: got status %d (%+v)", code, resp)
	}

	code, resp = call(t, router, http.MethodPost, "/api/v1/tasks", u.Token, map[string]any{
		"title": "x", "description": "y", "assignedTo": u.User.ID,
	})
	if code != http.StatusForbidden {
		t.Fatalf("user create: got status %d, want %d", code, http.StatusForbidden)
	}
	if resp.Message != "User role user is not authorized to access this route" {
		t.Fatalf("message = %q", resp.Message)
	}

	code, _ = call(t, router, http.MethodPut, "/api/v1/tasks/"+taskID, u.Token, map[string]any{
		"status": "completed", "response": "Attached in the shared drive",
	})
	if code != http.StatusOK {
		t.Fatalf("user update: got status %d, want %d", code, http.StatusOK)
	}

	code, resp = call(t, router, http.MethodGet, "/api/v1/tasks/stats", u.Token, nil)
	if code != http.StatusOK {
		t.Fatalf("stats: got status %d", code)
	}
	var stats struct {
		Total             int `json:"total"`
		CompletedThisWeek int `json:"completedThisWeek"`
	}
	decode(t, resp.Data, &stats)
	if stats.Total != 1 || stats.CompletedThisWeek != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	code, resp = call(t, router, http.MethodPost, "/api/v1/notes/task/"+taskID, u.Token, map[string]string{"content": "Done early"})
	if code != http.StatusCreated {
		t.Fatalf("add note: got status %d (%+v)", code, resp)
	}

	code, resp = call(t, router, http.MethodGet, "/api/v1/notes/task/"+taskID, admin.Token, nil)
	if code != http.StatusOK || resp.Count == nil || *resp.Count != 1 {
		t.Fatalf("list notes: got status %d (%+v)", code, resp)
	}

	code, resp = call(t, router, http.MethodGet, "/api/v1/tasks/analytics", admin.Token, nil)
	if code != http.StatusOK {
		t.Fatalf("analytics: got status %d", code)
	}
	var analytics struct {
		TotalTasks  int `json:"totalTasks"`
		TasksByUser []struct {
			UserID         string  `json:"userId"`
			CompletionRate float64 `json:"completionRate"`
		} `json:"tasksByUser"`
	}
	decode(t, resp.Data, &analytics)
	if analytics.TotalTasks != 1 || len(analytics.TasksByUser) != 1 || analytics.TasksByUser[0].CompletionRate != 100 {
		t.Fatalf("analytics = %+v", analytics)
	}

	code, _ = call(t, router, http.MethodGet, "/api/v1/users", u.Token, nil)
	if code != http.StatusForbidden {
		t.Fatalf("user on admin route: got status %d, want %d", code, http.StatusForbidden)
	}

	code, resp = call(t, router, http.MethodGet, "/api/v1/dashboard", admin.Token, nil)
	if code != http.StatusOK {
		t.Fatalf("dashboard: got status %d", code)
	}
	var dash map[string]json.RawMessage
	decode(t, resp.Data, &dash)
	if _, ok := dash["analytics"]; !ok {
		t.Fatalf("admin dashboard without analytics: %s", resp.Data)
	}

	code, _ = call(t, router, http.MethodDelete, "/api/v1/tasks/"+taskID, admin.Token, nil)
	if code != http.StatusOK {
		t.Fatalf("delete: got status %d", code)
	}

	code, _ = call(t, router, http.MethodGet, "/api/v1/tasks/"+taskID, admin.Token, nil)
	if code != http.StatusNotFound {
		t.Fatalf("get deleted: got status %d, want %d", code, http.StatusNotFound)
	}

	code, resp = call(t, router, http.MethodGet, "/api/v1/auth/me", u.Token, nil)
	if code != http.StatusOK {
		t.Fatalf("me: got status %d (%+v)", code, resp)
	}
}

// runStoreQueries checks filters, sorting, paging and the aggregate
// numbers against a known set of tasks.
func runStoreQueries(t *testing.T, router *gin.Engine) {
	admin := login(t, router, "admin@example.com", "admin-pass-123")
	ava := register(t, router, "Ava", "ava@example.com")
	ben := register(t, router, "Ben", "ben@example.com")

	now := time.Now().UTC()
	due := func(d time.Duration) string { return now.Add(d).Format(time.RFC3339) }

	create := func(body map[string]any) string {
		t.Helper()
		body["description"] = "seeded"
		code, resp := call(t, router, http.MethodPost, "/api/v1/tasks", admin.Token, body)
		if code != http.StatusCreated {
			t.Fatalf("create %v: got status %d (%+v)", body["title"], code, resp)
		}
		var out struct {
			Task struct {
				ID string `json:"id"`
			} `json:"task"`
		}
		decode(t, resp.Data, &out)
		return out.Task.ID
	}

	overdue := create(map[string]any{"title": "overdue", "assignedTo": ava.User.ID, "priority": "low", "dueDate": due(-24 * time.Hour)})
	undated := create(map[string]any{"title": "undated", "assignedTo": ava.User.ID, "priority": "urgent"})
	upcoming := create(map[string]any{"title": "upcoming", "assignedTo": ava.User.ID, "priority": "high", "dueDate": due(24 * time.Hour)})
	create(map[string]any{"title": "done", "assignedTo": ava.User.ID, "status": "completed"})
	create(map[string]any{"title": "dropped", "assignedTo": ben.User.ID, "status": "cancelled", "dueDate": due(-48 * time.Hour)})
	create(map[string]any{"title": "running", "assignedTo": ben.User.ID, "status": "in-progress", "dueDate": due(72 * time.Hour)})

	code, _ := call(t, router, http.MethodPut, "/api/v1/tasks/"+upcoming, ava.Token, map[string]any{"status": "completed"})
	if code != http.StatusOK {
		t.Fatalf("complete upcoming: got status %d", code)
	}

	// totals follow the filters
	code, resp := call(t, router, http.MethodGet, "/api/v1/tasks?status=pending&limit=1", admin.Token, nil)
	if code != http.StatusOK || *resp.Count != 1 || *resp.Total != 2 {
		t.Fatalf("pending page: got status %d (%+v)", code, resp)
	}

	ids := func(path, token string) []string {
		t.Helper()
		code, resp := call(t, router, http.MethodGet, path, token, nil)
		if code != http.StatusOK {
			t.Fatalf("%s: got status %d", path, code)
		}
		var out struct {
			Tasks []struct {
				ID string `json:"id"`
			} `json:"tasks"`
		}
		decode(t, resp.Data, &out)
		got := make([]string, 0, len(out.Tasks))
		for _, tk := range out.Tasks {
			got = append(got, tk.ID)
		}
		return got
	}

	sortTests := []struct {
		sortBy string
		want   []string // leading ids; the undated tail ties on id
	}{
		{"dueDate", []string{overdue, upcoming}},
		{"-dueDate", []string{upcoming, overdue}},
		{"-priority", []string{undated, upcoming}},
	}
	for _, tt := range sortTests {
		got := ids("/api/v1/tasks?sortBy="+tt.sortBy, ava.Token)
		if len(got) != 4 {
			t.Fatalf("sortBy=%s: got %d tasks, want 4", tt.sortBy, len(got))
		}
		for i, id := range tt.want {
			if got[i] != id {
				t.Fatalf("sortBy=%s: position %d = %s, want %s (all %v)", tt.sortBy, i, got[i], id, got)
			}
		}
		if tt.sortBy != "-priority" && got[2] != undated && got[3] != undated {
			t.Fatalf("sortBy=%s: undated task not last: %v", tt.sortBy, got)
		}
	}

	type stats struct {
		Total             int `json:"total"`
		Overdue           int `json:"overdue"`
		CompletedThisWeek int `json:"completedThisWeek"`
		ByStatus          []struct {
			Key   string `json:"_id"`
			Count int    `json:"count"`
		} `json:"byStatus"`
	}
	statsFor := func(token string) stats {
		t.Helper()
		code, resp := call(t, router, http.MethodGet, "/api/v1/tasks/stats", token, nil)
		if code != http.StatusOK {
			t.Fatalf("stats: got status %d", code)
		}
		var st stats
		decode(t, resp.Data, &st)
		return st
	}

	all := statsFor(admin.Token)
	if all.Total != 6 || all.Overdue != 1 || all.CompletedThisWeek != 2 {
		t.Fatalf("admin stats = %+v", all)
	}
	byStatus := map[string]int{}
	for _, g := range all.ByStatus {
		byStatus[g.Key] = g.Count
	}
	wantStatus := map[string]int{"pending": 2, "completed": 2, "cancelled": 1, "in-progress": 1}
	for k, v := range wantStatus {
		if byStatus[k] != v {
			t.Fatalf("byStatus = %v, want %v", byStatus, wantStatus)
		}
	}

	if st := statsFor(ava.Token); st.Total != 4 || st.Overdue != 1 || st.CompletedThisWeek != 2 {
		t.Fatalf("ava stats = %+v", st)
	}
	// a cancelled task past its due date is not overdue
	if st := statsFor(ben.Token); st.Total != 2 || st.Overdue != 0 || st.CompletedThisWeek != 0 {
		t.Fatalf("ben stats = %+v", st)
	}

	code, resp = call(t, router, http.MethodGet, "/api/v1/tasks/analytics", admin.Token, nil)
	if code != http.StatusOK {
		t.Fatalf("analytics: got status %d", code)
	}
	var analytics struct {
		TotalTasks  int `json:"totalTasks"`
		TasksByUser []struct {
			UserID         string  `json:"userId"`
			UserName       string  `json:"userName"`
			Total          int     `json:"total"`
			Completed      int     `json:"completed"`
			Pending        int     `json:"pending"`
			InProgress     int     `json:"inProgress"`
			CompletionRate float64 `json:"completionRate"`
		} `json:"tasksByUser"`
		RecentTasks []json.RawMessage `json:"recentTasks"`
	}
	decode(t, resp.Data, &analytics)

	if analytics.TotalTasks != 6 || len(analytics.TasksByUser) != 2 || len(analytics.RecentTasks) != 6 {
		t.Fatalf("analytics = %+v", analytics)
	}
	first, second := analytics.TasksByUser[0], analytics.TasksByUser[1]
	if first.UserID != ava.User.ID || first.UserName != "Ava" || first.Total != 4 || first.Completed != 2 ||
		first.Pending != 2 || first.InProgress != 0 || first.CompletionRate != 50 {
		t.Fatalf("ava breakdown = %+v", first)
	}
	if second.UserID != ben.User.ID || second.Total != 2 || second.Completed != 0 ||
		second.Pending != 0 || second.InProgress != 1 || second.CompletionRate != 0 {
		t.Fatalf("ben breakdown = %+v", second)
	}
}

func register(t *testing.T, router *gin.Engine, name, email string) session {
	t.Helper()

	code, resp := call(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret123",
	})
	if code != http.StatusCreated {
		t.Fatalf("register %s: got status %d (%+v)", email, code, resp)
	}

	var s session
	decode(t, resp.Data, &s)
	return s
}

func TestTaskFlow_Memory(t *testing.T) {
	router := newTestRouter(t, testConfig(), memoryStores())
	runTaskFlow(t, router)
	runStoreQueries(t, router)
}

func TestTaskFlow_Mongo(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()

	client, database, err := db.NewMongo(uri, "taskhub_test")
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	if err := database.Drop(ctx); err != nil {
		t.Fatalf("drop database: %v", err)
	}
	if err := mongodb.EnsureIndexes(ctx, database); err != nil {
		t.Fatalf("indexes: %v", err)
	}

	st := stores{
		users: mongodb.NewUsersRepo(database, nil),
		tasks: mongodb.NewTasksRepo(database, nil),
		notes: mongodb.NewNotesRepo(database, nil),
		ping:  func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}

	cfg := testConfig()
	cfg.StoreDriver = config.StoreMongo

	router := newTestRouter(t, cfg, st)
	runTaskFlow(t, router)
	runStoreQueries(t, router)
}

func TestTaskFlow_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE notes, tasks, users`); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	st := stores{
		users: postgres.NewUsersRepo(pool, nil),
		tasks: postgres.NewTasksRepo(pool, nil),
		notes: postgres.NewNotesRepo(pool, nil),
		ping:  pool.Ping,
	}

	cfg := testConfig()
	cfg.StoreDriver = config.StorePostgres

	router := newTestRouter(t, cfg, st)
	runTaskFlow(t, router)
	runStoreQueries(t, router)
}

func TestWriteGuardsRunBeforeBodyChecks(t *testing.T) {
	router := newTestRouter(t, testConfig(), memoryStores())

	admin := login(t, router, "admin@example.com", "admin-pass-123")
	u := register(t, router, "Uma User", "uma@example.com")

	send := func(token, contentType, body string) (int, response) {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp response
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v body=%s", err, w.Body.String())
		}
		return w.Code, resp
	}

	huge := `{"title":"` + strings.Repeat("x", 70<<10) + `"}`

	tests := []struct {
		name        string
		token       string
		contentType string
		body        string
		wantStatus  int
		wantCode    string
	}{
		{"anonymous wrong type", "", "text/plain", "hello", http.StatusUnauthorized, "unauthorized"},
		{"anonymous huge body", "", "application/json", huge, http.StatusUnauthorized, "unauthorized"},
		{"user wrong type", u.Token, "text/plain", "hello", http.StatusForbidden, "forbidden"},
		{"admin wrong type", admin.Token, "text/plain", "hello", http.StatusUnsupportedMediaType, "unsupported_media_type"},
		{"admin huge body", admin.Token, "application/json", huge, http.StatusRequestEntityTooLarge, "payload_too_large"},
		{"admin empty json", admin.Token, "application/json", "{}", http.StatusBadRequest, "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := send(tt.token, tt.contentType, tt.body)
			if code != tt.wantStatus || resp.Code != tt.wantCode {
				t.Fatalf("got status %d code %q, want %d %q", code, resp.Code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestPublicRoutes(t *testing.T) {
	router := newTestRouter(t, testConfig(), memoryStores())

	code, resp := call(t, router, http.MethodGet, "/api/health", "", nil)
	if code != http.StatusOK || resp.Message != "Server is running" {
		t.Fatalf("health: got status %d (%+v)", code, resp)
	}

	code, _ = call(t, router, http.MethodGet, "/api/ready", "", nil)
	if code != http.StatusOK {
		t.Fatalf("ready: got status %d", code)
	}

	code, resp = call(t, router, http.MethodGet, "/api/v1/nope", "", nil)
	if code != http.StatusNotFound || resp.Message != "Route not found" {
		t.Fatalf("unknown route: got status %d (%+v)", code, resp)
	}

	code, resp = call(t, router, http.MethodGet, "/api/v1/tasks", "", nil)
	if code != http.StatusUnauthorized || resp.Message != "Not authorized, no token" {
		t.Fatalf("no token: got status %d (%+v)", code, resp)
	}

	code, resp = call(t, router, http.MethodGet, "/api/v1/tasks", "garbage", nil)
	if code != http.StatusUnauthorized || resp.Message != "Not authorized, token failed" {
		t.Fatalf("bad token: got status %d (%+v)", code, resp)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "taskhub_") {
		t.Fatalf("metrics: got status %d", w.Code)
	}
}

func TestAuthRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitAuth = 2

	router := newTestRouter(t, cfg, memoryStores())

	body := map[string]string{"email": "nobody@example.com", "password": "whatever"}

	for i := 0; i < cfg.RateLimitAuth; i++ {
		code, _ := call(t, router, http.MethodPost, "/api/v1/auth/login", "", body)
		if code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: got status %d, want %d", i+1, code, http.StatusUnauthorized)
		}
	}

	code, resp := call(t, router, http.MethodPost, "/api/v1/auth/login", "", body)
	if code != http.StatusTooManyRequests || resp.Code != "rate_limited" {
		t.Fatalf("got status %d, want %d (%+v)", code, http.StatusTooManyRequests, resp)
	}
}
