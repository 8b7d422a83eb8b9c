package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"ustazhub.kz/internal/account"
	"ustazhub.kz/internal/achievement"
	"ustazhub.kz/internal/auth"
	"ustazhub.kz/internal/leaderboard"
	"ustazhub.kz/internal/storage"
	"ustazhub.kz/internal/stream"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	t.Setenv("USTAZHUB_AUTH_SECRET", "test-secret")
	auth.ResetSecretForTests()

	files, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	recordStore := achievement.NewInMemory()
	accountStore := account.NewInMemory()
	achievements := achievement.NewService(recordStore, files,
		achievement.WithEvents(stream.New()),
		achievement.WithMaxUploadBytes(1<<20),
	)
	accounts := account.NewService(accountStore, achievements)
	if _, err := accounts.Bootstrap(context.Background(), "admin", "adminpass"); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}

	api := New(Config{
		Accounts:     accounts,
		Achievements: achievements,
		Leaderboard:  leaderboard.NewAggregator(accountStore, recordStore),
		Files:        files,
		Events:       stream.New(),
		Version:      "test",
	})

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, token string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) register(username string) {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/v1/auth/register", map[string]any{
		"username": username,
		"password": "secret1",
		"school":   "Gymnasium 5",
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
}

func (c *apiClient) login(username, password string) string {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/v1/auth/login", map[string]any{
		"username": username,
		"password": password,
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login %s: status %d", username, resp.StatusCode)
	}
	var payload sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.t.Fatalf("decode login response: %v", err)
	}
	if payload.Token == "" {
		c.t.Fatal("empty session token")
	}
	return payload.Token
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func olympiadBody() map[string]any {
	return map[string]any{
		"type":         "student_result",
		"category":     "olympiad",
		"level":        "national",
		"place":        "1",
		"title":        "Republican olympiad",
		"student_name": "A. Student",
	}
}

func TestRegisterLoginAndProfile(t *testing.T) {
	api := newTestAPI(t)
	api.register("aigerim")
	token := api.login("aigerim", "secret1")

	resp := api.do(http.MethodGet, "/v1/accounts/me", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get me: status %d", resp.StatusCode)
	}
	me := decode[map[string]any](t, resp)
	if me["username"] != "aigerim" || me["role"] != "teacher" {
		t.Fatalf("profile = %v", me)
	}
	if _, leaked := me["password_hash"]; leaked {
		t.Fatal("password hash exposed in response")
	}
}

func TestRegisterValidationErrors(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(http.MethodPost, "/v1/auth/register", map[string]any{
		"username": "bob",
		"password": "short",
	}, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("short password: status %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["fields"] == nil {
		t.Fatalf("expected field errors, got %v", body)
	}
}

func TestRegisterIgnoresSuppliedRole(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(http.MethodPost, "/v1/auth/register", map[string]any{
		"username": "sneaky",
		"password": "secret1",
		"role":     "super_admin",
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register with role field: status %d", resp.StatusCode)
	}
	created := decode[map[string]any](t, resp)
	if created["role"] != "teacher" {
		t.Fatalf("role = %v, want teacher", created["role"])
	}
}

func TestSubmitModerateLeaderboardFlow(t *testing.T) {
	api := newTestAPI(t)
	api.register("aigerim")
	teacherToken := api.login("aigerim", "secret1")
	adminToken := api.login("admin", "adminpass")

	resp := api.do(http.MethodPost, "/v1/achievements", olympiadBody(), teacherToken)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: status %d", resp.StatusCode)
	}
	created := decode[submitResponse](t, resp)
	if created.Record.Status != achievement.StatusPending || created.Record.Points != 45 {
		t.Fatalf("created record = %+v", created.Record)
	}
	if !created.Recognized {
		t.Fatal("expected recognized classification")
	}

	// pending submissions contribute nothing
	resp = api.do(http.MethodGet, "/v1/leaderboard", nil, teacherToken)
	board := decode[leaderboard.Board](t, resp)
	for _, row := range board.Teachers {
		if row.Score != 0 {
			t.Fatalf("pending points leaked into leaderboard: %+v", row)
		}
	}

	id := created.Record.ID
	resp = api.do(http.MethodPost, "/v1/achievements/"+itoa(id)+"/approve", nil, adminToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve: status %d", resp.StatusCode)
	}
	approved := decode[achievement.Record](t, resp)
	if approved.Status != achievement.StatusApproved {
		t.Fatalf("status = %s", approved.Status)
	}

	resp = api.do(http.MethodGet, "/v1/leaderboard", nil, teacherToken)
	board = decode[leaderboard.Board](t, resp)
	if board.Teachers[0].Score != 45 {
		t.Fatalf("top score = %d, want 45", board.Teachers[0].Score)
	}
	if board.Schools[0].School != "Gymnasium 5" {
		t.Fatalf("top school = %+v", board.Schools[0])
	}
}

func TestModerationRequiresModerator(t *testing.T) {
	api := newTestAPI(t)
	api.register("aigerim")
	token := api.login("aigerim", "secret1")

	resp := api.do(http.MethodPost, "/v1/achievements", olympiadBody(), token)
	created := decode[submitResponse](t, resp)

	resp = api.do(http.MethodPost, "/v1/achievements/"+itoa(created.Record.ID)+"/approve", nil, token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("teacher approving own record: status %d", resp.StatusCode)
	}
}

func TestUnauthenticatedRequests(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/v1/achievements", "/v1/leaderboard", "/v1/accounts"} {
		resp := api.do(http.MethodGet, path, nil, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("GET %s without token: status %d", path, resp.StatusCode)
		}
	}

	resp := api.do(http.MethodGet, "/v1/achievements", nil, "garbage-token")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("invalid token: status %d", resp.StatusCode)
	}
}

func TestMultipartSubmissionAndDownload(t *testing.T) {
	api := newTestAPI(t)
	api.register("aigerim")
	token := api.login("aigerim", "secret1")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"type": "student_result", "category": "olympiad",
		"level": "city", "place": "certificate",
		"title": "City olympiad",
	} {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	fw, err := mw.CreateFormFile("file", "diploma.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("diploma-bytes")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, api.baseURL+"/v1/achievements", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := api.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("multipart submit: status %d", resp.StatusCode)
	}
	created := decode[submitResponse](t, resp)
	if created.Record.FileLocator == "" {
		t.Fatal("missing file locator")
	}
	if created.Record.Points != 10 {
		t.Fatalf("points = %d, want 10", created.Record.Points)
	}

	resp = api.do(http.MethodGet, "/v1/files/"+created.Record.FileLocator, nil, token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil || string(data) != "diploma-bytes" {
		t.Fatalf("downloaded %q, %v", data, err)
	}
}

func TestPasswordResetIsUniform(t *testing.T) {
	api := newTestAPI(t)
	api.register("aigerim")

	known := api.do(http.MethodPost, "/v1/auth/password-reset", map[string]any{"username": "aigerim"}, "")
	known.Body.Close()
	unknown := api.do(http.MethodPost, "/v1/auth/password-reset", map[string]any{"username": "ghost"}, "")
	unknown.Body.Close()
	if known.StatusCode != http.StatusAccepted || unknown.StatusCode != http.StatusAccepted {
		t.Fatalf("statuses %d and %d, want both %d", known.StatusCode, unknown.StatusCode, http.StatusAccepted)
	}
}

func TestRoleChangeEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.register("aigerim")
	adminToken := api.login("admin", "adminpass")
	teacherToken := api.login("aigerim", "secret1")

	resp := api.do(http.MethodGet, "/v1/accounts/me", nil, teacherToken)
	me := decode[map[string]any](t, resp)
	id := me["id"].(string)

	resp = api.do(http.MethodPut, "/v1/accounts/"+id+"/role", map[string]any{"role": "methodist"}, adminToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("role change: status %d", resp.StatusCode)
	}
	updated := decode[map[string]any](t, resp)
	if updated["role"] != "methodist" {
		t.Fatalf("role = %v", updated["role"])
	}

	// teachers cannot change roles at all
	resp = api.do(http.MethodPut, "/v1/accounts/"+id+"/role", map[string]any{"role": "director"}, teacherToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("teacher changing role: status %d", resp.StatusCode)
	}

	// admins cannot change their own role
	resp = api.do(http.MethodGet, "/v1/accounts/me", nil, adminToken)
	adminMe := decode[map[string]any](t, resp)
	resp = api.do(http.MethodPut, "/v1/accounts/"+adminMe["id"].(string)+"/role", map[string]any{"role": "teacher"}, adminToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("self role change: status %d", resp.StatusCode)
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	api := newTestAPI(t)
	api.register("aigerim")
	teacherToken := api.login("aigerim", "secret1")
	adminToken := api.login("admin", "adminpass")

	resp := api.do(http.MethodPost, "/v1/achievements", olympiadBody(), teacherToken)
	created := decode[submitResponse](t, resp)

	resp = api.do(http.MethodGet, "/v1/accounts/me", nil, teacherToken)
	me := decode[map[string]any](t, resp)
	id := me["id"].(string)

	resp = api.do(http.MethodDelete, "/v1/accounts/"+id, nil, adminToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete account: status %d", resp.StatusCode)
	}

	// the record went away with the account
	resp = api.do(http.MethodGet, "/v1/achievements/"+itoa(created.Record.ID), nil, adminToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("record survived account deletion: status %d", resp.StatusCode)
	}
}

func TestHealthAndInfo(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodGet, "/healthz", nil, "")
	body := decode[map[string]any](t, resp)
	if body["status"] != "ok" {
		t.Fatalf("healthz = %v", body)
	}

	resp = api.do(http.MethodGet, "/readyz", nil, "")
	body = decode[map[string]any](t, resp)
	if body["status"] != "ready" {
		t.Fatalf("readyz = %v", body)
	}
}

func TestReportsSummary(t *testing.T) {
	api := newTestAPI(t)
	api.register("aigerim")
	teacherToken := api.login("aigerim", "secret1")
	adminToken := api.login("admin", "adminpass")

	resp := api.do(http.MethodGet, "/v1/reports/summary", nil, teacherToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("teacher summary: status %d", resp.StatusCode)
	}

	resp = api.do(http.MethodPost, "/v1/achievements", olympiadBody(), teacherToken)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: status %d", resp.StatusCode)
	}
	created := decode[submitResponse](t, resp)
	resp = api.do(http.MethodPost, "/v1/achievements/"+itoa(created.Record.ID)+"/approve", nil, adminToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve: status %d", resp.StatusCode)
	}

	resp = api.do(http.MethodGet, "/v1/reports/summary", nil, adminToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin summary: status %d", resp.StatusCode)
	}
	sum := decode[reportSummary](t, resp)
	if sum.Accounts != 2 || sum.AccountsByRole["teacher"] != 1 || sum.AccountsByRole["super_admin"] != 1 {
		t.Fatalf("accounts = %+v", sum)
	}
	if sum.Schools != 1 {
		t.Fatalf("schools = %d", sum.Schools)
	}
	if sum.Submissions["approved"] != 1 || sum.Submissions["pending"] != 0 {
		t.Fatalf("submissions = %v", sum.Submissions)
	}
	if sum.ApprovedPoints != 45 {
		t.Fatalf("approved points = %d", sum.ApprovedPoints)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
