package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cmra-project/group-dashboard/internal/middleware"
	"github.com/cmra-project/group-dashboard/internal/services"
)

type stubRowStore struct {
	rows []*services.NormalizedRow
}

func (s *stubRowStore) ReadAll() ([]*services.NormalizedRow, error) { return s.rows, nil }
func (s *stubRowStore) Append(row *services.NormalizedRow) error {
	s.rows = append(s.rows, row)
	return nil
}
func (s *stubRowStore) ReplaceAll(rows []*services.NormalizedRow) error {
	s.rows = rows
	return nil
}
func (s *stubRowStore) Clear() error {
	s.rows = nil
	return nil
}

type testEnv struct {
	store   *stubRowStore
	flag    *services.FlagFile
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := &stubRowStore{}
	flag := &services.FlagFile{Path: filepath.Join(t.TempDir(), "realtime.flag")}
	log := zerolog.Nop()
	normalizer := services.NewNormalizer(nil)
	ingest := services.NewIngestService(store, flag, normalizer, log)
	auth := services.NewAuthService(NewMemoryUserStore(), middleware.SignToken)

	mux := http.NewServeMux()
	NewRouter(Deps{
		Store:  store,
		Ingest: ingest,
		Flag:   flag,
		Auth:   auth,
		Log:    log,
	}).Register(mux)

	return &testEnv{store: store, flag: flag, handler: middleware.WithAuth(mux)}
}

func (e *testEnv) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func adminToken(t *testing.T) string {
	t.Helper()
	tok, err := middleware.SignToken("u-test", "admin@example.com", time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func samplePayload(submittedAt time.Time) map[string]any {
	num := func(v float64) map[string]any {
		return map[string]any{"key": "", "number": v}
	}
	variables := []map[string]any{}
	set := func(key string, v float64) {
		m := num(v)
		m["key"] = key
		variables = append(variables, m)
	}
	set("discipleship", 20)
	set("sending", 15)
	set("support", 10)
	set("structure", 5)
	set("education", 85)
	set("training", 75)
	set("sending1", 65)
	set("membercare", 55)
	set("praying", 45)
	set("giving", 35)
	set("community", 25)
	set("organisation", 95)
	set("policies", 15)
	set("partnerships", 5)
	set("score", 50)
	set("finalpercentage", 50)

	return map[string]any{
		"event_id": "evt_1",
		"form_response": map[string]any{
			"token":        "tok_1",
			"submitted_at": submittedAt.Format(time.RFC3339),
			"answers": []map[string]any{
				{"field": map[string]any{"id": "Wz6EJ0SrP537"}, "type": "text", "text": "Jordan"},
				{"field": map[string]any{"id": "mQQ6n4XODVE8"}, "type": "email", "email": "jordan@example.com"},
				{"field": map[string]any{"id": "7rGpb91gC5Zv"}, "type": "text", "text": "Pastor"},
				{"field": map[string]any{"id": "4yBh92Cyp8hz"}, "type": "text", "text": "Grace Church"},
			},
			"variables": variables,
		},
	}
}

func TestWebhookGetReturnsWelcome(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/webhook", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != welcomeMessage {
		t.Fatalf("unexpected welcome body: %v", body)
	}
}

func TestWebhookIgnoredWhenRealtimeDisabled(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/webhook", "", samplePayload(time.Now()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ignored" {
		t.Fatalf("expected ignored status, got %v", body)
	}
	if len(env.store.rows) != 0 {
		t.Fatalf("row stored while realtime disabled")
	}
}

func TestWebhookStoresRowWhenRealtimeEnabled(t *testing.T) {
	env := newTestEnv(t)
	if err := env.flag.Enable(); err != nil {
		t.Fatalf("enable realtime: %v", err)
	}
	rec := env.do(t, http.MethodPost, "/webhook", "", samplePayload(time.Now()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["status"] != "success" {
		t.Fatalf("expected success status, got %v", body)
	}
	if len(env.store.rows) != 1 {
		t.Fatalf("expected 1 stored row, got %d", len(env.store.rows))
	}
	row := env.store.rows[0]
	if row.Role == nil || *row.Role != "Pastor" {
		t.Fatalf("role not normalized: %+v", row)
	}
	if row.Discipleship == nil || *row.Discipleship != 80 {
		t.Fatalf("discipleship score not rescaled: %+v", row.Discipleship)
	}
}

func TestWebhookRejectsMissingEventID(t *testing.T) {
	env := newTestEnv(t)
	payload := samplePayload(time.Now())
	delete(payload, "event_id")
	rec := env.do(t, http.MethodPost, "/webhook", "", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWebhookRejectsMissingDomainScore(t *testing.T) {
	env := newTestEnv(t)
	if err := env.flag.Enable(); err != nil {
		t.Fatalf("enable realtime: %v", err)
	}
	payload := samplePayload(time.Now())
	form := payload["form_response"].(map[string]any)
	variables := form["variables"].([]map[string]any)
	kept := variables[:0]
	for _, v := range variables {
		if v["key"] != "support" {
			kept = append(kept, v)
		}
	}
	form["variables"] = kept

	rec := env.do(t, http.MethodPost, "/webhook", "", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["missing_field"] != "support" {
		t.Fatalf("expected missing_field support, got %v", body)
	}
}

func TestSummaryNoData(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/dashboard/summary", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["no_data"] != true {
		t.Fatalf("expected no_data true, got %v", body)
	}
}

func TestSummaryAfterIngest(t *testing.T) {
	env := newTestEnv(t)
	if err := env.flag.Enable(); err != nil {
		t.Fatalf("enable realtime: %v", err)
	}
	if rec := env.do(t, http.MethodPost, "/webhook", "", samplePayload(time.Now())); rec.Code != http.StatusOK {
		t.Fatalf("ingest failed: %d %s", rec.Code, rec.Body.String())
	}

	rec := env.do(t, http.MethodGet, "/api/dashboard/summary", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		NoData  bool                    `json:"no_data"`
		Summary *services.CohortSummary `json:"summary"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if body.NoData || body.Summary == nil {
		t.Fatalf("expected summary, got no_data=%v", body.NoData)
	}
	if body.Summary.ResponseCount != 1 {
		t.Fatalf("expected response count 1, got %d", body.Summary.ResponseCount)
	}
	if body.Summary.StrongestDomain != "Discipleship" {
		t.Fatalf("expected strongest Discipleship, got %q", body.Summary.StrongestDomain)
	}
	if got := body.Summary.Domains[0].AverageScore; got != 80 {
		t.Fatalf("expected discipleship average 80, got %v", got)
	}
}

func TestSummaryRoleFilterHidesOtherRoles(t *testing.T) {
	env := newTestEnv(t)
	if err := env.flag.Enable(); err != nil {
		t.Fatalf("enable realtime: %v", err)
	}
	if rec := env.do(t, http.MethodPost, "/webhook", "", samplePayload(time.Now())); rec.Code != http.StatusOK {
		t.Fatalf("ingest failed: %d", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/dashboard/summary?role=Elder", "", nil)
	if body := decodeBody(t, rec); body["no_data"] != true {
		t.Fatalf("expected no_data for unmatched role, got %v", body)
	}

	rec = env.do(t, http.MethodGet, "/api/dashboard/summary?role=Pastor", "", nil)
	if body := decodeBody(t, rec); body["no_data"] != false {
		t.Fatalf("expected data for matching role, got %v", body)
	}
}

func TestSummaryRejectsBadTimestamp(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/dashboard/summary?start=yesterday", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRolesListsSentinelsAndData(t *testing.T) {
	env := newTestEnv(t)
	role := "Pastor"
	env.store.rows = append(env.store.rows, &services.NormalizedRow{SubmittedAt: time.Now(), Role: &role})

	rec := env.do(t, http.MethodGet, "/api/roles", "", nil)
	var body struct {
		Roles []string `json:"roles"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode roles: %v", err)
	}
	want := []string{"All", "Empty/Unknown", "Pastor"}
	if len(body.Roles) != len(want) {
		t.Fatalf("expected %v, got %v", want, body.Roles)
	}
	for i := range want {
		if body.Roles[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, body.Roles)
		}
	}
}

func TestComparisonReturnsFullSchema(t *testing.T) {
	env := newTestEnv(t)
	if err := env.flag.Enable(); err != nil {
		t.Fatalf("enable realtime: %v", err)
	}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	if rec := env.do(t, http.MethodPost, "/webhook", "", samplePayload(now)); rec.Code != http.StatusOK {
		t.Fatalf("ingest failed: %d", rec.Code)
	}

	target := "/api/dashboard/comparison?start=2026-06-01&end=2026-06-30&prev_start=2026-05-01&prev_end=2026-05-31"
	rec := env.do(t, http.MethodGet, target, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Rows []services.ComparisonRow `json:"rows"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode comparison: %v", err)
	}
	if len(body.Rows) != 10 {
		t.Fatalf("expected 10 comparison rows, got %d", len(body.Rows))
	}
	// Previous window is empty, so every non-zero subdomain reports the
	// new-data sentinel.
	if body.Rows[0].Subdomain != "Education" || body.Rows[0].PctDifference != 100 {
		t.Fatalf("unexpected first comparison row: %+v", body.Rows[0])
	}
}

func TestExportReturnsCSVAttachment(t *testing.T) {
	env := newTestEnv(t)
	if err := env.flag.Enable(); err != nil {
		t.Fatalf("enable realtime: %v", err)
	}
	if rec := env.do(t, http.MethodPost, "/webhook", "", samplePayload(time.Now())); rec.Code != http.StatusOK {
		t.Fatalf("ingest failed: %d", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/export", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv content type, got %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "submitted_at,respondent") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
}

func TestAdminEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	for _, target := range []string{"/api/sync", "/api/responses/clear", "/api/realtime"} {
		rec := env.do(t, http.MethodPost, target, "", map[string]any{})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without token, got %d", target, rec.Code)
		}
	}
}

func TestRealtimeToggleFlipsFlagFile(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t)

	rec := env.do(t, http.MethodPost, "/api/realtime", token, map[string]any{"enabled": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("enable: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !env.flag.Enabled() {
		t.Fatalf("flag file missing after enable")
	}

	rec = env.do(t, http.MethodPost, "/api/realtime", token, map[string]any{"enabled": false})
	if rec.Code != http.StatusOK {
		t.Fatalf("disable: expected 200, got %d", rec.Code)
	}
	if env.flag.Enabled() {
		t.Fatalf("flag file still present after disable")
	}
	if _, err := os.Stat(env.flag.Path); !os.IsNotExist(err) {
		t.Fatalf("expected flag file removed, stat err %v", err)
	}
}

func TestClearEmptiesStore(t *testing.T) {
	env := newTestEnv(t)
	env.store.rows = append(env.store.rows, &services.NormalizedRow{SubmittedAt: time.Now()})

	rec := env.do(t, http.MethodPost, "/api/responses/clear", adminToken(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(env.store.rows) != 0 {
		t.Fatalf("store not cleared")
	}
}

func TestSyncUnconfiguredReports503(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/sync", adminToken(t), map[string]any{})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)
	creds := map[string]any{"email": "admin@example.com", "password": "longenough"}

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["token"] == "" || body["token"] == nil {
		t.Fatalf("register returned no token: %v", body)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}

	bad := map[string]any{"email": "admin@example.com", "password": "wrongwrong"}
	rec = env.do(t, http.MethodPost, "/api/auth/login", "", bad)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "admin@example.com", "password": "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
