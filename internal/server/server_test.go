package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"studyboard/internal/app"
	"studyboard/internal/config"
	"studyboard/internal/domain"
	"studyboard/internal/logging"
)

const testSecret = "test-secret"

type testServer struct {
	URL    string
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	now := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	a, err := app.Bootstrap(context.Background(), app.Options{
		Workspace: t.TempDir(),
		Config:    config.Default(),
		Now:       now,
		Logger:    logging.Nop(),
	})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	handler, err := New(Config{
		Engine:   a.Engine,
		Metrics:  a.Metrics,
		BasePath: "/v0",
		Auth:     AuthConfig{JWTSecret: testSecret},
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			a.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
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
	for k, v := range headers {
		req.Header.Set(k, v)
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

func login(t *testing.T, srv *testServer, name string) map[string]string {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/login", map[string]any{
		"name":     name,
		"password": "123",
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login %s status %d: %s", name, res.StatusCode, string(data))
	}
	var out LoginResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}
	if out.Token == "" || !strings.EqualFold(out.Actor.Name, name) {
		t.Fatalf("unexpected login response %s", string(data))
	}
	return map[string]string{"Authorization": "Bearer " + out.Token}
}

func errorCode(t *testing.T, data []byte) string {
	t.Helper()
	var env struct {
		Error apiErrorBody `json:"error"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal error envelope: %v (%s)", err, string(data))
	}
	return env.Error.Code
}

func TestHealthIsPublicAndAPIRequiresAuth(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/projects", nil, nil)
	if res.StatusCode != http.StatusUnauthorized || errorCode(t, data) != "unauthorized" {
		t.Fatalf("expected 401 unauthorized, got %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/projects", nil, map[string]string{"Authorization": "Bearer nope"})
	if res.StatusCode != http.StatusUnauthorized || errorCode(t, data) != "invalid_credentials" {
		t.Fatalf("expected 401 invalid_credentials, got %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/login", map[string]any{"name": "Lucas", "password": "999"}, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected rejected login, got %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/login", map[string]any{"name": " Lucas ", "password": " 123 "}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("padded credentials must be trimmed, got %d: %s", res.StatusCode, string(data))
	}
}

func TestViewerIsLimited(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	auth := login(t, srv, "Italo")

	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/v0/projects", nil, auth)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list projects status %d: %s", res.StatusCode, string(data))
	}
	var projects ProjectListResponse
	if err := json.Unmarshal(data, &projects); err != nil {
		t.Fatalf("unmarshal projects: %v", err)
	}
	if len(projects.Items) != 1 || projects.Items[0].ID != "proj2" {
		t.Fatalf("viewer must only see proj2: %s", string(data))
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/projects", map[string]any{
		"name":       "Novo",
		"discipline": "Arte",
		"due_date":   "2024-06-01",
	}, auth)
	if res.StatusCode != http.StatusForbidden || errorCode(t, data) != "forbidden" {
		t.Fatalf("expected 403, got %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/projects/proj1", nil, auth)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("hidden project must be 404, got %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/activities/act3/comments", map[string]any{"text": "Anotado"}, auth)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("viewer comment status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/capabilities?project_id=proj2", nil, auth)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("capabilities status %d: %s", res.StatusCode, string(data))
	}
	var caps CapabilitiesResponse
	if err := json.Unmarshal(data, &caps); err != nil {
		t.Fatalf("unmarshal capabilities: %v", err)
	}
	if caps.Capabilities["edit-project"] || !caps.Capabilities["comment"] {
		t.Fatalf("unexpected viewer capabilities %v", caps.Capabilities)
	}
}

func TestProjectLifecycleWithDocuments(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	auth := login(t, srv, "Carol")

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/projects", map[string]any{
		"name":       "Feira de Ciências",
		"discipline": "Física",
		"due_date":   "2024-06-10",
		"access":     []string{"4"},
	}, auth)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create project status %d: %s", res.StatusCode, string(data))
	}
	var p domain.Project
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal project: %v", err)
	}
	if strings.Join(p.Access, ",") != "2,4" || strings.Join(p.Members, ",") != "Carol,Davi" {
		t.Fatalf("unexpected access %v members %v", p.Access, p.Members)
	}
	base := srv.URL + "/v0/projects/" + p.ID

	res, data = doJSON(t, client, http.MethodPost, base+"/tasks", map[string]any{"title": "Montar maquete"}, auth)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("add task status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodPost, base+"/checklist", map[string]any{"text": "   "}, auth)
	if res.StatusCode != http.StatusBadRequest || errorCode(t, data) != "validation_failed" {
		t.Fatalf("expected validation_failed, got %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, base+"/board", nil, auth)
	if res.StatusCode != http.StatusOK || !strings.Contains(string(data), "Montar maquete") {
		t.Fatalf("board status %d: %s", res.StatusCode, string(data))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "roteiro.txt")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write([]byte("passo 1"))
	mw.Close()
	req, _ := http.NewRequest(http.MethodPost, base+"/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", auth["Authorization"])
	upRes, err := client.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	upData, _ := io.ReadAll(upRes.Body)
	upRes.Body.Close()
	if upRes.StatusCode != http.StatusCreated {
		t.Fatalf("upload status %d: %s", upRes.StatusCode, string(upData))
	}
	var doc domain.Document
	if err := json.Unmarshal(upData, &doc); err != nil {
		t.Fatalf("unmarshal document: %v", err)
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+doc.Link, nil, auth)
	if res.StatusCode != http.StatusOK || string(data) != "passo 1" {
		t.Fatalf("download status %d: %q", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/projects/proj1/documents/d1/content", nil, auth)
	if res.StatusCode != http.StatusNotFound || errorCode(t, data) != "no_payload" {
		t.Fatalf("expected no_payload, got %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodDelete, base, nil, auth)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete project status %d: %s", res.StatusCode, string(data))
	}
	res, _ = doJSON(t, client, http.MethodGet, srv.URL+doc.Link, nil, auth)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("document of deleted project must be gone, got %d", res.StatusCode)
	}
}

func TestActivitiesAndAssistant(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	auth := login(t, srv, "Lucas")

	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/v0/activities/selected", nil, auth)
	if res.StatusCode != http.StatusOK || !strings.Contains(string(data), `"id":"act1"`) {
		t.Fatalf("selected status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/activities", map[string]any{
		"discipline":  "Química",
		"description": "Relatório de laboratório",
		"due_date":    "2024-05-01",
	}, auth)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create activity status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/activities/today", nil, auth)
	if res.StatusCode != http.StatusOK || !strings.Contains(string(data), "Relatório de laboratório") {
		t.Fatalf("today status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodPatch, srv.URL+"/v0/activities/act2/status", map[string]any{"status": "resolvida"}, auth)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status change %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/assistant", map[string]any{"prompt": "Ajuda?"}, auth)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("assistant status %d: %s", res.StatusCode, string(data))
	}
	var ask AskResponse
	if err := json.Unmarshal(data, &ask); err != nil || ask.Answer == "" {
		t.Fatalf("unexpected assistant answer %s", string(data))
	}
}

func TestTokenEndsWithSession(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	lucas := login(t, srv, "Lucas")
	carol := login(t, srv, "Carol")

	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/v0/me", nil, lucas)
	if res.StatusCode != http.StatusUnauthorized || errorCode(t, data) != "session_ended" {
		t.Fatalf("superseded token must be rejected, got %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/me", nil, carol)
	if res.StatusCode != http.StatusOK || !strings.Contains(string(data), "Carol") {
		t.Fatalf("me status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/auth/logout", nil, carol)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status %d: %s", res.StatusCode, string(data))
	}
	res, _ = doJSON(t, client, http.MethodGet, srv.URL+"/v0/me", nil, carol)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("token after logout must be rejected, got %d", res.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	login(t, srv, "Gabi")
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/metrics", nil, nil)
	if res.StatusCode != http.StatusOK || !strings.Contains(string(data), "studyboard_session_logins_total") {
		t.Fatalf("metrics status %d missing login counter", res.StatusCode)
	}
}

func TestOpenAPIConcurrentReads(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	const readers = 8
	bodies := make(chan []byte, readers)
	errs := make(chan error, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := srv.Client().Get(srv.URL + "/v0/openapi.json")
			if err != nil {
				errs <- err
				return
			}
			defer res.Body.Close()
			data, err := io.ReadAll(res.Body)
			if err != nil {
				errs <- err
				return
			}
			if res.StatusCode != http.StatusOK {
				errs <- fmt.Errorf("status %d: %s", res.StatusCode, string(data))
				return
			}
			bodies <- data
		}()
	}
	wg.Wait()
	close(errs)
	close(bodies)
	for err := range errs {
		t.Fatalf("openapi read: %v", err)
	}

	var first []byte
	for data := range bodies {
		if first == nil {
			first = data
			continue
		}
		if !bytes.Equal(first, data) {
			t.Fatalf("openapi documents differ between readers")
		}
	}
	var doc struct {
		Components struct {
			SecuritySchemes map[string]any `json:"securitySchemes"`
		} `json:"components"`
	}
	if err := json.Unmarshal(first, &doc); err != nil {
		t.Fatalf("unmarshal openapi: %v", err)
	}
	if _, ok := doc.Components.SecuritySchemes["bearerAuth"]; !ok {
		t.Fatalf("bearerAuth scheme missing")
	}
}
