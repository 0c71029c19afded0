package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	apiclient "github.com/ws-flare/ws-flare-graphql/pkg/api/client"
)

type fakeGateway struct {
	mu    sync.Mutex
	auths []string
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	g.mu.Lock()
	g.auths = append(g.auths, r.Header.Get("Authorization"))
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.Contains(body.Query, "login("):
		_, _ = w.Write([]byte(`{"data":{"login":{"userId":"abc123","token":"user-token","username":"testUser"}}}`))
	case strings.Contains(body.Query, "connectedSocketTimeFrame"):
		_, _ = w.Write([]byte(`{"data":{"connectedSocketTimeFrame":[{"gt":"2019-04-07T11:51:22.000Z","lt":"2019-04-07T11:51:32.000Z","tick":0,"connectedSocketCount":{"count":10}}]}}`))
	case strings.Contains(body.Query, "createCiJob"):
		_, _ = w.Write([]byte(`{"data":{"createCiJob":{"id":"job-7","taskId":"task-1","isRunning":true}}}`))
	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unexpected query"}`))
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func isolateConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("WSFLARE_TOKEN", "")
}

func TestLoginStoresTokenForLaterCommands(t *testing.T) {
	isolateConfig(t)
	gw := &fakeGateway{}
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)

	out, err := run(t, "login", "--username", "testUser", "--password", "secret", "--api", srv.URL)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "login successful") {
		t.Fatalf("unexpected output %q", out)
	}
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AccessToken != "user-token" || cfg.APIBaseURL != srv.URL || cfg.Username != "testUser" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	out, err = run(t, "ticks", "sockets", "--job", "job-1", "--tick", "10")
	if err != nil {
		t.Fatalf("ticks sockets: %v", err)
	}
	if !strings.Contains(out, "2019-04-07T11:51:22.000Z") || !strings.Contains(out, "10") {
		t.Fatalf("expected tick table, got %q", out)
	}

	gw.mu.Lock()
	defer gw.mu.Unlock()
	if len(gw.auths) != 2 || gw.auths[0] != "" || gw.auths[1] != "Bearer user-token" {
		t.Fatalf("unexpected authorization headers %v", gw.auths)
	}
}

func TestJobCreateWithCiToken(t *testing.T) {
	isolateConfig(t)
	gw := &fakeGateway{}
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)

	out, err := run(t, "job", "create", "--api", srv.URL, "--token", "ci-token")
	if err != nil {
		t.Fatalf("job create: %v", err)
	}
	if !strings.Contains(out, "job created: job-7 (task task-1)") {
		t.Fatalf("unexpected output %q", out)
	}
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if len(gw.auths) != 1 || gw.auths[0] != "Bearer ci-token" {
		t.Fatalf("unexpected authorization headers %v", gw.auths)
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	isolateConfig(t)
	if _, err := run(t, "ticks", "usages", "--job", "job-1"); err == nil || !strings.Contains(err.Error(), "login") {
		t.Fatalf("expected login hint, got %v", err)
	}
	if _, err := run(t, "ticks", "sockets", "--tick", "10"); err == nil || !strings.Contains(err.Error(), "--job") {
		t.Fatalf("expected missing job error, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != buildVersion {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestRenderJobPlaceholders(t *testing.T) {
	var out bytes.Buffer
	renderJob(&out, apiclient.Job{ID: "job-1", TaskID: "task-1"})
	if !strings.Contains(out.String(), "job-1") || !strings.Contains(out.String(), "-") {
		t.Fatalf("unexpected job table %q", out.String())
	}
}
