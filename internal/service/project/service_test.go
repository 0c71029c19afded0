package project

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ws-flare/ws-flare-graphql/internal/backend"
)

type stubProjectsBackend struct {
	posted   map[string]any
	filter   backend.Filter
	projects string
	err      error
}

func (s *stubProjectsBackend) Find(ctx context.Context, resource string, filter backend.Filter, out any) error {
	if s.err != nil {
		return s.err
	}
	s.filter = filter
	return json.Unmarshal([]byte(s.projects), out)
}

func (s *stubProjectsBackend) Count(ctx context.Context, resource string, where backend.Where) (int64, error) {
	return 0, nil
}

func (s *stubProjectsBackend) Get(ctx context.Context, path string, out any) error {
	return backend.ErrNotFound
}

func (s *stubProjectsBackend) Post(ctx context.Context, path string, body any, out any) error {
	if s.err != nil {
		return s.err
	}
	raw, _ := json.Marshal(body)
	_ = json.Unmarshal(raw, &s.posted)
	return json.Unmarshal([]byte(`{"id":"project-1","userId":"user-1","name":"load"}`), out)
}

func (s *stubProjectsBackend) Put(ctx context.Context, path string, body any, out any) error {
	return nil
}

func (s *stubProjectsBackend) PostBasicAuth(ctx context.Context, path, username, password string, out any) error {
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateProject(t *testing.T) {
	stub := &stubProjectsBackend{}
	svc := New(stub, discardLogger())

	project, err := svc.Create(context.Background(), "user-1", "  load ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if project.ID != "project-1" {
		t.Fatalf("unexpected project %+v", project)
	}
	if stub.posted["userId"] != "user-1" || stub.posted["name"] != "load" {
		t.Fatalf("unexpected body %v", stub.posted)
	}
	if _, ok := stub.posted["id"]; ok {
		t.Fatalf("did not expect id in create body")
	}
}

func TestCreateProjectValidates(t *testing.T) {
	svc := New(&stubProjectsBackend{}, discardLogger())
	if _, err := svc.Create(context.Background(), "user-1", " "); !errors.Is(err, errInvalidProjectName) {
		t.Fatalf("expected name error, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "", "load"); !errors.Is(err, errMissingUserID) {
		t.Fatalf("expected user error, got %v", err)
	}
}

func TestListProjectsScopedToUser(t *testing.T) {
	stub := &stubProjectsBackend{projects: `[{"id":"p1","userId":"user-1","name":"a"},{"id":"p2","userId":"user-1","name":"b"}]`}
	svc := New(stub, discardLogger())
	projects, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(projects) != 2 || projects[1].Name != "b" {
		t.Fatalf("unexpected projects %+v", projects)
	}
	if stub.filter.Where["userId"] != "user-1" {
		t.Fatalf("expected user filter, got %+v", stub.filter)
	}

	stub.err = errors.New("projects api down")
	if _, err := svc.List(context.Background(), "user-1"); !errors.Is(err, stub.err) {
		t.Fatalf("expected backend error, got %v", err)
	}
}
