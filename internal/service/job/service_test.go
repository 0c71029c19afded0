package job

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/ws-flare/ws-flare-graphql/internal/backend"
	"github.com/ws-flare/ws-flare-graphql/internal/domain"
)

type stubJobsBackend struct {
	responses map[string]string
	bodies    map[string]map[string]any
	filters   map[string]backend.Filter
}

func newStubJobsBackend() *stubJobsBackend {
	return &stubJobsBackend{
		responses: make(map[string]string),
		bodies:    make(map[string]map[string]any),
		filters:   make(map[string]backend.Filter),
	}
}

func (s *stubJobsBackend) respond(method, path string, out any) error {
	raw, ok := s.responses[method+" "+path]
	if !ok {
		return &backend.APIError{Backend: "jobs", Method: method, Path: path, Status: http.StatusNotFound}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

func (s *stubJobsBackend) record(method, path string, body any) {
	raw, _ := json.Marshal(body)
	decoded := make(map[string]any)
	_ = json.Unmarshal(raw, &decoded)
	s.bodies[method+" "+path] = decoded
}

func (s *stubJobsBackend) Find(ctx context.Context, resource string, filter backend.Filter, out any) error {
	s.filters[resource] = filter
	return s.respond(http.MethodGet, "/"+resource, out)
}

func (s *stubJobsBackend) Count(ctx context.Context, resource string, where backend.Where) (int64, error) {
	return 0, nil
}

func (s *stubJobsBackend) Get(ctx context.Context, path string, out any) error {
	return s.respond(http.MethodGet, path, out)
}

func (s *stubJobsBackend) Post(ctx context.Context, path string, body any, out any) error {
	s.record(http.MethodPost, path, body)
	return s.respond(http.MethodPost, path, out)
}

func (s *stubJobsBackend) Put(ctx context.Context, path string, body any, out any) error {
	s.record(http.MethodPut, path, body)
	return s.respond(http.MethodPut, path, out)
}

func (s *stubJobsBackend) PostBasicAuth(ctx context.Context, path, username, password string, out any) error {
	return errors.New("not supported")
}

type stubTasks struct {
	task map[string]json.RawMessage
	err  error
}

func (s stubTasks) Dispatchable(ctx context.Context, taskID string) (map[string]json.RawMessage, error) {
	return s.task, s.err
}

type recordingPublisher struct {
	events []domain.JobEvent
	err    error
}

func (p *recordingPublisher) PublishJobCreated(ctx context.Context, event domain.JobEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type recordingFeed struct {
	topics   []string
	payloads [][]byte
}

func (f *recordingFeed) Broadcast(topic string, payload []byte) {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dispatchTask() map[string]json.RawMessage {
	return map[string]json.RawMessage{
		"id":      json.RawMessage(`"task-1"`),
		"name":    json.RawMessage(`"soak"`),
		"scripts": json.RawMessage(`[{"start":0,"timeout":60,"totalSimulators":10,"target":"ws://target"}]`),
	}
}

func TestCreatePublishesJobEvent(t *testing.T) {
	jobs := newStubJobsBackend()
	jobs.responses["POST /jobs"] = `{"id":"job-1","userId":"user-1","taskId":"task-1","isRunning":true,"createdAt":"2019-04-07T11:51:22.000Z"}`
	publisher := &recordingPublisher{}
	feed := &recordingFeed{}
	svc := New(jobs, stubTasks{task: dispatchTask()}, publisher, feed, discardLogger())

	job, err := svc.Create(context.Background(), "user-1", "task-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.ID != "job-1" || job.IsRunning == nil || !*job.IsRunning {
		t.Fatalf("unexpected job %+v", job)
	}
	body := jobs.bodies["POST /jobs"]
	if body["userId"] != "user-1" || body["taskId"] != "task-1" || body["isRunning"] != true {
		t.Fatalf("unexpected create body %v", body)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.TaskID != "task-1" {
		t.Fatalf("unexpected event task id %s", event.TaskID)
	}
	var published struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Job, &published); err != nil || published.ID != "job-1" {
		t.Fatalf("expected job forwarded verbatim, got %s", event.Job)
	}
	var scripts []domain.Script
	if err := json.Unmarshal(event.Task["scripts"], &scripts); err != nil {
		t.Fatalf("expected scripts array in event: %v", err)
	}
	if len(scripts) != 1 || scripts[0].Target != "ws://target" {
		t.Fatalf("unexpected scripts %+v", scripts)
	}
	if len(feed.topics) != 1 || feed.topics[0] != "task-1" {
		t.Fatalf("expected feed broadcast for task-1, got %v", feed.topics)
	}
}

func TestCreateFailsWhenPublishFails(t *testing.T) {
	jobs := newStubJobsBackend()
	jobs.responses["POST /jobs"] = `{"id":"job-1","taskId":"task-1"}`
	publisher := &recordingPublisher{err: errors.New("connection refused")}
	feed := &recordingFeed{}
	svc := New(jobs, stubTasks{task: dispatchTask()}, publisher, feed, discardLogger())

	if _, err := svc.Create(context.Background(), "user-1", "task-1"); !errors.Is(err, publisher.err) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if len(feed.topics) != 0 {
		t.Fatalf("did not expect a feed broadcast after a failed publish")
	}
}

func TestCreatePropagatesTaskErrors(t *testing.T) {
	jobs := newStubJobsBackend()
	jobs.responses["POST /jobs"] = `{"id":"job-1"}`
	publisher := &recordingPublisher{}
	svc := New(jobs, stubTasks{err: backend.ErrNotFound}, publisher, nil, discardLogger())
	if _, err := svc.Create(context.Background(), "user-1", "task-1"); !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("did not expect an event")
	}
}

func TestCreateValidatesInput(t *testing.T) {
	svc := New(newStubJobsBackend(), stubTasks{}, &recordingPublisher{}, nil, discardLogger())
	if _, err := svc.Create(context.Background(), "", "task-1"); err == nil {
		t.Fatalf("expected error for missing user")
	}
	if _, err := svc.Create(context.Background(), "user-1", ""); err == nil {
		t.Fatalf("expected error for missing task")
	}
}

func TestListFiltersByTask(t *testing.T) {
	jobs := newStubJobsBackend()
	jobs.responses["GET /jobs"] = `[{"id":"job-2","taskId":"task-1"},{"id":"job-1","taskId":"task-1"}]`
	svc := New(jobs, stubTasks{}, &recordingPublisher{}, nil, discardLogger())
	list, err := svc.List(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "job-2" {
		t.Fatalf("unexpected jobs %+v", list)
	}
	if jobs.filters["jobs"].Where["taskId"] != "task-1" {
		t.Fatalf("unexpected filter %+v", jobs.filters["jobs"])
	}
}

func TestUpdateMergesFlags(t *testing.T) {
	jobs := newStubJobsBackend()
	jobs.responses["GET /jobs/job-1"] = `{"id":"job-1","userId":"user-1","taskId":"task-1","isRunning":true,"createdAt":"2019-04-07T11:51:22.000Z"}`
	jobs.responses["PUT /jobs/job-1"] = ``
	svc := New(jobs, stubTasks{}, &recordingPublisher{}, nil, discardLogger())

	running := false
	passed := true
	job, err := svc.Update(context.Background(), "job-1", UpdateInput{IsRunning: &running, Passed: &passed})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if job.IsRunning == nil || *job.IsRunning || job.Passed == nil || !*job.Passed {
		t.Fatalf("unexpected job %+v", job)
	}
	body := jobs.bodies["PUT /jobs/job-1"]
	if body["userId"] != "user-1" || body["createdAt"] != "2019-04-07T11:51:22.000Z" || body["isRunning"] != false || body["passed"] != true {
		t.Fatalf("expected full entity in PUT body, got %v", body)
	}
	if _, err := svc.Update(context.Background(), "job-1", UpdateInput{}); err == nil {
		t.Fatalf("expected error for empty update")
	}
	if _, err := svc.Update(context.Background(), "missing", UpdateInput{Passed: &passed}); !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
