package resolver

import (
	"context"

	"github.com/ws-flare/ws-flare-graphql/internal/domain"
)

type userResolver struct {
	user domain.User
}

func (u *userResolver) UserID() string    { return u.user.UserID }
func (u *userResolver) Token() *string    { return optString(u.user.Token) }
func (u *userResolver) Username() *string { return optString(u.user.Username) }

type ciTokenResolver struct {
	token domain.CiToken
}

func (c *ciTokenResolver) Token() string { return c.token.Token }

type projectResolver struct {
	root    *Resolver
	project domain.Project
}

func (p *projectResolver) ID() string     { return p.project.ID }
func (p *projectResolver) UserID() string { return p.project.UserID }
func (p *projectResolver) Name() string   { return p.project.Name }

func (p *projectResolver) Tasks(ctx context.Context) ([]*taskResolver, error) {
	return p.root.listTasks(ctx, p.project.ID)
}

// taskResolver never exposes the Cloud Foundry password.
type taskResolver struct {
	root *Resolver
	task domain.Task
}

func (t *taskResolver) ID() string                  { return t.task.ID }
func (t *taskResolver) UserID() string              { return t.task.UserID }
func (t *taskResolver) ProjectID() string           { return t.task.ProjectID }
func (t *taskResolver) Name() string                { return t.task.Name }
func (t *taskResolver) URI() *string                { return optString(t.task.URI) }
func (t *taskResolver) TotalSimulatedUsers() *int32 { return optInt(t.task.TotalSimulatedUsers) }
func (t *taskResolver) RunTime() *int32             { return optInt(t.task.RunTime) }
func (t *taskResolver) Scripts() *string            { return optString(t.task.Scripts) }
func (t *taskResolver) SuccessThreshold() *int32    { return optInt(t.task.SuccessThreshold) }
func (t *taskResolver) CfAPI() *string              { return optString(t.task.CfAPI) }
func (t *taskResolver) CfUser() *string             { return optString(t.task.CfUser) }
func (t *taskResolver) CfOrg() *string              { return optString(t.task.CfOrg) }
func (t *taskResolver) CfSpace() *string            { return optString(t.task.CfSpace) }
func (t *taskResolver) CfApps() *string             { return optString(t.task.CfApps) }

func (t *taskResolver) Jobs(ctx context.Context) ([]*jobResolver, error) {
	return t.root.listJobs(ctx, t.task.ID)
}

type jobResolver struct {
	root *Resolver
	job  domain.Job
}

func (j *jobResolver) ID() string              { return j.job.ID }
func (j *jobResolver) CreatedAt() *string      { return optString(j.job.CreatedAt) }
func (j *jobResolver) UserID() string          { return j.job.UserID }
func (j *jobResolver) TaskID() string          { return j.job.TaskID }
func (j *jobResolver) IsRunning() *bool        { return j.job.IsRunning }
func (j *jobResolver) Passed() *bool           { return j.job.Passed }
func (j *jobResolver) TotalSimulators() *int32 { return optInt(j.job.TotalSimulators) }

func (j *jobResolver) Usages(ctx context.Context) ([]*usageResolver, error) {
	return j.root.listUsages(ctx, j.job.ID)
}

func (j *jobResolver) Nodes(ctx context.Context) ([]*nodeResolver, error) {
	return j.root.listNodes(ctx, j.job.ID)
}

func (j *jobResolver) Sockets(ctx context.Context) ([]*socketResolver, error) {
	return j.root.listSockets(ctx, j.job.ID)
}

type nodeResolver struct {
	node domain.Node
}

func (n *nodeResolver) ID() string         { return n.node.ID }
func (n *nodeResolver) CreatedAt() *string { return optString(n.node.CreatedAt) }
func (n *nodeResolver) JobID() string      { return n.node.JobID }
func (n *nodeResolver) Name() string       { return n.node.Name }
func (n *nodeResolver) Running() *bool     { return n.node.Running }

func (n *nodeResolver) TotalSuccessfulConnections() *int32 {
	return optInt(n.node.TotalSuccessfulConnections)
}

func (n *nodeResolver) TotalFailedConnections() *int32 {
	return optInt(n.node.TotalFailedConnections)
}

func (n *nodeResolver) TotalDroppedConnections() *int32 {
	return optInt(n.node.TotalDroppedConnections)
}

type usageResolver struct {
	usage domain.Usage
}

func (u *usageResolver) ID() string         { return u.usage.ID }
func (u *usageResolver) JobID() string      { return u.usage.JobID }
func (u *usageResolver) AppID() string      { return u.usage.AppID }
func (u *usageResolver) Name() string       { return u.usage.Name }
func (u *usageResolver) Instance() int32    { return int32(u.usage.Instance) }
func (u *usageResolver) Mem() float64       { return u.usage.Mem }
func (u *usageResolver) CPU() float64       { return u.usage.CPU }
func (u *usageResolver) Disk() float64      { return u.usage.Disk }
func (u *usageResolver) MemQuota() float64  { return u.usage.MemQuota }
func (u *usageResolver) DiskQuota() float64 { return u.usage.DiskQuota }
func (u *usageResolver) Time() string       { return u.usage.Time }
func (u *usageResolver) State() string      { return u.usage.State }
func (u *usageResolver) Uptime() float64    { return u.usage.Uptime }
func (u *usageResolver) CreatedAt() *string { return optString(u.usage.CreatedAt) }

type socketResolver struct {
	socket domain.Socket
}

func (s *socketResolver) ID() string               { return s.socket.ID }
func (s *socketResolver) JobID() string            { return s.socket.JobID }
func (s *socketResolver) Connected() bool          { return s.socket.Connected }
func (s *socketResolver) Disconnected() bool       { return s.socket.Disconnected }
func (s *socketResolver) HasError() bool           { return s.socket.HasError }
func (s *socketResolver) ConnectionTime() *string  { return s.socket.ConnectionTime }
func (s *socketResolver) DisconnectTime() *string  { return s.socket.DisconnectTime }
func (s *socketResolver) ErrorTime() *string       { return s.socket.ErrorTime }
func (s *socketResolver) TimeToConnection() *int32 { return optInt(s.socket.TimeToConnection) }

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optInt(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}
