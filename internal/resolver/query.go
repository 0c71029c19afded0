package resolver

import (
	"context"
	"errors"

	"github.com/ws-flare/ws-flare-graphql/internal/backend"
	"github.com/ws-flare/ws-flare-graphql/internal/domain"
)

type projectArgs struct {
	ProjectID string
}

type taskArgs struct {
	TaskID string
}

type jobArgs struct {
	JobID string
}

type tickArgs struct {
	JobID       string
	TickSeconds int32
}

func (r *Resolver) Projects(ctx context.Context) ([]*projectResolver, error) {
	id, ok := caller(ctx)
	if !ok {
		return []*projectResolver{}, nil
	}
	projects, err := r.projects.List(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]*projectResolver, 0, len(projects))
	for _, p := range projects {
		out = append(out, &projectResolver{root: r, project: p})
	}
	return out, nil
}

func (r *Resolver) Tasks(ctx context.Context, args projectArgs) ([]*taskResolver, error) {
	if _, ok := caller(ctx); !ok {
		return []*taskResolver{}, nil
	}
	return r.listTasks(ctx, args.ProjectID)
}

func (r *Resolver) Task(ctx context.Context, args taskArgs) (*taskResolver, error) {
	if _, ok := caller(ctx); !ok {
		return nil, nil
	}
	t, err := r.tasks.Get(ctx, args.TaskID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &taskResolver{root: r, task: *t}, nil
}

func (r *Resolver) Jobs(ctx context.Context, args taskArgs) ([]*jobResolver, error) {
	if _, ok := caller(ctx); !ok {
		return []*jobResolver{}, nil
	}
	return r.listJobs(ctx, args.TaskID)
}

func (r *Resolver) Job(ctx context.Context, args jobArgs) (*jobResolver, error) {
	if _, ok := caller(ctx); !ok {
		return nil, nil
	}
	j, err := r.jobs.Get(ctx, args.JobID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &jobResolver{root: r, job: *j}, nil
}

func (r *Resolver) Nodes(ctx context.Context, args jobArgs) ([]*nodeResolver, error) {
	if _, ok := caller(ctx); !ok {
		return []*nodeResolver{}, nil
	}
	return r.listNodes(ctx, args.JobID)
}

func (r *Resolver) Usages(ctx context.Context, args jobArgs) ([]*usageResolver, error) {
	if _, ok := caller(ctx); !ok {
		return []*usageResolver{}, nil
	}
	return r.listUsages(ctx, args.JobID)
}

func (r *Resolver) Sockets(ctx context.Context, args jobArgs) ([]*socketResolver, error) {
	if _, ok := caller(ctx); !ok {
		return []*socketResolver{}, nil
	}
	return r.listSockets(ctx, args.JobID)
}

func (r *Resolver) UsageTicks(ctx context.Context, args tickArgs) ([]*usageTickResolver, error) {
	return r.usageTicks(ctx, args)
}

func (r *Resolver) AppUsageTicks(ctx context.Context, args tickArgs) ([]*usageTickResolver, error) {
	return r.usageTicks(ctx, args)
}

func (r *Resolver) usageTicks(ctx context.Context, args tickArgs) ([]*usageTickResolver, error) {
	if _, ok := caller(ctx); !ok {
		return []*usageTickResolver{}, nil
	}
	ticks, err := r.usages.Ticks(ctx, args.JobID, int(args.TickSeconds))
	if err != nil {
		return nil, err
	}
	out := make([]*usageTickResolver, 0, len(ticks))
	for _, t := range ticks {
		out = append(out, &usageTickResolver{root: r, tick: t})
	}
	return out, nil
}

func (r *Resolver) ConnectedSocketTimeFrame(ctx context.Context, args tickArgs) ([]*socketTickResolver, error) {
	if _, ok := caller(ctx); !ok {
		return []*socketTickResolver{}, nil
	}
	ticks, err := r.sockets.Ticks(ctx, args.JobID, int(args.TickSeconds))
	if err != nil {
		return nil, err
	}
	out := make([]*socketTickResolver, 0, len(ticks))
	for _, t := range ticks {
		out = append(out, &socketTickResolver{root: r, tick: t})
	}
	return out, nil
}

func (r *Resolver) GenerateCiToken(ctx context.Context, args taskArgs) (*ciTokenResolver, error) {
	id, ok := caller(ctx)
	if !ok {
		return nil, nil
	}
	token, err := r.auth.IssueCIToken(ctx, id.UserID, args.TaskID)
	if err != nil {
		return nil, err
	}
	return &ciTokenResolver{token: token}, nil
}

func (r *Resolver) listTasks(ctx context.Context, projectID string) ([]*taskResolver, error) {
	tasks, err := r.tasks.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]*taskResolver, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, &taskResolver{root: r, task: t})
	}
	return out, nil
}

func (r *Resolver) listJobs(ctx context.Context, taskID string) ([]*jobResolver, error) {
	jobs, err := r.jobs.List(ctx, taskID)
	if err != nil {
		return nil, err
	}
	out := make([]*jobResolver, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, &jobResolver{root: r, job: j})
	}
	return out, nil
}

func (r *Resolver) listNodes(ctx context.Context, jobID string) ([]*nodeResolver, error) {
	nodes, err := r.nodes.List(ctx, jobID)
	if err != nil {
		return nil, err
	}
	out := make([]*nodeResolver, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &nodeResolver{node: n})
	}
	return out, nil
}

func (r *Resolver) listUsages(ctx context.Context, jobID string) ([]*usageResolver, error) {
	usages, err := r.usages.List(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return usageResolvers(usages), nil
}

func (r *Resolver) listSockets(ctx context.Context, jobID string) ([]*socketResolver, error) {
	sockets, err := r.sockets.List(ctx, jobID)
	if err != nil {
		return nil, err
	}
	out := make([]*socketResolver, 0, len(sockets))
	for _, s := range sockets {
		out = append(out, &socketResolver{socket: s})
	}
	return out, nil
}

func usageResolvers(usages []domain.Usage) []*usageResolver {
	out := make([]*usageResolver, 0, len(usages))
	for _, u := range usages {
		out = append(out, &usageResolver{usage: u})
	}
	return out
}
