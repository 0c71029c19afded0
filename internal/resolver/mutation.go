package resolver

import (
	"context"

	"github.com/ws-flare/ws-flare-graphql/internal/service/job"
	"github.com/ws-flare/ws-flare-graphql/internal/service/task"
	"github.com/ws-flare/ws-flare-graphql/internal/service/user"
)

type signupArgs struct {
	Username string
	Email    string
	Password string
}

type loginArgs struct {
	Username string
	Password string
}

type createProjectArgs struct {
	Name string
}

type createTaskArgs struct {
	ProjectID           string
	Name                string
	URI                 string
	TotalSimulatedUsers int32
	RunTime             int32
	Scripts             *string
	SuccessThreshold    *int32
	CfAPI               *string
	CfUser              *string
	CfPass              *string
	CfOrg               *string
	CfSpace             *string
	CfApps              *string
}

type updateJobArgs struct {
	JobID     string
	IsRunning *bool
	Passed    *bool
}

type createNodeArgs struct {
	JobID   string
	Name    string
	Running bool
}

func (r *Resolver) Signup(ctx context.Context, args signupArgs) (*userResolver, error) {
	u, err := r.users.Signup(ctx, user.SignupInput{Username: args.Username, Email: args.Email, Password: args.Password})
	if err != nil {
		return nil, err
	}
	return &userResolver{user: *u}, nil
}

func (r *Resolver) Login(ctx context.Context, args loginArgs) (*userResolver, error) {
	u, err := r.users.Login(ctx, args.Username, args.Password)
	if err != nil {
		return nil, err
	}
	return &userResolver{user: *u}, nil
}

func (r *Resolver) CreateProject(ctx context.Context, args createProjectArgs) (*projectResolver, error) {
	id, ok := caller(ctx)
	if !ok {
		return nil, nil
	}
	p, err := r.projects.Create(ctx, id.UserID, args.Name)
	if err != nil {
		return nil, err
	}
	return &projectResolver{root: r, project: *p}, nil
}

func (r *Resolver) CreateTask(ctx context.Context, args createTaskArgs) (*taskResolver, error) {
	id, ok := caller(ctx)
	if !ok {
		return nil, nil
	}
	users := int(args.TotalSimulatedUsers)
	runTime := int(args.RunTime)
	input := task.CreateInput{
		ProjectID:           args.ProjectID,
		Name:                args.Name,
		URI:                 args.URI,
		TotalSimulatedUsers: &users,
		RunTime:             &runTime,
		Scripts:             deref(args.Scripts),
		CfAPI:               deref(args.CfAPI),
		CfUser:              deref(args.CfUser),
		CfPass:              deref(args.CfPass),
		CfOrg:               deref(args.CfOrg),
		CfSpace:             deref(args.CfSpace),
		CfApps:              deref(args.CfApps),
	}
	if args.SuccessThreshold != nil {
		threshold := int(*args.SuccessThreshold)
		input.SuccessThreshold = &threshold
	}
	t, err := r.tasks.Create(ctx, id.UserID, input)
	if err != nil {
		return nil, err
	}
	return &taskResolver{root: r, task: *t}, nil
}

func (r *Resolver) CreateJob(ctx context.Context, args taskArgs) (*jobResolver, error) {
	id, ok := caller(ctx)
	if !ok {
		return nil, nil
	}
	return r.startJob(ctx, id.UserID, args.TaskID)
}

func (r *Resolver) CreateCiJob(ctx context.Context) (*jobResolver, error) {
	id, ok := caller(ctx)
	if !ok || id.TaskID == "" {
		return nil, nil
	}
	return r.startJob(ctx, id.UserID, id.TaskID)
}

func (r *Resolver) startJob(ctx context.Context, userID, taskID string) (*jobResolver, error) {
	j, err := r.jobs.Create(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	return &jobResolver{root: r, job: *j}, nil
}

func (r *Resolver) UpdateJob(ctx context.Context, args updateJobArgs) (*jobResolver, error) {
	if _, ok := caller(ctx); !ok {
		return nil, nil
	}
	j, err := r.jobs.Update(ctx, args.JobID, job.UpdateInput{IsRunning: args.IsRunning, Passed: args.Passed})
	if err != nil {
		return nil, err
	}
	return &jobResolver{root: r, job: *j}, nil
}

func (r *Resolver) CreateNode(ctx context.Context, args createNodeArgs) (*nodeResolver, error) {
	if _, ok := caller(ctx); !ok {
		return nil, nil
	}
	n, err := r.nodes.Create(ctx, args.JobID, args.Name, args.Running)
	if err != nil {
		return nil, err
	}
	return &nodeResolver{node: *n}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
