// Package resolver binds the GraphQL schema to the gateway's services.
// Queries and mutations made without a valid identity resolve to empty
// lists or null rather than errors.
package resolver

import (
	"context"
	_ "embed"
	"log/slog"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/ws-flare/ws-flare-graphql/internal/service/auth"
	"github.com/ws-flare/ws-flare-graphql/internal/service/job"
	"github.com/ws-flare/ws-flare-graphql/internal/service/node"
	"github.com/ws-flare/ws-flare-graphql/internal/service/project"
	"github.com/ws-flare/ws-flare-graphql/internal/service/task"
	"github.com/ws-flare/ws-flare-graphql/internal/service/telemetry"
	"github.com/ws-flare/ws-flare-graphql/internal/service/user"
)

//go:embed schema.graphql
var schemaSDL string

const (
	maxQueryDepth  = 12
	maxParallelism = 16
)

// Deps are the services the resolvers dispatch to.
type Deps struct {
	Auth     auth.Service
	Users    user.Service
	Projects project.Service
	Tasks    task.Service
	Jobs     job.Service
	Nodes    node.Service
	Sockets  *telemetry.SocketService
	Usages   *telemetry.UsageService
	Logger   *slog.Logger
}

// Resolver is the root of both Query and Mutation.
type Resolver struct {
	auth     auth.Service
	users    user.Service
	projects project.Service
	tasks    task.Service
	jobs     job.Service
	nodes    node.Service
	sockets  *telemetry.SocketService
	usages   *telemetry.UsageService
	logger   *slog.Logger
}

// New constructs the root resolver.
func New(deps Deps) *Resolver {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		auth:     deps.Auth,
		users:    deps.Users,
		projects: deps.Projects,
		tasks:    deps.Tasks,
		jobs:     deps.Jobs,
		nodes:    deps.Nodes,
		sockets:  deps.Sockets,
		usages:   deps.Usages,
		logger:   logger.With("component", "graphql"),
	}
}

// NewSchema parses the gateway schema against r.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, r,
		graphql.MaxDepth(maxQueryDepth),
		graphql.MaxParallelism(maxParallelism),
		graphql.Logger(panicLogger{logger: r.logger}),
	)
}

type panicLogger struct {
	logger *slog.Logger
}

func (l panicLogger) LogPanic(ctx context.Context, value interface{}) {
	l.logger.ErrorContext(ctx, "resolver panic", "panic", value)
}

func caller(ctx context.Context) (*auth.Identity, bool) {
	return auth.FromContext(ctx)
}
