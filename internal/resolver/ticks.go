package resolver

import (
	"context"

	"github.com/ws-flare/ws-flare-graphql/internal/backend"
	"github.com/ws-flare/ws-flare-graphql/internal/domain"
)

type socketTickResolver struct {
	root *Resolver
	tick domain.Tick
}

func (t *socketTickResolver) JobID() string { return t.tick.JobID }
func (t *socketTickResolver) GT() string    { return backend.Timestamp(t.tick.GT) }
func (t *socketTickResolver) LT() string    { return backend.Timestamp(t.tick.LT) }
func (t *socketTickResolver) Tick() int32   { return int32(t.tick.Offset) }

func (t *socketTickResolver) ConnectedSocketCount(ctx context.Context) (*socketCountResolver, error) {
	count, err := t.root.sockets.ConnectedCount(ctx, t.tick.JobID, t.tick.GT, t.tick.LT)
	if err != nil {
		return nil, err
	}
	return &socketCountResolver{count: count}, nil
}

type socketCountResolver struct {
	count domain.ConnectedSocketCount
}

func (c *socketCountResolver) Count() int32 { return int32(c.count.Count) }

type usageTickResolver struct {
	root *Resolver
	tick domain.Tick
}

func (t *usageTickResolver) JobID() string { return t.tick.JobID }
func (t *usageTickResolver) GT() string    { return backend.Timestamp(t.tick.GT) }
func (t *usageTickResolver) LT() string    { return backend.Timestamp(t.tick.LT) }
func (t *usageTickResolver) Tick() int32   { return int32(t.tick.Offset) }

func (t *usageTickResolver) Usage(ctx context.Context) (*usageResolver, error) {
	u, err := t.root.usages.LatestUsageInTick(ctx, t.tick.JobID, t.tick.GT, t.tick.LT)
	if err != nil || u == nil {
		return nil, err
	}
	return &usageResolver{usage: *u}, nil
}

func (t *usageTickResolver) Stats(ctx context.Context) (*usageStatsResolver, error) {
	stats, err := t.root.usages.Stats(ctx, t.tick.JobID, t.tick.GT, t.tick.LT)
	if err != nil {
		return nil, err
	}
	return &usageStatsResolver{stats: stats}, nil
}

func (t *usageTickResolver) CfApps(ctx context.Context) ([]*cfAppResolver, error) {
	apps, err := t.root.usages.ListApps(ctx, t.tick.JobID, t.tick.GT, t.tick.LT)
	if err != nil {
		return nil, err
	}
	out := make([]*cfAppResolver, 0, len(apps))
	for _, app := range apps {
		out = append(out, &cfAppResolver{root: t.root, app: app})
	}
	return out, nil
}

type cfAppResolver struct {
	root *Resolver
	app  domain.CfApp
}

func (a *cfAppResolver) AppID() string { return a.app.ID }
func (a *cfAppResolver) Name() string  { return a.app.Name }
func (a *cfAppResolver) JobID() string { return a.app.JobID }
func (a *cfAppResolver) GT() string    { return backend.Timestamp(a.app.GT) }
func (a *cfAppResolver) LT() string    { return backend.Timestamp(a.app.LT) }

func (a *cfAppResolver) Instances(ctx context.Context) ([]*instanceResolver, error) {
	instances, err := a.root.usages.ListInstances(ctx, a.app.JobID, a.app.ID, a.app.GT, a.app.LT)
	if err != nil {
		return nil, err
	}
	out := make([]*instanceResolver, 0, len(instances))
	for _, inst := range instances {
		out = append(out, &instanceResolver{root: a.root, instance: inst})
	}
	return out, nil
}

type instanceResolver struct {
	root     *Resolver
	instance domain.Instance
}

func (i *instanceResolver) JobID() string   { return i.instance.JobID }
func (i *instanceResolver) AppID() string   { return i.instance.AppID }
func (i *instanceResolver) Instance() int32 { return int32(i.instance.Instance) }
func (i *instanceResolver) GT() string      { return backend.Timestamp(i.instance.GT) }
func (i *instanceResolver) LT() string      { return backend.Timestamp(i.instance.LT) }

func (i *instanceResolver) Usage(ctx context.Context) (*usageResolver, error) {
	in := i.instance
	u, err := i.root.usages.MaxUsageInTick(ctx, in.JobID, in.AppID, in.Instance, in.GT, in.LT)
	if err != nil || u == nil {
		return nil, err
	}
	return &usageResolver{usage: *u}, nil
}

type usageStatsResolver struct {
	stats domain.UsageStats
}

func (s *usageStatsResolver) Samples() int32   { return int32(s.stats.Samples) }
func (s *usageStatsResolver) CPUAvg() *float64 { return s.stats.CPUAvg }
func (s *usageStatsResolver) CPUMax() *float64 { return s.stats.CPUMax }
func (s *usageStatsResolver) CPUP95() *float64 { return s.stats.CPUP95 }
func (s *usageStatsResolver) MemAvg() *float64 { return s.stats.MemAvg }
func (s *usageStatsResolver) MemMax() *float64 { return s.stats.MemMax }
func (s *usageStatsResolver) MemP95() *float64 { return s.stats.MemP95 }
