package cli

import (
	"context"

	"github.com/launchmap/launchmap/internal/config"
	"github.com/launchmap/launchmap/pkg/cache"
	"github.com/launchmap/launchmap/pkg/layout"
	"github.com/launchmap/launchmap/pkg/store"
	"github.com/launchmap/launchmap/pkg/store/memory"
	"github.com/launchmap/launchmap/pkg/store/mongostore"
	"github.com/launchmap/launchmap/pkg/topo"
)

// openStore builds the store backend selected by the config. When the
// memory backend is selected and demo is set, it is seeded with the
// sample project.
func openStore(ctx context.Context, cfg config.Config, demo bool) (store.Store, error) {
	switch cfg.Store.Backend {
	case "mongo":
		return mongostore.New(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
	default:
		s := memory.New()
		if demo {
			s.Seed(demoProjectID, demoSnapshot())
		}
		return s, nil
	}
}

// openCache builds the cache backend selected by the config.
func openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "file":
		return cache.NewFileCache(cfg.Cache.Dir)
	case "redis":
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	default:
		return cache.NewNullCache(), nil
	}
}

// layoutOptions converts the config's layout section into engine options.
func layoutOptions(cfg config.Config) layout.Options {
	return layout.Options{
		Direction:      layout.Direction(cfg.Layout.Direction),
		RankSeparation: cfg.Layout.RankSeparation,
		NodeSeparation: cfg.Layout.NodeSeparation,
		NodeWidth:      cfg.Layout.NodeWidth,
		NodeHeight:     cfg.Layout.NodeHeight,
	}
}

// demoProjectID is the project seeded into the memory store with --demo.
const demoProjectID = "demo"

// demoSnapshot is a small SaaS stack: enough services, rules, and health
// records to exercise grouping, suggestions, and focus.
func demoSnapshot() topo.Snapshot {
	return topo.Snapshot{
		Services: []topo.ProjectServiceInstance{
			{ID: "inst-vercel", ServiceID: "vercel", Status: topo.StatusConnected,
				Service: topo.CatalogService{ID: "vercel", Slug: "vercel", Name: "Vercel", Category: "deploy", Domain: "infrastructure"}},
			{ID: "inst-supabase", ServiceID: "supabase", Status: topo.StatusConnected,
				Service: topo.CatalogService{
					ID: "supabase", Slug: "supabase", Name: "Supabase", Category: "database", Domain: "backend",
					RequiredEnvVars: []topo.EnvVarSpec{{Name: "SUPABASE_URL", Public: true}, {Name: "SUPABASE_ANON_KEY"}},
					CostEstimate:    map[string]string{"free": "$0", "pro": "$25/mo"},
				}},
			{ID: "inst-clerk", ServiceID: "clerk", Status: topo.StatusInProgress,
				Service: topo.CatalogService{
					ID: "clerk", Slug: "clerk", Name: "Clerk", Category: "auth", Domain: "backend",
					RequiredEnvVars: []topo.EnvVarSpec{{Name: "CLERK_SECRET_KEY"}},
				}},
			{ID: "inst-stripe", ServiceID: "stripe", Status: topo.StatusNotStarted,
				Service: topo.CatalogService{ID: "stripe", Slug: "stripe", Name: "Stripe", Category: "payment", Domain: "growth"}},
			{ID: "inst-resend", ServiceID: "resend", Status: topo.StatusNotStarted,
				Service: topo.CatalogService{ID: "resend", Slug: "resend", Name: "Resend", Category: "email", Domain: "growth"}},
			{ID: "inst-openai", ServiceID: "openai", Status: topo.StatusError,
				Service: topo.CatalogService{ID: "openai", Slug: "openai", Name: "OpenAI", Category: "ai", Domain: "intelligence"}},
		},
		Dependencies: []topo.DependencyRule{
			{ServiceID: "vercel", DependsOnServiceID: "supabase", Type: topo.DependencyRequired, Description: "App reads and writes application data"},
			{ServiceID: "vercel", DependsOnServiceID: "clerk", Type: topo.DependencyRecommended, Description: "Session handling on the edge"},
			{ServiceID: "stripe", DependsOnServiceID: "supabase", Type: topo.DependencyOptional, Description: "Webhook events land in the database"},
			{ServiceID: "clerk", DependsOnServiceID: "supabase", Type: topo.DependencyAlternative},
		},
		Health: map[string]topo.HealthRecord{
			"inst-vercel":   {Status: topo.HealthHealthy, ResponseTimeMs: 45},
			"inst-supabase": {Status: topo.HealthHealthy, ResponseTimeMs: 120},
			"inst-openai":   {Status: topo.HealthUnhealthy},
		},
		EnvVars: []topo.EnvVar{
			{ServiceID: "supabase", Name: "SUPABASE_URL"},
		},
	}
}
