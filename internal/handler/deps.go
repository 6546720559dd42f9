package handler

import (
	"context"

	"golang.org/x/time/rate"

	"presencehub/internal/app/chat"
	"presencehub/internal/app/identity"
	"presencehub/internal/configs"
	"presencehub/internal/pkg/limiter"
	"presencehub/internal/pkg/pow"
)

// AppDeps bundles everything the HTTP layer talks to.
type AppDeps struct {
	Config     *configs.AppConfig
	Identities *identity.Registry
	Hub        *chat.Hub
	Pow        *pow.Manager

	RegisterLimiter *limiter.IPRateLimiter
	ConnectLimiter  *limiter.IPRateLimiter
}

// NewAppDeps wires the limiters and the PoW manager from cfg. Their background
// sweeps stop when ctx is done.
func NewAppDeps(ctx context.Context, cfg *configs.AppConfig, identities *identity.Registry, hub *chat.Hub) *AppDeps {
	return &AppDeps{
		Config:          cfg,
		Identities:      identities,
		Hub:             hub,
		Pow:             pow.NewManager(ctx, cfg.PowDifficulty),
		RegisterLimiter: limiter.NewIPRateLimiter(ctx, rate.Limit(cfg.RegisterRate), cfg.RegisterBurst),
		ConnectLimiter:  limiter.NewIPRateLimiter(ctx, rate.Limit(cfg.ConnectRate), cfg.ConnectBurst),
	}
}
