// Package pipeline routes gateway events through the guild config store,
// the automod evaluator, the leveling engine and the effect executor.
package pipeline

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/effects"
	"github.com/PancyStudios/PancyGuardGo/pkg/leveling"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// Store is the part of *guildconfig.Store the pipeline uses.
type Store interface {
	Get(ctx context.Context, guildID string) (*models.GuildConfig, error)
	Update(ctx context.Context, guildID string, fn func(*models.GuildConfig) error) (*models.GuildConfig, error)
}

// Executor runs effect lists. *effects.Executor implements it.
type Executor interface {
	Execute(ctx context.Context, guildID string, list []effects.Effect) error
}

// Pipeline handles messages and member join/leave events for every guild.
type Pipeline struct {
	store  Store
	exec   Executor
	engine *leveling.Engine
	now    func() time.Time
}

// New creates a Pipeline. A nil engine uses leveling.NewEngine().
func New(store Store, exec Executor, engine *leveling.Engine) *Pipeline {
	if engine == nil {
		engine = leveling.NewEngine()
	}
	return &Pipeline{store: store, exec: exec, engine: engine, now: time.Now}
}
