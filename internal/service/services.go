package service

import (
	"github.com/cardbox-tools/cardbox/internal/adapter"
	"github.com/cardbox-tools/cardbox/internal/config"
	"github.com/cardbox-tools/cardbox/internal/logger"
	"github.com/cardbox-tools/cardbox/internal/query"
	"github.com/cardbox-tools/cardbox/internal/store"
)

// Services aggregates every application-level service the CLI commands
// depend on.
type Services struct {
	Query *query.Engine
	Cards *CardService
	Sync  *SyncCoordinator
}

// NewServices wires the service layer over a card repository and a remote
// adapter.
func NewServices(repo store.CardRepository, remote adapter.RemoteAdapter, cfg *config.Config, log *logger.Logger) *Services {
	engine := query.NewEngine(repo, log)

	return &Services{
		Query: engine,
		Cards: NewCardService(repo, engine, cfg.App.WriteSupport, log),
		Sync:  NewSyncCoordinator(repo, remote, log),
	}
}
