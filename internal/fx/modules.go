package fx

import (
	"tourney-rating/internal/api"
	"tourney-rating/internal/config"
	"tourney-rating/internal/database"
	"tourney-rating/internal/logger"
	"tourney-rating/internal/metrics"
	"tourney-rating/internal/rating"
	"tourney-rating/internal/repository"
	"tourney-rating/internal/server"
	"tourney-rating/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideApplier(
	profiles *service.ProfileService,
	players *repository.PlayerRepository,
	tournaments *repository.TournamentRepository,
	history *repository.HistoryRepository,
	cache *rating.Cache,
	system *metrics.System,
	cfg *config.Config,
	log zerolog.Logger,
) *service.Applier {
	return service.NewApplier(profiles, players, tournaments, history, cache, system, cfg.ApplyWorkers, log)
}

func ProvideDecay(profiles *service.ProfileService, players *repository.PlayerRepository, log zerolog.Logger) *service.DecayService {
	return service.NewDecayService(profiles, players, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(rating.NewCache),
	fx.Provide(metrics.NewSystem),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewTournamentRepository),
	fx.Provide(repository.NewHistoryRepository),
	fx.Provide(repository.NewProfileRepository),
	// api client
	fx.Provide(api.NewDirectoryClient),
	// svc
	fx.Provide(service.NewProfileService),
	fx.Provide(ProvideApplier),
	fx.Provide(ProvideDecay),
	fx.Provide(service.NewSyncService),
	// server
	fx.Provide(server.NewRatingServer),
)
