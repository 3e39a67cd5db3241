// Package bootstrap wires the modules into a running application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	changefeedout "ascend/internal/modules/changefeed/adapter/out"
	changefeeddomain "ascend/internal/modules/changefeed/domain"
	changefeeddto "ascend/internal/modules/changefeed/dto"
	changefeedin "ascend/internal/modules/changefeed/port/in"
	changefeedservice "ascend/internal/modules/changefeed/service"
	changefeedusecase "ascend/internal/modules/changefeed/usecase"
	missioninadapter "ascend/internal/modules/mission/adapter/in"
	missionoutadapter "ascend/internal/modules/mission/adapter/out"
	missionservice "ascend/internal/modules/mission/service"
	missionusecase "ascend/internal/modules/mission/usecase"
	progressioninadapter "ascend/internal/modules/progression/adapter/in"
	progressionoutadapter "ascend/internal/modules/progression/adapter/out"
	progressiondomain "ascend/internal/modules/progression/domain"
	progressionservice "ascend/internal/modules/progression/service"
	progressionusecase "ascend/internal/modules/progression/usecase"
	routineinadapter "ascend/internal/modules/routine/adapter/in"
	routineoutadapter "ascend/internal/modules/routine/adapter/out"
	routineservice "ascend/internal/modules/routine/service"
	routineusecase "ascend/internal/modules/routine/usecase"
	sessioninadapter "ascend/internal/modules/session/adapter/in"
	sessionoutadapter "ascend/internal/modules/session/adapter/out"
	sessionservice "ascend/internal/modules/session/service"
	sessionusecase "ascend/internal/modules/session/usecase"
	suggestinadapter "ascend/internal/modules/suggest/adapter/in"
	suggestoutadapter "ascend/internal/modules/suggest/adapter/out"
	suggestout "ascend/internal/modules/suggest/port/out"
	suggestservice "ascend/internal/modules/suggest/service"
	suggestusecase "ascend/internal/modules/suggest/usecase"
	"ascend/internal/platform/clock"
	"ascend/internal/platform/config"
	"ascend/internal/platform/id"
	"ascend/internal/platform/logging"
	"ascend/internal/platform/metrics"
	"ascend/internal/platform/sqlitedb"
)

type App struct {
	Config  config.Config
	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	MissionCLI     missioninadapter.CLIHandler
	RoutineCLI     routineinadapter.CLIHandler
	SessionCLI     sessioninadapter.CLIHandler
	ProgressionCLI progressioninadapter.CLIHandler
	SuggestCLI     suggestinadapter.CLIHandler
	Changes        changefeedin.Usecase

	db *sqlitedb.DB
}

// Options tune process-level concerns that are not part of the config.
type Options struct {
	LogOutput io.Writer
	// Console selects human readable log lines.
	Console bool
}

func New(cfg config.Config, opts Options) (*App, error) {
	logger := logging.New(opts.LogOutput, cfg.LogLevel, opts.Console)
	m := metrics.New()
	wall := clock.SystemClock{}
	mono := clock.MonotonicClock{}
	ids := id.UUID{}

	ranks := make([]progressiondomain.Rank, 0, len(cfg.Ranks))
	for _, r := range cfg.Ranks {
		ranks = append(ranks, progressiondomain.Rank{Title: r.Title, MinExperience: r.MinExperience})
	}
	rankTable, err := progressiondomain.NewRankTable(ranks)
	if err != nil {
		return nil, fmt.Errorf("rank table: %w", err)
	}

	db, err := sqlitedb.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	progressionUC := progressionusecase.NewInteractor(
		progressionservice.NewLedgerService(wall, progressionoutadapter.NewSQLiteLedgerStore(db), progressionoutadapter.NewSQLiteStatsSource(db), rankTable, m, logger),
		cfg.UserID,
	)
	missionUC := missionusecase.NewInteractor(
		missionservice.NewMissionService(wall, ids, missionoutadapter.NewSQLiteMissionStore(db, wall), logger),
		progressionUC, db, cfg.UserID, m, logger,
	)
	routineUC := routineusecase.NewInteractor(
		routineservice.NewRoutineService(wall, ids, routineoutadapter.NewSQLiteRoutineStore(db, wall), logger),
		cfg.UserID,
	)

	controller, err := sessionservice.NewController(mono, sessionservice.ControllerConfig{FocusDuration: cfg.FocusDuration, TickUnit: cfg.TickUnit}, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session controller: %w", err)
	}
	sessionservice.NewRestCoach(controller, cfg.RestDuration, logger).Attach()
	sessionUC := sessionusecase.NewInteractor(sessionusecase.Deps{
		Controller: controller,
		Service: sessionservice.NewSessionService(
			ids,
			sessionoutadapter.NewSQLiteWorkoutLogStore(db),
			sessionoutadapter.NewVaultLogJournal(cfg.JournalDir),
			logger,
		),
		ActiveStore: sessionoutadapter.NewFileActiveSessionStore(cfg.ActiveSessionPath),
		Probe:       sessionoutadapter.NewProcessProbe(),
		Missions:    missionUC,
		Routines:    routineUC,
		Progression: progressionUC,
		Tx:          db,
		Clock:       mono,
		Metrics:     m,
		Logger:      logger,
		UserID:      cfg.UserID,
		PID:         os.Getpid(),
	})

	suggestUC := suggestusecase.NewInteractor(
		suggestservice.NewSuggestService(generators(cfg, logger), cfg.GeneratorTimeout, logger),
		missionUC, m, logger,
	)

	feed := changefeedservice.NewFeed(
		changefeedout.NewSQLiteChangeSource(db),
		changefeedout.NewFSNotifier(cfg.DBPath, 0, logger),
		wall,
		changefeedservice.FeedConfig{},
		logger,
	)
	changes := changefeedusecase.NewInteractor(feed)
	progressionCLI := progressioninadapter.NewCLIHandler(progressionUC)
	changes.Subscribe([]string{changefeeddomain.RecordLedger}, func(c changefeeddto.ChangeOutput) {
		if _, err := progressionCLI.Refresh(context.Background()); err != nil {
			logger.Warn().Err(err).Int64("seq", c.Seq).Msg("refresh ledger")
		}
	})

	return &App{
		Config:         cfg,
		Logger:         logger,
		Metrics:        m,
		MissionCLI:     missioninadapter.NewCLIHandler(missionUC),
		RoutineCLI:     routineinadapter.NewCLIHandler(routineUC),
		SessionCLI:     sessioninadapter.NewCLIHandler(sessionUC),
		ProgressionCLI: progressionCLI,
		SuggestCLI:     suggestinadapter.NewCLIHandler(suggestUC),
		Changes:        changes,
		db:             db,
	}, nil
}

// generators lists the configured generation backends, plugin first.
func generators(cfg config.Config, logger zerolog.Logger) []suggestout.Generator {
	var out []suggestout.Generator
	if cfg.GeneratorPlugin != "" {
		binary := cfg.GeneratorPlugin
		if !filepath.IsAbs(binary) {
			binary = filepath.Join(cfg.DataDir, binary)
		}
		out = append(out, suggestoutadapter.NewPluginGenerator(binary, logger))
	}
	if cfg.OpenAIAPIKey != "" {
		gen, err := suggestoutadapter.NewOpenAIGenerator(suggestoutadapter.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("openai generator disabled")
		} else {
			out = append(out, gen)
		}
	}
	return out
}

func (a *App) Close() error {
	return a.db.Close()
}

// ServeMetrics exposes /metrics on the configured address until ctx ends.
// It returns nil at once when no address is configured.
func (a *App) ServeMetrics(ctx context.Context) error {
	if a.Config.MetricsAddr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.Metrics.Handler())
	srv := &http.Server{Addr: a.Config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	a.Logger.Info().Str("addr", a.Config.MetricsAddr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
