package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/l1jgo/dungeon/internal/config"
	"github.com/l1jgo/dungeon/internal/core/ecs"
	"github.com/l1jgo/dungeon/internal/core/event"
	coresys "github.com/l1jgo/dungeon/internal/core/system"
	"github.com/l1jgo/dungeon/internal/data"
	"github.com/l1jgo/dungeon/internal/dungeon"
	"github.com/l1jgo/dungeon/internal/generator"
	"github.com/l1jgo/dungeon/internal/handler"
	"github.com/l1jgo/dungeon/internal/navmesh"
	gonet "github.com/l1jgo/dungeon/internal/net"
	"github.com/l1jgo/dungeon/internal/net/packet"
	"github.com/l1jgo/dungeon/internal/persist"
	"github.com/l1jgo/dungeon/internal/scripting"
	"github.com/l1jgo/dungeon/internal/system"
	"github.com/leonelquinteros/gotext"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config; a missing file means built-in defaults
	cfgPath := "config/dungeon.toml"
	if p := os.Getenv("DUNGEON_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	setupConsole(cfg.Locale.Dir, cfg.Locale.Language)
	printBanner(cfg.Server.Name)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Run history (optional)
	var runRepo *persist.RunRepo
	if cfg.Database.DSN != "" {
		printSection(gotext.Get("Database"))
		ctx, cancel := context.WithTimeout(rootCtx, 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK(gotext.Get("PostgreSQL connected"))

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(gotext.Get("Migrations applied"))

		runRepo = persist.NewRunRepo(db)
		recent, err := runRepo.RecentRuns(ctx, 5)
		cancel()
		if err != nil {
			log.Warn("could not read run history", zap.Error(err))
		}
		printStat(gotext.Get("Previous runs shown"), int64(len(recent)))
		for _, r := range recent {
			log.Info("previous run",
				zap.String("flow", r.FlowAddress),
				zap.Int64("seed", r.Seed),
				zap.Int("rooms", r.TotalRooms),
				zap.Time("at", r.CreatedAt),
			)
		}
		fmt.Println()
	}

	// 4. Core state
	ents := ecs.NewWorld()
	bus := event.NewBus()
	loader := data.NewFlowLoader(cfg.Data.FlowsDir, log)
	gen := generator.NewPathGenerator(log)
	baker := navmesh.NewBaker(cfg.Dungeon.NavMeshEpsilon, log)

	opts := []dungeon.Option{dungeon.WithNavMesh(baker)}
	var scripts *scripting.Engine
	if cfg.Scripting.Enabled {
		scripts, err = scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer scripts.Close()
		opts = append(opts, dungeon.WithRoomBehavior(scripts))
	}
	dgn := dungeon.New(cfg.Dungeon, gen, loader, bus, ents, log, opts...)

	// 5. Systems
	runner := coresys.NewRunner()
	runner.Register(dgn)
	runner.Register(dgn.Tracker())
	runner.Register(system.NewCleanupSystem(ents))

	autopilot := system.NewAutopilotSystem(dgn.Agent(), dgn.Registry(), cfg.Autopilot.Speed)
	if cfg.Autopilot.Enabled {
		autopilot.Enable()
	}
	runner.Register(autopilot)

	var history *system.PersistenceSystem
	if runRepo != nil {
		history = system.NewPersistenceSystem(runRepo, bus, dgn.Registry(), log, cfg.Database.FlushFrames)
		runner.Register(history)
	}

	event.Subscribe(bus, func(event.DungeonGenerated) {
		st := dgn.Stats()
		if scripts != nil {
			scripts.OnDungeonGenerated(scripting.GenerationInfo{
				Flow:  dgn.Flow().Address,
				Seed:  dgn.Seed(),
				Rooms: dgn.Registry().Len(),
			})
		}
		if history != nil {
			history.RecordRun(persist.RunRow{
				FlowAddress:   dgn.Flow().Address,
				Seed:          dgn.Seed(),
				MainPathRooms: st.MainPathRooms,
				BranchRooms:   st.BranchRooms,
				TotalRooms:    st.TotalRooms,
				Retries:       st.Retries,
				GenerationMS:  st.TotalTime.Milliseconds(),
			})
		}
		if autopilot.Enabled() {
			autopilot.Enable()
		}
	})

	// 6. Websocket feed (optional)
	var netServer *gonet.Server
	sessions := gonet.NewSessionStore()
	if cfg.Network.BindAddress != "" {
		netServer, err = gonet.NewServer(cfg.Network, log)
		if err != nil {
			return fmt.Errorf("net server: %w", err)
		}
		go netServer.Serve()

		reg := packet.NewRegistry(log)
		handler.RegisterAll(reg, &handler.Deps{
			Ctx:       rootCtx,
			Dungeon:   dgn,
			Autopilot: autopilot,
			Sessions:  sessions,
			Log:       log,
		})
		output := system.NewOutputSystem(sessions, dgn.Registry(), dgn, bus, log)
		runner.Register(system.NewInputSystem(netServer, reg, sessions, cfg.Network.MaxMessagesFrame, output.Welcome, log))
		runner.Register(output)
	}

	// 7. Request the dungeon; generation completes inside the loop
	dgn.Start(rootCtx)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.FrameRate)
	defer ticker.Stop()

	printSection(gotext.Get("Ready"))
	printReady(gotext.Get("Flow %s", cfg.Dungeon.FlowAddress))
	if netServer != nil {
		printReady(gotext.Get("Listening on %s", netServer.Addr().String()))
	}
	printReady(gotext.Get("Game loop started (frame: %s)", cfg.Network.FrameRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Network.FrameRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			stop()
			if history != nil {
				history.Flush()
			}
			if netServer != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := netServer.Shutdown(ctx); err != nil {
					log.Warn("websocket shutdown", zap.Error(err))
				}
				cancel()
				sessions.CloseAll()
			}
			log.Info("server stopped",
				zap.Uint64("frames", runner.Frames()),
				zap.Uint64("room_changes", dgn.Tracker().Changes()),
			)
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
