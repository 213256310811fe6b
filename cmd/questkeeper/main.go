package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lawnchairsociety/questkeeper/internal/catalogdb"
	"github.com/lawnchairsociety/questkeeper/internal/config"
	"github.com/lawnchairsociety/questkeeper/internal/logger"
	"github.com/lawnchairsociety/questkeeper/internal/quest"
	"github.com/lawnchairsociety/questkeeper/internal/server"
	"github.com/lawnchairsociety/questkeeper/internal/tracker"
)

func main() {
	// Parse command-line flags
	configFile := flag.String("config", "data/questkeeper.yaml", "Path to config YAML file")
	envFile := flag.String("env", ".env", "Path to optional .env file")
	catalogPath := flag.String("catalog", "", "Quests YAML file or directory (overrides catalog.path)")
	importCatalog := flag.Bool("import", false, "Copy the YAML catalog into the catalog database before serving")
	pruneCatalog := flag.Bool("prune", false, "With -import, delete database quests the YAML catalog no longer defines")
	lintOnly := flag.Bool("lint", false, "Check the quest catalog for content problems and exit")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ApplyEnv()
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}

	// Initialize logger first (before any logging)
	if err := logger.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting questkeeper", "catalog_source", cfg.Catalog.Source, "catalog_path", cfg.Catalog.Path)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *pruneCatalog && !*importCatalog {
		logger.Warning("-prune has no effect without -import")
	}

	registry, err := loadCatalog(ctx, cfg, *importCatalog, *pruneCatalog)
	if err != nil {
		logger.Error("Failed to load quest catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("Quest catalog loaded", "quests", registry.Count())

	issues := registry.Lint()
	for _, issue := range issues {
		logger.Warning("Quest content issue", "quest_id", issue.QuestID, "issue", issue.String())
	}
	if *lintOnly {
		if len(issues) > 0 {
			os.Exit(1)
		}
		return
	}

	// One player's quest state plus its local observers
	manager := quest.NewManager()
	journal := tracker.NewJournal(manager)
	defer journal.Close()
	popups := tracker.NewRewardPopups(manager, cfg.Rewards.MessageTemplate, cfg.Rewards.DisplayDuration())
	defer popups.Close()
	manager.OnQuestsUpdated(func() {
		logger.Debug("Quest journal updated", "journal", journal.Text())
	})

	engine := server.NewEngine(registry, manager)
	go engine.Run(ctx)

	srv := server.NewServer(engine, cfg)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("Press Ctrl+C to shutdown")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	running := true
	for running {
		select {
		case <-ctx.Done():
			running = false
		case err := <-errCh:
			if err != nil {
				logger.Error("HUD server error", "error", err)
			}
			running = false
		case now := <-ticker.C:
			popups.Prune(now)
		}
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HUD server shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

// loadCatalog builds the quest registry from YAML or the catalog database.
// With importYAML set the YAML catalog is first copied into the database,
// and prune then drops stored quests the YAML no longer has.
func loadCatalog(ctx context.Context, cfg *config.Config, importYAML, prune bool) (*quest.QuestRegistry, error) {
	registry := quest.NewQuestRegistry()

	if cfg.Catalog.Source == config.CatalogSourceYAML && !importYAML {
		if err := registry.LoadFromPath(cfg.Catalog.Path); err != nil {
			return nil, err
		}
		return registry, nil
	}

	db, err := catalogdb.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var yamlCatalog *quest.QuestsConfig
	if importYAML {
		yamlCatalog, err = quest.LoadQuestsFromPath(cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
		count, err := db.ImportConfig(ctx, yamlCatalog)
		if err != nil {
			return nil, err
		}
		if prune {
			removed, err := db.PruneMissing(ctx, yamlCatalog)
			if err != nil {
				return nil, err
			}
			logger.Info("Pruned catalog database", "removed", len(removed))
		}
		stored, err := db.CountQuests(ctx)
		if err != nil {
			return nil, err
		}
		logger.Info("Imported YAML catalog", "path", cfg.Catalog.Path, "quests", count, "stored", stored)
	}

	if cfg.Catalog.Source == config.CatalogSourceDB {
		dbCatalog, err := db.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		registry.LoadFromConfig(dbCatalog)
		return registry, nil
	}

	registry.LoadFromConfig(yamlCatalog)
	return registry, nil
}
