package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"loltools/fetcher/assets"
	"loltools/fetcher/repositories"
	"loltools/fetcher/requests"
	"loltools/pkg/config"
	"loltools/pkg/database"
	"loltools/pkg/logger"
	"loltools/pkg/redis"
)

// Load the env and revalidate the champion catalog of a version.
// Will be executed in a regular basis.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Couldn't load the config: %v", err)
	}

	version := flag.String("version", "", "game data version, empty is the latest")
	language := flag.String("lang", cfg.Language, "data dragon language")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runLogger, err := logger.CreateLogger()
	if err != nil {
		log.Fatalf("Couldn't create the logger: %v", err)
	}
	runLogger.Mirror(os.Stderr)
	defer runLogger.Close()

	// Redis first, the database is the backup when the cache is flushed.
	var stores []assets.Store
	if cfg.RedisEnabled() {
		client := redis.GetClient(cfg.Redis)
		defer client.Close()
		stores = append(stores, client)
	}
	if cfg.DatabaseEnabled() {
		db, err := database.NewConnection(cfg.Database.URL)
		if err != nil {
			log.Fatal(err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatal(err)
		}
		stores = append(stores, repositories.NewCacheRepository(db))
	}

	catalog := assets.NewChampionCatalog(&assets.ChampionCatalogDeps{
		Client:   requests.NewClient(nil),
		Language: *language,
		Stores:   stores,
		Logger:   runLogger,
	})

	champions, err := catalog.Revalidate(ctx, *version)
	if err != nil {
		runLogger.Errorf("Couldn't fetch the data from the ddragon to revalidate the champion cache: %v", err)
		runLogger.Close()
		os.Exit(1)
	}

	runLogger.Infof("Revalidated %d champions of version %s (%s)", len(champions), catalog.Version(), *language)
}
