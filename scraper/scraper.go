package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"loltools/fetcher/assets"
	"loltools/fetcher/requests"
	"loltools/pkg/config"
	"loltools/pkg/logger"
	"loltools/pkg/redis"
	"loltools/scraper/leagueofgraphs"
	"loltools/scraper/leaguepedia"
)

// Scraped roles change slowly, a day is enough.
const rolesTTL = 24 * time.Hour

const usage = `usage:
  scraper pro <summoner name> [first name] [family name]
  scraper roles <champion name or id>`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Couldn't load the config: %v", err)
	}

	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := requests.NewClient(nil)

	var result any
	switch os.Args[1] {
	case "pro":
		args := append(slices.Clone(os.Args[2:]), "", "")
		result, err = leaguepedia.NewProFinder(client, "").GetProSoloqIDs(ctx, args[0], args[1], args[2])
	case "roles":
		result, err = championRoles(ctx, cfg, client, strings.Join(os.Args[2:], " "))
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
	if err := writeJSON(os.Stdout, result); err != nil {
		log.Fatal(err)
	}
}

// Numeric ids are resolved to the name through the catalog first.
func championRoles(ctx context.Context, cfg *config.Config, client *requests.Client, champion string) (map[string]float64, error) {
	var cache leagueofgraphs.Cache
	var stores []assets.Store
	if cfg.RedisEnabled() {
		redisClient := redis.GetClient(cfg.Redis)
		defer redisClient.Close()

		cache = redisClient.WithTTL(rolesTTL)
		stores = append(stores, redisClient)
	}

	runLogger, err := logger.CreateLogger()
	if err != nil {
		return nil, fmt.Errorf("couldn't create the logger: %w", err)
	}
	runLogger.Mirror(os.Stderr)
	defer runLogger.Close()

	if _, err := strconv.Atoi(champion); err == nil {
		catalog := assets.NewChampionCatalog(&assets.ChampionCatalogDeps{
			Client:   client,
			Language: cfg.Language,
			Stores:   stores,
			Logger:   runLogger,
		})

		champ, err := catalog.Lookup(ctx, "", champion)
		if err != nil {
			return nil, err
		}
		champion = champ.Name
	}

	scraper := leagueofgraphs.NewRoleScraper(leagueofgraphs.NewHTTPPageFetcher(client), cache, "").WithLogger(runLogger)
	return scraper.GetChampionRoles(ctx, champion)
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
