package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	leaguefetcher "loltools/fetcher/data/league"
	"loltools/fetcher/repositories"
	"loltools/fetcher/requests"
	leaderboardservice "loltools/fetcher/services/leaderboard"
	"loltools/pkg/config"
	"loltools/pkg/database"
	"loltools/pkg/database/models"
	"loltools/pkg/filters"
	"loltools/pkg/logger"
	"loltools/pkg/metrics"

	"github.com/google/uuid"
)

// Flags of a single aggregation run.
type options struct {
	queue         string
	rank          string
	region        string
	n             int
	startPage     int
	pageLimit     int
	filters       filters.Conditions
	rotateOnLimit bool
	save          bool
	compare       bool
	json          bool
}

func parseOptions(args []string, defaultRegion string) (*options, error) {
	opts := &options{}

	flags := flag.NewFlagSet("fetcher", flag.ContinueOnError)
	flags.StringVar(&opts.queue, "queue", "soloq", "queue alias or code (soloq, flex, tt)")
	flags.StringVar(&opts.rank, "rank", "d1", "tier letter and division, e.g. d1, g4, e2")
	flags.StringVar(&opts.region, "region", defaultRegion, "region alias or platform code")
	flags.IntVar(&opts.n, "n", leaderboardservice.DefaultTopN, "how many entries to keep")
	flags.IntVar(&opts.startPage, "start-page", leaderboardservice.DefaultStartPage, "first page to fetch")
	flags.IntVar(&opts.pageLimit, "page-limit", 0, "maximum pages to fetch, 0 is unbounded")
	flags.Var(&opts.filters, "filter", "row filter, e.g. wins=10:100 or !tier=GOLD (repeatable)")
	flags.BoolVar(&opts.rotateOnLimit, "rotate-on-limit", false, "switch to the next api key when rate limited")
	flags.BoolVar(&opts.save, "save", false, "store the result as a snapshot on the database")
	flags.BoolVar(&opts.compare, "compare", false, "show the league points change since the latest saved snapshot")
	flags.BoolVar(&opts.json, "json", false, "print the rows as json")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Couldn't load the config: %v", err)
	}

	opts, err := parseOptions(os.Args[1:], cfg.Riot.Region)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runLogger, err := logger.CreateLogger()
	if err != nil {
		log.Fatalf("Couldn't create the logger: %v", err)
	}
	runLogger.Mirror(os.Stderr)
	defer runLogger.Close()

	runID := uuid.New()
	manager := metrics.NewManager("loltools")

	runErr := run(ctx, cfg, opts, runID, runLogger, manager, os.Stdout)
	if runErr != nil {
		runLogger.Errorf("Run %s failed: %v", runID, runErr)
	}

	// Both are best effort, the run result is already decided.
	finishCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Metrics.PushgatewayURL != "" {
		if err := manager.Push(finishCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			runLogger.Errorf("%v", err)
		}
	}
	if cfg.BucketEnabled() {
		key := fmt.Sprintf("leaderboard/%s/%s.log", time.Now().UTC().Format("2006-01-02"), runID)
		if err := runLogger.UploadToS3Bucket(finishCtx, cfg.Bucket, key); err != nil {
			log.Printf("Couldn't upload the run log: %v", err)
		}
	}

	if runErr != nil {
		runLogger.Close()
		os.Exit(1)
	}
}

// Aggregate, filter and print the leaderboard.
func run(
	ctx context.Context,
	cfg *config.Config,
	opts *options,
	runID uuid.UUID,
	runLogger *logger.NewLogger,
	manager *metrics.Manager,
	out io.Writer,
) error {
	ring, err := requests.NewCredentialRing(cfg.Riot.ApiKeys)
	if err != nil {
		return err
	}

	client := requests.NewClient(requests.CreateRateLimiter(cfg.Limits))

	serviceConfig := leaderboardservice.ConfigFromEnv(cfg)
	if opts.rotateOnLimit {
		serviceConfig.RotateOnRateLimit = true
	}

	service := leaderboardservice.NewLeaderboardService(&leaderboardservice.LeaderboardServiceDeps{
		Fetcher:     leaguefetcher.CreateLeagueFetcher(client, ""),
		Credentials: ring,
		Config:      serviceConfig,
		Logger:      runLogger,
		Metrics:     manager,
	})

	runLogger.Infof("Run %s: %s %s on %s, top %d", runID, opts.queue, opts.rank, opts.region, opts.n)

	result, err := service.Aggregate(ctx, leaderboardservice.Request{
		Queue:     opts.queue,
		Rank:      opts.rank,
		Region:    opts.region,
		N:         opts.n,
		StartPage: opts.startPage,
		PageLimit: opts.pageLimit,
	})
	if err != nil {
		return err
	}

	if result.Partial {
		runLogger.Infof("Page limit reached after %d pages, the result is partial", result.PagesFetched)
	}

	records := make([]map[string]any, len(result.Rows))
	for i, row := range result.Rows {
		records[i] = row.Record()
	}

	if opts.save || opts.compare {
		repository, closeDB, err := openRepository(cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		// The previous snapshot is read before this run is saved.
		if opts.compare {
			previous, err := repository.GetLatestSnapshot(ctx, result.Queue, string(result.Tier), string(result.Division), result.Region)
			if err != nil && !errors.Is(err, repositories.ErrSnapshotNotFound) {
				return err
			}
			if previous == nil {
				runLogger.Infof("No previous snapshot, every entry is new")
			}
			addChanges(records, previous)
		}

		if opts.save {
			if err := repository.SaveSnapshot(ctx, repositories.SnapshotFromResult(runID, result)); err != nil {
				return err
			}
			runLogger.Infof("Snapshot %s saved with %d rows", runID, len(result.Rows))
		}
	}

	// Filters only change what is printed, the snapshot keeps the full top N.
	records, err = filters.Apply(records, opts.filters)
	if err != nil {
		return err
	}

	if opts.json {
		return writeJSON(out, records)
	}
	return writeTable(out, records)
}

// Open the migrated database and return the snapshot repository with its close function.
func openRepository(cfg *config.Config) (repositories.LeaderboardRepository, func(), error) {
	if !cfg.DatabaseEnabled() {
		return nil, nil, fmt.Errorf("DATABASE_URL must be set to save or compare snapshots")
	}

	db, err := database.NewConnection(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	if err := database.Migrate(db); err != nil {
		closeDB()
		return nil, nil, err
	}

	return repositories.NewLeaderboardRepository(db), closeDB, nil
}

// Set the league points change of each player since the previous snapshot.
// Players missing from it are marked as new with no change.
func addChanges(records []map[string]any, previous *models.LeaderboardSnapshot) {
	points := make(map[string]int)
	if previous != nil {
		for _, row := range previous.Rows {
			points[row.PlayerID] = row.LeaguePoints
		}
	}

	for _, record := range records {
		before, found := points[record["playerId"].(string)]
		record["newEntry"] = !found
		record["lpChange"] = 0
		if found {
			record["lpChange"] = record["leaguePoints"].(int) - before
		}
	}
}

func writeJSON(out io.Writer, records []map[string]any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

func writeTable(out io.Writer, records []map[string]any) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, compared := firstOrEmpty(records)["lpChange"]

	header := "RANK\tPLAYER\tTIER\tLP\tWINS\tLOSSES\tWIN RATE\tHOT STREAK"
	if compared {
		header += "\tCHANGE"
	}
	fmt.Fprintln(w, header)

	for _, record := range records {
		player := record["summonerName"]
		if player == "" {
			player = record["playerId"]
		}
		fmt.Fprintf(w, "%v\t%v\t%v %v\t%v\t%v\t%v\t%.2f%%\t%v",
			record["rank"],
			player,
			record["tier"],
			record["division"],
			record["leaguePoints"],
			record["wins"],
			record["losses"],
			record["winRate"].(float64)*100,
			record["hotStreak"],
		)
		if compared {
			if record["newEntry"].(bool) {
				fmt.Fprint(w, "\tnew")
			} else {
				fmt.Fprintf(w, "\t%+d", record["lpChange"])
			}
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func firstOrEmpty(records []map[string]any) map[string]any {
	if len(records) == 0 {
		return nil
	}
	return records[0]
}
