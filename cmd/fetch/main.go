// Command fetch pulls one window of form responses from Typeform and
// replaces the local store with the result. Useful for backfills and for
// priming a fresh deployment before the dashboard goes live.
package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cmra-project/group-dashboard/internal/config"
	"github.com/cmra-project/group-dashboard/internal/db"
	"github.com/cmra-project/group-dashboard/internal/logger"
	"github.com/cmra-project/group-dashboard/internal/services"
	"github.com/cmra-project/group-dashboard/internal/typeform"
)

func main() {
	var (
		sinceArg = flag.String("since", "", "start of the fetch window (YYYY-MM-DD or RFC3339)")
		untilArg = flag.String("until", "", "end of the fetch window (YYYY-MM-DD or RFC3339)")
		timeout  = flag.Duration("timeout", 5*time.Minute, "overall fetch timeout")
	)
	flag.Parse()

	cfg := config.FromEnv()
	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logger.Get()

	if cfg.TypeformToken == "" || cfg.TypeformFormID == "" {
		log.Fatal().Msg("CMRA_TYPEFORM_TOKEN and CMRA_TYPEFORM_FORM_ID must be set")
	}

	since, err := parseBound(*sinceArg)
	if err != nil {
		log.Fatal().Err(err).Str("flag", "since").Msg("bad time bound")
	}
	until, err := parseBound(*untilArg)
	if err != nil {
		log.Fatal().Err(err).Str("flag", "until").Msg("bad time bound")
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}

	var opts []typeform.Option
	if cfg.TypeformBaseURL != "" {
		opts = append(opts, typeform.WithBaseURL(cfg.TypeformBaseURL))
	}
	client := typeform.NewClient(cfg.TypeformToken, cfg.TypeformFormID, opts...)
	syncSvc := services.NewSyncService(client, store, services.NewNormalizer(nil), log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := syncSvc.Sync(ctx, since, until)
	if err != nil {
		log.Fatal().Err(err).Msg("fetch failed")
	}
	log.Info().
		Int("fetched", result.Fetched).
		Int("stored", result.Stored).
		Int("rejected", result.Rejected).
		Msg("fetch complete")
}

func parseBound(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	_, err := time.Parse(time.RFC3339, s)
	return nil, err
}

func openStore(cfg config.Config) (services.RowStore, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		conn, err := sql.Open("sqlite3", cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return db.NewSQLiteStore(conn)
	default:
		return db.NewCSVStore(cfg.CSVPath), nil
	}
}
