package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cmra-project/group-dashboard/internal/api"
	"github.com/cmra-project/group-dashboard/internal/config"
	"github.com/cmra-project/group-dashboard/internal/db"
	"github.com/cmra-project/group-dashboard/internal/logger"
	"github.com/cmra-project/group-dashboard/internal/middleware"
	"github.com/cmra-project/group-dashboard/internal/services"
	"github.com/cmra-project/group-dashboard/internal/typeform"
)

func main() {
	cfg := config.FromEnv()
	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logger.Get()

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}

	normalizer := services.NewNormalizer(nil)
	flag := &services.FlagFile{Path: cfg.RealtimeFlagPath}
	ingest := services.NewIngestService(store, flag, normalizer, log)

	var syncSvc *services.SyncService
	if cfg.TypeformToken != "" && cfg.TypeformFormID != "" {
		var opts []typeform.Option
		if cfg.TypeformBaseURL != "" {
			opts = append(opts, typeform.WithBaseURL(cfg.TypeformBaseURL))
		}
		client := typeform.NewClient(cfg.TypeformToken, cfg.TypeformFormID, opts...)
		syncSvc = services.NewSyncService(client, store, normalizer, log)
	} else {
		log.Warn().Msg("typeform credentials not set, sync endpoint disabled")
	}

	users := api.NewMemoryUserStore()
	auth := services.NewAuthService(users, middleware.SignToken)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := auth.Register(cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("seed admin account")
		}
		log.Info().Str("email", cfg.AdminEmail).Msg("seeded admin account")
	}

	mux := http.NewServeMux()
	api.NewRouter(api.Deps{
		Store:  store,
		Ingest: ingest,
		Sync:   syncSvc,
		Flag:   flag,
		Auth:   auth,
		Log:    log,
	}).Register(mux)

	commit := os.Getenv("CMRA_COMMIT")
	buildTime := os.Getenv("CMRA_BUILD_TIME")
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "CMRA Group Dashboard API",
			"commit":     commit,
			"build_time": buildTime,
		})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	} else {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "Welcome to the CMRA Group Dashboard API"})
		})
	}

	handler := middleware.RequestLog(log)(
		middleware.CORS(
			middleware.SecureHeaders(
				middleware.NoStore(
					middleware.WithAuth(mux)))))

	log.Info().Str("addr", cfg.Addr).Str("store", cfg.StoreDriver).Msg("dashboard server listening")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
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
