// Package api exposes the dashboard's HTTP surface: the Typeform webhook,
// the cohort analytics endpoints, CSV export and the admin operations.
package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cmra-project/group-dashboard/internal/middleware"
	"github.com/cmra-project/group-dashboard/internal/schema"
	"github.com/cmra-project/group-dashboard/internal/services"
)

const welcomeMessage = "Welcome to the CMRA Group Dashboard API"

// Router wires the services onto an http.ServeMux.
type Router struct {
	store      services.RowStore
	ingest     *services.IngestService
	sync       *services.SyncService
	session    *services.SyncSession
	aggregator *services.Aggregator
	comparator *services.Comparator
	flag       *services.FlagFile
	auth       *services.AuthService
	log        zerolog.Logger
}

// Deps collects everything the router needs. Sync may be nil when the remote
// fetch credentials are not configured; the sync endpoint then reports it.
type Deps struct {
	Store      services.RowStore
	Ingest     *services.IngestService
	Sync       *services.SyncService
	Flag       *services.FlagFile
	Auth       *services.AuthService
	Schema     *schema.Schema
	Log        zerolog.Logger
}

func NewRouter(d Deps) *Router {
	sch := d.Schema
	if sch == nil {
		sch = schema.Default()
	}
	return &Router{
		store:      d.Store,
		ingest:     d.Ingest,
		sync:       d.Sync,
		session:    &services.SyncSession{},
		aggregator: services.NewAggregator(sch),
		comparator: services.NewComparator(sch),
		flag:       d.Flag,
		auth:       d.Auth,
		log:        d.Log,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", rt.handleWebhook)                 // GET welcome, POST ingest
	mux.HandleFunc("/api/auth/register", rt.handleRegister)      // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)            // POST
	mux.HandleFunc("/api/roles", rt.handleRoles)                 // GET
	mux.HandleFunc("/api/dashboard/summary", rt.handleSummary)   // GET
	mux.HandleFunc("/api/dashboard/comparison", rt.handleCompare) // GET
	mux.HandleFunc("/api/export", rt.handleExport)               // GET

	mux.Handle("/api/sync", middleware.RequireAuth(http.HandlerFunc(rt.handleSync)))             // POST
	mux.Handle("/api/responses/clear", middleware.RequireAuth(http.HandlerFunc(rt.handleClear))) // POST
	mux.Handle("/api/realtime", middleware.RequireAuth(http.HandlerFunc(rt.handleRealtime)))     // POST
}
