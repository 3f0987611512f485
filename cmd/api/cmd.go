package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/finflowhq/finflow-backend/internal/bootstrap"
	"github.com/finflowhq/finflow-backend/internal/cache"
	"github.com/finflowhq/finflow-backend/internal/config"
	"github.com/finflowhq/finflow-backend/internal/crypto"
	"github.com/finflowhq/finflow-backend/internal/events"
	"github.com/finflowhq/finflow-backend/internal/handlers"
	"github.com/finflowhq/finflow-backend/internal/response"
	"github.com/finflowhq/finflow-backend/internal/router"
	"github.com/finflowhq/finflow-backend/internal/services"
	"github.com/finflowhq/finflow-backend/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	err = store.Migrate(context.Background(), bs.Pool)
	exitOnError("schema migration failed", err, bs.Log)

	// helpers
	kmsHelper := crypto.NewKMS(bs.KMS, cfg.KMSKeyName)
	userCache := cache.New(cache.TTLs{
		Dashboard: cfg.DashboardTTL,
		Insights:  cfg.InsightsTTL,
		History:   cfg.HistoryTTL,
	})
	hub := events.NewHub(bs.Log)
	go hub.Run()
	defer hub.Stop()

	// stores
	ustore := store.NewUserStore(bs.Pool)
	astore := store.NewAccountStore(bs.Pool)
	lstore := store.NewLedgerStore(bs.Pool)
	bstore := store.NewBudgetStore(bs.Pool)
	istore := store.NewInvestmentStore(bs.Pool)
	alstore := store.NewAlertStore(bs.Pool)
	nstore := store.NewInsightStore(bs.Pool)
	pstore := store.NewPlaidItemStore(bs.Pool, kmsHelper)

	// services
	userv := services.NewUserService(ustore)
	aserv := services.NewAccountService(astore, userCache)
	lserv := services.NewLedgerService(lstore, userCache, hub)
	anserv := services.NewAnalyticsService(lstore)
	bserv := services.NewBudgetService(bstore, lstore)
	iserv := services.NewInvestmentService(istore, pstore, bs.PlaidAdapter, userCache)
	alserv := services.NewAlertService(alstore)
	dserv := services.NewDashboardService(lstore, astore, istore, bstore, alstore, lstore, userCache)
	nserv := services.NewInsightService(bs.VertexAdapter, nstore, lstore, astore, userCache)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.Hub = hub
	deps.LedgerSvc = lserv
	deps.AnalyticsSvc = anserv
	deps.DashboardSvc = dserv
	deps.InsightSvc = nserv
	deps.UserSvc = userv
	deps.AccountSvc = aserv
	deps.BudgetSvc = bserv
	deps.InvestmentSvc = iserv
	deps.AlertSvc = alserv

	// router
	r := router.NewRouter(deps)
	err = http.ListenAndServe(":8080", r)
	exitOnError("server start failed", err, bs.Log)
}
