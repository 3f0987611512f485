package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/finflowhq/finflow-backend/internal/handlers"
	"github.com/finflowhq/finflow-backend/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	th := handlers.NewTransactionHandlers(deps)
	dh := handlers.NewDashboardHandlers(deps)
	ih := handlers.NewInsightHandlers(deps)
	uh := handlers.NewUserHandlers(deps)
	ah := handlers.NewAccountHandlers(deps)
	bh := handlers.NewBudgetHandlers(deps)
	vh := handlers.NewInvestmentHandlers(deps)
	alh := handlers.NewAlertHandlers(deps)
	wh := handlers.NewWSHandlers(deps)

	auth := middleware.NewMiddleware(deps.Firebase)
	r.Group(func(r chi.Router) {
		r.Use(auth.Auth)

		r.Mount("/transactions", th.TransactionRoutes())
		r.Mount("/dashboard", dh.DashboardRoutes())
		r.Mount("/insights", ih.InsightRoutes())
		r.Mount("/users", uh.UserRoutes())
		r.Mount("/accounts", ah.AccountRoutes())
		r.Mount("/budgets", bh.BudgetRoutes())
		r.Mount("/investments", vh.InvestmentRoutes())
		r.Mount("/plaid", vh.PlaidRoutes())
		r.Mount("/alerts", alh.AlertRoutes())
		r.Get("/ws", wh.Serve)
	})

	return r
}
