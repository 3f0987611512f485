package handlers

import (
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"github.com/finflowhq/finflow-backend/internal/events"
	"github.com/finflowhq/finflow-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Firebase        *auth.Client
	Hub             *events.Hub

	LedgerSvc     LedgerService
	AnalyticsSvc  AnalyticsService
	DashboardSvc  DashboardService
	InsightSvc    InsightService
	UserSvc       UserService
	AccountSvc    AccountService
	BudgetSvc     BudgetService
	InvestmentSvc InvestmentService
	AlertSvc      AlertService
}
