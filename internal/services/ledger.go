package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/cache"
	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/events"
	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/internal/taxonomy"
	"github.com/finflowhq/finflow-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// transactionStore is the ledger storage interface. Mutations are atomic:
// the row write and the balance adjustment land together or not at all.
type transactionStore interface {
	Create(ctx context.Context, t *models.Transaction) error
	GetByID(ctx context.Context, uid, id string) (*models.Transaction, error)
	Update(ctx context.Context, uid, id string, patch dto.TransactionPatch) (*models.Transaction, error)
	Delete(ctx context.Context, uid, id string) error
	List(ctx context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, int, error)
}

// userCache drops or serves per-user cached aggregates.
type userCache interface {
	Get(kind, uid string) (any, bool)
	Set(kind, uid string, value any)
	InvalidateUser(uid string)
}

// changePublisher fans ledger-change notifications out to connected clients.
type changePublisher interface {
	Publish(event events.Event)
}

type ledgerService struct {
	store     transactionStore
	cache     userCache
	publisher changePublisher
	clockNow  func() time.Time
}

func NewLedgerService(store transactionStore, cache userCache, publisher changePublisher) *ledgerService {
	return &ledgerService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		clockNow:  time.Now,
	}
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsZero() || amount.IsNegative() {
		return errs.NewFieldValidationError("amount", "amount must be positive")
	}
	return nil
}

func validateCategory(typ models.TransactionType, category taxonomy.Category) error {
	if !taxonomy.Known(category) {
		return errs.NewFieldValidationError("category", "unknown category")
	}
	switch typ {
	case models.TransactionIncome:
		if !taxonomy.IsIncome(category) {
			return errs.NewFieldValidationError("category", "income transactions require an income category")
		}
	case models.TransactionExpense:
		if !taxonomy.IsExpense(category) {
			return errs.NewFieldValidationError("category", "expense transactions require an expense category")
		}
	}
	return nil
}

func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, errs.NewFieldValidationError(field, "date must be YYYY-MM-DD")
	}
	return d, nil
}

func (s *ledgerService) Create(ctx context.Context, uid string, req dto.CreateTransactionRequest) (*models.Transaction, error) {
	if req.AccountID == "" {
		return nil, errs.NewFieldValidationError("accountId", "accountId is required")
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if !models.ValidTransactionType(req.Type) {
		return nil, errs.NewFieldValidationError("type", "unknown transaction type")
	}
	if err := validateCategory(req.Type, req.Category); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, errs.NewFieldValidationError("description", "description is required")
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}

	now := s.clockNow()
	t := &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      uid,
		AccountID:   req.AccountID,
		Amount:      req.Amount.Abs(),
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	s.afterMutation(ctx, uid)
	return t, nil
}

func (s *ledgerService) Get(ctx context.Context, uid, id string) (*models.Transaction, error) {
	return s.store.GetByID(ctx, uid, id)
}

func (s *ledgerService) Update(ctx context.Context, uid, id string, req dto.UpdateTransactionRequest) (*models.Transaction, error) {
	patch := dto.TransactionPatch{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Amount != nil {
		if err := validateAmount(*req.Amount); err != nil {
			return nil, err
		}
	}
	if req.Type != nil && !models.ValidTransactionType(*req.Type) {
		return nil, errs.NewFieldValidationError("type", "unknown transaction type")
	}
	if req.Category != nil && !taxonomy.Known(*req.Category) {
		return nil, errs.NewFieldValidationError("category", "unknown category")
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		return nil, errs.NewFieldValidationError("description", "description cannot be blank")
	}
	if req.Date != nil {
		date, err := parseDate("date", *req.Date)
		if err != nil {
			return nil, err
		}
		patch.Date = &date
	}

	// The type/category pair is validated on the merged result before the
	// store runs, so a type-only or category-only patch cannot slip an
	// income category onto an expense.
	if req.Type != nil || req.Category != nil {
		current, err := s.store.GetByID(ctx, uid, id)
		if err != nil {
			return nil, err
		}
		mergedType := current.Type
		if req.Type != nil {
			mergedType = *req.Type
		}
		mergedCategory := current.Category
		if req.Category != nil {
			mergedCategory = *req.Category
		}
		if err := validateCategory(mergedType, mergedCategory); err != nil {
			return nil, err
		}
	}

	t, err := s.store.Update(ctx, uid, id, patch)
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, uid)
	return t, nil
}

func (s *ledgerService) Delete(ctx context.Context, uid, id string) error {
	if err := s.store.Delete(ctx, uid, id); err != nil {
		return err
	}
	s.afterMutation(ctx, uid)
	return nil
}

// List returns one page of the user's transactions. The unfiltered first
// page is the hot path for the history view and is served from cache.
func (s *ledgerService) List(ctx context.Context, uid string, q dto.TransactionQuery) (dto.TransactionPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	if q.SortKey == "" {
		q.SortKey = "date"
		q.SortDesc = true
	}
	if q.DateFrom != nil {
		if _, err := parseDate("dateFrom", *q.DateFrom); err != nil {
			return dto.TransactionPage{}, err
		}
	}
	if q.DateTo != nil {
		if _, err := parseDate("dateTo", *q.DateTo); err != nil {
			return dto.TransactionPage{}, err
		}
	}

	cacheable := isDefaultQuery(q)
	if cacheable {
		if cached, ok := s.cache.Get(cache.KindHistory, uid); ok {
			if page, ok := cached.(dto.TransactionPage); ok {
				return page, nil
			}
		}
	}

	items, total, err := s.store.List(ctx, uid, q)
	if err != nil {
		return dto.TransactionPage{}, err
	}

	totalPages := total / q.Limit
	if total%q.Limit != 0 {
		totalPages++
	}
	page := dto.TransactionPage{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages,
		HasNext:    q.Page < totalPages,
		HasPrev:    q.Page > 1 && total > 0,
	}

	if cacheable {
		s.cache.Set(cache.KindHistory, uid, page)
	}
	return page, nil
}

func isDefaultQuery(q dto.TransactionQuery) bool {
	return q.Category == nil && q.Type == nil && q.AccountID == nil &&
		q.DateFrom == nil && q.DateTo == nil && q.Search == nil &&
		q.SortKey == "date" && q.SortDesc &&
		q.Page == 1 && q.Limit == defaultPageLimit
}

// afterMutation drops the user's cached aggregates and notifies connected
// clients. Invalidation is synchronous: by the time the mutation call
// returns, no stale aggregate can be served.
func (s *ledgerService) afterMutation(ctx context.Context, uid string) {
	s.cache.InvalidateUser(uid)
	s.publisher.Publish(events.LedgerChanged(uid, []string{
		cache.KindDashboardStats,
		cache.KindHistory,
		cache.KindInsights,
	}))
	logger.FromContext(ctx).Debug("ledger mutation applied", "uid", uid)
}
