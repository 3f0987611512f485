package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/pkg/logger"
)

type investmentStore interface {
	Create(ctx context.Context, i *models.Investment) error
	GetByID(ctx context.Context, uid, id string) (*models.Investment, error)
	List(ctx context.Context, uid string) ([]models.Investment, error)
	Update(ctx context.Context, i *models.Investment) error
	Delete(ctx context.Context, uid, id string) error
	UpsertHolding(ctx context.Context, i *models.Investment) error
}

type plaidItemStore interface {
	Create(ctx context.Context, item *models.PlaidItem) error
	List(ctx context.Context, uid string) ([]models.PlaidItem, error)
}

type plaidClient interface {
	CreateLinkToken(ctx context.Context, uid string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (itemID, accessToken string, err error)
	GetHoldings(ctx context.Context, accessToken string) ([]dto.PlaidHolding, error)
}

type investmentService struct {
	store    investmentStore
	items    plaidItemStore
	plaid    plaidClient
	cache    userCache
	clockNow func() time.Time
}

func NewInvestmentService(store investmentStore, items plaidItemStore, plaid plaidClient, cache userCache) *investmentService {
	return &investmentService{
		store:    store,
		items:    items,
		plaid:    plaid,
		cache:    cache,
		clockNow: time.Now,
	}
}

func (s *investmentService) Create(ctx context.Context, uid string, req dto.CreateInvestmentRequest) (*models.Investment, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, errs.NewFieldValidationError("symbol", "symbol is required")
	}
	if !req.Quantity.IsPositive() {
		return nil, errs.NewFieldValidationError("quantity", "quantity must be positive")
	}
	if req.PurchasePrice.IsNegative() || req.CurrentPrice.IsNegative() {
		return nil, errs.NewFieldValidationError("purchasePrice", "prices cannot be negative")
	}
	purchaseDate, err := parseDate("purchaseDate", req.PurchaseDate)
	if err != nil {
		return nil, err
	}

	now := s.clockNow()
	investment := &models.Investment{
		ID:            uuid.NewString(),
		UserID:        uid,
		Symbol:        symbol,
		Name:          req.Name,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		CurrentPrice:  req.CurrentPrice,
		Type:          req.Type,
		PurchaseDate:  purchaseDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, investment); err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(uid)
	return investment, nil
}

func (s *investmentService) List(ctx context.Context, uid string) ([]models.Investment, error) {
	return s.store.List(ctx, uid)
}

func (s *investmentService) Update(ctx context.Context, uid, id string, req dto.UpdateInvestmentRequest) (*models.Investment, error) {
	investment, err := s.store.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	if req.Quantity != nil {
		if !req.Quantity.IsPositive() {
			return nil, errs.NewFieldValidationError("quantity", "quantity must be positive")
		}
		investment.Quantity = *req.Quantity
	}
	if req.CurrentPrice != nil {
		if req.CurrentPrice.IsNegative() {
			return nil, errs.NewFieldValidationError("currentPrice", "price cannot be negative")
		}
		investment.CurrentPrice = *req.CurrentPrice
	}

	if err := s.store.Update(ctx, investment); err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(uid)
	return investment, nil
}

func (s *investmentService) Delete(ctx context.Context, uid, id string) error {
	if err := s.store.Delete(ctx, uid, id); err != nil {
		return err
	}
	s.cache.InvalidateUser(uid)
	return nil
}

func (s *investmentService) CreateLinkToken(ctx context.Context, uid string) (dto.CreateLinkTokenResponse, error) {
	token, err := s.plaid.CreateLinkToken(ctx, uid)
	if err != nil {
		return dto.CreateLinkTokenResponse{}, errs.NewExternalServiceError("plaid", "failed to create link token", true, err)
	}
	return dto.CreateLinkTokenResponse{LinkToken: token}, nil
}

// ExchangePublicToken completes the Plaid link flow: the public token is
// swapped for an access token, which is persisted encrypted, and an initial
// holdings refresh runs immediately.
func (s *investmentService) ExchangePublicToken(ctx context.Context, uid string, req dto.ExchangePublicTokenRequest) (dto.ExchangePublicTokenResponse, error) {
	if req.PublicToken == "" {
		return dto.ExchangePublicTokenResponse{}, errs.NewFieldValidationError("publicToken", "publicToken is required")
	}

	itemID, accessToken, err := s.plaid.ExchangePublicToken(ctx, req.PublicToken)
	if err != nil {
		return dto.ExchangePublicTokenResponse{}, errs.NewExternalServiceError("plaid", "failed to exchange public token", false, err)
	}

	item := &models.PlaidItem{
		ID:          uuid.NewString(),
		UserID:      uid,
		ItemID:      itemID,
		Institution: req.Institution,
		AccessToken: accessToken,
		CreatedAt:   s.clockNow(),
	}
	if err := s.items.Create(ctx, item); err != nil {
		return dto.ExchangePublicTokenResponse{}, err
	}

	if err := s.refreshItem(ctx, uid, accessToken); err != nil {
		// The link itself succeeded; holdings will sync on the next refresh.
		logger.FromContext(ctx).Warn("initial holdings sync failed", "error", err)
	}

	return dto.ExchangePublicTokenResponse{ItemID: itemID}, nil
}

// RefreshHoldings pulls current holdings for every linked item and upserts
// them into the investment table. Returns the refreshed portfolio.
func (s *investmentService) RefreshHoldings(ctx context.Context, uid string) ([]models.Investment, error) {
	items, err := s.items.List(ctx, uid)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := s.refreshItem(ctx, uid, item.AccessToken); err != nil {
			return nil, err
		}
	}

	s.cache.InvalidateUser(uid)
	return s.store.List(ctx, uid)
}

func (s *investmentService) refreshItem(ctx context.Context, uid, accessToken string) error {
	holdings, err := s.plaid.GetHoldings(ctx, accessToken)
	if err != nil {
		return errs.NewExternalServiceError("plaid", "failed to fetch holdings", true, err)
	}

	now := s.clockNow()
	for _, h := range holdings {
		if h.Symbol == "" || !h.Quantity.IsPositive() {
			continue
		}
		investment := &models.Investment{
			ID:            uuid.NewString(),
			UserID:        uid,
			Symbol:        strings.ToUpper(h.Symbol),
			Name:          h.Name,
			Quantity:      h.Quantity,
			PurchasePrice: h.PurchasePrice,
			CurrentPrice:  h.CurrentPrice,
			Type:          h.Type,
			PurchaseDate:  now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.store.UpsertHolding(ctx, investment); err != nil {
			return err
		}
	}
	return nil
}
