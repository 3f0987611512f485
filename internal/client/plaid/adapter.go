package plaidclient

import (
	"context"

	"github.com/plaid/plaid-go/v24/plaid"
	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/dto"
)

type Adapter struct {
	client *plaid.APIClient
}

func NewAdapter(clientID, secret string, env dto.PlaidEnvironment) *Adapter {
	cfg := plaid.NewConfiguration()
	cfg.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	cfg.AddDefaultHeader("PLAID-SECRET", secret)
	cfg.UseEnvironment(env)

	return &Adapter{
		client: plaid.NewAPIClient(cfg),
	}
}

func (a *Adapter) CreateLinkToken(ctx context.Context, uid string) (string, error) {
	req := plaid.NewLinkTokenCreateRequest(
		"FinFlow",
		"en",
		[]plaid.CountryCode{plaid.CountryCode("US")},
		plaid.LinkTokenCreateRequestUser{ClientUserId: uid},
	)
	req.SetProducts([]plaid.Products{plaid.PRODUCTS_INVESTMENTS})

	resp, _, err := a.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*req).Execute()
	if err != nil {
		return "", err
	}
	return resp.GetLinkToken(), nil
}

func (a *Adapter) ExchangePublicToken(ctx context.Context, publicToken string) (itemID, accessToken string, err error) {
	req := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, _, err := a.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*req).Execute()
	if err != nil {
		return "", "", err
	}
	return resp.GetItemId(), resp.GetAccessToken(), nil
}

// GetHoldings fetches the item's investment holdings. The returned prices
// are the externally supplied values the investment rows adopt on refresh.
func (a *Adapter) GetHoldings(ctx context.Context, accessToken string) ([]dto.PlaidHolding, error) {
	req := plaid.NewInvestmentsHoldingsGetRequest(accessToken)
	resp, _, err := a.client.PlaidApi.InvestmentsHoldingsGet(ctx).InvestmentsHoldingsGetRequest(*req).Execute()
	if err != nil {
		return nil, err
	}

	securities := make(map[string]plaid.Security, len(resp.GetSecurities()))
	for _, sec := range resp.GetSecurities() {
		securities[sec.GetSecurityId()] = sec
	}

	holdings := make([]dto.PlaidHolding, 0, len(resp.GetHoldings()))
	for _, h := range resp.GetHoldings() {
		sec := securities[h.GetSecurityId()]

		holding := dto.PlaidHolding{
			Symbol:        sec.GetTickerSymbol(),
			Name:          sec.GetName(),
			Quantity:      decimal.NewFromFloat(h.GetQuantity()),
			PurchasePrice: decimal.NewFromFloat(h.GetCostBasis()),
			CurrentPrice:  decimal.NewFromFloat(h.GetInstitutionPrice()),
			Type:          string(sec.GetType()),
		}
		if holding.Symbol == "" {
			holding.Symbol = sec.GetSecurityId()
		}
		holdings = append(holdings, holding)
	}

	return holdings, nil
}
