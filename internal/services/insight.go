package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finflowhq/finflow-backend/internal/cache"
	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/pkg/logger"
)

const (
	insightRetention   = 7 * 24 * time.Hour
	insightListLimit   = 20
	snapshotCategories = 8
	snapshotRecent     = 10

	defaultConfidence     = 0.7
	genericConfidence     = 0.8
	unavailableConfidence = 0.5
)

type textGenerator interface {
	GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error)
}

type insightStore interface {
	ListRecent(ctx context.Context, uid string, limit int) ([]models.Insight, error)
	ReplaceOlderThan(ctx context.Context, uid string, cutoff time.Time, fresh []models.Insight) error
}

// snapshotLedger supplies the figures rendered into the generation prompt.
type snapshotLedger interface {
	HasAny(ctx context.Context, uid string) (bool, error)
	WindowSums(ctx context.Context, uid string, from, to time.Time) (dto.WindowSums, error)
	CategoryTotals(ctx context.Context, uid string, from, to time.Time) ([]dto.CategoryTotal, error)
	Recent(ctx context.Context, uid string, limit int) ([]models.Transaction, error)
}

type insightService struct {
	generator textGenerator
	store     insightStore
	ledger    snapshotLedger
	accounts  statsAccounts
	cache     userCache
	clockNow  func() time.Time
}

func NewInsightService(generator textGenerator, store insightStore, ledger snapshotLedger, accounts statsAccounts, cache userCache) *insightService {
	return &insightService{
		generator: generator,
		store:     store,
		ledger:    ledger,
		accounts:  accounts,
		cache:     cache,
		clockNow:  time.Now,
	}
}

// List serves stored insights, generating a fresh set when none exist.
// Results are cached per user.
func (s *insightService) List(ctx context.Context, uid string) ([]models.Insight, error) {
	if cached, ok := s.cache.Get(cache.KindInsights, uid); ok {
		if insights, ok := cached.([]models.Insight); ok {
			return insights, nil
		}
	}

	insights, err := s.store.ListRecent(ctx, uid, insightListLimit)
	if err != nil {
		return nil, err
	}
	if len(insights) == 0 {
		insights = s.Generate(ctx, uid)
	}

	s.cache.Set(cache.KindInsights, uid, insights)
	return insights, nil
}

// Generate always produces insights. A failure anywhere inside the flow,
// from an unreachable model to garbage output to a store error, degrades to
// a populated fallback set rather than surfacing an error.
func (s *insightService) Generate(ctx context.Context, uid string) []models.Insight {
	log := logger.FromContext(ctx)
	now := s.clockNow()

	hasAny, err := s.ledger.HasAny(ctx, uid)
	if err != nil {
		log.Error("insight snapshot probe failed", "error", err)
		return s.persist(ctx, uid, s.unavailableInsights(uid, now))
	}
	if !hasAny {
		return s.persist(ctx, uid, s.welcomeInsights(uid, now))
	}

	snapshot, err := s.buildSnapshot(ctx, uid, now)
	if err != nil {
		log.Error("insight snapshot failed", "error", err)
		return s.persist(ctx, uid, s.unavailableInsights(uid, now))
	}

	resp, err := s.generator.GenerateContent(ctx, dto.VertexGenerateRequest{
		System:      insightSystemPrompt,
		UserMessage: renderSnapshot(snapshot),
	})
	if err != nil {
		log.Warn("insight generation unavailable", "error", err)
		return s.persist(ctx, uid, s.unavailableInsights(uid, now))
	}

	insights := s.parseInsights(uid, resp.Text, now)
	if len(insights) == 0 {
		log.Warn("insight response unparseable, using generic set")
		insights = s.genericInsights(uid, now)
	}
	return s.persist(ctx, uid, insights)
}

// persist prunes expired insights and stores the fresh batch. A storage
// failure is logged and the fresh batch returned anyway.
func (s *insightService) persist(ctx context.Context, uid string, insights []models.Insight) []models.Insight {
	cutoff := s.clockNow().Add(-insightRetention)
	if err := s.store.ReplaceOlderThan(ctx, uid, cutoff, insights); err != nil {
		logger.FromContext(ctx).Error("insight persist failed", "error", err)
	}
	s.cache.Set(cache.KindInsights, uid, insights)
	return insights
}

func (s *insightService) buildSnapshot(ctx context.Context, uid string, now time.Time) (dto.FinancialSnapshot, error) {
	balance, err := s.accounts.TotalActiveBalance(ctx, uid)
	if err != nil {
		return dto.FinancialSnapshot{}, err
	}
	sums, err := s.ledger.WindowSums(ctx, uid, now.AddDate(0, 0, -30), now)
	if err != nil {
		return dto.FinancialSnapshot{}, err
	}
	totals, err := s.ledger.CategoryTotals(ctx, uid, now.AddDate(0, 0, -30), now)
	if err != nil {
		return dto.FinancialSnapshot{}, err
	}
	recent, err := s.ledger.Recent(ctx, uid, snapshotRecent)
	if err != nil {
		return dto.FinancialSnapshot{}, err
	}

	snapshot := dto.FinancialSnapshot{
		TotalBalance:    balance,
		MonthlyIncome:   sums.Income,
		MonthlyExpenses: sums.Expenses,
	}
	for i, t := range totals {
		if i == snapshotCategories {
			break
		}
		snapshot.TopCategories = append(snapshot.TopCategories, dto.SnapshotCategory{
			Label:  t.Category.Label(),
			Amount: t.Total,
		})
	}
	for _, t := range recent {
		snapshot.Recent = append(snapshot.Recent, dto.SnapshotTransaction{
			Date:        t.Date.Format(dateLayout),
			Description: t.Description,
			Label:       t.Category.Label(),
			Amount:      t.Amount,
			Type:        string(t.Type),
		})
	}
	return snapshot, nil
}

const insightSystemPrompt = `You are a personal finance analyst. Given a user's financial snapshot, respond with a JSON array of 3 to 5 insight objects and nothing else. Each object has the fields "title" (short string), "content" (2-3 sentences of specific, actionable advice grounded in the numbers), "type" (one of "spending_pattern", "budget_recommendation", "investment_advice", "saving_opportunity", "risk_assessment", "market_analysis"), and "confidence" (number between 0 and 1).`

func renderSnapshot(s dto.FinancialSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total balance: %s\n", s.TotalBalance.StringFixed(2))
	fmt.Fprintf(&b, "Income last 30 days: %s\n", s.MonthlyIncome.StringFixed(2))
	fmt.Fprintf(&b, "Expenses last 30 days: %s\n", s.MonthlyExpenses.StringFixed(2))
	if len(s.TopCategories) > 0 {
		b.WriteString("Top spending categories:\n")
		for _, c := range s.TopCategories {
			fmt.Fprintf(&b, "- %s: %s\n", c.Label, c.Amount.StringFixed(2))
		}
	}
	if len(s.Recent) > 0 {
		b.WriteString("Recent transactions:\n")
		for _, t := range s.Recent {
			fmt.Fprintf(&b, "- %s %s %s (%s, %s)\n", t.Date, t.Description, t.Amount.StringFixed(2), t.Label, t.Type)
		}
	}
	return b.String()
}

// parseInsights extracts the first JSON array from the model's text and
// coerces each element. Models wrap arrays in prose or markdown fences more
// often than not; everything outside the array is ignored.
func (s *insightService) parseInsights(uid, text string, now time.Time) []models.Insight {
	raw := extractJSONArray(text)
	if raw == "" {
		return nil
	}

	var generated []dto.GeneratedInsight
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		return nil
	}

	var insights []models.Insight
	for _, g := range generated {
		title := strings.TrimSpace(g.Title)
		if title == "" {
			title = "Financial insight"
		}
		content := strings.TrimSpace(g.Content)
		if content == "" {
			content = "Review your recent activity for details."
		}

		typ := models.InsightType(g.Type)
		if !models.ValidInsightType(typ) {
			typ = models.InsightSpendingPattern
		}

		confidence := defaultConfidence
		if g.Confidence != nil {
			confidence = *g.Confidence
		}
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}

		insights = append(insights, models.Insight{
			ID:         uuid.NewString(),
			UserID:     uid,
			Title:      title,
			Content:    content,
			Type:       typ,
			Confidence: confidence,
			IsRelevant: true,
			CreatedAt:  now,
		})
	}
	return insights
}

// extractJSONArray returns the first bracket-balanced array in text, or ""
// when none closes. Brackets inside JSON strings are skipped.
func extractJSONArray(text string) string {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func (s *insightService) welcomeInsights(uid string, now time.Time) []models.Insight {
	return []models.Insight{
		{
			ID:         uuid.NewString(),
			UserID:     uid,
			Title:      "Start tracking your spending",
			Content:    "Record your first transactions to unlock personalized insights. Once your ledger has some history, analysis of your spending patterns, budgets, and saving opportunities appears here.",
			Type:       models.InsightSpendingPattern,
			Confidence: 1,
			IsRelevant: true,
			CreatedAt:  now,
		},
	}
}

// genericInsights is the fixed fallback for a response with no usable JSON
// array.
func (s *insightService) genericInsights(uid string, now time.Time) []models.Insight {
	return []models.Insight{
		{
			ID:         uuid.NewString(),
			UserID:     uid,
			Title:      "Keep an eye on your spending",
			Content:    "Detailed analysis was not available for this refresh. Reviewing your largest expense categories and keeping monthly spending below income are reliable starting points.",
			Type:       models.InsightSpendingPattern,
			Confidence: genericConfidence,
			IsRelevant: true,
			CreatedAt:  now,
		},
	}
}

func (s *insightService) unavailableInsights(uid string, now time.Time) []models.Insight {
	return []models.Insight{
		{
			ID:         uuid.NewString(),
			UserID:     uid,
			Title:      "Insights temporarily unavailable",
			Content:    "Personalized analysis could not be generated right now. Your financial data is safe; fresh insights will appear on the next refresh.",
			Type:       models.InsightSpendingPattern,
			Confidence: unavailableConfidence,
			IsRelevant: true,
			CreatedAt:  now,
		},
	}
}
