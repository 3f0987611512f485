package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/internal/taxonomy"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		t.Fatalf("parse config error: %v", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("pool error: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	if _, err := pool.Exec(ctx, "TRUNCATE users CASCADE"); err != nil {
		t.Fatalf("truncate error: %v", err)
	}
	return pool
}

func seedUserWithAccounts(t *testing.T, pool *pgxpool.Pool, uid string, accounts ...*models.Account) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	user := &models.User{
		UID:       uid,
		Email:     uid + "@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	seed := make([]models.Account, 0, len(accounts))
	for _, a := range accounts {
		seed = append(seed, *a)
	}
	if err := NewUserStore(pool).CreateWithAccounts(ctx, user, seed); err != nil {
		t.Fatalf("seed user error: %v", err)
	}
}

func newAccount(uid, name string) *models.Account {
	now := time.Now()
	return &models.Account{
		ID:        uuid.NewString(),
		UserID:    uid,
		Name:      name,
		Type:      models.AccountChecking,
		Balance:   decimal.Zero,
		Currency:  "USD",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newLedgerEntry(uid, accountID string, amount int64, typ models.TransactionType, category taxonomy.Category, date time.Time) *models.Transaction {
	now := time.Now()
	return &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      uid,
		AccountID:   accountID,
		Amount:      decimal.NewFromInt(amount),
		Type:        typ,
		Category:    category,
		Description: string(category),
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func accountBalance(t *testing.T, pool *pgxpool.Pool, id string) decimal.Decimal {
	t.Helper()
	var balance decimal.Decimal
	err := pool.QueryRow(context.Background(),
		"SELECT balance FROM accounts WHERE id = $1", id).Scan(&balance)
	if err != nil {
		t.Fatalf("balance query error: %v", err)
	}
	return balance
}

func TestLedgerBalanceConsistencyWithDatabase(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	uid := "ledger-user"
	a := newAccount(uid, "Checking")
	b := newAccount(uid, "Savings")
	seedUserWithAccounts(t, pool, uid, a, b)

	ledger := NewLedgerStore(pool)
	date := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	income := newLedgerEntry(uid, a.ID, 150, models.TransactionIncome, taxonomy.Salary, date)
	if err := ledger.Create(ctx, income); err != nil {
		t.Fatalf("create income error: %v", err)
	}
	expense := newLedgerEntry(uid, a.ID, 20, models.TransactionExpense, taxonomy.Groceries, date)
	if err := ledger.Create(ctx, expense); err != nil {
		t.Fatalf("create expense error: %v", err)
	}
	deposit := newLedgerEntry(uid, b.ID, 20, models.TransactionIncome, taxonomy.OtherIncome, date)
	if err := ledger.Create(ctx, deposit); err != nil {
		t.Fatalf("create deposit error: %v", err)
	}

	if got := accountBalance(t, pool, a.ID); !got.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("account a balance = %s, want 130", got)
	}
	if got := accountBalance(t, pool, b.ID); !got.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("account b balance = %s, want 20", got)
	}

	// Moving the expense to the other account reverses it on a and applies
	// it on b in one atomic step.
	if _, err := ledger.Update(ctx, uid, expense.ID, dto.TransactionPatch{AccountID: &b.ID}); err != nil {
		t.Fatalf("move expense error: %v", err)
	}
	if got := accountBalance(t, pool, a.ID); !got.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("account a balance after move = %s, want 150", got)
	}
	if got := accountBalance(t, pool, b.ID); !got.Equal(decimal.Zero) {
		t.Fatalf("account b balance after move = %s, want 0", got)
	}

	// Changing amount and type together recomputes the delta from scratch.
	newAmount := decimal.NewFromInt(50)
	newType := models.TransactionIncome
	if _, err := ledger.Update(ctx, uid, expense.ID, dto.TransactionPatch{Amount: &newAmount, Type: &newType}); err != nil {
		t.Fatalf("reclassify error: %v", err)
	}
	if got := accountBalance(t, pool, b.ID); !got.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("account b balance after reclassify = %s, want 70", got)
	}

	// Deleting reverses the stored effect.
	if err := ledger.Delete(ctx, uid, income.ID); err != nil {
		t.Fatalf("delete income error: %v", err)
	}
	if got := accountBalance(t, pool, a.ID); !got.Equal(decimal.Zero) {
		t.Fatalf("account a balance after delete = %s, want 0", got)
	}

	// Ownership is enforced inside the same transaction as the balance
	// write: a foreign uid sees not-found and no balances move.
	if err := ledger.Delete(ctx, "someone-else", expense.ID); err == nil {
		t.Fatal("expected not-found deleting another user's transaction")
	}
	if got := accountBalance(t, pool, b.ID); !got.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("account b balance after foreign delete = %s, want 70", got)
	}
}

func TestLedgerUpdateRollsBackOnBadTargetAccount(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	uid := "mover"
	mine := newAccount(uid, "Checking")
	seedUserWithAccounts(t, pool, uid, mine)

	other := "bystander"
	theirs := newAccount(other, "Checking")
	seedUserWithAccounts(t, pool, other, theirs)

	ledger := NewLedgerStore(pool)
	date := time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC)

	expense := newLedgerEntry(uid, mine.ID, 30, models.TransactionExpense, taxonomy.Groceries, date)
	if err := ledger.Create(ctx, expense); err != nil {
		t.Fatalf("create error: %v", err)
	}
	before, err := ledger.GetByID(ctx, uid, expense.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}

	// The reversal lands on the source account before the new delta is
	// applied; a failing target must roll the reversal back too.
	targets := map[string]string{
		"unowned account":     theirs.ID,
		"nonexistent account": uuid.NewString(),
	}
	for name, target := range targets {
		t.Run(name, func(t *testing.T) {
			_, err := ledger.Update(ctx, uid, expense.ID, dto.TransactionPatch{AccountID: &target})
			var notFound *errs.NotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("expected not-found, got %v", err)
			}
			if got := accountBalance(t, pool, mine.ID); !got.Equal(decimal.NewFromInt(-30)) {
				t.Fatalf("source balance = %s, want -30", got)
			}
			after, err := ledger.GetByID(ctx, uid, expense.ID)
			if err != nil {
				t.Fatalf("get error: %v", err)
			}
			if after.AccountID != before.AccountID || !after.Amount.Equal(before.Amount) ||
				after.Type != before.Type || !after.UpdatedAt.Equal(before.UpdatedAt) {
				t.Fatalf("row changed on failed move: %+v vs %+v", after, before)
			}
		})
	}
	if got := accountBalance(t, pool, theirs.ID); !got.IsZero() {
		t.Fatalf("target balance = %s, want 0", got)
	}
}

func TestLedgerListPaginationWithDatabase(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	uid := "pager"
	a := newAccount(uid, "Checking")
	seedUserWithAccounts(t, pool, uid, a)

	ledger := NewLedgerStore(pool)
	date := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	// Five entries with the same amount so ordering falls through to the
	// id tie-break.
	for i := 0; i < 5; i++ {
		e := newLedgerEntry(uid, a.ID, 10, models.TransactionExpense, taxonomy.Entertainment, date)
		if err := ledger.Create(ctx, e); err != nil {
			t.Fatalf("create error: %v", err)
		}
	}

	q := dto.TransactionQuery{SortKey: "amount", Page: 1, Limit: 2}
	first, total, err := ledger.List(ctx, uid, q)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
	if len(first) != 2 {
		t.Fatalf("page size = %d, want 2", len(first))
	}

	again, _, err := ledger.List(ctx, uid, q)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	for i := range first {
		if first[i].ID != again[i].ID {
			t.Fatalf("page not deterministic at index %d: %s vs %s", i, first[i].ID, again[i].ID)
		}
	}

	q.Page = 2
	second, _, err := ledger.List(ctx, uid, q)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("second page size = %d, want 2", len(second))
	}
	if second[0].ID == first[0].ID || second[0].ID == first[1].ID {
		t.Fatal("pages overlap")
	}

	sums, err := ledger.WindowSums(ctx, uid, date.AddDate(0, 0, -1), date.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("window sums error: %v", err)
	}
	if !sums.Expenses.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expenses = %s, want 50", sums.Expenses)
	}
	if sums.Count != 5 {
		t.Fatalf("count = %d, want 5", sums.Count)
	}
}
