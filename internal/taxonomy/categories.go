package taxonomy

import (
	"strings"
)

// Category is the closed transaction category enumeration. Income and
// expense categories are disjoint; validation at the service boundary
// rejects any value outside the set for the declared transaction type.
type Category string

const (
	// Expense categories.
	FoodDining     Category = "food_dining"
	Groceries      Category = "groceries"
	Transportation Category = "transportation"
	Housing        Category = "housing"
	BillsUtilities Category = "bills_utilities"
	Entertainment  Category = "entertainment"
	Shopping       Category = "shopping"
	Healthcare     Category = "healthcare"
	Education      Category = "education"
	Travel         Category = "travel"
	PersonalCare   Category = "personal_care"
	Insurance      Category = "insurance"
	DebtPayments   Category = "debt_payments"
	GiftsDonations Category = "gifts_donations"
	OtherExpense   Category = "other_expense"

	// Income categories.
	Salary            Category = "salary"
	Freelance         Category = "freelance"
	Business          Category = "business"
	InvestmentReturns Category = "investment_returns"
	OtherIncome       Category = "other_income"
)

// ExpenseCategories lists the categories valid for expense transactions.
var ExpenseCategories = []Category{
	FoodDining, Groceries, Transportation, Housing, BillsUtilities,
	Entertainment, Shopping, Healthcare, Education, Travel,
	PersonalCare, Insurance, DebtPayments, GiftsDonations, OtherExpense,
}

// IncomeCategories lists the categories valid for income transactions.
var IncomeCategories = []Category{
	Salary, Freelance, Business, InvestmentReturns, OtherIncome,
}

var (
	expenseSet = toSet(ExpenseCategories)
	incomeSet  = toSet(IncomeCategories)
)

func toSet(cats []Category) map[Category]struct{} {
	set := make(map[Category]struct{}, len(cats))
	for _, c := range cats {
		set[c] = struct{}{}
	}
	return set
}

// IsExpense reports whether c belongs to the expense category set.
func IsExpense(c Category) bool {
	_, ok := expenseSet[c]
	return ok
}

// IsIncome reports whether c belongs to the income category set.
func IsIncome(c Category) bool {
	_, ok := incomeSet[c]
	return ok
}

// Known reports whether c belongs to either category set.
func Known(c Category) bool {
	return IsExpense(c) || IsIncome(c)
}

// Label renders the category for human-readable output: underscores become
// spaces ("food_dining" becomes "food dining").
func (c Category) Label() string {
	return strings.ReplaceAll(string(c), "_", " ")
}
