package stats

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"budgetbook/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Asset{}, &domain.Category{}, &domain.Receipt{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type fixture struct {
	db      *gorm.DB
	userID  uint
	assetID uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	user := domain.User{Email: "stats@test.local", Password: "x", Name: "Tester"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	asset := domain.Asset{Name: "Checking", Type: domain.AssetAccount, UserID: user.ID}
	if err := db.Create(&asset).Error; err != nil {
		t.Fatalf("seed asset: %v", err)
	}
	return &fixture{db: db, userID: user.ID, assetID: asset.ID}
}

func (f *fixture) category(t *testing.T, name string, ctype, level int, parentID *uint) uint {
	t.Helper()
	cat := domain.Category{Name: name, Type: ctype, Level: level, ParentID: parentID, UserID: f.userID}
	if err := f.db.Create(&cat).Error; err != nil {
		t.Fatalf("seed category %s: %v", name, err)
	}
	return cat.ID
}

func (f *fixture) receipt(t *testing.T, rtype int, cost int64, date time.Time, categoryID *uint) {
	t.Helper()
	r := domain.Receipt{Type: rtype, Cost: cost, Content: "seed", TransactionDate: date, UserID: f.userID, AssetID: f.assetID, CategoryID: categoryID}
	if err := f.db.Create(&r).Error; err != nil {
		t.Fatalf("seed receipt: %v", err)
	}
}

var august = time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

func TestCategoryStatsRollsUpWithoutDoubleCounting(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food", domain.CategoryExpense, 1, nil)
	dining := f.category(t, "Dining", domain.CategoryExpense, 2, &food)
	coffee := f.category(t, "Coffee", domain.CategoryExpense, 3, &dining)

	f.receipt(t, domain.ReceiptExpense, 1000, august, &food)
	f.receipt(t, domain.ReceiptExpense, 1000, august, &dining)
	f.receipt(t, domain.ReceiptExpense, 1000, august, &coffee)

	results, err := CategoryStats(f.db, f.userID, domain.CategoryExpense, 2026, 8)
	if err != nil {
		t.Fatalf("CategoryStats: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	byName := map[string]CategoryStat{}
	for _, r := range results {
		byName[r.CategoryName] = r
	}
	// Each leaf amount reaches the root exactly once
	if byName["Food"].TotalAmount != 3000 {
		t.Fatalf("Food total = %d, want 3000", byName["Food"].TotalAmount)
	}
	if byName["Dining"].TotalAmount != 2000 {
		t.Fatalf("Dining total = %d, want 2000", byName["Dining"].TotalAmount)
	}
	if byName["Coffee"].TotalAmount != 1000 {
		t.Fatalf("Coffee total = %d, want 1000", byName["Coffee"].TotalAmount)
	}
	// Shares are over the level-1 total
	if byName["Food"].Percentage != 100 {
		t.Fatalf("Food percentage = %v, want 100", byName["Food"].Percentage)
	}
	if byName["Dining"].Percentage != 66.67 {
		t.Fatalf("Dining percentage = %v, want 66.67", byName["Dining"].Percentage)
	}
	if byName["Coffee"].Percentage != 33.33 {
		t.Fatalf("Coffee percentage = %v, want 33.33", byName["Coffee"].Percentage)
	}
	// Sorted by amount descending
	if results[0].CategoryName != "Food" {
		t.Fatalf("first result = %s, want Food", results[0].CategoryName)
	}
}

func TestCategoryStatsDropsInactiveAndOtherMonths(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food", domain.CategoryExpense, 1, nil)
	f.category(t, "Transport", domain.CategoryExpense, 1, nil)
	salary := f.category(t, "Salary", domain.CategoryIncome, 1, nil)

	f.receipt(t, domain.ReceiptExpense, 5000, august, &food)
	f.receipt(t, domain.ReceiptIncome, 300000, august, &salary)
	// Previous month's spending must not leak into August
	f.receipt(t, domain.ReceiptExpense, 9000, august.AddDate(0, -1, 0), &food)

	results, err := CategoryStats(f.db, f.userID, domain.CategoryExpense, 2026, 8)
	if err != nil {
		t.Fatalf("CategoryStats: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want only Food", len(results))
	}
	if results[0].CategoryName != "Food" || results[0].TotalAmount != 5000 {
		t.Fatalf("result = %+v, want Food with 5000", results[0])
	}
}

func TestTopCategoriesRanksLevelTwo(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food", domain.CategoryExpense, 1, nil)
	dining := f.category(t, "Dining", domain.CategoryExpense, 2, &food)
	grocery := f.category(t, "Grocery", domain.CategoryExpense, 2, &food)
	coffee := f.category(t, "Coffee", domain.CategoryExpense, 3, &dining)

	f.receipt(t, domain.ReceiptExpense, 4000, august, &dining)
	f.receipt(t, domain.ReceiptExpense, 2000, august, &coffee)  // rolls into Dining
	f.receipt(t, domain.ReceiptExpense, 3000, august, &grocery)
	f.receipt(t, domain.ReceiptExpense, 1000, august, &food) // level 1, never ranked

	results, err := TopCategories(f.db, f.userID, domain.CategoryExpense, 2026, 8, 5)
	if err != nil {
		t.Fatalf("TopCategories: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].CategoryName != "Dining" || results[0].TotalAmount != 6000 {
		t.Fatalf("first = %+v, want Dining with 6000", results[0])
	}
	if results[1].CategoryName != "Grocery" || results[1].TotalAmount != 3000 {
		t.Fatalf("second = %+v, want Grocery with 3000", results[1])
	}
	// Shares are over the shown sum of 9000
	if results[0].Percentage != 66.67 || results[1].Percentage != 33.33 {
		t.Fatalf("percentages = %v / %v, want 66.67 / 33.33", results[0].Percentage, results[1].Percentage)
	}

	// A tighter limit keeps only the biggest spender
	top, err := TopCategories(f.db, f.userID, domain.CategoryExpense, 2026, 8, 1)
	if err != nil {
		t.Fatalf("TopCategories limit 1: %v", err)
	}
	if len(top) != 1 || top[0].CategoryName != "Dining" || top[0].Percentage != 100 {
		t.Fatalf("limited result = %+v, want Dining at 100%%", top)
	}
}

func TestMonthlyExcludesTransfers(t *testing.T) {
	f := newFixture(t)
	f.receipt(t, domain.ReceiptIncome, 300000, august, nil)
	f.receipt(t, domain.ReceiptExpense, 15000, august, nil)
	f.receipt(t, domain.ReceiptExpense, 5000, august, nil)
	f.receipt(t, domain.ReceiptTransfer, 99999, august, nil)

	ms, err := Monthly(f.db, f.userID, 2026, 8)
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if ms.TotalIncome != 300000 {
		t.Fatalf("income = %d, want 300000", ms.TotalIncome)
	}
	if ms.TotalExpenditure != 20000 {
		t.Fatalf("expenditure = %d, want 20000", ms.TotalExpenditure)
	}
	if ms.Balance != 280000 {
		t.Fatalf("balance = %d, want 280000", ms.Balance)
	}
	if ms.TransactionCount != 3 {
		t.Fatalf("count = %d, want 3 (transfer excluded)", ms.TransactionCount)
	}
}

func TestRecentMonthlySkipsEmptyMonthsNewestFirst(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 15, 12, 0, 0, 0, time.UTC)
	twoBack := thisMonth.AddDate(0, -2, 0)

	f.receipt(t, domain.ReceiptExpense, 1000, thisMonth, nil)
	f.receipt(t, domain.ReceiptIncome, 8000, twoBack, nil)

	results, err := RecentMonthly(f.db, f.userID, 6)
	if err != nil {
		t.Fatalf("RecentMonthly: %v", err)
	}
	// The quiet month in between is omitted
	if len(results) != 2 {
		t.Fatalf("got %d months, want 2", len(results))
	}
	if results[0].Year != thisMonth.Year() || results[0].Month != int(thisMonth.Month()) {
		t.Fatalf("first month = %d-%d, want %d-%d", results[0].Year, results[0].Month, thisMonth.Year(), thisMonth.Month())
	}
	if results[1].TotalIncome != 8000 {
		t.Fatalf("older month income = %d, want 8000", results[1].TotalIncome)
	}
}

func TestCategoryTrendSumsSubtree(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food", domain.CategoryExpense, 1, nil)
	dining := f.category(t, "Dining", domain.CategoryExpense, 2, &food)
	coffee := f.category(t, "Coffee", domain.CategoryExpense, 3, &dining)
	transport := f.category(t, "Transport", domain.CategoryExpense, 1, nil)

	now := time.Now().UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 15, 12, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	f.receipt(t, domain.ReceiptExpense, 1000, thisMonth, &food)
	f.receipt(t, domain.ReceiptExpense, 2000, thisMonth, &coffee)
	f.receipt(t, domain.ReceiptExpense, 4000, lastMonth, &dining)
	f.receipt(t, domain.ReceiptExpense, 7777, thisMonth, &transport) // outside the subtree

	results, err := CategoryTrend(f.db, f.userID, food, domain.CategoryExpense, 6)
	if err != nil {
		t.Fatalf("CategoryTrend: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d months, want 2", len(results))
	}
	if results[0].TotalAmount != 3000 {
		t.Fatalf("current month = %d, want 3000", results[0].TotalAmount)
	}
	if results[1].TotalAmount != 4000 {
		t.Fatalf("previous month = %d, want 4000", results[1].TotalAmount)
	}
}
