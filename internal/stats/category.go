package stats

import (
	"math" // Percentage rounding
	"sort" // Sorting aggregation results
	"time" // Trend window arithmetic

	"budgetbook/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// CategoryStat is one category's aggregated activity for a period, with
// amounts rolled up from descendants to ancestors.
type CategoryStat struct {
	CategoryID       uint    `json:"categoryId"`       // Category primary key
	CategoryName     string  `json:"categoryName"`     // Category name
	CategoryLevel    int     `json:"categoryLevel"`    // Tree depth, 1-3
	ParentID         *uint   `json:"parentId"`         // Parent category, nil for roots
	TotalAmount      int64   `json:"totalAmount"`      // Own plus descendant amounts
	TransactionCount int64   `json:"transactionCount"` // Own plus descendant receipt counts
	Percentage       float64 `json:"percentage"`       // Share of the period total, 2 decimals
}

// MonthTotal is one month of a single category subtree's activity.
type MonthTotal struct {
	Year        int   `json:"year"`        // Calendar year
	Month       int   `json:"month"`       // Calendar month, 1-12
	TotalAmount int64 `json:"totalAmount"` // Subtree sum for the month
}

type directSum struct {
	TotalAmount      int64
	TransactionCount int64
}

// directSums groups the period's receipts of one type by category id.
// Untagged receipts (nil category) are left out.
func directSums(db *gorm.DB, userID uint, rtype, year, month int) (map[uint]directSum, error) {
	start, end := monthRange(year, month)
	var rows []struct {
		CategoryID       *uint
		TotalAmount      int64
		TransactionCount int64
	}
	err := db.Model(&domain.Receipt{}).
		Select("category_id, COALESCE(SUM(cost), 0) AS total_amount, COUNT(id) AS transaction_count").
		Where("user_id = ? AND type = ? AND category_id IS NOT NULL AND transaction_date >= ? AND transaction_date < ?",
			userID, rtype, start, end).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[uint]directSum, len(rows))
	for _, r := range rows {
		if r.CategoryID != nil {
			sums[*r.CategoryID] = directSum{TotalAmount: r.TotalAmount, TransactionCount: r.TransactionCount}
		}
	}
	return sums, nil
}

// CategoryStats aggregates one month of receipts per category for an owner
// and type, rolling amounts up the tree. Each child's own-plus-accumulated
// total is added into its direct parent exactly once (level 3 into level 2,
// then level 2 into level 1), so a leaf amount reaches the root without being
// double counted. Categories with zero accumulated activity are dropped;
// percentages are shares of the level-1 total; results sort by amount
// descending.
func CategoryStats(db *gorm.DB, userID uint, rtype, year, month int) ([]CategoryStat, error) {
	var cats []domain.Category
	if err := db.Where("user_id = ? AND type = ?", userID, rtype).
		Order("level asc, id asc").Find(&cats).Error; err != nil {
		return nil, err
	}
	sums, err := directSums(db, userID, rtype, year, month)
	if err != nil {
		return nil, err
	}

	// Seed each category with its own direct activity
	byID := make(map[uint]*CategoryStat, len(cats))
	for _, cat := range cats {
		s := sums[cat.ID]
		byID[cat.ID] = &CategoryStat{
			CategoryID:       cat.ID,
			CategoryName:     cat.Name,
			CategoryLevel:    cat.Level,
			ParentID:         cat.ParentID,
			TotalAmount:      s.TotalAmount,
			TransactionCount: s.TransactionCount,
		}
	}

	// Roll up bottom-up: level 3 into level 2, then level 2 into level 1
	for level := domain.MaxCategoryLevel; level >= 2; level-- {
		for _, cat := range cats {
			if cat.Level != level || cat.ParentID == nil {
				continue
			}
			child := byID[cat.ID]
			if parent, ok := byID[*cat.ParentID]; ok {
				parent.TotalAmount += child.TotalAmount
				parent.TransactionCount += child.TransactionCount
			}
		}
	}

	// Keep only categories with activity, directly or via descendants
	results := make([]CategoryStat, 0, len(cats))
	for _, cat := range cats {
		if entry := byID[cat.ID]; entry.TotalAmount > 0 {
			results = append(results, *entry)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalAmount > results[j].TotalAmount
	})

	// Percentage base is the level-1 total; every receipt is counted there
	// exactly once, so shares cannot exceed 100
	var total int64
	for _, r := range results {
		if r.CategoryLevel == 1 {
			total += r.TotalAmount
		}
	}
	applyPercentages(results, total)
	return results, nil
}

// TopCategories ranks level-2 categories (own activity plus their direct
// level-3 children) for one month and returns the first limit entries.
// Percentages are shares of the shown top-N sum, not of all spending.
func TopCategories(db *gorm.DB, userID uint, rtype, year, month, limit int) ([]CategoryStat, error) {
	var cats []domain.Category
	if err := db.Where("user_id = ? AND type = ?", userID, rtype).
		Order("level asc, id asc").Find(&cats).Error; err != nil {
		return nil, err
	}
	sums, err := directSums(db, userID, rtype, year, month)
	if err != nil {
		return nil, err
	}

	// Direct level-3 children per parent
	children := make(map[uint][]uint)
	for _, cat := range cats {
		if cat.ParentID != nil {
			children[*cat.ParentID] = append(children[*cat.ParentID], cat.ID)
		}
	}

	results := make([]CategoryStat, 0)
	for _, cat := range cats {
		if cat.Level != 2 {
			continue
		}
		s := sums[cat.ID]
		entry := CategoryStat{
			CategoryID:       cat.ID,
			CategoryName:     cat.Name,
			CategoryLevel:    cat.Level,
			ParentID:         cat.ParentID,
			TotalAmount:      s.TotalAmount,
			TransactionCount: s.TransactionCount,
		}
		for _, childID := range children[cat.ID] {
			cs := sums[childID]
			entry.TotalAmount += cs.TotalAmount
			entry.TransactionCount += cs.TransactionCount
		}
		if entry.TotalAmount > 0 {
			results = append(results, entry)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalAmount > results[j].TotalAmount
	})
	if len(results) > limit {
		results = results[:limit]
	}

	var total int64
	for _, r := range results {
		total += r.TotalAmount
	}
	applyPercentages(results, total)
	return results, nil
}

// CategoryTrend sums one category's full subtree per month over the trailing
// window, newest first. Months without activity are omitted.
func CategoryTrend(db *gorm.DB, userID, categoryID uint, rtype, months int) ([]MonthTotal, error) {
	var cats []domain.Category
	if err := db.Where("user_id = ?", userID).Find(&cats).Error; err != nil {
		return nil, err
	}

	// Collect the subtree ids over an in-memory adjacency list; depth is
	// bounded at three levels so a simple stack walk is plenty
	children := make(map[uint][]uint, len(cats))
	for _, cat := range cats {
		if cat.ParentID != nil {
			children[*cat.ParentID] = append(children[*cat.ParentID], cat.ID)
		}
	}
	ids := []uint{categoryID}
	for stack := []uint{categoryID}; len(stack) > 0; {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, childID := range children[id] {
			ids = append(ids, childID)
			stack = append(stack, childID)
		}
	}

	now := time.Now().UTC()
	out := make([]MonthTotal, 0, months)
	for i := 0; i < months; i++ {
		t := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		start, end := monthRange(t.Year(), int(t.Month()))
		var row struct {
			TotalAmount      int64
			TransactionCount int64
		}
		err := db.Model(&domain.Receipt{}).
			Select("COALESCE(SUM(cost), 0) AS total_amount, COUNT(id) AS transaction_count").
			Where("user_id = ? AND type = ? AND category_id IN ? AND transaction_date >= ? AND transaction_date < ?",
				userID, rtype, ids, start, end).
			Scan(&row).Error
		if err != nil {
			return nil, err
		}
		if row.TransactionCount > 0 {
			out = append(out, MonthTotal{Year: t.Year(), Month: int(t.Month()), TotalAmount: row.TotalAmount})
		}
	}
	return out, nil
}

// applyPercentages fills each entry's share of total, rounded to 2 decimals.
// A zero total leaves every percentage at zero.
func applyPercentages(results []CategoryStat, total int64) {
	if total <= 0 {
		return
	}
	for i := range results {
		results[i].Percentage = math.Round(float64(results[i].TotalAmount)/float64(total)*10000) / 100
	}
}
