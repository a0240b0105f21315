package menu

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"restoran-pos/internal/database"
	"restoran-pos/internal/models"
	"restoran-pos/internal/normalize"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportRow is one spreadsheet line: category, name, price, station, description.
type ImportRow struct {
	Line        int
	Category    string
	Name        string
	Price       int64
	Station     string
	Description string
}

type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// ParsePrice reads "12.50", "12,50", "12" or "1.250,00" into cents.
func ParsePrice(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "$€£₺ ")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, fmt.Errorf("price is empty")
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("price %q has more than two decimals", raw)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 {
		return 0, fmt.Errorf("price %q is not a number", raw)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("price %q is not a number", raw)
	}
	return w*100 + f, nil
}

func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := normalize.Fold(row[0])
	if strings.HasPrefix(first, "categ") || strings.HasPrefix(first, "kategori") {
		return true
	}
	if len(row) >= 3 && strings.TrimSpace(row[2]) != "" {
		_, err := ParsePrice(row[2])
		return err != nil
	}
	return false
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// ParseSheet reads the first sheet of an xlsx file. Bad lines are reported, not fatal.
func ParseSheet(r io.Reader) ([]ImportRow, *ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: no sheets", ErrInvalidSheet)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet is empty", ErrInvalidSheet)
	}

	res := &ImportResult{Errors: []string{}}
	start := 0
	if isHeaderRow(rows[0]) {
		start = 1
	}

	out := make([]ImportRow, 0, len(rows))
	for i := start; i < len(rows); i++ {
		row := rows[i]
		line := i + 1
		category, name := cell(row, 0), cell(row, 1)
		if category == "" && name == "" {
			continue
		}
		if category == "" || name == "" {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: category and name are required", line))
			continue
		}
		price, err := ParsePrice(cell(row, 2))
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		out = append(out, ImportRow{
			Line:        line,
			Category:    category,
			Name:        name,
			Price:       price,
			Station:     strings.ToLower(cell(row, 3)),
			Description: cell(row, 4),
		})
	}
	return out, res, nil
}

// Import upserts rows by folded category and item name in one transaction.
func Import(db *gorm.DB, merchantID uint, rows []ImportRow, res *ImportResult) (*ImportResult, error) {
	if res == nil {
		res = &ImportResult{Errors: []string{}}
	}

	err := database.WithTx(db, func(tx *gorm.DB) error {
		var cats []models.MenuCategory
		if err := tx.Where("merchant_id = ?", merchantID).Find(&cats).Error; err != nil {
			return err
		}
		catByName := make(map[string]*models.MenuCategory, len(cats))
		nextSort := 0
		for i := range cats {
			catByName[normalize.Fold(cats[i].Name)] = &cats[i]
			if cats[i].SortOrder >= nextSort {
				nextSort = cats[i].SortOrder + 1
			}
		}

		var items []models.MenuItem
		if err := tx.Where("merchant_id = ?", merchantID).Find(&items).Error; err != nil {
			return err
		}
		itemByKey := make(map[string]*models.MenuItem, len(items))
		for i := range items {
			itemByKey[fmt.Sprintf("%d|%s", items[i].CategoryID, normalize.Fold(items[i].Name))] = &items[i]
		}

		for _, row := range rows {
			cat, ok := catByName[normalize.Fold(row.Category)]
			if !ok {
				cat = &models.MenuCategory{MerchantID: merchantID, Name: row.Category, SortOrder: nextSort}
				if err := tx.Create(cat).Error; err != nil {
					return err
				}
				nextSort++
				catByName[normalize.Fold(row.Category)] = cat
			}

			key := fmt.Sprintf("%d|%s", cat.ID, normalize.Fold(row.Name))
			if existing, ok := itemByKey[key]; ok {
				if existing.Price == row.Price && existing.Station == row.Station &&
					(row.Description == "" || existing.Description == row.Description) {
					res.Skipped++
					continue
				}
				updates := map[string]interface{}{"price": row.Price, "station": row.Station}
				if row.Description != "" {
					updates["description"] = row.Description
				}
				if err := tx.Model(existing).Updates(updates).Error; err != nil {
					return err
				}
				res.Updated++
				continue
			}

			item := &models.MenuItem{
				MerchantID:  merchantID,
				CategoryID:  cat.ID,
				Name:        row.Name,
				Description: row.Description,
				Price:       row.Price,
				Station:     row.Station,
				Available:   true,
				SortOrder:   row.Line,
			}
			if err := tx.Create(item).Error; err != nil {
				return err
			}
			itemByKey[key] = item
			res.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Created+res.Updated > 0 {
		Invalidate(db.Statement.Context, merchantID)
	}
	return res, nil
}
