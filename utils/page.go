package utils

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// PageForm carries the paging and sorting query parameters shared by the
// list APIs. A zero limit means no paging.
type PageForm struct {
	Start int    `form:"start"`
	Limit int    `form:"limit"`
	Sort  string `form:"sort"`
	Order string `form:"order"`
	Q     string `form:"q"`
}

func NewPageForm() *PageForm {
	return &PageForm{}
}

// PageResult is one page of rows plus the total before slicing.
type PageResult struct {
	Total int           `json:"total"`
	Rows  []interface{} `json:"rows"`
}

func NewPageResult(rows []interface{}) *PageResult {
	return &PageResult{Total: len(rows), Rows: rows}
}

// Sort orders rows of map[string]interface{} by the named key. Order
// "descending" reverses, anything else sorts ascending.
func (pr *PageResult) Sort(key, order string) {
	desc := strings.EqualFold(order, "descending")
	sort.SliceStable(pr.Rows, func(i, j int) bool {
		less := compareValues(fieldOf(pr.Rows[i], key), fieldOf(pr.Rows[j], key))
		if desc {
			return !less
		}
		return less
	})
}

func fieldOf(row interface{}, key string) interface{} {
	if m, ok := row.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

func compareValues(a, b interface{}) bool {
	switch av := a.(type) {
	case int:
		if bv, ok := b.(int); ok {
			return av < bv
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

// Slice keeps the window [start, start+limit) of the rows.
func (pr *PageResult) Slice(start, limit int) {
	if start < 0 {
		start = 0
	}
	if start > len(pr.Rows) {
		start = len(pr.Rows)
	}
	end := len(pr.Rows)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	pr.Rows = pr.Rows[start:end]
}

func DateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
