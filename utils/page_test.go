package utils

import "testing"

func pageRows() []interface{} {
	return []interface{}{
		map[string]interface{}{"name": "b", "n": 2},
		map[string]interface{}{"name": "c", "n": 3},
		map[string]interface{}{"name": "a", "n": 1},
	}
}

func TestPageResultSort(t *testing.T) {
	pr := NewPageResult(pageRows())
	pr.Sort("name", "ascending")
	if fieldOf(pr.Rows[0], "name") != "a" || fieldOf(pr.Rows[2], "name") != "c" {
		t.Errorf("ascending sort %v", pr.Rows)
	}
	pr.Sort("n", "descending")
	if fieldOf(pr.Rows[0], "n") != 3 {
		t.Errorf("descending sort %v", pr.Rows)
	}
}

func TestPageResultSlice(t *testing.T) {
	pr := NewPageResult(pageRows())
	pr.Slice(1, 1)
	if pr.Total != 3 {
		t.Errorf("total %d", pr.Total)
	}
	if len(pr.Rows) != 1 {
		t.Errorf("rows %d", len(pr.Rows))
	}

	pr = NewPageResult(pageRows())
	pr.Slice(5, 10)
	if len(pr.Rows) != 0 {
		t.Errorf("out of range slice kept %d rows", len(pr.Rows))
	}
}

func TestPageFormZeroLimitIsUnlimited(t *testing.T) {
	form := NewPageForm()
	if form.Limit != 0 {
		t.Errorf("default limit %d, want 0", form.Limit)
	}
	pr := NewPageResult(pageRows())
	pr.Slice(form.Start, form.Limit)
	if len(pr.Rows) != 3 {
		t.Errorf("zero limit kept %d rows, want all 3", len(pr.Rows))
	}
}
