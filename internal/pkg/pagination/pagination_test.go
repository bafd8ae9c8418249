package pagination

import "testing"

func TestGetMeta(t *testing.T) {
	meta := GetMeta(&Params{Page: 2, Limit: 20}, 45)

	if meta.TotalPages != 3 {
		t.Errorf("total_pages = %d, want 3", meta.TotalPages)
	}
	if !meta.HasNext || !meta.HasPrev {
		t.Errorf("page 2 of 3 should have both neighbours: %+v", meta)
	}

	meta = GetMeta(&Params{Page: 1, Limit: 20}, 20)
	if meta.TotalPages != 1 || meta.HasNext || meta.HasPrev {
		t.Errorf("single page meta wrong: %+v", meta)
	}

	meta = GetMeta(&Params{Page: 1, Limit: 20}, 0)
	if meta.TotalPages != 0 || meta.HasNext {
		t.Errorf("empty set meta wrong: %+v", meta)
	}
}
