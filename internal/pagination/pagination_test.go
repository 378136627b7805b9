package pagination

import "testing"

func TestPaginate(t *testing.T) {
	items := make([]int, 0, 45)
	for i := 0; i < 45; i++ {
		items = append(items, i)
	}

	p := Paginate(items, 1, 20)
	if len(p.Items) != 20 || p.Items[0] != 0 {
		t.Fatalf("first page: got %d items, first %v", len(p.Items), p.Items)
	}
	if p.HasPrev || !p.HasNext || p.Total != 45 {
		t.Fatalf("first page meta: %+v", p)
	}

	p = Paginate(items, 3, 20)
	if len(p.Items) != 5 || p.Items[0] != 40 {
		t.Fatalf("last page: got %d items", len(p.Items))
	}
	if p.HasNext || !p.HasPrev {
		t.Fatalf("last page meta: %+v", p)
	}
}

func TestPaginateDefaults(t *testing.T) {
	items := []string{"a", "b", "c"}

	p := Paginate(items, 0, 0)
	if p.Page != 1 || p.PageSize != 20 {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if len(p.Items) != 3 || p.HasNext || p.HasPrev {
		t.Fatalf("single page meta: %+v", p)
	}
}

func TestPaginateBeyondEnd(t *testing.T) {
	p := Paginate([]int{1, 2, 3}, 10, 2)
	if len(p.Items) != 0 {
		t.Fatalf("page beyond end must be empty, got %v", p.Items)
	}
	if !p.HasPrev || p.HasNext {
		t.Fatalf("meta: %+v", p)
	}
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate([]int{}, 1, 20)
	if len(p.Items) != 0 || p.Total != 0 || p.HasNext || p.HasPrev {
		t.Fatalf("empty input: %+v", p)
	}
}
