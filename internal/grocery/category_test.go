package grocery

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input string
		want  Category
	}{
		{"Lácteos", Lacteos},
		{"lácteos", Lacteos},
		{" Frutas y Verduras ", FrutasYVerduras},
		{"Higiene Personal", HigienePersonal},
		{"Otros", Otros},
		{"Ferretería", Otros},
		{"", Otros},
	}
	for _, tt := range tests {
		if got := ParseCategory(tt.input); got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategoriesOrder(t *testing.T) {
	if len(Categories) != 11 {
		t.Fatalf("len(Categories) = %d, want 11", len(Categories))
	}
	if Categories[0] != Lacteos {
		t.Errorf("first = %q, want %q", Categories[0], Lacteos)
	}
	if Categories[len(Categories)-1] != Otros {
		t.Errorf("last = %q, want %q", Categories[len(Categories)-1], Otros)
	}
}
