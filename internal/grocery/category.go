package grocery

import "strings"

// Category is one of the fixed shopping categories. The value is the display
// label stored in items_mercado.category.
type Category string

const (
	Lacteos         Category = "Lácteos"
	Proteinas       Category = "Proteínas"
	Huevos          Category = "Huevos"
	FrutasYVerduras Category = "Frutas y Verduras"
	Panaderia       Category = "Panadería"
	Despensa        Category = "Despensa"
	Bebidas         Category = "Bebidas"
	HigienePersonal Category = "Higiene Personal"
	Limpieza        Category = "Limpieza"
	Snacks          Category = "Snacks"
	Otros           Category = "Otros"
)

// Categories lists every category in display order. Otros is always last.
var Categories = []Category{
	Lacteos,
	Proteinas,
	Huevos,
	FrutasYVerduras,
	Panaderia,
	Despensa,
	Bebidas,
	HigienePersonal,
	Limpieza,
	Snacks,
	Otros,
}

// ParseCategory maps a stored or user-supplied label onto the enumeration.
// Matching ignores surrounding space and case; unknown labels become Otros.
func ParseCategory(label string) Category {
	label = strings.TrimSpace(label)
	for _, c := range Categories {
		if strings.EqualFold(string(c), label) {
			return c
		}
	}
	return Otros
}

func (c Category) String() string {
	return string(c)
}
