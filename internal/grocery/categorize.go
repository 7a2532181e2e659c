package grocery

import "strings"

// Categorize guesses the category for a free-text item name.
// It performs case-insensitive matching: exact match first, then substring match.
// Falls back to Otros if no match is found.
func Categorize(itemName string) Category {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return Otros
	}

	// Phase 1: exact match
	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	// Phase 2: substring match (ordered longer/more-specific first)
	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return Otros
}

var exactMatch = map[string]Category{
	// Lácteos
	"leche":          Lacteos,
	"milk":           Lacteos,
	"queso":          Lacteos,
	"cheese":         Lacteos,
	"yogur":          Lacteos,
	"yogurt":         Lacteos,
	"mantequilla":    Lacteos,
	"butter":         Lacteos,
	"crema de leche": Lacteos,
	"kumis":          Lacteos,
	"arequipe":       Lacteos,

	// Proteínas
	"pollo":     Proteinas,
	"chicken":   Proteinas,
	"carne":     Proteinas,
	"beef":      Proteinas,
	"cerdo":     Proteinas,
	"pork":      Proteinas,
	"pescado":   Proteinas,
	"fish":      Proteinas,
	"atún":      Proteinas,
	"tuna":      Proteinas,
	"salmón":    Proteinas,
	"salmon":    Proteinas,
	"jamón":     Proteinas,
	"ham":       Proteinas,
	"tocino":    Proteinas,
	"bacon":     Proteinas,
	"salchicha": Proteinas,
	"camarones": Proteinas,
	"shrimp":    Proteinas,

	// Huevos
	"huevo":  Huevos,
	"huevos": Huevos,
	"egg":    Huevos,
	"eggs":   Huevos,

	// Frutas y Verduras
	"manzana":   FrutasYVerduras,
	"apple":     FrutasYVerduras,
	"banano":    FrutasYVerduras,
	"plátano":   FrutasYVerduras,
	"banana":    FrutasYVerduras,
	"naranja":   FrutasYVerduras,
	"limón":     FrutasYVerduras,
	"aguacate":  FrutasYVerduras,
	"tomate":    FrutasYVerduras,
	"papa":      FrutasYVerduras,
	"papas":     FrutasYVerduras,
	"cebolla":   FrutasYVerduras,
	"ajo":       FrutasYVerduras,
	"lechuga":   FrutasYVerduras,
	"espinaca":  FrutasYVerduras,
	"zanahoria": FrutasYVerduras,
	"pepino":    FrutasYVerduras,
	"pimentón":  FrutasYVerduras,
	"fresas":    FrutasYVerduras,
	"uvas":      FrutasYVerduras,
	"piña":      FrutasYVerduras,
	"mango":     FrutasYVerduras,
	"cilantro":  FrutasYVerduras,

	// Panadería
	"pan":       Panaderia,
	"bread":     Panaderia,
	"arepas":    Panaderia,
	"croissant": Panaderia,
	"tostadas":  Panaderia,
	"galletas":  Panaderia,
	"ponqué":    Panaderia,
	"tortillas": Panaderia,

	// Despensa
	"arroz":           Despensa,
	"rice":            Despensa,
	"pasta":           Despensa,
	"frijoles":        Despensa,
	"lentejas":        Despensa,
	"azúcar":          Despensa,
	"sugar":           Despensa,
	"sal":             Despensa,
	"salt":            Despensa,
	"aceite":          Despensa,
	"harina":          Despensa,
	"flour":           Despensa,
	"avena":           Despensa,
	"cereal":          Despensa,
	"café":            Despensa,
	"panela":          Despensa,
	"salsa de tomate": Despensa,

	// Bebidas
	"agua":    Bebidas,
	"water":   Bebidas,
	"jugo":    Bebidas,
	"juice":   Bebidas,
	"gaseosa": Bebidas,
	"soda":    Bebidas,
	"cerveza": Bebidas,
	"beer":    Bebidas,
	"vino":    Bebidas,
	"wine":    Bebidas,
	"té":      Bebidas,

	// Higiene Personal
	"jabón":              HigienePersonal,
	"champú":             HigienePersonal,
	"shampoo":            HigienePersonal,
	"crema dental":       HigienePersonal,
	"toothpaste":         HigienePersonal,
	"desodorante":        HigienePersonal,
	"papel higiénico":    HigienePersonal,
	"toilet paper":       HigienePersonal,
	"cepillo de dientes": HigienePersonal,
	"toallas higiénicas": HigienePersonal,

	// Limpieza
	"detergente":       Limpieza,
	"cloro":            Limpieza,
	"bleach":           Limpieza,
	"suavizante":       Limpieza,
	"esponja":          Limpieza,
	"bolsas de basura": Limpieza,
	"trash bags":       Limpieza,
	"limpiavidrios":    Limpieza,

	// Snacks
	"papas fritas": Snacks,
	"chips":        Snacks,
	"chocolate":    Snacks,
	"maní":         Snacks,
	"palomitas":    Snacks,
	"popcorn":      Snacks,
	"dulces":       Snacks,
	"candy":        Snacks,
}

type substringEntry struct {
	keyword  string
	category Category
}

// substringMatches is ordered so that longer/more-specific keywords are checked
// first. "jabón de loza" must be checked before "jabón", "panela" before "pan".
var substringMatches = []substringEntry{
	// Multi-word keywords first
	{"jabón de loza", Limpieza},
	{"jabón en polvo", Limpieza},
	{"papel higiénico", HigienePersonal},
	{"crema dental", HigienePersonal},
	{"papas fritas", Snacks},
	{"salsa de tomate", Despensa},
	{"crema de leche", Lacteos},
	{"pan tajado", Panaderia},
	{"pechuga", Proteinas},
	{"carne molida", Proteinas},

	// Words that contain shorter keywords
	{"panela", Despensa},
	{"galleta", Panaderia},
	{"lechuga", FrutasYVerduras},
	{"detergente", Limpieza},
	{"desinfectante", Limpieza},
	{"limpiador", Limpieza},
	{"servilleta", Limpieza},

	// Single-word keywords
	{"leche", Lacteos},
	{"queso", Lacteos},
	{"yogur", Lacteos},
	{"mantequilla", Lacteos},
	{"pollo", Proteinas},
	{"carne", Proteinas},
	{"cerdo", Proteinas},
	{"pescado", Proteinas},
	{"atún", Proteinas},
	{"salchicha", Proteinas},
	{"huevo", Huevos},
	{"fruta", FrutasYVerduras},
	{"verdura", FrutasYVerduras},
	{"manzana", FrutasYVerduras},
	{"tomate", FrutasYVerduras},
	{"cebolla", FrutasYVerduras},
	{"pan", Panaderia},
	{"arroz", Despensa},
	{"pasta", Despensa},
	{"frijol", Despensa},
	{"aceite", Despensa},
	{"harina", Despensa},
	{"café", Despensa},
	{"jugo", Bebidas},
	{"gaseosa", Bebidas},
	{"agua", Bebidas},
	{"cerveza", Bebidas},
	{"jabón", HigienePersonal},
	{"champú", HigienePersonal},
	{"desodorante", HigienePersonal},
	{"cloro", Limpieza},
	{"chocolate", Snacks},
	{"chips", Snacks},
	{"golosina", Snacks},
}
