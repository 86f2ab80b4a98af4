package seed

import "github.com/roach88/carta/internal/menu"

// DefaultCategoryNames are the categories of a fresh namespace, in display order.
var DefaultCategoryNames = []string{
	"Para picar / entrantes",
	"Ensaladas y vegetales",
	"Plato principal",
	"Postres",
	"Vinos",
	"Bebidas",
	"Cerveza",
	"Ginebra",
}

func ptr[T any](v T) *T { return &v }

// Builtin returns the demo dataset.
func Builtin() *Data {
	return &Data{
		Categories: append([]string(nil), DefaultCategoryNames...),
		Items: []menu.MenuItem{
			{
				ID:          1,
				Name:        "Ensalada de ventresca de atún sobre encebollado, manzana y puerro",
				Category:    "Ensaladas y vegetales",
				Price:       17,
				Image:       "/ventresca.jpg",
				Allergens:   []menu.Allergen{menu.Fish},
				Suggestions: []string{"Vino blanco afrutado", "Pan con tomate"},
			},
			{
				ID:          2,
				Name:        "Solomillo vaca premium (según peso)",
				Category:    "Plato principal",
				Price:       10,
				Image:       "/solomillo.jpg",
				Description: "Solomillo a la brasa con guarnición de temporada.",
				Allergens:   []menu.Allergen{menu.Gluten, menu.Milk},
				Suggestions: []string{"Vino tinto crianza", "Puré de patatas", "Verduras asadas"},
			},
			{
				ID:          3,
				Name:        "Cabra estofada con puré de papas o con papas fritas",
				Category:    "Plato principal",
				Price:       16.5,
				Image:       "/estofado.jpg",
				Description: "Estofado tradicional a fuego lento.",
				Allergens:   []menu.Allergen{menu.Eggs, menu.Milk, menu.Gluten},
				Suggestions: []string{"Vino tinto reserva", "Pan rústico", "Ensalada verde"},
			},
			{
				ID:          4,
				Name:        "Hamburguesa de la casa",
				Category:    "Plato principal",
				Price:       14.99,
				Image:       "/hamburguesa_1.jpg",
				Description: "Pan brioche, queso curado y cebolla caramelizada.",
				Allergens:   []menu.Allergen{menu.Gluten, menu.Eggs, menu.Milk},
				Suggestions: []string{"Cerveza artesanal", "Patatas fritas", "Salsa brava"},
			},
		},
		Options: map[menu.PartySize][]menu.SharingOption{
			2: {
				{ID: "compartir-2-1", Name: "Menú para dos", Description: "Selección de entrantes y principal para compartir en pareja.", Price: ptr(38.0), MenuItemIDs: []int64{1, 2}},
				{ID: "compartir-2-2", Name: "Tabla para dos", Description: "Embutidos, quesos y pan para dos personas.", Price: ptr(24.0)},
			},
			4: {
				{ID: "compartir-4-1", Name: "Menú para compartir entre 4", Description: "Varios entrantes y dos principales para compartir en mesa.", Price: ptr(72.0), MenuItemIDs: []int64{1, 2, 3}},
				{ID: "compartir-4-2", Name: "Tabla de embutidos y quesos (4 p.)", Description: "Tabla grande de embutidos, quesos, pan y acompañamientos.", Price: ptr(45.0)},
				{ID: "compartir-4-3", Name: "Degustación casa (4 p.)", Description: "Cuatro entrantes y dos platos principales de la casa.", Price: ptr(85.0), MenuItemIDs: []int64{1, 2, 3, 4}},
			},
			6: {
				{ID: "compartir-6-1", Name: "Menú grupo 6 personas", Description: "Entrantes variados y tres principales para compartir.", Price: ptr(108.0)},
				{ID: "compartir-6-2", Name: "Gran tabla + platos (6 p.)", Description: "Tabla grande y dos platos principales para la mesa.", Price: ptr(95.0)},
			},
			8: {
				{ID: "compartir-8-1", Name: "Menú para compartir entre 8", Description: "Carta de entrantes y principales para mesa grande.", Price: ptr(145.0)},
				{ID: "compartir-8-2", Name: "Banquete casa (8 p.)", Description: "Selección del chef para 8 personas.", Price: ptr(165.0)},
			},
		},
	}
}
