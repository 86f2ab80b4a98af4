package menu

// Allergen identifies one of the EU-regulated allergens a dish can declare.
type Allergen string

// The fourteen allergens of EU Regulation 1169/2011, Annex II.
const (
	Gluten      Allergen = "gluten"
	Crustaceans Allergen = "crustaceans"
	Eggs        Allergen = "eggs"
	Fish        Allergen = "fish"
	Peanuts     Allergen = "peanuts"
	Soy         Allergen = "soy"
	Milk        Allergen = "milk"
	Nuts        Allergen = "nuts"
	Celery      Allergen = "celery"
	Mustard     Allergen = "mustard"
	Sesame      Allergen = "sesame"
	Sulphites   Allergen = "sulphites"
	Lupin       Allergen = "lupin"
	Molluscs    Allergen = "molluscs"
)

// AllergenInfo pairs an allergen id with its display name.
type AllergenInfo struct {
	ID   Allergen `json:"id"`
	Name string   `json:"name"`
}

var allergens = []AllergenInfo{
	{Gluten, "Gluten"},
	{Crustaceans, "Crustáceos"},
	{Eggs, "Huevos"},
	{Fish, "Pescado"},
	{Peanuts, "Cacahuetes"},
	{Soy, "Soja"},
	{Milk, "Lácteos"},
	{Nuts, "Frutos secos"},
	{Celery, "Apio"},
	{Mustard, "Mostaza"},
	{Sesame, "Sésamo"},
	{Sulphites, "Sulfitos"},
	{Lupin, "Altramuces"},
	{Molluscs, "Moluscos"},
}

// Allergens returns the allergen vocabulary in display order.
func Allergens() []AllergenInfo {
	out := make([]AllergenInfo, len(allergens))
	copy(out, allergens)
	return out
}

// LookupAllergen returns the vocabulary entry for id.
func LookupAllergen(id string) (AllergenInfo, bool) {
	for _, a := range allergens {
		if string(a.ID) == id {
			return a, true
		}
	}
	return AllergenInfo{}, false
}
