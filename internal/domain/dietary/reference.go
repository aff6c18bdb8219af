// Package dietary classifies recipe ingredients against static reference tables.
// It detects FODMAP load, fermented foods and tree nuts using case-insensitive
// substring matching over the flattened tables.
package dietary

// ReferenceKind distinguishes the three shapes a reference item can take
type ReferenceKind int

const (
	// KindKeyword is a bare keyword: a match scores 1 and carries no detail
	KindKeyword ReferenceKind = iota
	// KindFodmap carries a gram threshold
	KindFodmap
	// KindFermented carries a fermentation role
	KindFermented
)

// Role is the part a fermented ingredient plays in a dish
type Role string

const (
	RoleMain      Role = "main"
	RoleFlavoring Role = "flavoring"
)

// ReferenceItem is one entry of a reference table
type ReferenceItem struct {
	Kind           ReferenceKind
	Name           string
	ThresholdGrams float64
	Role           Role
}

// Keyword creates a bare keyword reference
func Keyword(name string) ReferenceItem {
	return ReferenceItem{Kind: KindKeyword, Name: name}
}

// Fodmap creates a FODMAP reference with a per-ingredient gram threshold
func Fodmap(name string, thresholdGrams float64) ReferenceItem {
	return ReferenceItem{Kind: KindFodmap, Name: name, ThresholdGrams: thresholdGrams}
}

// Fermented creates a fermented-food reference
func Fermented(name string, role Role) ReferenceItem {
	return ReferenceItem{Kind: KindFermented, Name: name, Role: role}
}

// ReferenceTable groups reference items by food category.
// Categories are informational only; matching runs across every table.
type ReferenceTable struct {
	Category string
	Items    []ReferenceItem
}

var fodmapTables = []ReferenceTable{
	{Category: "fruits", Items: []ReferenceItem{
		Fodmap("apple", 20),
		Fodmap("pear", 20),
		Fodmap("mango", 40),
		Fodmap("watermelon", 15),
		Fodmap("cherries", 20),
		Fodmap("peach", 30),
		Fodmap("plum", 25),
		Fodmap("apricot", 20),
		Fodmap("blackberries", 20),
		Fodmap("dried fruit", 10),
	}},
	{Category: "vegetables", Items: []ReferenceItem{
		Fodmap("garlic", 5),
		Fodmap("onion", 15),
		Fodmap("shallot", 10),
		Fodmap("leek", 20),
		Fodmap("asparagus", 15),
		Fodmap("artichoke", 10),
		Fodmap("cauliflower", 25),
		Fodmap("mushroom", 20),
		Fodmap("snow peas", 15),
		Fodmap("celery", 20),
	}},
	{Category: "legumes", Items: []ReferenceItem{
		Fodmap("chickpea", 40),
		Fodmap("lentil", 30),
		Fodmap("kidney bean", 20),
		Fodmap("black bean", 20),
		Fodmap("baked beans", 20),
		Fodmap("split pea", 20),
		Keyword("soybean"),
	}},
	{Category: "grains", Items: []ReferenceItem{
		Fodmap("wheat", 25),
		Fodmap("rye", 25),
		Fodmap("barley", 25),
		Fodmap("couscous", 30),
		Keyword("semolina"),
	}},
	{Category: "dairy", Items: []ReferenceItem{
		Fodmap("milk", 100),
		Fodmap("yogurt", 80),
		Fodmap("ice cream", 50),
		Fodmap("ricotta", 40),
		Fodmap("cottage cheese", 40),
		Fodmap("cream cheese", 40),
		Keyword("buttermilk"),
	}},
	{Category: "sweeteners", Items: []ReferenceItem{
		Fodmap("honey", 7),
		Fodmap("agave", 5),
		Keyword("high fructose corn syrup"),
		Keyword("sorbitol"),
		Keyword("mannitol"),
		Keyword("xylitol"),
		Keyword("inulin"),
	}},
	{Category: "nuts", Items: []ReferenceItem{
		Fodmap("cashew", 10),
		Fodmap("pistachio", 15),
		Fodmap("almond", 24),
		Fodmap("hazelnut", 30),
	}},
}

var fermentationTables = []ReferenceTable{
	{Category: "dairy", Items: []ReferenceItem{
		Fermented("yogurt", RoleMain),
		Fermented("kefir", RoleMain),
		Fermented("buttermilk", RoleMain),
		Fermented("sour cream", RoleFlavoring),
		Fermented("creme fraiche", RoleFlavoring),
		Fermented("parmesan", RoleFlavoring),
		Fermented("cheddar", RoleMain),
	}},
	{Category: "vegetables", Items: []ReferenceItem{
		Fermented("sauerkraut", RoleMain),
		Fermented("kimchi", RoleMain),
		Fermented("pickle", RoleMain),
		Fermented("preserved lemon", RoleFlavoring),
	}},
	{Category: "soy", Items: []ReferenceItem{
		Fermented("miso", RoleMain),
		Fermented("tempeh", RoleMain),
		Fermented("natto", RoleMain),
		Fermented("soy sauce", RoleFlavoring),
		Fermented("tamari", RoleFlavoring),
		Fermented("doenjang", RoleFlavoring),
	}},
	{Category: "grains", Items: []ReferenceItem{
		Fermented("sourdough", RoleMain),
		Fermented("injera", RoleMain),
		Fermented("dosa", RoleMain),
		Fermented("amazake", RoleMain),
	}},
	{Category: "beverages", Items: []ReferenceItem{
		Fermented("kombucha", RoleMain),
		Fermented("kvass", RoleMain),
		Fermented("wine", RoleFlavoring),
		Fermented("beer", RoleFlavoring),
		Fermented("sake", RoleFlavoring),
	}},
	{Category: "condiments", Items: []ReferenceItem{
		Fermented("fish sauce", RoleFlavoring),
		Fermented("vinegar", RoleFlavoring),
		Fermented("worcestershire", RoleFlavoring),
		Fermented("gochujang", RoleFlavoring),
		Fermented("doubanjiang", RoleFlavoring),
	}},
}

// Tree nuts and nut-derived products. Peanuts and seeds are deliberately absent.
var nutKeywords = []ReferenceItem{
	Keyword("almond"),
	Keyword("walnut"),
	Keyword("cashew"),
	Keyword("pecan"),
	Keyword("pistachio"),
	Keyword("hazelnut"),
	Keyword("macadamia"),
	Keyword("brazil nut"),
	Keyword("pine nut"),
	Keyword("chestnut"),
	Keyword("marzipan"),
	Keyword("praline"),
	Keyword("frangipane"),
	Keyword("nougat"),
	Keyword("gianduja"),
}

// FodmapTables returns a copy of the built-in FODMAP tables
func FodmapTables() []ReferenceTable {
	return cloneTables(fodmapTables)
}

// FermentationTables returns a copy of the built-in fermented-food tables
func FermentationTables() []ReferenceTable {
	return cloneTables(fermentationTables)
}

// NutKeywords returns a copy of the built-in nut keyword list
func NutKeywords() []ReferenceItem {
	return append([]ReferenceItem(nil), nutKeywords...)
}

func cloneTables(tables []ReferenceTable) []ReferenceTable {
	out := make([]ReferenceTable, len(tables))
	for i, t := range tables {
		out[i] = ReferenceTable{
			Category: t.Category,
			Items:    append([]ReferenceItem(nil), t.Items...),
		}
	}
	return out
}
