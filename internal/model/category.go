package model

// CategoryKey identifies one of the four insurance exam subjects.
type CategoryKey string

const (
	CategoryProperty  CategoryKey = "06재산보험"
	CategorySpecialty CategoryKey = "07특종보험"
	CategoryLiability CategoryKey = "08배상책임보험"
	CategoryMarine    CategoryKey = "09해상보험"
)

// AllCategories lists the canonical keys in exam order.
var AllCategories = []CategoryKey{
	CategoryProperty,
	CategorySpecialty,
	CategoryLiability,
	CategoryMarine,
}

// CategoryTotals holds the static question catalog size per subject.
var CategoryTotals = map[CategoryKey]int{
	CategoryProperty:  169,
	CategorySpecialty: 182,
	CategoryLiability: 197,
	CategoryMarine:    201,
}

// categoryAliases maps the display names used by quiz pages onto canonical keys.
// The canonical keys themselves are included so normalization is idempotent.
var categoryAliases = map[string]CategoryKey{
	"06재산보험":  CategoryProperty,
	"07특종보험":  CategorySpecialty,
	"08배상책임보험": CategoryLiability,
	"09해상보험":  CategoryMarine,
	"재산보험":    CategoryProperty,
	"특종보험":    CategorySpecialty,
	"배상책임보험":  CategoryLiability,
	"배상책임":    CategoryLiability,
	"해상보험":    CategoryMarine,
	"해상":      CategoryMarine,
}

// NormalizeCategory maps a display alias onto its canonical key. Unrecognized
// aliases are returned verbatim: the aggregator tracks them under an ad-hoc
// bucket instead of rejecting the event.
func NormalizeCategory(alias string) CategoryKey {
	if key, ok := categoryAliases[alias]; ok {
		return key
	}
	return CategoryKey(alias)
}

// IsKnownCategory reports whether key belongs to the closed subject registry.
func IsKnownCategory(key CategoryKey) bool {
	_, ok := CategoryTotals[key]
	return ok
}
