package diseases

import "strings"

// Category is the condition family used to pick plan-specific extractors
// and clarification sets.
type Category string

const (
	CategoryCataract  Category = "cataract"
	CategoryMaternity Category = "maternity"
	CategoryHeart     Category = "heart"
	CategoryDiabetes  Category = "diabetes"
	CategoryAccident  Category = "accident"
	CategoryCancer    Category = "cancer"
	CategoryGeneric   Category = "generic"
)

// categoryKeywords is checked in order; the first category with a keyword in
// the condition wins.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryCataract, []string{"cataract", "lens replacement", "intraocular lens", "phacoemulsification"}},
	{CategoryMaternity, []string{"maternity", "pregnan", "delivery", "childbirth", "caesarean", "cesarean", "c-section", "prenatal", "postnatal"}},
	{CategoryHeart, []string{"heart", "cardiac", "coronary", "myocardial", "angioplasty", "cabg", "bypass"}},
	{CategoryDiabetes, []string{"diabet", "blood sugar", "insulin"}},
	{CategoryAccident, []string{"accident", "fracture", "injury", "injured", "injuries", "collision", "crash", "fell", "a fall", "fall from", "burn", "burns"}},
	{CategoryCancer, []string{"cancer", "tumor", "tumour", "oncology", "chemo", "carcinoma", "malignan", "leukemia", "lymphoma"}},
}

// genericPhrases contain a category keyword without belonging to that
// category.
var genericPhrases = []string{"gastric bypass", "heartburn", "heart burn"}

// Categorize maps a free-text condition to its category. Keywords match
// whole words; stems longer than four letters ("pregnan", "diabet") also
// match with a suffix.
func Categorize(condition string) Category {
	c := padWords(condition)
	for _, p := range genericPhrases {
		if hasWord(c, p) {
			return CategoryGeneric
		}
	}
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if hasWord(c, kw) {
				return entry.category
			}
		}
	}
	return CategoryGeneric
}

// padWords lowercases s, turns punctuation into spaces and pads it so every
// word is surrounded by spaces.
func padWords(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', ';', ':', '!', '?', '(', ')', '/':
			return ' '
		}
		return r
	}, strings.ToLower(s))
	return " " + strings.Join(strings.Fields(s), " ") + " "
}

func hasWord(padded, w string) bool {
	if len(w) > 4 {
		return strings.Contains(padded, " "+w)
	}
	return strings.Contains(padded, " "+w+" ")
}

// Categories returns every category in dispatch order, generic last.
func Categories() []Category {
	out := make([]Category, 0, len(categoryKeywords)+1)
	for _, entry := range categoryKeywords {
		out = append(out, entry.category)
	}
	return append(out, CategoryGeneric)
}
