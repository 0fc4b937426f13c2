package diseases

import "strings"

// minTokenLength is the shortest token considered during token overlap.
const minTokenLength = 4

// fillerTokens are medical filler words that never count as an overlap.
var fillerTokens = map[string]struct{}{
	"surgery":   {},
	"treatment": {},
	"disease":   {},
	"problem":   {},
	"claim":     {},
	"hospital":  {},
	"operation": {},
	"condition": {},
	"related":   {},
	"issue":     {},
	"pain":      {},
}

// synonymGroups are bidirectional: every term in a group names the same
// condition family.
var synonymGroups = [][]string{
	{"piles", "hemorrhoids", "haemorrhoids", "fissure", "fistula"},
	{"heart disease", "cardiac", "heart attack", "coronary", "myocardial", "angioplasty", "cabg"},
	{"kidney stones", "kidney stone", "renal calculi", "renal stone", "nephrolithiasis", "ureteric calculus"},
	{"gallbladder stones", "gallstones", "gall stones", "cholecystectomy", "cholelithiasis"},
	{"cataract", "lens replacement", "intraocular lens", "phacoemulsification"},
	{"diabetes", "diabetic", "diabetes mellitus", "blood sugar", "insulin"},
	{"hypertension", "high blood pressure", "high bp"},
	{"joint replacement", "knee replacement", "hip replacement", "arthroplasty"},
	{"cancer", "tumor", "tumour", "oncology", "chemotherapy", "carcinoma", "malignancy", "leukemia", "lymphoma"},
	{"maternity", "pregnancy", "delivery", "childbirth", "caesarean", "cesarean", "c-section"},
	{"hernia", "inguinal hernia", "umbilical hernia", "herniorrhaphy", "hernioplasty"},
	{"cosmetic", "plastic surgery", "liposuction", "botox", "rhinoplasty"},
	{"self-inflicted", "self inflicted", "self harm", "self-harm", "attempted suicide", "suicide attempt"},
	{"experimental", "unproven treatment", "investigational"},
	{"warfare", "war injury", "war injuries", "act of war", "terrorism"},
	{"infertility", "ivf", "in vitro fertilization", "fertility treatment"},
	{"alcoholism", "alcohol", "alcoholic"},
	{"substance abuse", "drug abuse", "drug addiction", "narcotics"},
	{"obesity", "weight loss", "bariatric", "gastric bypass"},
	{"baldness", "hair transplant", "alopecia", "hair loss"},
	{"gender reassignment", "sex change"},
	{"sterilization", "vasectomy", "tubectomy"},
}

// Strength grades how a condition matched a key.
type Strength int

const (
	NoMatch Strength = iota
	TokenMatch
	StrongMatch
)

// Matches reports whether a free-text condition refers to a rule key. The
// first of three steps that succeeds wins: substring containment in either
// direction, a shared synonym group, then token overlap. Matches is
// symmetric in its arguments.
func Matches(text, key string) bool {
	return Match(text, key) != NoMatch
}

// Match is Matches with the strength of the match. Substring and synonym
// hits are strong; token overlap is weak.
func Match(text, key string) Strength {
	t := normalize(text)
	k := normalize(key)
	if t == "" || k == "" {
		return NoMatch
	}

	if contains(t, k) || contains(k, t) {
		return StrongMatch
	}

	for _, group := range synonymGroups {
		if groupHit(group, t) && groupHit(group, k) {
			return StrongMatch
		}
	}

	if tokensOverlap(t, k) {
		return TokenMatch
	}
	return NoMatch
}

// contains ignores fragments too short to name a condition.
func contains(s, sub string) bool {
	return len(sub) >= minTokenLength && strings.Contains(s, sub)
}

// groupHit reports whether s names any term of the group.
func groupHit(group []string, s string) bool {
	for _, term := range group {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func tokensOverlap(a, b string) bool {
	ta := significantTokens(a)
	tb := significantTokens(b)
	for _, x := range ta {
		for _, y := range tb {
			if strings.Contains(x, y) || strings.Contains(y, x) {
				return true
			}
		}
	}
	return false
}

func significantTokens(s string) []string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?()\"'")
		if len(f) < minTokenLength {
			continue
		}
		if _, filler := fillerTokens[f]; filler {
			continue
		}
		out = append(out, f)
	}
	return out
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
