package persona

import "regexp"

// Category is one signal class the classifier can detect in a message.
type Category string

const (
	CategoryCrisis      Category = "crisis"
	CategoryApology     Category = "apology"
	CategoryAffection   Category = "affection"
	CategoryJealousy    Category = "jealousy"
	CategoryNameTrigger Category = "name"
	CategoryMedication  Category = "medication"
	CategorySleepIntent Category = "sleep"
)

// Signals is the set of categories matched in one message. Multiple
// categories can match at once; precedence belongs to SelectMode.
type Signals map[Category]bool

func (s Signals) Has(c Category) bool {
	return s[c]
}

// One matcher per category, evaluated independently. Swapping the
// engine behind a category does not change the Classify contract.
var signalPatterns = map[Category]*regexp.Regexp{
	CategoryCrisis:      regexp.MustCompile(`(?i)(死にたい|消えたい|自殺|リスカ|終わりだ|もうだめ|希死|OD|大量に.*薬|今から.*死)`),
	CategoryApology:     regexp.MustCompile(`(?i)(ごめん|ごめんなさい|すみません|すまん)`),
	CategoryAffection:   regexp.MustCompile(`(?i)(すき|好き|会いたい|さみしい|ぎゅ|なで|そばにいて|抱いて)`),
	CategoryJealousy:    regexp.MustCompile(`(?i)(彼氏|男友達|他の(男|ひと)|デート|キス|飲み行(っ|い)てた|連絡取ってた|浮気|元彼)`),
	CategoryNameTrigger: regexp.MustCompile(`和希さん`),
	CategoryMedication:  regexp.MustCompile(`(?i)((薬|くすり|おくすり)(を|は)?(飲んだ|のんだ|飲みました|のみました|飲めた)|服薬した)`),
	CategorySleepIntent: regexp.MustCompile(`(?i)(おやすみ|寝る|ねる|眠る|寝ます|ねます)`),
}

// Classify maps message text to its matched signal categories. Pure
// and deterministic; no I/O.
func Classify(text string) Signals {
	s := make(Signals, len(signalPatterns))
	for category, re := range signalPatterns {
		if re.MatchString(text) {
			s[category] = true
		}
	}
	return s
}
