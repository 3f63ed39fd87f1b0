package persona

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Category
	}{
		{"crisis", "もう死にたい", []Category{CategoryCrisis}},
		{"crisis overdose", "大量に薬を飲む", []Category{CategoryCrisis}},
		{"apology", "ごめんなさい", []Category{CategoryApology}},
		{"apology casual", "すまん", []Category{CategoryApology}},
		{"affection", "会いたいよ", []Category{CategoryAffection}},
		{"jealousy", "昨日元彼と会った", []Category{CategoryJealousy}},
		{"jealousy date", "男友達とデートしてた", []Category{CategoryJealousy}},
		{"name trigger", "和希さん、おはよう", []Category{CategoryNameTrigger}},
		{"medication", "薬飲んだよ", []Category{CategoryMedication}},
		{"medication polite", "おくすりのみました", []Category{CategoryMedication}},
		{"sleep intent", "おやすみ", []Category{CategorySleepIntent}},
		{"sleep intent verb", "もう寝るね", []Category{CategorySleepIntent}},
		{"plain", "今日は晴れだった", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			for _, c := range tt.want {
				if !got.Has(c) {
					t.Errorf("Classify(%q) missing %s, got %v", tt.text, c, got)
				}
			}
			if len(tt.want) == 0 && len(got) != 0 {
				t.Errorf("Classify(%q) = %v, want no signals", tt.text, got)
			}
		})
	}
}

func TestClassify_MultipleCategories(t *testing.T) {
	got := Classify("ごめん、薬飲んだからもう寝る")
	for _, c := range []Category{CategoryApology, CategoryMedication, CategorySleepIntent} {
		if !got.Has(c) {
			t.Errorf("missing %s in %v", c, got)
		}
	}
	if got.Has(CategoryCrisis) {
		t.Errorf("unexpected crisis signal in %v", got)
	}
}

func TestClassify_Pure(t *testing.T) {
	// Same input, same output
	a := Classify("和希さん好き")
	b := Classify("和希さん好き")
	if len(a) != len(b) {
		t.Errorf("classification is not deterministic: %v vs %v", a, b)
	}
	if !a.Has(CategoryAffection) || !a.Has(CategoryNameTrigger) {
		t.Errorf("expected affection+name, got %v", a)
	}
}
