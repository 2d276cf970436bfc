package domain

import "testing"

func TestKataValidate(t *testing.T) {
	t.Parallel()
	valid := Kata{Slug: "age-calculator", Title: "Age Calculator", TemplateKind: TemplateScript, Pillars: []string{"python-fundamentals"}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid kata rejected: %v", err)
	}
	cases := map[string]func(k *Kata){
		"kind":    func(k *Kata) { k.TemplateKind = "notebook" },
		"title":   func(k *Kata) { k.Title = "  " },
		"slug":    func(k *Kata) { k.Slug = "" },
		"pillars": func(k *Kata) { k.Pillars = nil },
		"pillar":  func(k *Kata) { k.Pillars = []string{"devops"} },
	}
	for name, mutate := range cases {
		k := valid
		mutate(&k)
		if err := k.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
