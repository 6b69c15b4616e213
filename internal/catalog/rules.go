package catalog

import "strings"

// Fallback category for names no rule recognises
const Fallback = "Development"

// Age bands
const (
	Band0To3   = "0-3 Months"
	Band4To6   = "4-6 Months"
	Band7To9   = "7-9 Months"
	Band10To12 = "10-12 Months"
)

// Developmental areas
const (
	MotorSkills     = "Motor Skills"
	Communication   = "Communication"
	SocialEmotional = "Social-Emotional"
	Cognitive       = "Cognitive"
)

// Rule assigns Category to any name containing one of Keywords (case-insensitive)
type Rule struct {
	Category string
	Keywords []string
}

// Matches reports whether name contains any of the rule's keywords
func (r Rule) Matches(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Classify returns the category of the first matching rule, else Fallback
func Classify(rules []Rule, name string) string {
	for _, r := range rules {
		if r.Matches(name) {
			return r.Category
		}
	}
	return Fallback
}

// AgeBandRules classify videos missing from the age partition. Order matters.
var AgeBandRules = []Rule{
	{Category: Band0To3, Keywords: []string{"reflex", "head stability", "symmetry"}},
	{Category: Band4To6, Keywords: []string{"sitting with support", "turning", "rolling"}},
	{Category: Band7To9, Keywords: []string{"crawl", "reaching", "hidden toys"}},
	{Category: Band10To12, Keywords: []string{"stand", "walk", "cup"}},
}

// DevelopmentalRules map a video name to a skill area. First match wins.
var DevelopmentalRules = []Rule{
	{Category: MotorSkills, Keywords: []string{"reflex", "grasp", "crawling", "sitting", "walking", "hand", "leg", "head", "stand"}},
	{Category: Communication, Keywords: []string{"sound", "word", "babbling", "imitating", "cooing"}},
	{Category: SocialEmotional, Keywords: []string{"social", "smile", "playing", "others"}},
	{Category: Cognitive, Keywords: []string{"following", "object", "searching", "attention"}},
}
