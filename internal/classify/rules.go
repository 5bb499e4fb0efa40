package classify

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// CategoryRule maps filename substrings to one document category.
type CategoryRule struct {
	Category string   `yaml:"category"`
	Patterns []string `yaml:"patterns"`
}

// Rules are the data behind the heuristic classifier. A deployment can ship
// a YAML file to adjust patterns without a rebuild.
type Rules struct {
	ImageExtensions    []string       `yaml:"imageExtensions"`
	DocumentExtensions []string       `yaml:"documentExtensions"`
	LogoPatterns       []string       `yaml:"logoPatterns"`
	MarkingPatterns    []string       `yaml:"markingPatterns"`
	Categories         []CategoryRule `yaml:"categories"`
}

// DefaultRules returns the built-in heuristics.
func DefaultRules() Rules {
	return Rules{
		ImageExtensions:    []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".svg", ".webp"},
		DocumentExtensions: []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".txt"},
		LogoPatterns:       []string{"logo"},
		MarkingPatterns:    []string{"marking", "ce_", "ul_"},
		Categories: []CategoryRule{
			{Category: "manual", Patterns: []string{"manual", "instruction"}},
			{Category: "certificate", Patterns: []string{"cert"}},
			{Category: "datasheet", Patterns: []string{"spec", "datasheet"}},
			{Category: "drawing", Patterns: []string{"drawing", "cad"}},
		},
	}
}

// LoadRules reads a YAML rules file. Sections left empty in the file keep
// their built-in defaults.
func LoadRules(filePath string) (Rules, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return DefaultRules(), err
	}
	defer file.Close()

	return LoadRulesFromReader(file)
}

// LoadRulesFromReader parses rules from an io.Reader.
func LoadRulesFromReader(r io.Reader) (Rules, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return DefaultRules(), err
	}

	var loaded Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return DefaultRules(), err
	}

	rules := DefaultRules()
	if len(loaded.ImageExtensions) > 0 {
		rules.ImageExtensions = loaded.ImageExtensions
	}
	if len(loaded.DocumentExtensions) > 0 {
		rules.DocumentExtensions = loaded.DocumentExtensions
	}
	if len(loaded.LogoPatterns) > 0 {
		rules.LogoPatterns = loaded.LogoPatterns
	}
	if len(loaded.MarkingPatterns) > 0 {
		rules.MarkingPatterns = loaded.MarkingPatterns
	}
	if len(loaded.Categories) > 0 {
		rules.Categories = loaded.Categories
	}
	return rules, nil
}
