// Package taxonomy maps startups onto the fixed priority category set used by
// scoring. The keyword tables are data: they load from YAML so the category
// triggers can change without a code change.
package taxonomy

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/andreypavlenko/scout/modules/startups/model"
	"gopkg.in/yaml.v3"
)

// Category is one entry of the priority taxonomy.
type Category struct {
	Name  string `yaml:"name"`
	Tier  int    `yaml:"tier"`
	Score int    `yaml:"score"`
	// Triggers is a list of conjunctions: a trigger matches when every
	// phrase in it occurs; the category matches when any trigger does.
	Triggers [][]string `yaml:"triggers"`
}

// Config is the loadable taxonomy definition.
type Config struct {
	Categories []Category `yaml:"categories"`
	// AIKeywords drives the catch-all category: any AI/ML mention without a
	// more specific category match.
	AIKeywords    []string `yaml:"ai_keywords"`
	CatchAllName  string   `yaml:"catch_all_name"`
	CatchAllTier  int      `yaml:"catch_all_tier"`
	CatchAllScore int      `yaml:"catch_all_score"`
	DefaultName   string   `yaml:"default_name"`
	DefaultScore  int      `yaml:"default_score"`
}

// Classifier classifies startups against a taxonomy config.
type Classifier struct {
	cfg Config
}

// Load reads a taxonomy config from a YAML file.
func Load(path string) (*Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy config: %w", err)
	}
	if len(cfg.Categories) == 0 {
		return nil, fmt.Errorf("taxonomy config has no categories")
	}
	applyDefaults(&cfg)

	return &Classifier{cfg: cfg}, nil
}

// Default returns the built-in taxonomy, used when no config file is given
// and as the baseline the shipped YAML mirrors.
func Default() *Classifier {
	cfg := Config{
		Categories: []Category{
			{
				Name: "AgenticPlatformEnabler", Tier: 1, Score: 100,
				Triggers: [][]string{
					{"agentic platform"}, {"agent framework"}, {"multi-agent"},
					{"agent orchestration"}, {"autonomous agents"},
				},
			},
			{
				Name: "AgenticMarketing", Tier: 2, Score: 85,
				Triggers: [][]string{
					{"marketing automation"}, {"content generation"}, {"campaign automation"},
				},
			},
			{
				Name: "AgenticClaims", Tier: 2, Score: 85,
				Triggers: [][]string{
					{"claims automation"}, {"claims processing"}, {"automated underwriting"},
				},
			},
			{
				Name: "AgenticHR", Tier: 2, Score: 80,
				Triggers: [][]string{
					{"hr automation"}, {"recruitment ai"}, {"talent", "ai"},
				},
			},
			{
				Name: "AgenticCustomerService", Tier: 2, Score: 80,
				Triggers: [][]string{
					{"customer service ai"}, {"support automation"}, {"chatbot", "enterprise"},
				},
			},
			{
				Name: "DevIntegration", Tier: 3, Score: 75,
				Triggers: [][]string{
					{"code generation"}, {"test automation"}, {"legacy modernization"}, {"devops"},
				},
			},
			{
				Name: "InsuranceTech", Tier: 4, Score: 65,
				Triggers: [][]string{
					{"insurtech"}, {"insurance"}, {"policy"}, {"actuarial"},
				},
			},
		},
		AIKeywords: []string{
			"ai", "artificial intelligence", "machine learning", "ml",
			"deep learning", "neural network", "llm", "nlp", "genai",
			"generative ai",
		},
	}
	applyDefaults(&cfg)
	return &Classifier{cfg: cfg}
}

func applyDefaults(cfg *Config) {
	if cfg.CatchAllName == "" {
		cfg.CatchAllName = "GeneralAIML"
	}
	if cfg.CatchAllTier == 0 {
		cfg.CatchAllTier = 5
	}
	if cfg.CatchAllScore == 0 {
		cfg.CatchAllScore = 50
	}
	if cfg.DefaultName == "" {
		cfg.DefaultName = "Uncategorized"
	}
	if cfg.DefaultScore == 0 {
		cfg.DefaultScore = 30
	}
	// Keep categories in priority order regardless of config order.
	sort.SliceStable(cfg.Categories, func(i, j int) bool {
		if cfg.Categories[i].Tier != cfg.Categories[j].Tier {
			return cfg.Categories[i].Tier < cfg.Categories[j].Tier
		}
		return cfg.Categories[i].Score > cfg.Categories[j].Score
	})
}

// Classify returns the matched categories in priority order. A startup with
// no specific match but an AI/ML mention gets the catch-all category; one
// with nothing gets the default.
func (c *Classifier) Classify(s *model.Startup) []Category {
	text := s.SearchText()

	var matched []Category
	for _, cat := range c.cfg.Categories {
		if matchesAny(text, cat.Triggers) {
			matched = append(matched, cat)
		}
	}
	if len(matched) > 0 {
		return matched
	}

	for _, kw := range c.cfg.AIKeywords {
		if containsPhrase(text, kw) {
			return []Category{{
				Name:  c.cfg.CatchAllName,
				Tier:  c.cfg.CatchAllTier,
				Score: c.cfg.CatchAllScore,
			}}
		}
	}

	return []Category{{
		Name:  c.cfg.DefaultName,
		Tier:  0,
		Score: c.cfg.DefaultScore,
	}}
}

// BaseScore is the maximum score among matched categories, floored at the
// default score.
func (c *Classifier) BaseScore(s *model.Startup) int {
	score := c.cfg.DefaultScore
	for _, cat := range c.Classify(s) {
		if cat.Score > score {
			score = cat.Score
		}
	}
	return score
}

// MinScore returns the default (floor) score.
func (c *Classifier) MinScore() int { return c.cfg.DefaultScore }

// Names extracts category names.
func Names(categories []Category) []string {
	names := make([]string, 0, len(categories))
	for _, cat := range categories {
		names = append(names, cat.Name)
	}
	return names
}

// BestTier returns the highest-priority (lowest numbered, excluding 0) tier
// among the categories, or 0 when only the default matched.
func BestTier(categories []Category) int {
	best := 0
	for _, cat := range categories {
		if cat.Tier == 0 {
			continue
		}
		if best == 0 || cat.Tier < best {
			best = cat.Tier
		}
	}
	return best
}

func matchesAny(text string, triggers [][]string) bool {
	for _, conj := range triggers {
		if len(conj) == 0 {
			continue
		}
		all := true
		for _, phrase := range conj {
			if !containsPhrase(text, phrase) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// containsPhrase does case-insensitive substring matching; short single
// tokens ("ai", "ml") match on word boundaries so they do not fire inside
// unrelated words.
func containsPhrase(text, phrase string) bool {
	phrase = strings.ToLower(phrase)
	if strings.ContainsRune(phrase, ' ') || len(phrase) > 3 {
		return strings.Contains(text, phrase)
	}
	return containsWord(text, phrase)
}

func containsWord(text, word string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		before := i == 0 || !isWordByte(text[i-1])
		end := i + len(word)
		after := end >= len(text) || !isWordByte(text[end])
		if before && after {
			return true
		}
		start = i + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
