package describe

import (
	"fmt"
	"strings"

	"github.com/slateworks/dimsim/internal/shop"
)

var difficultyDescriptions = map[shop.Difficulty]string{
	shop.DifficultyEasy:        "A forgiving shop with predictable behavior. Good for learning the basics.",
	shop.DifficultyMedium:      "A typical retail shop with some complexity. Expect a few traps.",
	shop.DifficultyHard:        "A challenging shop with many edge cases. Your model will be tested.",
	shop.DifficultyAdversarial: "A hostile shop designed to break naive models. Every trap is enabled.",
}

var difficultyTaglines = map[shop.Difficulty]string{
	shop.DifficultyEasy:        "This shop plays fair... mostly.",
	shop.DifficultyMedium:      "This shop has a few tricks up its sleeve.",
	shop.DifficultyHard:        "This shop wants to see your model sweat.",
	shop.DifficultyAdversarial: "This shop hates clean data models.",
}

// trapCategoryOrder fixes the display grouping.
var trapCategoryOrder = []shop.TrapCategory{
	shop.TrapGrain,
	shop.TrapTemporal,
	shop.TrapIdentity,
	shop.TrapSemantic,
	shop.TrapRelationship,
}

// Briefing frames a scenario before the modeler sees any data. At
// adversarial difficulty the trap list stays hidden; only the count is
// teased.
type Briefing struct {
	ShopName       string
	Seed           uint32
	DifficultyName string
	Description    string
	Tagline        string
	Traps          []shop.EnabledTrap
	TrapsHidden    bool
}

// NewBriefing builds the briefing for a configuration at a difficulty.
func NewBriefing(cfg shop.Configuration, difficulty shop.Difficulty) Briefing {
	description, ok := difficultyDescriptions[difficulty]
	if !ok {
		description = "A challenging scenario."
	}
	tagline, ok := difficultyTaglines[difficulty]
	if !ok {
		tagline = "Good luck."
	}

	return Briefing{
		ShopName:       cfg.ShopName,
		Seed:           cfg.Seed,
		DifficultyName: strings.ToUpper(string(difficulty)),
		Description:    description,
		Tagline:        tagline,
		Traps:          shop.ExtractEnabledTraps(cfg),
		TrapsHidden:    difficulty == shop.DifficultyAdversarial,
	}
}

// ThreatSummary lists up to five threat descriptions for display.
func (b Briefing) ThreatSummary() []string {
	n := min(5, len(b.Traps))
	threats := make([]string, 0, n)
	for _, trap := range b.Traps[:n] {
		threats = append(threats, trap.ThreatDescription)
	}
	return threats
}

// Render formats the briefing as a text panel.
func (b Briefing) Render(numEvents int) string {
	rule := strings.Repeat("=", 60)
	thin := strings.Repeat("-", 60)

	lines := []string{
		rule,
		b.DifficultyName + " SCENARIO",
		fmt.Sprintf("Seed: %d  |  Shop: %s  |  Events: %d", b.Seed, b.ShopName, numEvents),
		rule,
		"",
		b.Tagline,
		"",
		b.Description,
	}

	if len(b.Traps) > 0 {
		lines = append(lines, "", "TRAPS ENABLED", thin)
		if b.TrapsHidden {
			lines = append(lines,
				fmt.Sprintf("%d traps are active. At this difficulty you find them yourself.", len(b.Traps)))
		} else {
			grouped := shop.TrapsByCategory(b.Traps)
			for _, category := range trapCategoryOrder {
				traps := grouped[category]
				if len(traps) == 0 {
					continue
				}
				lines = append(lines, strings.ToUpper(string(category)))
				for _, trap := range traps {
					lines = append(lines, "  - "+trap.Name)
				}
			}
		}
	}

	if threats := b.ThreatSummary(); !b.TrapsHidden && len(threats) > 0 {
		lines = append(lines, "", fmt.Sprintf("%s will try to break your model by:", b.ShopName))
		for _, threat := range threats {
			lines = append(lines, "  - "+threat)
		}
	}

	lines = append(lines, "", rule)
	return strings.Join(lines, "\n")
}
