// Package mcp exposes dimsim's scenario and evaluation operations as
// MCP (Model Context Protocol) tools for agent-driven training loops.
package mcp

// GenerateScenarioInput defines the input for the generate_scenario tool.
type GenerateScenarioInput struct {
	Seed           uint32 `json:"seed,omitempty" jsonschema:"Seed for deterministic generation; the same seed and difficulty always yield the same scenario"`
	Difficulty     string `json:"difficulty,omitempty" jsonschema:"Difficulty: easy, medium, hard, adversarial (default: medium)"`
	TargetEvents   int    `json:"target_events,omitempty" jsonschema:"Number of events to generate (default: 1000)"`
	SimulationDays int    `json:"simulation_days,omitempty" jsonschema:"Maximum simulation days (default: 30)"`
}

// GenerateScenarioOutput defines the output for the generate_scenario tool.
type GenerateScenarioOutput struct {
	Seed        uint32         `json:"seed"`
	Difficulty  string         `json:"difficulty"`
	ShopName    string         `json:"shop_name"`
	EventCount  int            `json:"event_count"`
	Config      map[string]any `json:"config" jsonschema:"Shop configuration document"`
	EventLog    map[string]any `json:"event_log" jsonschema:"Generated event log document"`
	Description string         `json:"description" jsonschema:"Narrative shop description for the modeler"`
}

// EvaluateSchemaInput defines the input for the evaluate_schema tool.
// The scenario comes either from an inline configuration document or,
// when that is omitted, from the seed and difficulty.
type EvaluateSchemaInput struct {
	Config     map[string]any `json:"config,omitempty" jsonschema:"Shop configuration document from generate_scenario; omit to regenerate from seed and difficulty"`
	Seed       uint32         `json:"seed,omitempty" jsonschema:"Scenario seed, used when config is omitted"`
	Difficulty string         `json:"difficulty,omitempty" jsonschema:"Scenario difficulty, used when config is omitted (default: medium)"`
	Submission map[string]any `json:"submission" jsonschema:"Dimensional schema submission document"`
}

// EvaluateSchemaOutput defines the output for the evaluate_schema tool.
type EvaluateSchemaOutput struct {
	TotalScore int            `json:"total_score"`
	MaxScore   int            `json:"max_score"`
	Percentage float64        `json:"percentage"`
	Result     map[string]any `json:"result" jsonschema:"Full evaluation result with per-axis scores and deductions"`
	Feedback   map[string]any `json:"feedback" jsonschema:"Actionable violation report with examples, consequences and fix hints"`
	Scenarios  map[string]any `json:"query_scenarios" jsonschema:"Concrete query scenarios where the submitted schema produces wrong answers"`
}

// DescribeScenarioInput defines the input for the describe_scenario tool.
type DescribeScenarioInput struct {
	Seed       uint32 `json:"seed,omitempty" jsonschema:"Scenario seed"`
	Difficulty string `json:"difficulty,omitempty" jsonschema:"Difficulty: easy, medium, hard, adversarial (default: medium)"`
}

// DescribeScenarioOutput defines the output for the describe_scenario tool.
type DescribeScenarioOutput struct {
	Seed        uint32 `json:"seed"`
	Difficulty  string `json:"difficulty"`
	ShopName    string `json:"shop_name"`
	Description string `json:"description" jsonschema:"Narrative shop description"`
}

// ScaffoldSchemaInput defines the input for the scaffold_schema tool.
type ScaffoldSchemaInput struct {
	Seed       uint32 `json:"seed,omitempty" jsonschema:"Scenario seed"`
	Difficulty string `json:"difficulty,omitempty" jsonschema:"Difficulty: easy, medium, hard, adversarial (default: medium)"`
}

// ScaffoldSchemaOutput defines the output for the scaffold_schema tool.
type ScaffoldSchemaOutput struct {
	Seed         uint32         `json:"seed"`
	Difficulty   string         `json:"difficulty"`
	ShopName     string         `json:"shop_name"`
	Scaffold     map[string]any `json:"scaffold" jsonschema:"Starter schema skeleton with TODOs and warnings, not a correct solution"`
	TodoCount    int            `json:"todo_count"`
	WarningCount int            `json:"warning_count"`
}
