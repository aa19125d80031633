package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/slateworks/dimsim/internal/describe"
	"github.com/slateworks/dimsim/internal/evaluate"
	"github.com/slateworks/dimsim/internal/explain"
	"github.com/slateworks/dimsim/internal/feedback"
	"github.com/slateworks/dimsim/internal/scaffold"
	"github.com/slateworks/dimsim/internal/schema"
	"github.com/slateworks/dimsim/internal/shop"
	"github.com/slateworks/dimsim/internal/sim"
)

// registerTools registers all dimsim MCP tools with the server.
func (s *Server) registerTools() error {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "generate_scenario",
		Description: "Generate a deterministic retail scenario: shop configuration, event log and narrative description for a seed and difficulty",
	}, s.handleGenerateScenario)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "evaluate_schema",
		Description: "Score a dimensional schema submission against a scenario and report violations with fix hints",
	}, s.handleEvaluateSchema)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "describe_scenario",
		Description: "Produce the narrative shop description a modeler would receive for a seed and difficulty",
	}, s.handleDescribeScenario)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "scaffold_schema",
		Description: "Produce a starter schema skeleton with TODOs and warnings for a seed and difficulty",
	}, s.handleScaffoldSchema)

	return nil
}

// handleGenerateScenario implements the generate_scenario tool.
func (s *Server) handleGenerateScenario(ctx context.Context, req *sdk.CallToolRequest, args GenerateScenarioInput) (_ *sdk.CallToolResult, _ GenerateScenarioOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.audit.Record("generate_scenario", start, retErr, map[string]string{
			"seed": formatSeed(args.Seed), "difficulty": args.Difficulty,
		})
	}()

	difficulty, err := resolveDifficulty(args.Difficulty)
	if err != nil {
		return nil, GenerateScenarioOutput{}, err
	}

	cfg, err := generateConfig(args.Seed, difficulty)
	if err != nil {
		return nil, GenerateScenarioOutput{}, err
	}

	targetEvents := args.TargetEvents
	if targetEvents <= 0 {
		targetEvents = sim.DefaultTargetEvents
	}
	days := args.SimulationDays
	if days <= 0 {
		days = sim.DefaultSimulationDays
	}

	generator, err := sim.NewGenerator(cfg)
	if err != nil {
		return nil, GenerateScenarioOutput{}, err
	}
	log := generator.Generate(targetEvents, days)

	configDoc, err := toDoc(cfg)
	if err != nil {
		return nil, GenerateScenarioOutput{}, fmt.Errorf("failed to encode configuration: %w", err)
	}
	logDoc, err := toDoc(log)
	if err != nil {
		return nil, GenerateScenarioOutput{}, fmt.Errorf("failed to encode event log: %w", err)
	}

	s.log.Info("generated scenario",
		"seed", args.Seed, "difficulty", difficulty, "events", len(log.Events))

	return nil, GenerateScenarioOutput{
		Seed:        args.Seed,
		Difficulty:  string(difficulty),
		ShopName:    cfg.ShopName,
		EventCount:  len(log.Events),
		Config:      configDoc,
		EventLog:    logDoc,
		Description: describe.Generate(cfg),
	}, nil
}

// handleEvaluateSchema implements the evaluate_schema tool.
func (s *Server) handleEvaluateSchema(ctx context.Context, req *sdk.CallToolRequest, args EvaluateSchemaInput) (_ *sdk.CallToolResult, _ EvaluateSchemaOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.audit.Record("evaluate_schema", start, retErr, map[string]string{
			"seed": formatSeed(args.Seed), "difficulty": args.Difficulty,
		})
	}()

	cfg, err := resolveConfig(args.Config, args.Seed, args.Difficulty)
	if err != nil {
		return nil, EvaluateSchemaOutput{}, err
	}

	if len(args.Submission) == 0 {
		return nil, EvaluateSchemaOutput{}, errors.New("submission document is required")
	}
	raw, err := json.Marshal(args.Submission)
	if err != nil {
		return nil, EvaluateSchemaOutput{}, fmt.Errorf("failed to encode submission: %w", err)
	}
	sub, err := schema.Parse(raw)
	if err != nil {
		return nil, EvaluateSchemaOutput{}, err
	}

	result := evaluate.Evaluate(cfg, sub)
	resultDoc, err := toDoc(result)
	if err != nil {
		return nil, EvaluateSchemaOutput{}, fmt.Errorf("failed to encode result: %w", err)
	}
	feedbackDoc, err := toDoc(feedback.New(result))
	if err != nil {
		return nil, EvaluateSchemaOutput{}, fmt.Errorf("failed to encode feedback: %w", err)
	}
	scenarioDoc, err := toDoc(explain.Analyze(cfg, &sub))
	if err != nil {
		return nil, EvaluateSchemaOutput{}, fmt.Errorf("failed to encode query scenarios: %w", err)
	}

	s.log.Info("evaluated schema",
		"shop", cfg.ShopName, "score", result.TotalScore, "max", result.MaxPossibleScore)

	return nil, EvaluateSchemaOutput{
		TotalScore: result.TotalScore,
		MaxScore:   result.MaxPossibleScore,
		Percentage: result.Percentage,
		Result:     resultDoc,
		Feedback:   feedbackDoc,
		Scenarios:  scenarioDoc,
	}, nil
}

// handleDescribeScenario implements the describe_scenario tool.
func (s *Server) handleDescribeScenario(ctx context.Context, req *sdk.CallToolRequest, args DescribeScenarioInput) (_ *sdk.CallToolResult, _ DescribeScenarioOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.audit.Record("describe_scenario", start, retErr, map[string]string{
			"seed": formatSeed(args.Seed), "difficulty": args.Difficulty,
		})
	}()

	difficulty, err := resolveDifficulty(args.Difficulty)
	if err != nil {
		return nil, DescribeScenarioOutput{}, err
	}
	cfg, err := generateConfig(args.Seed, difficulty)
	if err != nil {
		return nil, DescribeScenarioOutput{}, err
	}

	return nil, DescribeScenarioOutput{
		Seed:        args.Seed,
		Difficulty:  string(difficulty),
		ShopName:    cfg.ShopName,
		Description: describe.Generate(cfg),
	}, nil
}

// handleScaffoldSchema implements the scaffold_schema tool.
func (s *Server) handleScaffoldSchema(ctx context.Context, req *sdk.CallToolRequest, args ScaffoldSchemaInput) (_ *sdk.CallToolResult, _ ScaffoldSchemaOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.audit.Record("scaffold_schema", start, retErr, map[string]string{
			"seed": formatSeed(args.Seed), "difficulty": args.Difficulty,
		})
	}()

	difficulty, err := resolveDifficulty(args.Difficulty)
	if err != nil {
		return nil, ScaffoldSchemaOutput{}, err
	}
	cfg, err := generateConfig(args.Seed, difficulty)
	if err != nil {
		return nil, ScaffoldSchemaOutput{}, err
	}

	sk := scaffold.Build(cfg)
	doc, err := toDoc(sk)
	if err != nil {
		return nil, ScaffoldSchemaOutput{}, fmt.Errorf("failed to encode scaffold: %w", err)
	}

	return nil, ScaffoldSchemaOutput{
		Seed:         args.Seed,
		Difficulty:   string(difficulty),
		ShopName:     cfg.ShopName,
		Scaffold:     doc,
		TodoCount:    len(sk.Todos),
		WarningCount: len(sk.Warnings),
	}, nil
}

// resolveDifficulty maps the wire difficulty string to a validated
// level, defaulting to medium when empty.
func resolveDifficulty(raw string) (shop.Difficulty, error) {
	if raw == "" {
		return shop.DifficultyMedium, nil
	}
	d := shop.Difficulty(strings.ToLower(raw))
	for _, valid := range shop.Difficulties {
		if d == valid {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q (valid: easy, medium, hard, adversarial)", raw)
}

// generateConfig rebuilds the deterministic shop configuration for a
// seed and difficulty.
func generateConfig(seed uint32, difficulty shop.Difficulty) (shop.Configuration, error) {
	generator, err := shop.NewGenerator(seed, difficulty)
	if err != nil {
		return shop.Configuration{}, err
	}
	return generator.Generate()
}

// resolveConfig picks the scenario configuration for evaluation: the
// inline document when present, otherwise a regeneration from seed and
// difficulty.
func resolveConfig(doc map[string]any, seed uint32, difficulty string) (shop.Configuration, error) {
	if len(doc) > 0 {
		raw, err := json.Marshal(doc)
		if err != nil {
			return shop.Configuration{}, fmt.Errorf("failed to encode configuration: %w", err)
		}
		return shop.Parse(raw)
	}
	level, err := resolveDifficulty(difficulty)
	if err != nil {
		return shop.Configuration{}, err
	}
	return generateConfig(seed, level)
}

// toDoc round-trips a value through JSON into a generic document, the
// wire shape every tool output uses for embedded documents.
func toDoc(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func formatSeed(seed uint32) string {
	return strconv.FormatUint(uint64(seed), 10)
}
