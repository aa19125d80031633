// Package schema models dimensional-schema submissions: the star or
// snowflake design a learner proposes for a simulated shop. Documents
// are accepted as JSON or YAML, checked against an embedded JSON
// Schema for shape, then against Go-level structural invariants.
package schema

import (
	"errors"
	"fmt"
)

// ErrInvalidSubmission reports a submission that violates one of the
// structural invariants.
var ErrInvalidSubmission = errors.New("invalid schema submission")

// SCDType is a slowly-changing-dimension strategy.
type SCDType string

const (
	SCDType0 SCDType = "type_0" // fixed, never changes
	SCDType1 SCDType = "type_1" // overwrite, current value only
	SCDType2 SCDType = "type_2" // add row, full history
	SCDType3 SCDType = "type_3" // add column, previous + current
	SCDType4 SCDType = "type_4" // mini-dimension for rapid changers
	SCDType6 SCDType = "type_6" // hybrid of 1, 2 and 3
	SCDNone  SCDType = "none"
)

func (t SCDType) valid() bool {
	switch t {
	case SCDType0, SCDType1, SCDType2, SCDType3, SCDType4, SCDType6, SCDNone:
		return true
	}
	return false
}

// AggregationType describes how a measure aggregates.
type AggregationType string

const (
	AggregationSum           AggregationType = "sum"
	AggregationCount         AggregationType = "count"
	AggregationMin           AggregationType = "min"
	AggregationMax           AggregationType = "max"
	AggregationAvg           AggregationType = "avg"
	AggregationDistinctCount AggregationType = "distinct_count"
)

func (a AggregationType) valid() bool {
	switch a {
	case AggregationSum, AggregationCount, AggregationMin, AggregationMax, AggregationAvg, AggregationDistinctCount:
		return true
	}
	return false
}

// Cardinality of a fact-to-dimension relationship.
type Cardinality string

const (
	ManyToOne  Cardinality = "many-to-one"
	ManyToMany Cardinality = "many-to-many"
)

// Measure is a numeric column in a fact table.
type Measure struct {
	Name        string          `json:"name" yaml:"name"`
	DataType    string          `json:"data_type" yaml:"data_type"`
	Aggregation AggregationType `json:"aggregation" yaml:"aggregation"`
	Nullable    bool            `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
}

// GrainColumn is one column participating in a fact table's grain. It
// either references a dimension or is a degenerate dimension carried
// directly on the fact.
type GrainColumn struct {
	Name                string `json:"name" yaml:"name"`
	ReferencesDimension string `json:"references_dimension,omitempty" yaml:"references_dimension,omitempty"`
	IsDegenerate        bool   `json:"is_degenerate,omitempty" yaml:"is_degenerate,omitempty"`
}

// FactTable is a fact table in the dimensional model.
type FactTable struct {
	Name             string        `json:"name" yaml:"name"`
	GrainDescription string        `json:"grain_description" yaml:"grain_description"`
	GrainColumns     []GrainColumn `json:"grain_columns" yaml:"grain_columns"`
	Measures         []Measure     `json:"measures" yaml:"measures"`
	DimensionKeys    []string      `json:"dimension_keys" yaml:"dimension_keys"`
}

// DimensionAttribute is an attribute column in a dimension table.
type DimensionAttribute struct {
	Name       string `json:"name" yaml:"name"`
	DataType   string `json:"data_type" yaml:"data_type"`
	SCDTracked bool   `json:"scd_tracked,omitempty" yaml:"scd_tracked,omitempty"`
}

// DimensionTable is a dimension table in the dimensional model.
type DimensionTable struct {
	Name         string               `json:"name" yaml:"name"`
	NaturalKey   []string             `json:"natural_key" yaml:"natural_key"`
	SurrogateKey string               `json:"surrogate_key" yaml:"surrogate_key"`
	SCDStrategy  SCDType              `json:"scd_strategy" yaml:"scd_strategy"`
	Attributes   []DimensionAttribute `json:"attributes" yaml:"attributes"`

	// ParentDimension points at an outrigger for snowflake designs.
	ParentDimension string `json:"parent_dimension,omitempty" yaml:"parent_dimension,omitempty"`
}

// Relationship joins a fact table to a dimension table.
type Relationship struct {
	FactTable       string      `json:"fact_table" yaml:"fact_table"`
	DimensionTable  string      `json:"dimension_table" yaml:"dimension_table"`
	FactColumn      string      `json:"fact_column" yaml:"fact_column"`
	DimensionColumn string      `json:"dimension_column" yaml:"dimension_column"`
	Cardinality     Cardinality `json:"cardinality,omitempty" yaml:"cardinality,omitempty"`
	IsRolePlaying   bool        `json:"is_role_playing,omitempty" yaml:"is_role_playing,omitempty"`
	RoleName        string      `json:"role_name,omitempty" yaml:"role_name,omitempty"`
}

// BridgeTable resolves a many-to-many relationship between a fact and
// a dimension.
type BridgeTable struct {
	Name                  string `json:"name" yaml:"name"`
	FactTable             string `json:"fact_table" yaml:"fact_table"`
	DimensionTable        string `json:"dimension_table" yaml:"dimension_table"`
	GroupKey              string `json:"group_key" yaml:"group_key"`
	WeightingFactorColumn string `json:"weighting_factor_column,omitempty" yaml:"weighting_factor_column,omitempty"`
}

// Submission is a complete dimensional-schema submission.
type Submission struct {
	FactTables      []FactTable      `json:"fact_tables" yaml:"fact_tables"`
	DimensionTables []DimensionTable `json:"dimension_tables" yaml:"dimension_tables"`
	Relationships   []Relationship   `json:"relationships" yaml:"relationships"`
	BridgeTables    []BridgeTable    `json:"bridge_tables,omitempty" yaml:"bridge_tables,omitempty"`
}

// Validate enforces the structural invariants a submission must hold
// before evaluation.
func (s Submission) Validate() error {
	if len(s.FactTables) == 0 {
		return fmt.Errorf("%w: at least one fact table required", ErrInvalidSubmission)
	}
	for _, fact := range s.FactTables {
		if fact.Name == "" {
			return fmt.Errorf("%w: fact table with empty name", ErrInvalidSubmission)
		}
		if len(fact.GrainColumns) == 0 {
			return fmt.Errorf("%w: fact table %q has no grain columns", ErrInvalidSubmission, fact.Name)
		}
		for _, measure := range fact.Measures {
			if !measure.Aggregation.valid() {
				return fmt.Errorf("%w: fact table %q measure %q has unknown aggregation %q",
					ErrInvalidSubmission, fact.Name, measure.Name, measure.Aggregation)
			}
		}
	}
	for _, dim := range s.DimensionTables {
		if dim.Name == "" {
			return fmt.Errorf("%w: dimension table with empty name", ErrInvalidSubmission)
		}
		if len(dim.NaturalKey) == 0 {
			return fmt.Errorf("%w: dimension table %q has no natural key columns", ErrInvalidSubmission, dim.Name)
		}
		if !dim.SCDStrategy.valid() {
			return fmt.Errorf("%w: dimension table %q has unknown scd_strategy %q",
				ErrInvalidSubmission, dim.Name, dim.SCDStrategy)
		}
	}
	for _, rel := range s.Relationships {
		switch rel.Cardinality {
		case "", ManyToOne, ManyToMany:
		default:
			return fmt.Errorf("%w: relationship %s->%s has unknown cardinality %q",
				ErrInvalidSubmission, rel.FactTable, rel.DimensionTable, rel.Cardinality)
		}
	}
	return nil
}

// Fact returns the fact table with the given name, or nil.
func (s Submission) Fact(name string) *FactTable {
	for i := range s.FactTables {
		if s.FactTables[i].Name == name {
			return &s.FactTables[i]
		}
	}
	return nil
}

// Dimension returns the dimension table with the given name, or nil.
func (s Submission) Dimension(name string) *DimensionTable {
	for i := range s.DimensionTables {
		if s.DimensionTables[i].Name == name {
			return &s.DimensionTables[i]
		}
	}
	return nil
}

// RelationshipsForFact returns every relationship whose fact side is
// the named table, in declaration order.
func (s Submission) RelationshipsForFact(factName string) []Relationship {
	var rels []Relationship
	for _, rel := range s.Relationships {
		if rel.FactTable == factName {
			rels = append(rels, rel)
		}
	}
	return rels
}

// DimensionsForFact returns the dimension tables connected to the
// named fact, in declaration order.
func (s Submission) DimensionsForFact(factName string) []DimensionTable {
	connected := make(map[string]bool)
	for _, rel := range s.RelationshipsForFact(factName) {
		connected[rel.DimensionTable] = true
	}
	var dims []DimensionTable
	for _, dim := range s.DimensionTables {
		if connected[dim.Name] {
			dims = append(dims, dim)
		}
	}
	return dims
}
