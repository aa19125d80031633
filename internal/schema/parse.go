package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const submissionSchemaResource = "submission.schema.json"

// submissionSchemaJSON is the shape contract for submissions. Structural
// invariants that need cross-field knowledge live in Validate.
const submissionSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Dimensional schema submission",
  "type": "object",
  "required": ["fact_tables", "dimension_tables", "relationships"],
  "properties": {
    "fact_tables": {"type": "array", "minItems": 1, "items": {"$ref": "#/$defs/fact_table"}},
    "dimension_tables": {"type": "array", "items": {"$ref": "#/$defs/dimension_table"}},
    "relationships": {"type": "array", "items": {"$ref": "#/$defs/relationship"}},
    "bridge_tables": {"type": "array", "items": {"$ref": "#/$defs/bridge_table"}}
  },
  "$defs": {
    "fact_table": {
      "type": "object",
      "required": ["name", "grain_description", "grain_columns", "measures", "dimension_keys"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "grain_description": {"type": "string"},
        "grain_columns": {"type": "array", "minItems": 1, "items": {"$ref": "#/$defs/grain_column"}},
        "measures": {"type": "array", "items": {"$ref": "#/$defs/measure"}},
        "dimension_keys": {"type": "array", "items": {"type": "string"}}
      }
    },
    "grain_column": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "references_dimension": {"type": ["string", "null"]},
        "is_degenerate": {"type": "boolean"}
      }
    },
    "measure": {
      "type": "object",
      "required": ["name", "data_type", "aggregation"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "data_type": {"type": "string"},
        "aggregation": {"enum": ["sum", "count", "min", "max", "avg", "distinct_count"]},
        "nullable": {"type": "boolean"},
        "description": {"type": ["string", "null"]}
      }
    },
    "dimension_table": {
      "type": "object",
      "required": ["name", "natural_key", "surrogate_key", "scd_strategy", "attributes"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "natural_key": {"type": "array", "minItems": 1, "items": {"type": "string"}},
        "surrogate_key": {"type": "string"},
        "scd_strategy": {"enum": ["type_0", "type_1", "type_2", "type_3", "type_4", "type_6", "none"]},
        "attributes": {"type": "array", "items": {"$ref": "#/$defs/dimension_attribute"}},
        "parent_dimension": {"type": ["string", "null"]}
      }
    },
    "dimension_attribute": {
      "type": "object",
      "required": ["name", "data_type"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "data_type": {"type": "string"},
        "scd_tracked": {"type": "boolean"}
      }
    },
    "relationship": {
      "type": "object",
      "required": ["fact_table", "dimension_table", "fact_column", "dimension_column"],
      "properties": {
        "fact_table": {"type": "string", "minLength": 1},
        "dimension_table": {"type": "string", "minLength": 1},
        "fact_column": {"type": "string"},
        "dimension_column": {"type": "string"},
        "cardinality": {"enum": ["many-to-one", "many-to-many"]},
        "is_role_playing": {"type": "boolean"},
        "role_name": {"type": ["string", "null"]}
      }
    },
    "bridge_table": {
      "type": "object",
      "required": ["name", "fact_table", "dimension_table", "group_key"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "fact_table": {"type": "string"},
        "dimension_table": {"type": "string"},
        "group_key": {"type": "string"},
        "weighting_factor_column": {"type": ["string", "null"]}
      }
    }
  }
}`

var submissionSchema = mustCompileSubmissionSchema()

func mustCompileSubmissionSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(submissionSchemaResource, strings.NewReader(submissionSchemaJSON)); err != nil {
		panic(fmt.Sprintf("schema: load submission schema: %v", err))
	}
	return c.MustCompile(submissionSchemaResource)
}

// Parse decodes a JSON submission document, checks it against the
// embedded JSON Schema and then against the structural invariants.
func Parse(data []byte) (Submission, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Submission{}, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	if err := submissionSchema.Validate(doc); err != nil {
		return Submission{}, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	var sub Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return Submission{}, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	for i := range sub.Relationships {
		if sub.Relationships[i].Cardinality == "" {
			sub.Relationships[i].Cardinality = ManyToOne
		}
	}
	if err := sub.Validate(); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// ParseYAML decodes a YAML submission document. The document is
// round-tripped through JSON so the schema check sees the same value
// shapes as Parse.
func ParseYAML(data []byte) (Submission, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Submission{}, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return Submission{}, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	return Parse(raw)
}

// ParseFile reads a submission from disk, dispatching on the file
// extension. ".yaml" and ".yml" parse as YAML, everything else as JSON.
func ParseFile(path string) (Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Submission{}, fmt.Errorf("read schema submission: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}
