package loader

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"vectora/internal/types"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// settingsSchema 约束写入文件的设置：provider 枚举，以及当前 provider 的 key/model 非空。
const settingsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["provider"],
  "additionalProperties": false,
  "properties": {
    "provider": {"enum": ["cerebras", "gemini", "groq"]},
    "cerebras_api_key": {"type": "string"},
    "cerebras_model": {"type": "string"},
    "gemini_api_key": {"type": "string"},
    "gemini_model": {"type": "string"},
    "groq_api_key": {"type": "string"},
    "groq_model": {"type": "string"}
  },
  "allOf": [
    {
      "if": {"properties": {"provider": {"const": "cerebras"}}},
      "then": {"properties": {"cerebras_api_key": {"minLength": 1}, "cerebras_model": {"minLength": 1}}}
    },
    {
      "if": {"properties": {"provider": {"const": "gemini"}}},
      "then": {"properties": {"gemini_api_key": {"minLength": 1}, "gemini_model": {"minLength": 1}}}
    },
    {
      "if": {"properties": {"provider": {"const": "groq"}}},
      "then": {"properties": {"groq_api_key": {"minLength": 1}, "groq_model": {"minLength": 1}}}
    }
  ]
}`

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func compiledSettingsSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("settings.json", strings.NewReader(settingsSchema)); err != nil {
			schemaErr = err
			return
		}
		schemaCompiled, schemaErr = compiler.Compile("settings.json")
	})
	return schemaCompiled, schemaErr
}

func validateSettingsSchema(s types.Settings) error {
	schema, err := compiledSettingsSchema()
	if err != nil {
		return fmt.Errorf("settings schema: %w", err)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
