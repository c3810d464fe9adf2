// Package validator checks the records ipcraft produces and the bus
// definition tables it consumes against embedded CUE schemas. The
// schemas are the contract with downstream consumers; when data stops
// matching them the caller gets a hard error, not a silently wrong
// record.
package validator

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed module_schema.cue
var moduleSchemaFS embed.FS

//go:embed library_schema.cue
var librarySchemaFS embed.FS

// ModuleValidator validates canonical module records against the
// embedded module schema.
type ModuleValidator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewModuleValidator creates a validator with the embedded module schema
func NewModuleValidator() (*ModuleValidator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := moduleSchemaFS.ReadFile("module_schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded module schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling module schema: %w", schema.Err())
	}

	return &ModuleValidator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// Validate checks that a module record conforms to the module schema.
// Returns nil if valid, or an error naming what failed.
func (v *ModuleValidator) Validate(data any) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling module to JSON: %w", err)
	}
	return v.ValidateJSON(jsonBytes)
}

// ValidateJSON validates JSON bytes directly against the module schema
func (v *ModuleValidator) ValidateJSON(jsonBytes []byte) error {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling module data as CUE: %w", dataValue.Err())
	}

	moduleDef := v.schema.LookupPath(cue.ParsePath("#Module"))
	if moduleDef.Err() != nil {
		return fmt.Errorf("looking up #Module definition: %w", moduleDef.Err())
	}

	unified := moduleDef.Unify(dataValue)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("module schema validation failed: %w", err)
	}

	return nil
}

// ValidationErrors returns every schema violation in a record, one
// message per error, or nil when the record is valid.
func (v *ModuleValidator) ValidationErrors(data any) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return []string{fmt.Sprintf("compile error: %v", dataValue.Err())}
	}

	moduleDef := v.schema.LookupPath(cue.ParsePath("#Module"))
	if moduleDef.Err() != nil {
		return []string{fmt.Sprintf("schema lookup error: %v", moduleDef.Err())}
	}

	unified := moduleDef.Unify(dataValue)
	err = unified.Validate()
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}

// LibraryValidator validates bus definition tables against the
// embedded library schema.
type LibraryValidator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewLibraryValidator creates a validator with the embedded library schema
func NewLibraryValidator() (*LibraryValidator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := librarySchemaFS.ReadFile("library_schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded library schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling library schema: %w", schema.Err())
	}

	return &LibraryValidator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// ValidateYAML validates a bus definition document as read from disk
func (v *LibraryValidator) ValidateYAML(yamlBytes []byte) error {
	file, err := cueyaml.Extract("bus_definitions.yml", yamlBytes)
	if err != nil {
		return fmt.Errorf("decoding bus definitions YAML: %w", err)
	}

	dataValue := v.ctx.BuildFile(file)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling bus definitions as CUE: %w", dataValue.Err())
	}
	return v.validate(dataValue)
}

// Validate checks decoded bus definition data against the library schema
func (v *LibraryValidator) Validate(data any) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling library to JSON: %w", err)
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling library data as CUE: %w", dataValue.Err())
	}
	return v.validate(dataValue)
}

func (v *LibraryValidator) validate(dataValue cue.Value) error {
	libraryDef := v.schema.LookupPath(cue.ParsePath("#Library"))
	if libraryDef.Err() != nil {
		return fmt.Errorf("looking up #Library definition: %w", libraryDef.Err())
	}

	unified := libraryDef.Unify(dataValue)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("library schema validation failed: %w", err)
	}

	return nil
}
