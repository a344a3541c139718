package todoist

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Compiled schemas, keyed by file name. Built once at package init;
// the documents are embedded so a compile failure is a programming
// error.
var schemas = mustCompileSchemas()

const (
	schemaTask          = "task.json"
	schemaProject       = "project.json"
	schemaLabel         = "label.json"
	schemaCreateTask    = "create_task.json"
	schemaUpdateTask    = "update_task.json"
	schemaCreateProject = "create_project.json"
	schemaUpdateProject = "update_project.json"
)

func mustCompileSchemas() map[string]*jsonschema.Schema {
	names := []string{
		schemaTask, schemaProject, schemaLabel,
		schemaCreateTask, schemaUpdateTask,
		schemaCreateProject, schemaUpdateProject,
	}

	compiler := jsonschema.NewCompiler()
	for _, name := range names {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			panic(fmt.Sprintf("read embedded schema %s: %v", name, err))
		}
		if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
			panic(fmt.Sprintf("add schema resource %s: %v", name, err))
		}
	}

	compiled := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		schema, err := compiler.Compile(name)
		if err != nil {
			panic(fmt.Sprintf("compile schema %s: %v", name, err))
		}
		compiled[name] = schema
	}
	return compiled
}

// validateRaw checks raw JSON against the named schema and returns a
// validation-kind *Error carrying the failing field paths.
func validateRaw(schemaName string, raw []byte) error {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return NewValidationError(fmt.Sprintf("invalid JSON: %v", err), nil)
	}

	if err := schemas[schemaName].Validate(value); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return NewValidationError(err.Error(), nil)
		}
		return NewValidationError("schema validation failed", collectFieldErrors(ve))
	}
	return nil
}

// collectFieldErrors walks the validation error tree and returns one
// FieldError per leaf cause.
func collectFieldErrors(ve *jsonschema.ValidationError) []FieldError {
	var fields []FieldError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if e == nil {
			return
		}
		if len(e.Causes) == 0 {
			fields = append(fields, FieldError{
				Path:    jsonPointerToPath(e.InstanceLocation),
				Message: e.Message,
			})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return fields
}

// jsonPointerToPath converts a JSON pointer ("/due/datetime") into a
// dotted field path ("due.datetime").
func jsonPointerToPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return "(root)"
	}
	path := strings.TrimPrefix(pointer, "/")
	path = strings.ReplaceAll(path, "/", ".")
	path = strings.ReplaceAll(path, "~1", "/")
	path = strings.ReplaceAll(path, "~0", "~")
	return path
}

// decode unmarshals raw into out, reporting decode failures as
// validation errors so callers see a single taxonomy.
func decode(raw []byte, out interface{}) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return NewValidationError(fmt.Sprintf("decode: %v", err), nil)
	}
	return nil
}

// ParseTask validates a single upstream task object and decodes it.
// Absent and explicitly-null due subfields both decode to nil; this is
// expected missingness, not a validation failure.
func ParseTask(raw []byte) (*Task, error) {
	if err := validateRaw(schemaTask, raw); err != nil {
		return nil, err
	}
	var task Task
	if err := decode(raw, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ParseProject validates a single upstream project object and decodes
// it.
func ParseProject(raw []byte) (*Project, error) {
	if err := validateRaw(schemaProject, raw); err != nil {
		return nil, err
	}
	var project Project
	if err := decode(raw, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ParseLabel validates a single upstream label object and decodes it.
func ParseLabel(raw []byte) (*Label, error) {
	if err := validateRaw(schemaLabel, raw); err != nil {
		return nil, err
	}
	var label Label
	if err := decode(raw, &label); err != nil {
		return nil, err
	}
	return &label, nil
}

// parseList implements the lenient listing policy: items failing
// schema validation are logged as warnings and decoded best-effort
// into the result instead of failing the whole listing. Read paths
// prefer partial data over no data.
func parseList[T any](schemaName string, raw []byte, logger *slog.Logger) ([]T, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, NewValidationError(fmt.Sprintf("listing is not a JSON array: %v", err), nil)
	}

	result := make([]T, 0, len(items))
	for i, item := range items {
		if err := validateRaw(schemaName, item); err != nil {
			if ve, ok := AsError(err); ok && logger != nil {
				logger.Warn("upstream item failed schema validation, passing through unvalidated",
					slog.String("schema", schemaName),
					slog.Int("index", i),
					slog.String("reason", ve.Error()),
					slog.String("payload", string(item)),
				)
			}
		}
		var value T
		if err := json.Unmarshal(item, &value); err != nil {
			// Not even structurally decodable; skip with a warning
			// rather than failing the listing.
			if logger != nil {
				logger.Warn("upstream item could not be decoded, dropping",
					slog.String("schema", schemaName),
					slog.Int("index", i),
					slog.String("payload", string(item)),
				)
			}
			continue
		}
		result = append(result, value)
	}
	return result, nil
}

// ParseTaskList parses a task listing with per-item lenient
// validation.
func ParseTaskList(raw []byte, logger *slog.Logger) ([]Task, error) {
	return parseList[Task](schemaTask, raw, logger)
}

// ParseProjectList parses a project listing with per-item lenient
// validation.
func ParseProjectList(raw []byte, logger *slog.Logger) ([]Project, error) {
	return parseList[Project](schemaProject, raw, logger)
}

// ParseLabelList parses a label listing with per-item lenient
// validation.
func ParseLabelList(raw []byte, logger *slog.Logger) ([]Label, error) {
	return parseList[Label](schemaLabel, raw, logger)
}

// ValidateCreateTaskInput strictly validates raw create-task JSON and
// decodes it. Any failure aborts before a network call is made.
func ValidateCreateTaskInput(raw []byte) (*CreateTaskInput, error) {
	if err := validateRaw(schemaCreateTask, raw); err != nil {
		return nil, err
	}
	var input CreateTaskInput
	if err := decode(raw, &input); err != nil {
		return nil, err
	}
	return &input, nil
}

// ValidateUpdateTaskInput strictly validates raw update-task JSON and
// decodes it.
func ValidateUpdateTaskInput(raw []byte) (*UpdateTaskInput, error) {
	if err := validateRaw(schemaUpdateTask, raw); err != nil {
		return nil, err
	}
	var input UpdateTaskInput
	if err := decode(raw, &input); err != nil {
		return nil, err
	}
	return &input, nil
}

// ValidateCreateProjectInput strictly validates raw create-project
// JSON and decodes it.
func ValidateCreateProjectInput(raw []byte) (*CreateProjectInput, error) {
	if err := validateRaw(schemaCreateProject, raw); err != nil {
		return nil, err
	}
	var input CreateProjectInput
	if err := decode(raw, &input); err != nil {
		return nil, err
	}
	return &input, nil
}

// ValidateUpdateProjectInput strictly validates raw update-project
// JSON and decodes it.
func ValidateUpdateProjectInput(raw []byte) (*UpdateProjectInput, error) {
	if err := validateRaw(schemaUpdateProject, raw); err != nil {
		return nil, err
	}
	var input UpdateProjectInput
	if err := decode(raw, &input); err != nil {
		return nil, err
	}
	return &input, nil
}
