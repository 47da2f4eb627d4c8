package tool

import (
	"context"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// Tool. It validates model/user supplied arguments against a JSON schema
// before execution and normalizes failures into *ToolError with consistent
// codes:
//
//	validation failure -> VALIDATION_ERROR
//	function error     -> EXECUTION_ERROR (custom codes preserved if the
//	                      function returns *ToolError directly)
//
// A FunctionTool has no internal mutable state after construction and is
// safe for concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and
// function.
//
// Example:
//
//	fxTool := tool.NewFunctionTool(
//	  "convert_fx",
//	  "Convert an amount between currencies",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "amount": map[string]any{"type": "number"},
//	      "base":   map[string]any{"type": "string"},
//	      "target": map[string]any{"type": "string"},
//	    },
//	    "required": []any{"amount", "base", "target"},
//	  },
//	  convertFx,
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{name: name, description: description, parameters: parameters, fn: fn}
}

// Name returns the unique tool name used in plans and registry lookups.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description of the tool.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the declared schema then invokes the wrapped
// function, wrapping failures as *ToolError.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if err := validateArgs(args, t.parameters); err != nil {
		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeValidation,
		}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			return nil, toolErr
		}
		return nil, &ToolError{Tool: t.name, Message: err.Error(), Code: CodeExecution}
	}
	return result, nil
}

// validateArgs checks args against schema using gojsonschema. Schema
// evaluation failures and document violations both surface as plain errors;
// the caller attaches the tool name and code.
func validateArgs(args, schema map[string]any) error {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(args))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		msgs = append(msgs, verr.String())
	}
	return &validationFailure{problems: msgs}
}

type validationFailure struct {
	problems []string
}

func (e *validationFailure) Error() string {
	return "parameter validation failed: " + strings.Join(e.problems, "; ")
}
