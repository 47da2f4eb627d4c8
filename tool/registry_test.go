package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface checks.
var _ Tool = (*FunctionTool)(nil)

func echoTool(name string) *FunctionTool {
	return NewFunctionTool(
		name,
		"echoes the message argument",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{"type": "string"},
			},
			"required": []any{"message"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			return args["message"], nil
		},
	)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(echoTool("echo"), echoTool("echo"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryNamesSorted(t *testing.T) {
	r, err := NewRegistry(echoTool("zeta"), echoTool("alpha"), echoTool("mid"))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
}

func TestRegistryGet(t *testing.T) {
	r, err := NewRegistry(echoTool("echo"))
	require.NoError(t, err)

	got, ok := r.Get("echo")
	assert.True(t, ok)
	assert.Equal(t, "echo", got.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestInvokeUnknownTool(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Invoke(context.Background(), "nope", nil)
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeUnknown, toolErr.Code)
	assert.Equal(t, "nope", toolErr.Tool)
}

func TestInvokePassesThroughResult(t *testing.T) {
	r, err := NewRegistry(echoTool("echo"))
	require.NoError(t, err)

	result, err := r.Invoke(context.Background(), "echo", map[string]any{"message": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", result)
}

func TestFunctionToolValidation(t *testing.T) {
	tl := echoTool("echo")

	_, err := tl.Call(context.Background(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)
	assert.Contains(t, toolErr.Message, "message")

	_, err = tl.Call(context.Background(), map[string]any{"message": 42})
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)
}

func TestFunctionToolWrapsExecutionErrors(t *testing.T) {
	boom := NewFunctionTool("boom", "always fails",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New("kaput")
		},
	)

	_, err := boom.Call(context.Background(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Equal(t, "kaput", toolErr.Message)
}

func TestFunctionToolPreservesToolErrors(t *testing.T) {
	custom := NewToolError("custom", "rate limited", "RATE_LIMITED")
	tl := NewFunctionTool("custom", "returns its own tool error",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, custom
		},
	)

	_, err := tl.Call(context.Background(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "RATE_LIMITED", toolErr.Code)
}

func TestSchemaFromStruct(t *testing.T) {
	type args struct {
		City   string   `json:"city" description:"city name"`
		Days   int      `json:"days,omitempty"`
		Budget *float64 `json:"budget"`
		hidden string
		Skip   string   `json:"-"`
	}
	_ = args{hidden: ""}

	schema := SchemaFromStruct(args{})
	assert.Equal(t, "object", schema["type"])

	props := schema["properties"].(map[string]any)
	assert.Contains(t, props, "city")
	assert.Contains(t, props, "days")
	assert.Contains(t, props, "budget")
	assert.NotContains(t, props, "hidden")
	assert.NotContains(t, props, "Skip")

	city := props["city"].(map[string]any)
	assert.Equal(t, "string", city["type"])
	assert.Equal(t, "city name", city["description"])
	assert.Equal(t, "integer", props["days"].(map[string]any)["type"])
	assert.Equal(t, "number", props["budget"].(map[string]any)["type"])

	// Required: no omitempty and not a pointer.
	assert.Equal(t, []any{"city"}, schema["required"])
}

func TestSchemaFromStructNonStruct(t *testing.T) {
	schema := SchemaFromStruct("not a struct")
	assert.Equal(t, "object", schema["type"])
	assert.Empty(t, schema["properties"])
}
