package feed

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/strandhq/strand/model"
	"github.com/strandhq/strand/status"
)

func mustParse(t *testing.T, jsonStr string) model.FeedFilter {
	t.Helper()
	filter, err := model.ParseFilter(jsonStr)
	require.NoError(t, err)
	return filter
}

func TestCompileIdentity(t *testing.T) {
	compiled, err := Compile(model.FeedFilter{})
	require.NoError(t, err)
	require.Nil(t, compiled)
}

func TestCompileNestedTree(t *testing.T) {
	filter := mustParse(t, `{
		"type": "combinator",
		"op": "AND",
		"children": [
			{"type": "predicate", "field": "tag", "op": "in", "values": ["go"]},
			{
				"type": "combinator",
				"op": "OR",
				"children": [
					{"type": "predicate", "field": "author", "op": "equals", "value": "user-1"},
					{"type": "predicate", "field": "dateRange", "op": "before", "value": "2024-06-01T00:00:00Z"}
				]
			}
		]
	}`)

	compiled, err := Compile(filter)
	require.NoError(t, err)

	root, ok := compiled.(CompiledBoolean)
	require.True(t, ok)
	require.Equal(t, BoolAnd, root.Op)
	require.Len(t, root.Children, 2)

	tag, ok := root.Children[0].(CompiledComparison)
	require.True(t, ok)
	require.Equal(t, FieldTag, tag.Field)
	require.Equal(t, CmpIn, tag.Op)

	inner, ok := root.Children[1].(CompiledBoolean)
	require.True(t, ok)
	require.Equal(t, BoolOr, inner.Op)
}

func TestCompileDeterminism(t *testing.T) {
	filter := mustParse(t, `{
		"type": "combinator",
		"op": "OR",
		"children": [
			{"type": "predicate", "field": "postType", "op": "in", "values": ["text", "song"]},
			{"type": "predicate", "field": "tag", "op": "excludes", "values": ["spam"]}
		]
	}`)

	first, err := Compile(filter)
	require.NoError(t, err)
	second, err := Compile(filter)
	require.NoError(t, err)
	require.True(t, cmp.Equal(first, second))
}

func TestCompileValidation(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"unknown field", `{"type": "predicate", "field": "likes", "op": "equals", "value": "3"}`},
		{"tag does not support equals", `{"type": "predicate", "field": "tag", "op": "equals", "value": "go"}`},
		{"dateRange does not support in", `{"type": "predicate", "field": "dateRange", "op": "in", "values": ["2024-01-01T00:00:00Z"]}`},
		{"dateRange needs a timestamp", `{"type": "predicate", "field": "dateRange", "op": "before", "value": "yesterday"}`},
		{"author does not support before", `{"type": "predicate", "field": "author", "op": "before", "value": "user-1"}`},
		{"equals needs a value", `{"type": "predicate", "field": "author", "op": "equals"}`},
		{"in needs values", `{"type": "predicate", "field": "tag", "op": "in", "values": []}`},
		{"unknown post type", `{"type": "predicate", "field": "postType", "op": "equals", "value": "poll"}`},
		{"unknown combinator", `{"type": "combinator", "op": "XOR", "children": [{"type": "predicate", "field": "tag", "op": "in", "values": ["go"]}]}`},
		{"empty combinator", `{"type": "combinator", "op": "AND", "children": []}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(mustParse(t, tc.json))
			require.Error(t, err)
			require.Equal(t, status.KindValidation, status.KindOf(err))
		})
	}
}

func TestCompileDepthCap(t *testing.T) {
	leaf := `{"type": "predicate", "field": "tag", "op": "in", "values": ["go"]}`
	nested := leaf
	// One combinator level beyond the cap.
	for i := 0; i < MaxFilterDepth; i++ {
		nested = fmt.Sprintf(`{"type": "combinator", "op": "AND", "children": [%s]}`, nested)
	}

	_, err := Compile(mustParse(t, nested))
	require.Error(t, err)
	require.Equal(t, status.KindValidation, status.KindOf(err))
}

func TestCompileNodeCap(t *testing.T) {
	children := ""
	for i := 0; i < MaxFilterNodes; i++ {
		if i > 0 {
			children += ","
		}
		children += `{"type": "predicate", "field": "tag", "op": "in", "values": ["go"]}`
	}
	wide := fmt.Sprintf(`{"type": "combinator", "op": "OR", "children": [%s]}`, children)

	_, err := Compile(mustParse(t, wide))
	require.Error(t, err)
	require.Equal(t, status.KindValidation, status.KindOf(err))
}
