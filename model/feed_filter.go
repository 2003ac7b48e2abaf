package model

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Filter field names accepted by predicate nodes.
const (
	FilterFieldAuthor    = "author"
	FilterFieldPostType  = "postType"
	FilterFieldTag       = "tag"
	FilterFieldDateRange = "dateRange"
)

// Filter operators accepted by predicate nodes.
const (
	FilterOpEquals   = "equals"
	FilterOpIn       = "in"
	FilterOpExcludes = "excludes"
	FilterOpBefore   = "before"
	FilterOpAfter    = "after"
)

// Combinator operators.
const (
	CombinatorAnd = "AND"
	CombinatorOr  = "OR"
)

/*
FeedFilter is one node of a feed filter document. The persisted form is a JSON
document with a fixed schema keyed by "type":

	{"type": "predicate", "field": "tag", "op": "in", "values": ["go", "db"]}
	{"type": "combinator", "op": "AND", "children": [ ... ]}

An empty document ({} or absent) is the identity filter and matches every
post. The tree is a closed tagged union: unknown node types fail to parse
instead of being carried along and re-interpreted per query.
*/
type FeedFilter struct {
	Node FilterNode `json:"-"`
}

// IsEmpty reports whether this node is the identity filter.
func (f FeedFilter) IsEmpty() bool {
	return f.Node == nil
}

// FilterNode is the abstract container for the two node kinds.
type FilterNode interface {
	isFilterNode() bool
}

// Predicate is a leaf comparison against one post field. Single-valued
// operators (equals/before/after) populate Value; set-valued operators
// (in/excludes) populate Values.
type Predicate struct {
	Field  string   `json:"field"`
	Op     string   `json:"op"`
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

// Combinator joins child filters with AND or OR.
type Combinator struct {
	Op       string       `json:"op"`
	Children []FeedFilter `json:"children"`
}

func (Predicate) isFilterNode() bool  { return true }
func (Combinator) isFilterNode() bool { return true }

type taggedPredicate struct {
	Type string `json:"type"`
	Predicate
}

type taggedCombinator struct {
	Type string `json:"type"`
	Combinator
}

// MarshalJSON emits the tagged persisted form.
func (f FeedFilter) MarshalJSON() ([]byte, error) {
	switch node := f.Node.(type) {
	case Predicate:
		return json.Marshal(taggedPredicate{Type: "predicate", Predicate: node})
	case Combinator:
		return json.Marshal(taggedCombinator{Type: "combinator", Combinator: node})
	case nil:
		return []byte("{}"), nil
	default:
		return nil, errors.New("unknown filter node type")
	}
}

// Custom unmarshal function for FeedFilter since it contains the interface
// FilterNode, which needs a look-ahead on the "type" tag in order to decide
// what concrete type to unmarshal into.
func (f *FeedFilter) UnmarshalJSON(b []byte) error {
	var objMap map[string]*json.RawMessage
	if err := json.Unmarshal(b, &objMap); err != nil {
		return err
	}

	tag, ok := objMap["type"]
	if !ok {
		// Empty document, identity filter.
		f.Node = nil
		return nil
	}

	var kind string
	if err := json.Unmarshal(*tag, &kind); err != nil {
		return err
	}

	switch kind {
	case "predicate":
		var node taggedPredicate
		if err := json.Unmarshal(b, &node); err != nil {
			return err
		}
		f.Node = node.Predicate
	case "combinator":
		var node taggedCombinator
		if err := json.Unmarshal(b, &node); err != nil {
			return err
		}
		f.Node = node.Combinator
	default:
		return errors.Errorf("unknown filter node type %q", kind)
	}
	return nil
}

// ParseFilter parses a persisted filter document. An empty string is the
// identity filter.
func ParseFilter(jsonStr string) (FeedFilter, error) {
	var filter FeedFilter
	if len(jsonStr) == 0 {
		return filter, nil
	}
	if err := json.Unmarshal([]byte(jsonStr), &filter); err != nil {
		return FeedFilter{}, errors.Wrap(err, "malformed filter document")
	}
	return filter, nil
}
