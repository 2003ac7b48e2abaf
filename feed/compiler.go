package feed

import (
	"time"

	"github.com/strandhq/strand/model"
	"github.com/strandhq/strand/status"
)

// Filter size caps. These are resource exhaustion guards: a compiled
// predicate later becomes a query fragment, so its cost must be bounded
// before it ever reaches the store.
const (
	MaxFilterDepth = 5
	MaxFilterNodes = 64
)

// FieldKind identifies the post column a compiled comparison targets.
type FieldKind int

const (
	FieldAuthor FieldKind = iota
	FieldPostType
	FieldTag
	FieldCreatedAt
)

// CompareOp is a backend-agnostic comparison operation.
type CompareOp int

const (
	CmpEquals CompareOp = iota
	CmpIn
	CmpNotIn
	CmpBefore
	CmpAfter
)

// BoolOp joins compiled children.
type BoolOp int

const (
	BoolAnd BoolOp = iota
	BoolOr
)

// Compiled is one node of a compiled predicate tree. The tree is isomorphic
// to the input filter but carries no storage-specific syntax, so the same
// compiler output can back multiple storage engines.
type Compiled interface {
	isCompiled() bool
}

// CompiledComparison is a leaf comparison. Strings holds the operand set for
// string-valued operations (a single element for CmpEquals); Time holds the
// bound for CmpBefore/CmpAfter.
type CompiledComparison struct {
	Field   FieldKind
	Op      CompareOp
	Strings []string
	Time    time.Time
}

// CompiledBoolean joins child predicates with AND or OR.
type CompiledBoolean struct {
	Op       BoolOp
	Children []Compiled
}

func (CompiledComparison) isCompiled() bool { return true }
func (CompiledBoolean) isCompiled() bool    { return true }

// Compile validates a filter tree and lowers it to a compiled predicate.
// The identity filter compiles to nil. Compile is a pure function: identical
// input always yields a structurally identical predicate, which makes the
// output cacheable by filter hash.
func Compile(filter model.FeedFilter) (Compiled, error) {
	if filter.IsEmpty() {
		return nil, nil
	}
	c := compileState{}
	compiled, err := c.compileNode(filter, 1)
	if err != nil {
		return nil, err
	}
	return compiled, nil
}

type compileState struct {
	nodes int
}

func (c *compileState) compileNode(filter model.FeedFilter, depth int) (Compiled, error) {
	if depth > MaxFilterDepth {
		return nil, status.Validationf("filter exceeds maximum depth %d", MaxFilterDepth)
	}
	c.nodes++
	if c.nodes > MaxFilterNodes {
		return nil, status.Validationf("filter exceeds maximum node count %d", MaxFilterNodes)
	}

	switch node := filter.Node.(type) {
	case model.Predicate:
		return compilePredicate(node)
	case model.Combinator:
		return c.compileCombinator(node, depth)
	default:
		return nil, status.Validationf("filter node has no recognized type")
	}
}

func (c *compileState) compileCombinator(node model.Combinator, depth int) (Compiled, error) {
	var op BoolOp
	switch node.Op {
	case model.CombinatorAnd:
		op = BoolAnd
	case model.CombinatorOr:
		op = BoolOr
	default:
		return nil, status.Validationf("unknown combinator operator %q", node.Op)
	}

	if len(node.Children) == 0 {
		return nil, status.Validationf("combinator requires at least one child")
	}

	children := make([]Compiled, 0, len(node.Children))
	for _, child := range node.Children {
		compiled, err := c.compileNode(child, depth+1)
		if err != nil {
			return nil, err
		}
		children = append(children, compiled)
	}
	return CompiledBoolean{Op: op, Children: children}, nil
}

func compilePredicate(p model.Predicate) (Compiled, error) {
	switch p.Field {
	case model.FilterFieldAuthor:
		return compileStringPredicate(p, FieldAuthor, nil)
	case model.FilterFieldPostType:
		return compileStringPredicate(p, FieldPostType, func(v string) error {
			if !model.ValidPostType(model.PostType(v)) {
				return status.Validationf("unknown post type %q", v)
			}
			return nil
		})
	case model.FilterFieldTag:
		if p.Op != model.FilterOpIn && p.Op != model.FilterOpExcludes {
			return nil, status.Validationf("field %q does not support operator %q", p.Field, p.Op)
		}
		return compileStringPredicate(p, FieldTag, nil)
	case model.FilterFieldDateRange:
		return compileDatePredicate(p)
	default:
		return nil, status.Validationf("unknown filter field %q", p.Field)
	}
}

// compileStringPredicate lowers equals/in/excludes for string-valued fields.
// validate, when set, is applied to every operand.
func compileStringPredicate(p model.Predicate, field FieldKind, validate func(string) error) (Compiled, error) {
	var (
		op       CompareOp
		operands []string
	)
	switch p.Op {
	case model.FilterOpEquals:
		if p.Value == "" {
			return nil, status.Validationf("operator %q requires a value", p.Op)
		}
		op = CmpEquals
		operands = []string{p.Value}
	case model.FilterOpIn, model.FilterOpExcludes:
		if len(p.Values) == 0 {
			return nil, status.Validationf("operator %q requires a non-empty value set", p.Op)
		}
		op = CmpIn
		if p.Op == model.FilterOpExcludes {
			op = CmpNotIn
		}
		operands = append(operands, p.Values...)
	default:
		return nil, status.Validationf("field %q does not support operator %q", p.Field, p.Op)
	}

	if validate != nil {
		for _, v := range operands {
			if err := validate(v); err != nil {
				return nil, err
			}
		}
	}
	return CompiledComparison{Field: field, Op: op, Strings: operands}, nil
}

func compileDatePredicate(p model.Predicate) (Compiled, error) {
	var op CompareOp
	switch p.Op {
	case model.FilterOpBefore:
		op = CmpBefore
	case model.FilterOpAfter:
		op = CmpAfter
	default:
		return nil, status.Validationf("field %q does not support operator %q", p.Field, p.Op)
	}
	bound, err := time.Parse(time.RFC3339, p.Value)
	if err != nil {
		return nil, status.Validationf("operator %q requires an RFC3339 timestamp value", p.Op)
	}
	return CompiledComparison{Field: FieldCreatedAt, Op: op, Time: bound.UTC()}, nil
}
