package feed

import (
	"github.com/samber/lo"

	"github.com/strandhq/strand/model"
)

// Match evaluates a compiled predicate against a single post in memory. The
// store folds the same predicate into SQL for feed-scale queries; Match is
// the reference evaluation used by tests and by any engine that already holds
// the candidate rows.
func Match(c Compiled, post *model.Post) bool {
	switch node := c.(type) {
	case nil:
		// Identity filter matches every post.
		return true
	case CompiledComparison:
		return matchComparison(node, post)
	case CompiledBoolean:
		return matchBoolean(node, post)
	default:
		return false
	}
}

func matchBoolean(node CompiledBoolean, post *model.Post) bool {
	if node.Op == BoolAnd {
		for _, child := range node.Children {
			if !Match(child, post) {
				return false
			}
		}
		return true
	}
	for _, child := range node.Children {
		if Match(child, post) {
			return true
		}
	}
	return false
}

func matchComparison(node CompiledComparison, post *model.Post) bool {
	switch node.Field {
	case FieldAuthor:
		return matchString(node, post.AuthorID)
	case FieldPostType:
		return matchString(node, string(post.Type))
	case FieldTag:
		overlap := lo.Some(node.Strings, post.Tags)
		if node.Op == CmpNotIn {
			return !overlap
		}
		return overlap
	case FieldCreatedAt:
		if node.Op == CmpBefore {
			return post.CreatedAt.Before(node.Time)
		}
		return post.CreatedAt.After(node.Time)
	}
	return false
}

func matchString(node CompiledComparison, value string) bool {
	switch node.Op {
	case CmpEquals:
		return value == node.Strings[0]
	case CmpIn:
		return lo.Contains(node.Strings, value)
	case CmpNotIn:
		return !lo.Contains(node.Strings, value)
	}
	return false
}
