package store

import (
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/strandhq/strand/feed"
	"github.com/strandhq/strand/model"
)

// predicateSQL lowers a compiled predicate tree to one Postgres condition
// with positional arguments. The compiler output is backend-agnostic; this
// translation is the Postgres backend's concern only.
func predicateSQL(c feed.Compiled) (string, []interface{}, error) {
	switch node := c.(type) {
	case feed.CompiledComparison:
		return comparisonSQL(node)
	case feed.CompiledBoolean:
		return booleanSQL(node)
	default:
		return "", nil, errors.New("unknown compiled predicate node")
	}
}

func booleanSQL(node feed.CompiledBoolean) (string, []interface{}, error) {
	joiner := " AND "
	if node.Op == feed.BoolOr {
		joiner = " OR "
	}
	var (
		parts []string
		args  []interface{}
	)
	for _, child := range node.Children {
		sql, childArgs, err := predicateSQL(child)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		args = append(args, childArgs...)
	}
	return "(" + strings.Join(parts, joiner) + ")", args, nil
}

func comparisonSQL(node feed.CompiledComparison) (string, []interface{}, error) {
	switch node.Field {
	case feed.FieldAuthor:
		return columnSQL("posts.author_id", node)
	case feed.FieldPostType:
		return columnSQL("posts.type", node)
	case feed.FieldTag:
		// Tags are a text[] column; in/excludes compile to array overlap.
		switch node.Op {
		case feed.CmpIn:
			return "posts.tags && ?", []interface{}{pq.Array(node.Strings)}, nil
		case feed.CmpNotIn:
			return "NOT (posts.tags && ?)", []interface{}{pq.Array(node.Strings)}, nil
		}
	case feed.FieldCreatedAt:
		switch node.Op {
		case feed.CmpBefore:
			return "posts.created_at < ?", []interface{}{node.Time}, nil
		case feed.CmpAfter:
			return "posts.created_at > ?", []interface{}{node.Time}, nil
		}
	}
	return "", nil, errors.Errorf("unsupported comparison field %d op %d", node.Field, node.Op)
}

func columnSQL(column string, node feed.CompiledComparison) (string, []interface{}, error) {
	switch node.Op {
	case feed.CmpEquals:
		return column + " = ?", []interface{}{node.Strings[0]}, nil
	case feed.CmpIn:
		return column + " IN ?", []interface{}{node.Strings}, nil
	case feed.CmpNotIn:
		return column + " NOT IN ?", []interface{}{node.Strings}, nil
	}
	return "", nil, errors.Errorf("unsupported operator %d for column %s", node.Op, column)
}

// scopeSQL lowers the viewer's author scope to one visibility condition.
func scopeSQL(scope feed.AuthorScope) (string, []interface{}) {
	if scope.Anonymous {
		return "posts.visibility = ?", []interface{}{model.VisibilityPublic}
	}
	if len(scope.Followed) == 0 {
		return "(posts.visibility = ? OR posts.author_id = ?)",
			[]interface{}{model.VisibilityPublic, scope.Viewer}
	}
	return "(posts.visibility = ? OR posts.author_id = ? OR (posts.visibility = ? AND posts.author_id IN ?))",
		[]interface{}{model.VisibilityPublic, scope.Viewer, model.VisibilityFollowers, scope.Followed}
}
