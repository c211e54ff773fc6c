package ast

import (
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// NodeToMap converts an AST node to a map suitable for JSON
// serialization. This produces a tagged-union structure: every node has
// a "kind" field.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		return m("Program", n.Span, "stmts", stmtSlice(n.Stmts))

	// ---- Expressions ----
	case *LiteralExpr:
		switch n.Kind {
		case LitNumber:
			return m("NumberLiteral", n.Span, "value", n.Number)
		case LitString:
			return m("StringLiteral", n.Span, "value", n.Str)
		case LitBool:
			return m("BoolLiteral", n.Span, "value", n.Bool)
		default:
			return m("NilLiteral", n.Span)
		}
	case *VariableExpr:
		return m("VariableExpr", n.Span, "name", n.Name)
	case *AssignExpr:
		return m("AssignExpr", n.Span, "name", n.Name, "value", NodeToMap(n.Value))
	case *UnaryExpr:
		return m("UnaryExpr", n.Span, "op", opStr(n.Op), "operand", NodeToMap(n.Operand))
	case *BinaryExpr:
		return m("BinaryExpr", n.Span,
			"op", opStr(n.Op),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *LogicalExpr:
		return m("LogicalExpr", n.Span,
			"op", opStr(n.Op),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *GroupingExpr:
		return m("GroupingExpr", n.Span, "inner", NodeToMap(n.Inner))
	case *CallExpr:
		return m("CallExpr", n.Span,
			"callee", NodeToMap(n.Callee),
			"args", exprSlice(n.Args))

	// ---- Statements ----
	case *ExprStmt:
		return m("ExprStmt", n.Span, "expr", NodeToMap(n.Expr))
	case *PrintStmt:
		return m("PrintStmt", n.Span, "expr", NodeToMap(n.Expr))
	case *VarDeclStmt:
		result := m("VarDeclStmt", n.Span, "name", n.Name)
		if n.Init != nil {
			result["init"] = NodeToMap(n.Init)
		}
		return result
	case *BlockStmt:
		return m("BlockStmt", n.Span, "stmts", stmtSlice(n.Stmts))
	case *IfStmt:
		result := m("IfStmt", n.Span,
			"condition", NodeToMap(n.Condition),
			"then", NodeToMap(n.Then))
		if n.Else != nil {
			result["else"] = NodeToMap(n.Else)
		}
		return result
	case *WhileStmt:
		return m("WhileStmt", n.Span,
			"condition", NodeToMap(n.Condition),
			"body", NodeToMap(n.Body))
	case *FunctionStmt:
		return m("FunctionStmt", n.Span,
			"name", n.Name,
			"params", n.Params,
			"body", stmtSlice(n.Body))
	case *ReturnStmt:
		result := m("ReturnStmt", n.Span)
		if n.Value != nil {
			result["value"] = NodeToMap(n.Value)
		}
		return result

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}

func opStr(kind token.Kind) string {
	return kind.String()
}
