package ast

// Walk visits node and its children in source order. Returning false from fn
// skips the children of the node just visited.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, s := range n.Statements {
			Walk(s, fn)
		}
	case *DeclarationStatement:
		Walk(n.Name, fn)
		Walk(n.Value, fn)
	case *FunctionDeclaration:
		Walk(n.Name, fn)
		for _, p := range n.Parameters {
			Walk(p, fn)
		}
		Walk(n.Body, fn)
	case *AssignmentStatement:
		Walk(n.Name, fn)
		Walk(n.Value, fn)
	case *ReturnStatement:
		if n.Value != nil {
			Walk(n.Value, fn)
		}
	case *WhileStatement:
		Walk(n.Condition, fn)
		Walk(n.Body, fn)
	case *ForStatement:
		Walk(n.Variable, fn)
		Walk(n.Iterable, fn)
		Walk(n.Body, fn)
	case *ExpressionStatement:
		Walk(n.Expression, fn)
	case *IfExpression:
		Walk(n.Condition, fn)
		Walk(n.Consequence, fn)
		if n.Alternative != nil {
			Walk(n.Alternative, fn)
		}
	case *BlockExpression:
		for _, s := range n.Statements {
			Walk(s, fn)
		}
	case *BinaryExpression:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *UnaryExpression:
		Walk(n.Operand, fn)
	case *PipeExpression:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *CallExpression:
		Walk(n.Function, fn)
		for _, a := range n.Arguments {
			Walk(a, fn)
		}
	case *LambdaExpression:
		for _, p := range n.Parameters {
			Walk(p, fn)
		}
		Walk(n.Body, fn)
	case *ArrayLiteral:
		for _, e := range n.Elements {
			Walk(e, fn)
		}
	}
}
