// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package fieldpath implements the field-path rewriter: the pure tree
// transformation that resolves a Field's bare Path against the variable
// bound by the Select/Where that owns it.
package fieldpath

import "github.com/mongolinq/mongo-go-linq/expr"

// Rewrite claims every unscoped Field reachable from e into scope, without
// descending past a nested Select or Where: those bind their own variable
// and claim their own unscoped Fields once they are themselves rewritten.
// A Field that already names a scope (an explicit reference to an
// enclosing variable, or the "$ROOT" escape) is left untouched.
func Rewrite(e expr.Expression, scope string) expr.Expression {
	switch n := e.(type) {
	case nil:
		return nil
	case *expr.Field:
		if n.Scope == "" {
			return &expr.Field{Path: n.Path, Scope: scope}
		}
		return n
	case *expr.Binary:
		return &expr.Binary{Op: n.Op, Left: Rewrite(n.Left, scope), Right: Rewrite(n.Right, scope), Type: n.Type}
	case *expr.Unary:
		return &expr.Unary{Op: n.Op, Operand: Rewrite(n.Operand, scope)}
	case *expr.Conditional:
		return &expr.Conditional{
			Test:    Rewrite(n.Test, scope),
			IfTrue:  Rewrite(n.IfTrue, scope),
			IfFalse: Rewrite(n.IfFalse, scope),
		}
	case *expr.Constant:
		return n
	case *expr.MemberAccess:
		return &expr.MemberAccess{Target: Rewrite(n.Target, scope), Member: n.Member, DeclaringType: n.DeclaringType}
	case *expr.MethodCall:
		var recv expr.Expression
		if n.Receiver != nil {
			recv = Rewrite(n.Receiver, scope)
		}
		args := make([]expr.Expression, len(n.Args))
		for i, a := range n.Args {
			args[i] = Rewrite(a, scope)
		}
		return &expr.MethodCall{Receiver: recv, Method: n.Method, Args: args}
	case *expr.New:
		members := make([]expr.Member, len(n.Members))
		for i, m := range n.Members {
			members[i] = expr.Member{Name: m.Name, Value: Rewrite(m.Value, scope)}
		}
		return &expr.New{Members: members}
	case *expr.FieldAsDocument:
		return &expr.FieldAsDocument{Name: n.Name, Inner: Rewrite(n.Inner, scope)}
	case *expr.Select:
		// Source is still evaluated in the outer scope; Selector belongs
		// to n.Var and is left for this Select's own translation to claim.
		return &expr.Select{Source: Rewrite(n.Source, scope), Var: n.Var, Selector: n.Selector}
	case *expr.Where:
		return &expr.Where{Source: Rewrite(n.Source, scope), Var: n.Var, Predicate: n.Predicate}
	case *expr.Accumulator:
		return &expr.Accumulator{Kind: n.Kind, Arg: Rewrite(n.Arg, scope)}
	case *expr.GroupingKey:
		return &expr.GroupingKey{Key: Rewrite(n.Key, scope)}
	case *expr.SetOperation:
		return &expr.SetOperation{Op: n.Op, Source: Rewrite(n.Source, scope), Other: Rewrite(n.Other, scope)}
	case *expr.ResultOperator:
		// Predicate/Value belong to n.Var (or are absent); only Source is
		// evaluated in the outer scope being claimed here.
		return &expr.ResultOperator{
			Kind:      n.Kind,
			Source:    Rewrite(n.Source, scope),
			Var:       n.Var,
			Predicate: n.Predicate,
			Value:     n.Value,
		}
	default:
		return e
	}
}
