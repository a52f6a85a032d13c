// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package expr

// Visitor is called once per node by Walk, in a pre-order traversal.
// Visit returns false to stop descending into the current node's children;
// it does not stop the traversal of siblings.
type Visitor interface {
	Visit(e Expression) (descend bool)
}

// VisitorFunc adapts a plain function to Visitor.
type VisitorFunc func(e Expression) bool

// Visit calls f.
func (f VisitorFunc) Visit(e Expression) bool { return f(e) }

// Walk traverses e in pre-order, calling v.Visit on every Expression node
// reachable from e, including e itself. Walk does not descend into Stage
// nodes beyond the Expression fields they carry (Pipeline.Stages are
// walked as a special case since Stage is a disjoint sum from Expression).
func Walk(e Expression, v Visitor) {
	if e == nil || !v.Visit(e) {
		return
	}
	switch n := e.(type) {
	case *Binary:
		Walk(n.Left, v)
		Walk(n.Right, v)
	case *Unary:
		Walk(n.Operand, v)
	case *Conditional:
		Walk(n.Test, v)
		Walk(n.IfTrue, v)
		Walk(n.IfFalse, v)
	case *Constant:
		// leaf
	case *MemberAccess:
		Walk(n.Target, v)
	case *MethodCall:
		Walk(n.Receiver, v)
		for _, a := range n.Args {
			Walk(a, v)
		}
	case *New:
		for _, m := range n.Members {
			Walk(m.Value, v)
		}
	case *Field:
		// leaf
	case *FieldAsDocument:
		Walk(n.Inner, v)
	case *Select:
		Walk(n.Source, v)
		Walk(n.Selector, v)
	case *Where:
		Walk(n.Source, v)
		Walk(n.Predicate, v)
	case *Accumulator:
		Walk(n.Arg, v)
	case *GroupingKey:
		Walk(n.Key, v)
	case *SetOperation:
		Walk(n.Source, v)
		Walk(n.Other, v)
	case *Pipeline:
		for _, s := range n.Stages {
			WalkStage(s, v)
		}
		if n.Result != nil {
			Walk(n.Result, v)
		}
	case *ResultOperator:
		Walk(n.Source, v)
		switch n.Kind {
		case ResultAnyPredicate, ResultAll:
			Walk(n.Predicate, v)
		case ResultContains:
			Walk(n.Value, v)
		}
	}
}

// WalkStage walks the Expression fields of a single Stage.
func WalkStage(s Stage, v Visitor) {
	switch n := s.(type) {
	case *WhereStage:
		Walk(n.Predicate, v)
	case *SelectStage:
		Walk(n.Selector, v)
	case *GroupByStage:
		Walk(n.Key, v)
	case *OrderStage:
		Walk(n.Key, v)
	case *SelectManyStage:
		Walk(n.ResultSelector, v)
	case *DistinctStage:
		Walk(n.Projection, v)
	}
}
