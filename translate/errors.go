// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package translate

import (
	"fmt"

	"github.com/go-stack/stack"
	"github.com/mongolinq/mongo-go-linq/expr"
)

// UnsupportedExpressionError is returned when an expression's variant, or
// a member/method it invokes, is not in the recognized subset. It carries
// enough context for a user to find and rewrite the offending query
// clause: the printable form of the offending subtree and the name of the
// pipeline stage it was found in.
type UnsupportedExpressionError struct {
	// Expr is the offending subtree.
	Expr expr.Expression
	// Stage names the containing pipeline stage, e.g. "$match" or
	// "$project". Empty when the expression was translated outside of any
	// stage (a bare array-valued result operator, for instance).
	Stage string
	// Reason gives a short, specific explanation (an unrecognized method
	// name, an unhandled binary operator, ...).
	Reason string
}

func (e *UnsupportedExpressionError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("unsupported expression in %s stage: %s (%s)", e.Stage, expr.Print(e.Expr), e.Reason)
	}
	return fmt.Sprintf("unsupported expression: %s (%s)", expr.Print(e.Expr), e.Reason)
}

// AmbiguousOrderingError is returned when a single $sort specification
// would name the same field more than once, even in opposite directions.
type AmbiguousOrderingError struct {
	Field string
}

func (e *AmbiguousOrderingError) Error() string {
	return fmt.Sprintf("ambiguous ordering: %q appears more than once in one sort specification", e.Field)
}

// InternalInvariantViolationError indicates a bug in the translator or in
// a caller that built an expression tree violating a documented
// invariant (an accumulator kind the dispatch table does not cover, a
// non-constructor node reaching the projection mapper, ...). It captures
// the call stack at construction time, since a maintainer chasing this
// error wants to know where inside the translator it was raised, not
// which user query triggered it.
type InternalInvariantViolationError struct {
	Reason string
	Stack  stack.CallStack
}

// NewInternalInvariantViolation constructs an InternalInvariantViolationError
// with the current call stack attached.
func NewInternalInvariantViolation(reason string) *InternalInvariantViolationError {
	return &InternalInvariantViolationError{Reason: reason, Stack: stack.Trace().TrimRuntime()}
}

func (e *InternalInvariantViolationError) Error() string {
	return fmt.Sprintf("internal invariant violation: %s\n%s", e.Reason, e.Stack)
}
