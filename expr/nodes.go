// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package expr

// BinaryOp enumerates the binary operators recognized by the translator.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	And
	Or
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	Coalesce
)

// UnaryOp enumerates the unary operators recognized by the translator.
type UnaryOp int

const (
	Not UnaryOp = iota
	Convert
	ArrayLength
	Negate
)

// AccumulatorKind enumerates the group-stage accumulator operators.
type AccumulatorKind int

const (
	Sum AccumulatorKind = iota
	Avg
	Min
	Max
	First
	Last
	Push
	AddToSet
)

// SetOp enumerates the set-algebra operators.
type SetOp int

const (
	Union SetOp = iota
	Intersect
	Except
)

// Types implementing Expression.
type (
	// Binary applies a binary operator to two subexpressions. Type carries
	// the static type of the operands, which the value translator needs to
	// distinguish Add on strings (string concatenation) from arithmetic Add.
	Binary struct {
		Op    BinaryOp
		Left  Expression
		Right Expression
		Type  StaticType
	}

	// Unary applies a unary operator to a single operand.
	Unary struct {
		Op      UnaryOp
		Operand Expression
	}

	// Conditional is a ternary if/then/else.
	Conditional struct {
		Test    Expression
		IfTrue  Expression
		IfFalse Expression
	}

	// Constant is a literal value already typed by the front-end. Value
	// must be a type the BSON value model can represent directly.
	Constant struct {
		Value interface{}
		Type  StaticType
	}

	// MemberAccess reads a named member off Target. DeclaringType records
	// the type Target was declared with, which disambiguates overloaded
	// member names such as DateTime.Day vs. a user member named Day.
	MemberAccess struct {
		Target        Expression
		Member        string
		DeclaringType StaticType
	}

	// MethodIdentity names a method uniquely enough for dispatch: its
	// name, the type it is declared on, and its arity (to distinguish
	// Equals(t) from Equals(t, comparisonKind)).
	MethodIdentity struct {
		Name          string
		DeclaringType StaticType
		Arity         int
	}

	// MethodCall invokes a recognized method. Receiver is nil for static
	// calls such as string.IsNullOrEmpty.
	MethodCall struct {
		Receiver Expression
		Method   MethodIdentity
		Args     []Expression
	}

	// Member binds one named member of a New/MemberInit to a subexpression.
	Member struct {
		Name  string
		Value Expression
	}

	// New is a constructor or member-initializer expression: an ordered
	// set of named member bindings. At most one Member's Value may be a
	// GroupingKey; when present, the projection mapper renames it to _id
	// and emits it first regardless of its position here.
	New struct {
		Members []Member
	}

	// Field is a resolved, dotted field path produced by the query
	// front-end. Scope names the lexical variable this field was resolved
	// against: empty means the root document (or, if no scope is active,
	// the current pipeline document); "$ROOT" is an explicit escape to the
	// overall input document from inside a nested scope; any other value
	// names the Select/Where-bound variable the field is relative to.
	Field struct {
		Path  string
		Scope string
	}

	// FieldAsDocument forces Inner to be emitted wrapped as {Name: Inner}
	// rather than however Inner would normally translate.
	FieldAsDocument struct {
		Name  string
		Inner Expression
	}

	// Select is an array-level projection: for each element of Source,
	// bind it to Var and evaluate Selector. The field-path rewriter
	// assigns every unscoped Field inside Selector to Var, so it is
	// emitted as "$$Var.path"; a Field that already names a scope keeps
	// it and is emitted as "$$scope.path".
	Select struct {
		Source   Expression
		Var      string
		Selector Expression
	}

	// Where is an array-level filter: for each element of Source, bind it
	// to Var and keep it if Predicate holds. See Select for scoping.
	Where struct {
		Source    Expression
		Var       string
		Predicate Expression
	}

	// Accumulator names a group-stage accumulator function applied to Arg.
	// In the stages downstream of a GroupByStage (a predicate, a selector,
	// a sort key, ...) the pipeline builder hoists it into the $group stage
	// and rewrites those references to a slot Field.
	Accumulator struct {
		Kind AccumulatorKind
		Arg  Expression
	}

	// GroupingKey wraps the key expression of a group-by. A New containing
	// a Member whose Value is a GroupingKey has that member promoted to
	// _id by the projection mapper.
	GroupingKey struct {
		Key Expression
	}

	// SetOperation applies a set algebra operator between two collection
	// valued expressions.
	SetOperation struct {
		Op     SetOp
		Source Expression
		Other  Expression
	}
)

func (*Binary) isExpr()          {}
func (*Unary) isExpr()           {}
func (*Conditional) isExpr()     {}
func (*Constant) isExpr()        {}
func (*MemberAccess) isExpr()    {}
func (*MethodCall) isExpr()      {}
func (*New) isExpr()             {}
func (*Field) isExpr()           {}
func (*FieldAsDocument) isExpr() {}
func (*Select) isExpr()          {}
func (*Where) isExpr()           {}
func (*Accumulator) isExpr()     {}
func (*GroupingKey) isExpr()     {}
func (*SetOperation) isExpr()    {}
