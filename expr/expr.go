// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package expr defines the typed expression tree that the translate
// package consumes. It is produced by a query front-end that has already
// resolved field paths and annotated types; expr itself performs no
// resolution and holds no behavior beyond the tree shape.
package expr

// Expression is the closed sum of node kinds the translator recognizes.
// Every variant implements the unexported isExpr marker so that the set
// of implementations is sealed to this package: adding a new variant
// here forces every exhaustive switch in translate to be revisited.
type Expression interface {
	isExpr()
}

// Stage is the closed sum of pipeline-stage nodes. Stage and Expression
// are disjoint: a Stage only ever appears as an element of Pipeline.Stages,
// never nested inside a value-level expression.
type Stage interface {
	isStage()
}

// StaticType is the minimal type information the front-end attaches to a
// node, used only to disambiguate emissions that depend on operand type
// (Add on strings vs. numbers, DateTime vs. Collection member access).
type StaticType int

const (
	TypeUnknown StaticType = iota
	TypeString
	TypeInt32
	TypeInt64
	TypeDouble
	TypeBool
	TypeDateTime
	TypeArray
	TypeCollection // a slice/array-typed member, e.g. the source of Collection.Count
	TypeSet        // a set-typed value, source of IsSubsetOf/SetEquals/Union/Intersect/Except
	TypeDocument
)
