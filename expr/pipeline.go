// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package expr

// ResultKind enumerates the terminal result operators a Pipeline may carry.
type ResultKind int

const (
	// NoResult means the pipeline's stages are the whole translation: no
	// terminal operator is lowered.
	NoResult ResultKind = iota
	ResultAny
	ResultAnyPredicate
	ResultAll
	ResultCount
	ResultContains
	ResultFirst
	ResultSingle
)

// ResultOperator is a terminal operator applied either to a Pipeline's
// document stream or, when Source is set, to an in-memory array value.
// A ResultOperator with Source set is itself an Expression, so it can
// appear nested inside a projection (e.g. a member computing
// x.Items.Any(pred)); a ResultOperator without Source is only valid as
// Pipeline.Result.
type ResultOperator struct {
	Kind ResultKind

	// Source is set when the result operator applies to an array value
	// rather than to the pipeline's own document stream (e.g. Count() over
	// a projected array field).
	Source Expression

	// Var names the bound variable Predicate is evaluated against, for
	// Any(pred) and All(pred); the field-path rewriter treats it exactly
	// as it would a Select/Where variable.
	Var string

	// Predicate is set for Any(pred) and All(pred).
	Predicate Expression

	// Value is set for Contains(v).
	Value Expression
}

func (*ResultOperator) isExpr() {}

// Pipeline is the root expression the translator is handed: an ordered,
// non-empty list of stages, with an optional terminal result operator.
// The first stage's input is the source collection. Result is nil when
// the pipeline's stages are the whole translation.
type Pipeline struct {
	Stages []Stage
	Result *ResultOperator
}

func (*Pipeline) isExpr() {}

// SortKey is one key of an OrderStage, in declaration order.
type SortKey struct {
	Key        Expression
	Descending bool
}

// Types implementing Stage.
type (
	// WhereStage filters the document stream by Predicate, evaluated
	// against the root document (no bound variable).
	WhereStage struct {
		Predicate Expression
	}

	// SelectStage projects the document stream through Selector: a New
	// becomes a $project document, a bare Field becomes a single-field
	// projection, anything else becomes a computed placeholder field.
	SelectStage struct {
		Selector Expression
	}

	// GroupByStage groups the document stream by Key, binding the grouped
	// view to Var for any downstream stage that references accumulators
	// against it (see the pipeline builder's hoisting pass).
	GroupByStage struct {
		Key Expression
		Var string
	}

	// OrderStage is one OrderBy/ThenBy/ThenByDescending link. The builder
	// coalesces a maximal run of consecutive OrderStages into one $sort.
	OrderStage struct {
		SortKey
	}

	// SkipStage drops the first Count documents.
	SkipStage struct {
		Count int64
	}

	// TakeStage keeps at most Count documents.
	TakeStage struct {
		Count int64
	}

	// OfTypeStage filters to documents whose discriminator field equals
	// TypeName.
	OfTypeStage struct {
		TypeName           string
		DiscriminatorField string
	}

	// SelectManyStage unwinds InnerPath and then projects through
	// ResultSelector exactly as SelectStage would.
	SelectManyStage struct {
		InnerPath      string
		ResultSelector Expression
	}

	// DistinctStage groups by the whole document (Projection == nil) or by
	// a projected expression.
	DistinctStage struct {
		Projection Expression
	}
)

func (*WhereStage) isStage()      {}
func (*SelectStage) isStage()     {}
func (*GroupByStage) isStage()    {}
func (*OrderStage) isStage()      {}
func (*SkipStage) isStage()       {}
func (*TakeStage) isStage()       {}
func (*OfTypeStage) isStage()     {}
func (*SelectManyStage) isStage() {}
func (*DistinctStage) isStage()   {}
