// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package translate

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mongolinq/mongo-go-linq/expr"
	"github.com/mongolinq/mongo-go-linq/internal/fieldpath"
)

// translateResultOperator lowers an array-valued ResultOperator to a
// BSON expression. It is only reachable through the value translator's
// dispatch when ResultOperator.Source is set; a bare Pipeline.Result is
// lowered separately by the stage builder, into pipeline-terminal
// stages rather than an expression.
func (t *valueTranslator) translateResultOperator(n *expr.ResultOperator, ctx *stageCtx) (interface{}, error) {
	if n.Source == nil {
		return nil, NewInternalInvariantViolation("ResultOperator with no Source reached the value translator")
	}
	src, err := t.translate(n.Source, ctx)
	if err != nil {
		return nil, err
	}

	switch n.Kind {
	case expr.ResultCount:
		return bson.D{{Key: "$size", Value: src}}, nil

	case expr.ResultAny:
		return bson.D{{Key: "$gt", Value: bson.A{
			bson.D{{Key: "$size", Value: src}},
			int32(0),
		}}}, nil

	case expr.ResultAnyPredicate:
		mapped, err := t.mapPredicate(n.Var, n.Predicate, src, ctx)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$anyElementTrue", Value: mapped}}, nil

	case expr.ResultAll:
		mapped, err := t.mapPredicate(n.Var, n.Predicate, src, ctx)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$allElementsTrue", Value: mapped}}, nil

	case expr.ResultContains:
		value, err := t.translate(n.Value, ctx)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$anyElementTrue", Value: bson.D{{Key: "$map", Value: bson.D{
			{Key: "input", Value: src},
			{Key: "as", Value: "x"},
			{Key: "in", Value: bson.D{{Key: "$eq", Value: bson.A{"$$x", value}}}},
		}}}}}, nil

	default:
		return nil, &UnsupportedExpressionError{
			Expr:   n,
			Stage:  ctx.stageName,
			Reason: fmt.Sprintf("result operator %d is not valid over an array value", n.Kind),
		}
	}
}

// mapPredicate rewrites pred into var's scope and wraps it in a $map over
// src, producing the array of booleans $anyElementTrue/$allElementsTrue
// expect.
func (t *valueTranslator) mapPredicate(v string, pred expr.Expression, src interface{}, ctx *stageCtx) (interface{}, error) {
	scoped := fieldpath.Rewrite(pred, v)
	in, err := t.translate(scoped, ctx)
	if err != nil {
		return nil, err
	}
	return bson.D{{Key: "$map", Value: bson.D{
		{Key: "input", Value: src},
		{Key: "as", Value: v},
		{Key: "in", Value: in},
	}}}, nil
}

// terminalStages lowers a non-nil Pipeline.Result into the stages that
// get appended after the pipeline's own stages. Array-only forms
// (Any(pred), All, Contains) have no pipeline-level meaning and are
// rejected, as are First/Single, which have no aggregation-stage
// lowering of their own; pipeline-level Any() emits a $limit:1 rather
// than a $group/$count pair, leaving the caller to decide existence
// from whether any document comes back.
func terminalStages(result *expr.ResultOperator) ([]bson.D, error) {
	switch result.Kind {
	case expr.NoResult:
		return nil, nil
	case expr.ResultCount:
		return []bson.D{{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: int32(1)}}},
		}}}}, nil
	case expr.ResultAny:
		return []bson.D{{{Key: "$limit", Value: int32(1)}}}, nil
	case expr.ResultFirst, expr.ResultSingle, expr.ResultAnyPredicate, expr.ResultAll, expr.ResultContains:
		return nil, &UnsupportedExpressionError{
			Expr:   result,
			Stage:  "result",
			Reason: "this result operator has no pipeline-terminal lowering",
		}
	default:
		return nil, NewInternalInvariantViolation(fmt.Sprintf("unhandled pipeline result kind %d", result.Kind))
	}
}
