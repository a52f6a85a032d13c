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
	"github.com/mongolinq/mongo-go-linq/internal/bsonutil"
	"github.com/mongolinq/mongo-go-linq/internal/fieldpath"
	"github.com/mongolinq/mongo-go-linq/internal/slotutil"
	"github.com/mongolinq/mongo-go-linq/log"
)

// stageCtx carries the context a value translation needs but that isn't
// part of the expression tree itself: which pipeline stage it is running
// inside of, for error messages.
type stageCtx struct {
	stageName string
}

// valueTranslator lowers a single expression to a BSON value. It is total
// over the recognized subset and fails with UnsupportedExpressionError on
// anything else; it has no side effects beyond consulting the fresh-name
// counters it was built with and, optionally, emitting trace log records.
type valueTranslator struct {
	build *slotutil.Build
	sink  log.Sink
}

func newValueTranslator(build *slotutil.Build, sink log.Sink) *valueTranslator {
	if sink == nil {
		sink = log.NopSink{}
	}
	return &valueTranslator{build: build, sink: sink}
}

// translate maps a single expression node to its BSON value.
func (t *valueTranslator) translate(e expr.Expression, ctx *stageCtx) (interface{}, error) {
	switch n := e.(type) {
	case nil:
		return nil, NewInternalInvariantViolation("nil expression reached the value translator")
	case *expr.Constant:
		return bsonutil.EscapeLiteral(n.Value), nil
	case *expr.Field:
		return t.translateField(n), nil
	case *expr.FieldAsDocument:
		v, err := t.translate(n.Inner, ctx)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: n.Name, Value: v}}, nil
	case *expr.Binary:
		return t.translateBinary(n, ctx)
	case *expr.Unary:
		return t.translateUnary(n, ctx)
	case *expr.Conditional:
		test, err := t.translate(n.Test, ctx)
		if err != nil {
			return nil, err
		}
		ifTrue, err := t.translate(n.IfTrue, ctx)
		if err != nil {
			return nil, err
		}
		ifFalse, err := t.translate(n.IfFalse, ctx)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$cond", Value: bson.A{test, ifTrue, ifFalse}}}, nil
	case *expr.MemberAccess:
		return t.translateMemberAccess(n, ctx)
	case *expr.MethodCall:
		return t.translateMethodCall(n, ctx)
	case *expr.New:
		doc, err := projectMembers(t, n.Members, ctx)
		if err != nil {
			return nil, err
		}
		// projectMembers appends "_id: 0" for a $project body; a nested
		// document keeps only its own members.
		if len(doc) == len(n.Members)+1 {
			doc = doc[:len(doc)-1]
		}
		return doc, nil
	case *expr.Select:
		return t.translateSelect(n, ctx)
	case *expr.Where:
		return t.translateWhere(n, ctx)
	case *expr.Accumulator:
		return t.translateAccumulator(n, ctx)
	case *expr.GroupingKey:
		return nil, NewInternalInvariantViolation("GroupingKey reached the value translator outside a New/MemberInit member")
	case *expr.SetOperation:
		return t.translateSetOperation(n, ctx)
	case *expr.ResultOperator:
		return t.translateResultOperator(n, ctx)
	default:
		return nil, &UnsupportedExpressionError{Expr: e, Stage: ctx.stageName, Reason: fmt.Sprintf("unrecognized expression node %T", e)}
	}
}

func (t *valueTranslator) translateField(n *expr.Field) interface{} {
	switch {
	case n.Scope == "":
		return "$" + n.Path
	case n.Scope == "$ROOT":
		if n.Path == "" {
			return "$$ROOT"
		}
		return "$$ROOT." + n.Path
	default:
		if n.Path == "" {
			return "$$" + n.Scope
		}
		return "$$" + n.Scope + "." + n.Path
	}
}

func (t *valueTranslator) translateBinary(n *expr.Binary, ctx *stageCtx) (interface{}, error) {
	left, err := t.translate(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := t.translate(n.Right, ctx)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case expr.Add:
		if n.Type == expr.TypeString {
			return bson.D{{Key: "$concat", Value: bsonutil.Flatten("$concat", left, right)}}, nil
		}
		return bson.D{{Key: "$add", Value: bsonutil.Flatten("$add", left, right)}}, nil
	case expr.Sub:
		return bson.D{{Key: "$subtract", Value: bson.A{left, right}}}, nil
	case expr.Mul:
		return bson.D{{Key: "$multiply", Value: bsonutil.Flatten("$multiply", left, right)}}, nil
	case expr.Div:
		return bson.D{{Key: "$divide", Value: bson.A{left, right}}}, nil
	case expr.Mod:
		return bson.D{{Key: "$mod", Value: bson.A{left, right}}}, nil
	case expr.And:
		return bson.D{{Key: "$and", Value: bsonutil.Flatten("$and", left, right)}}, nil
	case expr.Or:
		return bson.D{{Key: "$or", Value: bsonutil.Flatten("$or", left, right)}}, nil
	case expr.Eq:
		return bson.D{{Key: "$eq", Value: bson.A{left, right}}}, nil
	case expr.Ne:
		return bson.D{{Key: "$ne", Value: bson.A{left, right}}}, nil
	case expr.Lt:
		return bson.D{{Key: "$lt", Value: bson.A{left, right}}}, nil
	case expr.Le:
		return bson.D{{Key: "$lte", Value: bson.A{left, right}}}, nil
	case expr.Gt:
		return bson.D{{Key: "$gt", Value: bson.A{left, right}}}, nil
	case expr.Ge:
		return bson.D{{Key: "$gte", Value: bson.A{left, right}}}, nil
	case expr.Coalesce:
		return bson.D{{Key: "$ifNull", Value: bson.A{left, right}}}, nil
	default:
		return nil, NewInternalInvariantViolation(fmt.Sprintf("unhandled binary operator %d", n.Op))
	}
}

func (t *valueTranslator) translateUnary(n *expr.Unary, ctx *stageCtx) (interface{}, error) {
	switch n.Op {
	case expr.Convert:
		// Type coercion is erased; the underlying value already has the
		// shape the server needs.
		return t.translate(n.Operand, ctx)
	case expr.Not:
		v, err := t.translate(n.Operand, ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := v.(bson.A); !ok {
			v = bson.A{v}
		}
		return bson.D{{Key: "$not", Value: v}}, nil
	case expr.ArrayLength:
		v, err := t.translate(n.Operand, ctx)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$size", Value: v}}, nil
	case expr.Negate:
		v, err := t.translate(n.Operand, ctx)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$multiply", Value: bson.A{v, int32(-1)}}}, nil
	default:
		return nil, NewInternalInvariantViolation(fmt.Sprintf("unhandled unary operator %d", n.Op))
	}
}

func (t *valueTranslator) translateMemberAccess(n *expr.MemberAccess, ctx *stageCtx) (interface{}, error) {
	target, err := t.translate(n.Target, ctx)
	if err != nil {
		return nil, err
	}
	switch n.DeclaringType {
	case expr.TypeDateTime:
		op, ok := dateTimeMemberOps[n.Member]
		if !ok {
			return nil, &UnsupportedExpressionError{Expr: n, Stage: ctx.stageName, Reason: "unrecognized DateTime member " + n.Member}
		}
		if n.Member == "DayOfWeek" {
			// The server numbers Sunday=1; the object model numbers Sunday=0.
			return bson.D{{Key: "$subtract", Value: bson.A{bson.D{{Key: op, Value: target}}, int32(1)}}}, nil
		}
		return bson.D{{Key: op, Value: target}}, nil
	case expr.TypeCollection:
		if n.Member == "Count" {
			return bson.D{{Key: "$size", Value: target}}, nil
		}
	}
	return nil, &UnsupportedExpressionError{Expr: n, Stage: ctx.stageName, Reason: "unrecognized member access " + n.Member}
}

func (t *valueTranslator) translateMethodCall(n *expr.MethodCall, ctx *stageCtx) (interface{}, error) {
	switch {
	case n.Method.Name == "IsNullOrEmpty" && n.Receiver == nil && len(n.Args) == 1:
		s, err := t.translate(n.Args[0], ctx)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{s, nil}}},
			bson.D{{Key: "$eq", Value: bson.A{s, ""}}},
		}}}, nil

	case n.Method.Name == "Equals" && n.Receiver != nil && len(n.Args) >= 1:
		recv, err := t.translate(n.Receiver, ctx)
		if err != nil {
			return nil, err
		}
		other, err := t.translate(n.Args[0], ctx)
		if err != nil {
			return nil, err
		}
		if len(n.Args) == 2 {
			if cmp, ok := constantComparison(n.Args[1]); ok && cmp == OrdinalIgnoreCase {
				return bson.D{{Key: "$eq", Value: bson.A{
					bson.D{{Key: "$strcasecmp", Value: bson.A{recv, other}}},
					int32(0),
				}}}, nil
			}
		}
		return bson.D{{Key: "$eq", Value: bson.A{recv, other}}}, nil

	case n.Method.Name == "Substring" && n.Receiver != nil && len(n.Args) == 2:
		s, err := t.translate(n.Receiver, ctx)
		if err != nil {
			return nil, err
		}
		i, err := t.translate(n.Args[0], ctx)
		if err != nil {
			return nil, err
		}
		l, err := t.translate(n.Args[1], ctx)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$substr", Value: bson.A{s, i, l}}}, nil

	case (n.Method.Name == "ToLower" || n.Method.Name == "ToLowerInvariant") && n.Receiver != nil:
		s, err := t.translate(n.Receiver, ctx)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$toLower", Value: s}}, nil

	case (n.Method.Name == "ToUpper" || n.Method.Name == "ToUpperInvariant") && n.Receiver != nil:
		s, err := t.translate(n.Receiver, ctx)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$toUpper", Value: s}}, nil

	case n.Method.Name == "IsSubsetOf" && n.Receiver != nil && len(n.Args) == 1:
		h, err := t.translate(n.Receiver, ctx)
		if err != nil {
			return nil, err
		}
		o, err := t.translate(n.Args[0], ctx)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$setIsSubset", Value: bson.A{h, o}}}, nil

	case n.Method.Name == "SetEquals" && n.Receiver != nil && len(n.Args) == 1:
		h, err := t.translate(n.Receiver, ctx)
		if err != nil {
			return nil, err
		}
		o, err := t.translate(n.Args[0], ctx)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$setEquals", Value: bson.A{h, o}}}, nil

	case n.Method.Name == "CompareTo" && n.Receiver != nil && len(n.Args) == 1:
		x, err := t.translate(n.Receiver, ctx)
		if err != nil {
			return nil, err
		}
		y, err := t.translate(n.Args[0], ctx)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$cmp", Value: bson.A{x, y}}}, nil
	}

	return nil, &UnsupportedExpressionError{
		Expr:   n,
		Stage:  ctx.stageName,
		Reason: fmt.Sprintf("unrecognized method %s/%d", n.Method.Name, len(n.Args)),
	}
}

// translateSelect implements the array-level Select row of the dispatch
// table, including field-path fusion: when both the source and the
// selector are bare field expressions, the concatenated path is emitted
// directly instead of a $map.
func (t *valueTranslator) translateSelect(n *expr.Select, ctx *stageCtx) (interface{}, error) {
	if srcField, ok := n.Source.(*expr.Field); ok {
		if selField, ok := n.Selector.(*expr.Field); ok && selField.Scope == "" {
			src, _ := t.translateField(srcField).(string)
			if selField.Path == "" {
				return src, nil
			}
			return src + "." + selField.Path, nil
		}
	}

	src, err := t.translate(n.Source, ctx)
	if err != nil {
		return nil, err
	}
	t.sink.Log(log.TraceLevel, log.ComponentFieldPath, "entering scope", "var", n.Var)
	sel := fieldpath.Rewrite(n.Selector, n.Var)
	in, err := t.translate(sel, ctx)
	if err != nil {
		return nil, err
	}
	return bson.D{{Key: "$map", Value: bson.D{
		{Key: "input", Value: src},
		{Key: "as", Value: n.Var},
		{Key: "in", Value: in},
	}}}, nil
}

func (t *valueTranslator) translateWhere(n *expr.Where, ctx *stageCtx) (interface{}, error) {
	src, err := t.translate(n.Source, ctx)
	if err != nil {
		return nil, err
	}
	t.sink.Log(log.TraceLevel, log.ComponentFieldPath, "entering scope", "var", n.Var)
	pred := fieldpath.Rewrite(n.Predicate, n.Var)
	cond, err := t.translate(pred, ctx)
	if err != nil {
		return nil, err
	}
	return bson.D{{Key: "$filter", Value: bson.D{
		{Key: "input", Value: src},
		{Key: "as", Value: n.Var},
		{Key: "cond", Value: cond},
	}}}, nil
}

var accumulatorOps = map[expr.AccumulatorKind]string{
	expr.Sum:      "$sum",
	expr.Avg:      "$avg",
	expr.Min:      "$min",
	expr.Max:      "$max",
	expr.First:    "$first",
	expr.Last:     "$last",
	expr.Push:     "$push",
	expr.AddToSet: "$addToSet",
}

func (t *valueTranslator) translateAccumulator(n *expr.Accumulator, ctx *stageCtx) (interface{}, error) {
	arg, err := t.translate(n.Arg, ctx)
	if err != nil {
		return nil, err
	}
	op, ok := accumulatorOps[n.Kind]
	if !ok {
		return nil, NewInternalInvariantViolation(fmt.Sprintf("unhandled accumulator kind %d", n.Kind))
	}
	return bson.D{{Key: op, Value: arg}}, nil
}

func (t *valueTranslator) translateSetOperation(n *expr.SetOperation, ctx *stageCtx) (interface{}, error) {
	src, err := t.translate(n.Source, ctx)
	if err != nil {
		return nil, err
	}
	other, err := t.translate(n.Other, ctx)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case expr.Union:
		return bson.D{{Key: "$setUnion", Value: bson.A{src, other}}}, nil
	case expr.Intersect:
		return bson.D{{Key: "$setIntersection", Value: bson.A{src, other}}}, nil
	case expr.Except:
		return bson.D{{Key: "$setDifference", Value: bson.A{src, other}}}, nil
	default:
		return nil, NewInternalInvariantViolation(fmt.Sprintf("unhandled set operator %d", n.Op))
	}
}
