// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package translate

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mongolinq/mongo-go-linq/expr"
	"github.com/mongolinq/mongo-go-linq/internal/bsonutil"
	"github.com/mongolinq/mongo-go-linq/internal/slotutil"
	"github.com/mongolinq/mongo-go-linq/log"
)

// buildPipeline walks p.Stages in source order, lowering each to one or
// more stage documents, and finally lowers p.Result (if any) into the
// stages terminalStages describes. It owns the one slot-counter pair
// for this build; two pipelines never share a buildPipeline call and so
// never share slots.
func buildPipeline(p *expr.Pipeline, sink log.Sink) ([]bson.D, error) {
	build := slotutil.NewBuild()
	t := newValueTranslator(build, sink)

	stages := make([]expr.Stage, len(p.Stages))
	copy(stages, p.Stages)

	var out []bson.D
	for i := 0; i < len(stages); i++ {
		kind := stages[i]
		switch n := stages[i].(type) {
		case *expr.WhereStage:
			doc, err := buildMatch(t, n.Predicate)
			if err != nil {
				return nil, wrapStageError(err, i, kind)
			}
			out = append(out, bson.D{{Key: "$match", Value: doc}})

		case *expr.SelectStage:
			doc, err := buildProject(t, n.Selector, build)
			if err != nil {
				return nil, wrapStageError(err, i, kind)
			}
			out = append(out, bson.D{{Key: "$project", Value: doc}})

		case *expr.GroupByStage:
			groupDoc, _, err := buildGroup(t, build, n, stages[i+1:])
			if err != nil {
				return nil, wrapStageError(err, i, kind)
			}
			out = append(out, bson.D{{Key: "$group", Value: groupDoc}})
			// buildGroup rewrote the downstream stages (up to the next
			// GroupByStage) in place; the main loop processes them
			// normally on subsequent iterations, using those rewrites.

		case *expr.OrderStage:
			doc, next, err := buildSort(t, stages, i)
			if err != nil {
				return nil, wrapStageError(err, i, kind)
			}
			out = append(out, bson.D{{Key: "$sort", Value: doc}})
			i = next - 1

		case *expr.SkipStage:
			out = append(out, bson.D{{Key: "$skip", Value: n.Count}})

		case *expr.TakeStage:
			out = append(out, bson.D{{Key: "$limit", Value: n.Count}})

		case *expr.OfTypeStage:
			out = append(out, bson.D{{Key: "$match", Value: bson.D{{Key: n.DiscriminatorField, Value: n.TypeName}}}})

		case *expr.SelectManyStage:
			out = append(out, bson.D{{Key: "$unwind", Value: "$" + n.InnerPath}})
			doc, err := buildProject(t, n.ResultSelector, build)
			if err != nil {
				return nil, wrapStageError(err, i, kind)
			}
			out = append(out, bson.D{{Key: "$project", Value: doc}})

		case *expr.DistinctStage:
			var id interface{}
			if n.Projection == nil {
				id = "$$ROOT"
			} else {
				v, err := t.translate(n.Projection, &stageCtx{stageName: "$group"})
				if err != nil {
					return nil, wrapStageError(err, i, kind)
				}
				id = v
			}
			out = append(out, bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: id}}}})
			if n.Projection == nil {
				for j := i + 1; j < len(stages); j++ {
					if isGroupOrDistinct(stages[j]) {
						break
					}
					stages[j] = rewriteRootFields(stages[j], "_id")
				}
			}

		default:
			return nil, NewInternalInvariantViolation(fmt.Sprintf("unhandled stage type %T", stages[i]))
		}
	}

	if p.Result != nil {
		extra, err := terminalStages(p.Result)
		if err != nil {
			return nil, wrapStageError(err, len(stages), p.Result)
		}
		out = append(out, extra...)
	}
	return out, nil
}

// wrapStageError attaches the 0-based source-stage index and the stage's
// dynamic type to err without losing the underlying typed error, so a
// caller can still errors.As into *UnsupportedExpressionError,
// *AmbiguousOrderingError, or *InternalInvariantViolationError.
func wrapStageError(err error, index int, stage interface{}) error {
	return errors.Wrapf(err, "stage %d (%T)", index, stage)
}

// buildMatch compiles a Where predicate into a $match body. An
// Eq(Field, Constant) chain joined entirely by And compiles to MQL
// shorthand ({field: value, ...}); anything else falls back to
// {"$expr": T(pred)}.
func buildMatch(t *valueTranslator, pred expr.Expression) (bson.D, error) {
	if doc, ok := shorthandMatch(pred); ok {
		return doc, nil
	}
	v, err := t.translate(pred, &stageCtx{stageName: "$match"})
	if err != nil {
		return nil, err
	}
	return bson.D{{Key: "$expr", Value: v}}, nil
}

func shorthandMatch(e expr.Expression) (bson.D, bool) {
	switch n := e.(type) {
	case *expr.Binary:
		switch n.Op {
		case expr.And:
			left, ok := shorthandMatch(n.Left)
			if !ok {
				return nil, false
			}
			right, ok := shorthandMatch(n.Right)
			if !ok {
				return nil, false
			}
			return append(left, right...), true
		case expr.Eq:
			field, ok := n.Left.(*expr.Field)
			if !ok || field.Scope != "" {
				return nil, false
			}
			constant, ok := n.Right.(*expr.Constant)
			if !ok {
				return nil, false
			}
			return bson.D{{Key: field.Path, Value: bsonutil.EscapeLiteral(constant.Value)}}, true
		}
	}
	return nil, false
}

// buildProject implements the three SelectStage shapes: a composite New
// of members, a bare passthrough field, and a single computed value.
func buildProject(t *valueTranslator, sel expr.Expression, build *slotutil.Build) (bson.D, error) {
	switch n := sel.(type) {
	case *expr.New:
		return projectMembers(t, n.Members, &stageCtx{stageName: "$project"})
	case *expr.Field:
		if n.Scope != "" {
			return nil, &UnsupportedExpressionError{Expr: n, Stage: "$project", Reason: "a top-level projection field must be unscoped"}
		}
		return bson.D{{Key: n.Path, Value: int32(1)}, {Key: "_id", Value: int32(0)}}, nil
	default:
		v, err := t.translate(sel, &stageCtx{stageName: "$project"})
		if err != nil {
			return nil, err
		}
		name := build.Field.Next()
		return bson.D{{Key: name, Value: v}, {Key: "_id", Value: int32(0)}}, nil
	}
}

// buildSort coalesces the maximal run of OrderStages starting at index i
// into one $sort document, returning the index just past the run.
func buildSort(t *valueTranslator, stages []expr.Stage, i int) (bson.D, int, error) {
	var doc bson.D
	seen := make(map[string]bool)
	j := i
	for j < len(stages) {
		os, ok := stages[j].(*expr.OrderStage)
		if !ok {
			break
		}
		v, err := t.translate(os.Key, &stageCtx{stageName: "$sort"})
		if err != nil {
			return nil, 0, err
		}
		path, ok := v.(string)
		if !ok || !strings.HasPrefix(path, "$") {
			return nil, 0, &UnsupportedExpressionError{Expr: os.Key, Stage: "$sort", Reason: "sort key must be a bare field reference"}
		}
		name := strings.TrimPrefix(path, "$")
		if seen[name] {
			return nil, 0, &AmbiguousOrderingError{Field: name}
		}
		seen[name] = true
		dir := int32(1)
		if os.Descending {
			dir = -1
		}
		doc = append(doc, bson.E{Key: name, Value: dir})
		j++
	}
	return doc, j, nil
}

// buildGroup lowers a GroupByStage's key and hoists every distinct
// Accumulator reachable from the stages downstream of it — up to (but not
// including) the next GroupByStage or the end of the pipeline — into
// fresh __aggN slots, rewriting those downstream stages in place to
// reference the slot instead. It returns the $group document and the
// number of downstream stages the hoisting pass rewrote; the caller does
// not skip those stages, it translates them normally on later loop
// iterations.
func buildGroup(t *valueTranslator, build *slotutil.Build, n *expr.GroupByStage, rest []expr.Stage) (bson.D, int, error) {
	idVal, err := t.translate(n.Key, &stageCtx{stageName: "$group"})
	if err != nil {
		return nil, 0, err
	}

	boundary := 0
	for boundary < len(rest) {
		if _, ok := rest[boundary].(*expr.GroupByStage); ok {
			break
		}
		boundary++
	}

	order, err := collectAccumulators(rest[:boundary])
	if err != nil {
		return nil, 0, err
	}

	doc := bson.D{{Key: "_id", Value: idVal}}
	slots := make(map[string]string, len(order))
	for _, acc := range order {
		v, err := t.translateAccumulator(acc, &stageCtx{stageName: "$group"})
		if err != nil {
			return nil, 0, err
		}
		slot := build.Agg.Next()
		slots[expr.Print(acc)] = slot
		doc = append(doc, bson.E{Key: slot, Value: v})
	}

	for j := 0; j < boundary; j++ {
		rest[j] = substituteAccumulators(rest[j], slots)
	}
	return doc, boundary, nil
}

// collectAccumulators walks stages in order, returning every distinct
// Accumulator expression it finds (by printable form), in first-occurrence
// order. Duplicate accumulator expressions collapse to one entry, which
// is how sibling clauses end up sharing a slot.
func collectAccumulators(stages []expr.Stage) ([]*expr.Accumulator, error) {
	var order []*expr.Accumulator
	seen := make(map[string]bool)
	visit := expr.VisitorFunc(func(e expr.Expression) bool {
		if acc, ok := e.(*expr.Accumulator); ok {
			key := expr.Print(acc)
			if !seen[key] {
				seen[key] = true
				order = append(order, acc)
			}
			return false
		}
		return true
	})
	for _, s := range stages {
		expr.WalkStage(s, visit)
	}
	return order, nil
}

// substituteAccumulators replaces every Accumulator subtree of e whose
// printable form is a key of slots with a plain reference to that slot.
// It is applied to the stages between a GroupByStage and the next
// boundary once buildGroup has decided the slot assignment.
func substituteAccumulators(s expr.Stage, slots map[string]string) expr.Stage {
	if len(slots) == 0 {
		return s
	}
	switch n := s.(type) {
	case *expr.WhereStage:
		return &expr.WhereStage{Predicate: substituteExpr(n.Predicate, slots)}
	case *expr.SelectStage:
		return &expr.SelectStage{Selector: substituteExpr(n.Selector, slots)}
	case *expr.OrderStage:
		return &expr.OrderStage{SortKey: expr.SortKey{Key: substituteExpr(n.Key, slots), Descending: n.Descending}}
	case *expr.SelectManyStage:
		return &expr.SelectManyStage{InnerPath: n.InnerPath, ResultSelector: substituteExpr(n.ResultSelector, slots)}
	case *expr.DistinctStage:
		return &expr.DistinctStage{Projection: substituteExpr(n.Projection, slots)}
	default:
		return s
	}
}

func substituteExpr(e expr.Expression, slots map[string]string) expr.Expression {
	if e == nil {
		return nil
	}
	if acc, ok := e.(*expr.Accumulator); ok {
		if slot, ok := slots[expr.Print(acc)]; ok {
			return &expr.Field{Path: slot}
		}
	}
	switch n := e.(type) {
	case *expr.Binary:
		return &expr.Binary{Op: n.Op, Left: substituteExpr(n.Left, slots), Right: substituteExpr(n.Right, slots), Type: n.Type}
	case *expr.Unary:
		return &expr.Unary{Op: n.Op, Operand: substituteExpr(n.Operand, slots)}
	case *expr.Conditional:
		return &expr.Conditional{
			Test:    substituteExpr(n.Test, slots),
			IfTrue:  substituteExpr(n.IfTrue, slots),
			IfFalse: substituteExpr(n.IfFalse, slots),
		}
	case *expr.MemberAccess:
		return &expr.MemberAccess{Target: substituteExpr(n.Target, slots), Member: n.Member, DeclaringType: n.DeclaringType}
	case *expr.MethodCall:
		var recv expr.Expression
		if n.Receiver != nil {
			recv = substituteExpr(n.Receiver, slots)
		}
		args := make([]expr.Expression, len(n.Args))
		for i, a := range n.Args {
			args[i] = substituteExpr(a, slots)
		}
		return &expr.MethodCall{Receiver: recv, Method: n.Method, Args: args}
	case *expr.New:
		members := make([]expr.Member, len(n.Members))
		for i, m := range n.Members {
			members[i] = expr.Member{Name: m.Name, Value: substituteExpr(m.Value, slots)}
		}
		return &expr.New{Members: members}
	case *expr.FieldAsDocument:
		return &expr.FieldAsDocument{Name: n.Name, Inner: substituteExpr(n.Inner, slots)}
	case *expr.GroupingKey:
		return &expr.GroupingKey{Key: substituteExpr(n.Key, slots)}
	case *expr.SetOperation:
		return &expr.SetOperation{Op: n.Op, Source: substituteExpr(n.Source, slots), Other: substituteExpr(n.Other, slots)}
	case *expr.ResultOperator:
		return &expr.ResultOperator{
			Kind:      n.Kind,
			Source:    substituteExpr(n.Source, slots),
			Var:       n.Var,
			Predicate: n.Predicate,
			Value:     n.Value,
		}
	default:
		// Field, Constant, Select, Where: a bound Select/Where's own
		// Selector/Predicate belongs to that scope, not this one, and an
		// accumulator cannot be re-derived inside it after grouping has
		// already collapsed the source documents it ran over.
		return n
	}
}

func isGroupOrDistinct(s expr.Stage) bool {
	switch s.(type) {
	case *expr.GroupByStage, *expr.DistinctStage:
		return true
	default:
		return false
	}
}

// rewriteRootFields prefixes every unscoped Field reference reachable
// from s with prefix, for the stages downstream of a whole-document
// DistinctStage: the grouped document's fields now live under prefix.
func rewriteRootFields(s expr.Stage, prefix string) expr.Stage {
	switch n := s.(type) {
	case *expr.WhereStage:
		return &expr.WhereStage{Predicate: prefixFields(n.Predicate, prefix)}
	case *expr.SelectStage:
		return &expr.SelectStage{Selector: prefixFields(n.Selector, prefix)}
	case *expr.OrderStage:
		return &expr.OrderStage{SortKey: expr.SortKey{Key: prefixFields(n.Key, prefix), Descending: n.Descending}}
	case *expr.SelectManyStage:
		return &expr.SelectManyStage{InnerPath: prefix + "." + n.InnerPath, ResultSelector: prefixFields(n.ResultSelector, prefix)}
	case *expr.DistinctStage:
		return &expr.DistinctStage{Projection: prefixFields(n.Projection, prefix)}
	case *expr.GroupByStage:
		return &expr.GroupByStage{Key: prefixFields(n.Key, prefix), Var: n.Var}
	default:
		return s
	}
}

func prefixFields(e expr.Expression, prefix string) expr.Expression {
	if e == nil {
		return nil
	}
	if f, ok := e.(*expr.Field); ok && f.Scope == "" {
		if f.Path == "" {
			return &expr.Field{Path: prefix}
		}
		return &expr.Field{Path: prefix + "." + f.Path}
	}
	switch n := e.(type) {
	case *expr.Binary:
		return &expr.Binary{Op: n.Op, Left: prefixFields(n.Left, prefix), Right: prefixFields(n.Right, prefix), Type: n.Type}
	case *expr.Unary:
		return &expr.Unary{Op: n.Op, Operand: prefixFields(n.Operand, prefix)}
	case *expr.Conditional:
		return &expr.Conditional{
			Test:    prefixFields(n.Test, prefix),
			IfTrue:  prefixFields(n.IfTrue, prefix),
			IfFalse: prefixFields(n.IfFalse, prefix),
		}
	case *expr.MemberAccess:
		return &expr.MemberAccess{Target: prefixFields(n.Target, prefix), Member: n.Member, DeclaringType: n.DeclaringType}
	case *expr.MethodCall:
		var recv expr.Expression
		if n.Receiver != nil {
			recv = prefixFields(n.Receiver, prefix)
		}
		args := make([]expr.Expression, len(n.Args))
		for i, a := range n.Args {
			args[i] = prefixFields(a, prefix)
		}
		return &expr.MethodCall{Receiver: recv, Method: n.Method, Args: args}
	case *expr.New:
		members := make([]expr.Member, len(n.Members))
		for i, m := range n.Members {
			members[i] = expr.Member{Name: m.Name, Value: prefixFields(m.Value, prefix)}
		}
		return &expr.New{Members: members}
	case *expr.FieldAsDocument:
		return &expr.FieldAsDocument{Name: n.Name, Inner: prefixFields(n.Inner, prefix)}
	case *expr.GroupingKey:
		return &expr.GroupingKey{Key: prefixFields(n.Key, prefix)}
	case *expr.SetOperation:
		return &expr.SetOperation{Op: n.Op, Source: prefixFields(n.Source, prefix), Other: prefixFields(n.Other, prefix)}
	default:
		return e
	}
}
