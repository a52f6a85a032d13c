// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package translate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mongolinq/mongo-go-linq/expr"
)

func mustTranslate(t *testing.T, p *expr.Pipeline) []bson.D {
	t.Helper()
	stages, err := TranslatePipeline(p)
	require.NoError(t, err)
	return stages
}

// Scenario 1: equality filter.
func TestScenarioEqualityFilter(t *testing.T) {
	p := &expr.Pipeline{Stages: []expr.Stage{
		&expr.WhereStage{Predicate: &expr.Binary{
			Op:    expr.Eq,
			Left:  &expr.Field{Path: "A"},
			Right: &expr.Constant{Value: "Awesome"},
		}},
	}}
	got := mustTranslate(t, p)
	want := []bson.D{{{Key: "$match", Value: bson.D{{Key: "A", Value: "Awesome"}}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected pipeline:\n%s", diff)
	}
}

// Scenario 2: projection with concat.
func TestScenarioProjectionWithConcat(t *testing.T) {
	p := &expr.Pipeline{Stages: []expr.Stage{
		&expr.SelectStage{Selector: &expr.Binary{
			Op:   expr.Add,
			Type: expr.TypeString,
			Left: &expr.Binary{
				Op:   expr.Add,
				Type: expr.TypeString,
				Left: &expr.Field{Path: "A"},
				Right: &expr.Constant{Value: " "},
			},
			Right: &expr.Field{Path: "B"},
		}},
	}}
	got := mustTranslate(t, p)
	want := []bson.D{{{Key: "$project", Value: bson.D{
		{Key: "__fld0", Value: bson.D{{Key: "$concat", Value: bson.A{"$A", " ", "$B"}}}},
		{Key: "_id", Value: int32(0)},
	}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected pipeline:\n%s", diff)
	}
}

// Scenario 3: group with accumulator slot sharing.
func TestScenarioGroupWithAccumulatorSharing(t *testing.T) {
	firstB := &expr.Accumulator{Kind: expr.First, Arg: &expr.Field{Path: "B"}}
	p := &expr.Pipeline{Stages: []expr.Stage{
		&expr.GroupByStage{Key: &expr.Field{Path: "A"}, Var: "g"},
		&expr.WhereStage{Predicate: &expr.Binary{
			Op:    expr.Eq,
			Left:  &expr.Accumulator{Kind: expr.First, Arg: &expr.Field{Path: "B"}},
			Right: &expr.Constant{Value: "Balloon"},
		}},
		&expr.SelectStage{Selector: &expr.New{Members: []expr.Member{
			{Name: "Key", Value: &expr.Field{Path: "_id"}},
			{Name: "FirstB", Value: firstB},
		}}},
	}}
	got := mustTranslate(t, p)
	want := []bson.D{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$A"},
			{Key: "__agg0", Value: bson.D{{Key: "$first", Value: "$B"}}},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "__agg0", Value: "Balloon"}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "Key", Value: "$_id"},
			{Key: "FirstB", Value: "$__agg0"},
			{Key: "_id", Value: int32(0)},
		}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected pipeline:\n%s", diff)
	}
}

// Scenario 4: DayOfWeek adjustment.
func TestScenarioDayOfWeekAdjustment(t *testing.T) {
	p := &expr.Pipeline{Stages: []expr.Stage{
		&expr.SelectStage{Selector: &expr.MemberAccess{
			Target:        &expr.Field{Path: "D"},
			Member:        "DayOfWeek",
			DeclaringType: expr.TypeDateTime,
		}},
	}}
	got := mustTranslate(t, p)
	require.Len(t, got, 1)
	proj := got[0][0].Value.(bson.D)
	require.Equal(t, "__fld0", proj[0].Key)
	want := bson.D{{Key: "$subtract", Value: bson.A{
		bson.D{{Key: "$dayOfWeek", Value: "$D"}},
		int32(1),
	}}}
	if diff := cmp.Diff(want, proj[0].Value); diff != "" {
		t.Fatalf("unexpected inner value:\n%s", diff)
	}
}

// Scenario 5: distinct then filter on root.
func TestScenarioDistinctThenFilter(t *testing.T) {
	p := &expr.Pipeline{Stages: []expr.Stage{
		&expr.DistinctStage{},
		&expr.WhereStage{Predicate: &expr.Binary{
			Op:    expr.Eq,
			Left:  &expr.Field{Path: "A"},
			Right: &expr.Constant{Value: "Awesome"},
		}},
	}}
	got := mustTranslate(t, p)
	want := []bson.D{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$$ROOT"}}}},
		{{Key: "$match", Value: bson.D{{Key: "_id.A", Value: "Awesome"}}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected pipeline:\n%s", diff)
	}
}

// Skip/Take/OfType/SelectMany each lower to their own fixed stage shape.
func TestStageEmissionSkipTakeOfTypeSelectMany(t *testing.T) {
	tests := []struct {
		name  string
		stage expr.Stage
		want  bson.D
	}{
		{
			name:  "Skip",
			stage: &expr.SkipStage{Count: 5},
			want:  bson.D{{Key: "$skip", Value: int64(5)}},
		},
		{
			name:  "Take",
			stage: &expr.TakeStage{Count: 10},
			want:  bson.D{{Key: "$limit", Value: int64(10)}},
		},
		{
			name:  "OfType",
			stage: &expr.OfTypeStage{TypeName: "Dog", DiscriminatorField: "_t"},
			want:  bson.D{{Key: "$match", Value: bson.D{{Key: "_t", Value: "Dog"}}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &expr.Pipeline{Stages: []expr.Stage{tt.stage}}
			got := mustTranslate(t, p)
			want := []bson.D{tt.want}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("unexpected pipeline:\n%s", diff)
			}
		})
	}
}

func TestStageEmissionSelectMany(t *testing.T) {
	p := &expr.Pipeline{Stages: []expr.Stage{
		&expr.SelectManyStage{
			InnerPath:      "Items",
			ResultSelector: &expr.Field{Path: "Name"},
		},
	}}
	got := mustTranslate(t, p)
	want := []bson.D{
		{{Key: "$unwind", Value: "$Items"}},
		{{Key: "$project", Value: bson.D{{Key: "Name", Value: int32(1)}, {Key: "_id", Value: int32(0)}}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected pipeline:\n%s", diff)
	}
}

// A composite grouping key's GroupingKey member is promoted to _id and
// emitted first regardless of its position among the New's members.
func TestProjectionPromotesGroupingKeyToIDFirst(t *testing.T) {
	p := &expr.Pipeline{Stages: []expr.Stage{
		&expr.SelectStage{Selector: &expr.New{Members: []expr.Member{
			{Name: "Total", Value: &expr.Field{Path: "Amount"}},
			{Name: "X", Value: &expr.GroupingKey{Key: &expr.New{Members: []expr.Member{
				{Name: "A", Value: &expr.Field{Path: "A"}},
				{Name: "B", Value: &expr.Field{Path: "B"}},
			}}}},
		}}},
	}}
	got := mustTranslate(t, p)
	require.Len(t, got, 1)
	proj := got[0][0].Value.(bson.D)
	require.Equal(t, "_id", proj[0].Key)
	want := bson.D{
		{Key: "_id", Value: bson.D{{Key: "A", Value: "$A"}, {Key: "B", Value: "$B"}}},
		{Key: "Total", Value: "$Amount"},
	}
	if diff := cmp.Diff(want, proj); diff != "" {
		t.Fatalf("unexpected projection:\n%s", diff)
	}
}

// Pipeline-level Any() (no Source) is the Open Question resolution: a
// trailing $limit:1 rather than a $group/$count pair.
func TestScenarioPipelineAny(t *testing.T) {
	p := &expr.Pipeline{
		Stages: []expr.Stage{&expr.WhereStage{Predicate: &expr.Binary{
			Op:    expr.Eq,
			Left:  &expr.Field{Path: "A"},
			Right: &expr.Constant{Value: "Awesome"},
		}}},
		Result: &expr.ResultOperator{Kind: expr.ResultAny},
	}
	got := mustTranslate(t, p)
	want := []bson.D{
		{{Key: "$match", Value: bson.D{{Key: "A", Value: "Awesome"}}}},
		{{Key: "$limit", Value: int32(1)}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected pipeline:\n%s", diff)
	}
}

// Pipeline-level Count() lowers to a $group, since $count is not a
// legal stage key in this translator's closed stage-document vocabulary.
func TestScenarioPipelineCount(t *testing.T) {
	p := &expr.Pipeline{
		Stages: []expr.Stage{&expr.WhereStage{Predicate: &expr.Binary{
			Op:    expr.Eq,
			Left:  &expr.Field{Path: "A"},
			Right: &expr.Constant{Value: "Awesome"},
		}}},
		Result: &expr.ResultOperator{Kind: expr.ResultCount},
	}
	got := mustTranslate(t, p)
	want := []bson.D{
		{{Key: "$match", Value: bson.D{{Key: "A", Value: "Awesome"}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: int32(1)}}},
		}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected pipeline:\n%s", diff)
	}
}

// Pipeline-level First()/Single() have no stage-document lowering and
// must fail with UnsupportedExpression rather than silently inventing a
// $limit stage.
func TestScenarioPipelineFirstAndSingleAreUnsupported(t *testing.T) {
	for _, kind := range []expr.ResultKind{expr.ResultFirst, expr.ResultSingle} {
		p := &expr.Pipeline{
			Stages: []expr.Stage{&expr.WhereStage{Predicate: &expr.Binary{
				Op:    expr.Eq,
				Left:  &expr.Field{Path: "A"},
				Right: &expr.Constant{Value: "Awesome"},
			}}},
			Result: &expr.ResultOperator{Kind: kind},
		}
		_, err := TranslatePipeline(p)
		require.Error(t, err)
		var unsupported *UnsupportedExpressionError
		require.ErrorAs(t, err, &unsupported)
	}
}

// Scenario 6: ambiguous sort.
func TestScenarioAmbiguousSort(t *testing.T) {
	p := &expr.Pipeline{Stages: []expr.Stage{
		&expr.OrderStage{SortKey: expr.SortKey{Key: &expr.Field{Path: "A"}}},
		&expr.OrderStage{SortKey: expr.SortKey{Key: &expr.Field{Path: "B"}}},
		&expr.OrderStage{SortKey: expr.SortKey{Key: &expr.Field{Path: "A"}, Descending: true}},
	}}
	_, err := TranslatePipeline(p)
	require.Error(t, err)
	var ambiguous *AmbiguousOrderingError
	require.ErrorAs(t, err, &ambiguous)
	require.Equal(t, "A", ambiguous.Field)
}
