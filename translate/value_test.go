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

func TestTranslateConstantLiteralEscape(t *testing.T) {
	v, err := Translate(&expr.Constant{Value: "$notAField"})
	require.NoError(t, err)
	want := bson.D{{Key: "$literal", Value: "$notAField"}}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("unexpected value:\n%s", diff)
	}
}

func TestTranslateStringConcatFlattensLeftAssociativeChain(t *testing.T) {
	e := &expr.Binary{
		Op:   expr.Add,
		Type: expr.TypeString,
		Left: &expr.Binary{
			Op:    expr.Add,
			Type:  expr.TypeString,
			Left:  &expr.Field{Path: "A"},
			Right: &expr.Field{Path: "B"},
		},
		Right: &expr.Field{Path: "C"},
	}
	v, err := Translate(e)
	require.NoError(t, err)
	want := bson.D{{Key: "$concat", Value: bson.A{"$A", "$B", "$C"}}}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("unexpected value:\n%s", diff)
	}
}

func TestTranslateSelectUsesFieldPathFusion(t *testing.T) {
	e := &expr.Select{
		Source: &expr.Field{Path: "Items"},
		Var:    "x",
		Selector: &expr.Field{Path: "Name"},
	}
	v, err := Translate(e)
	require.NoError(t, err)
	require.Equal(t, "$Items.Name", v)
}

func TestTranslateSelectFallsBackToMapWhenNotFused(t *testing.T) {
	e := &expr.Select{
		Source: &expr.Field{Path: "Items"},
		Var:    "x",
		Selector: &expr.Binary{
			Op:    expr.Add,
			Left:  &expr.Field{Path: "Price", Scope: "x"},
			Right: &expr.Constant{Value: int32(1)},
		},
	}
	v, err := Translate(e)
	require.NoError(t, err)
	doc, ok := v.(bson.D)
	require.True(t, ok)
	require.Equal(t, "$map", doc[0].Key)
}

func TestTranslateUnsupportedMethodFails(t *testing.T) {
	e := &expr.MethodCall{
		Receiver: &expr.Field{Path: "A"},
		Method:   expr.MethodIdentity{Name: "Frobnicate", Arity: 0},
	}
	_, err := Translate(e)
	require.Error(t, err)
	var unsupported *UnsupportedExpressionError
	require.ErrorAs(t, err, &unsupported)
}

func TestTranslateResultOperatorAnyOverArray(t *testing.T) {
	e := &expr.ResultOperator{Kind: expr.ResultAny, Source: &expr.Field{Path: "Items"}}
	v, err := Translate(e)
	require.NoError(t, err)
	want := bson.D{{Key: "$gt", Value: bson.A{
		bson.D{{Key: "$size", Value: "$Items"}},
		int32(0),
	}}}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("unexpected value:\n%s", diff)
	}
}

func TestTranslateResultOperatorContains(t *testing.T) {
	e := &expr.ResultOperator{
		Kind:   expr.ResultContains,
		Source: &expr.Field{Path: "Tags"},
		Value:  &expr.Constant{Value: "red"},
	}
	v, err := Translate(e)
	require.NoError(t, err)
	doc, ok := v.(bson.D)
	require.True(t, ok)
	require.Equal(t, "$anyElementTrue", doc[0].Key)
}
