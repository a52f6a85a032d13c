// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package expr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBinary(t *testing.T) {
	e := &Binary{Op: Add, Left: &Field{Path: "A"}, Right: &Constant{Value: "x"}}
	out := Print(e)
	assert.True(t, strings.HasPrefix(out, "(add $A "))
	assert.True(t, strings.HasSuffix(out, ")"))
	assert.True(t, strings.Contains(out, "x"))
}

func TestPrintFieldScoping(t *testing.T) {
	root := &Field{Path: "A"}
	scoped := &Field{Path: "B", Scope: "v"}
	require.Equal(t, "$A", Print(root))
	require.Equal(t, "$$v.B", Print(scoped))
}

func TestPrintSelectWhere(t *testing.T) {
	e := &Select{
		Source: &Field{Path: "Items"},
		Var:    "x",
		Selector: &Where{
			Source:    &Field{Path: "", Scope: "x"},
			Var:       "y",
			Predicate: &Constant{Value: true},
		},
	}
	out := Print(e)
	assert.True(t, strings.Contains(out, "Select(x =>"))
	assert.True(t, strings.Contains(out, "Where(y =>"))
}

func TestPrintNilIsStable(t *testing.T) {
	assert.Equal(t, "<nil>", Print(nil))
}

func TestWalkVisitsEveryNode(t *testing.T) {
	e := &Binary{
		Op:   And,
		Left: &Unary{Op: Not, Operand: &Field{Path: "A"}},
		Right: &Conditional{
			Test:    &Constant{Value: true},
			IfTrue:  &Field{Path: "B"},
			IfFalse: &Field{Path: "C"},
		},
	}
	var kinds []string
	Walk(e, VisitorFunc(func(n Expression) bool {
		kinds = append(kinds, Print(n))
		return true
	}))
	require.Len(t, kinds, 7) // Binary, Unary, Field A, Conditional, Constant, Field B, Field C
}

func TestWalkPipelineCoversStagesAndResult(t *testing.T) {
	p := &Pipeline{
		Stages: []Stage{
			&WhereStage{Predicate: &Binary{Op: Eq, Left: &Field{Path: "A"}, Right: &Constant{Value: "v"}}},
		},
		Result: &ResultOperator{Kind: ResultCount, Source: &Field{Path: "Items"}},
	}
	var sawResult bool
	Walk(p, VisitorFunc(func(n Expression) bool {
		if _, ok := n.(*ResultOperator); ok {
			sawResult = true
		}
		return true
	}))
	assert.True(t, sawResult)
}
