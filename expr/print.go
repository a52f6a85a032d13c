// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package expr

import (
	"fmt"
	"strings"

	"github.com/kr/pretty"
)

// Print renders a printable form of e, for use in UnsupportedExpression
// error messages and debug logging. It is not meant to round-trip; it is
// meant to be readable enough that a caller can find the offending
// sub-expression in the query that produced it.
func Print(e Expression) string {
	var b strings.Builder
	printNode(&b, e)
	return b.String()
}

func printNode(b *strings.Builder, e Expression) {
	if e == nil {
		b.WriteString("<nil>")
		return
	}
	switch n := e.(type) {
	case *Binary:
		fmt.Fprintf(b, "(%s ", binaryOpName(n.Op))
		printNode(b, n.Left)
		b.WriteString(" ")
		printNode(b, n.Right)
		b.WriteString(")")
	case *Unary:
		fmt.Fprintf(b, "(%s ", unaryOpName(n.Op))
		printNode(b, n.Operand)
		b.WriteString(")")
	case *Conditional:
		b.WriteString("(cond ")
		printNode(b, n.Test)
		b.WriteString(" ")
		printNode(b, n.IfTrue)
		b.WriteString(" ")
		printNode(b, n.IfFalse)
		b.WriteString(")")
	case *Constant:
		fmt.Fprintf(b, "%# v", pretty.Formatter(n.Value))
	case *MemberAccess:
		printNode(b, n.Target)
		fmt.Fprintf(b, ".%s", n.Member)
	case *MethodCall:
		if n.Receiver != nil {
			printNode(b, n.Receiver)
			b.WriteString(".")
		}
		fmt.Fprintf(b, "%s(", n.Method.Name)
		for i, a := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			printNode(b, a)
		}
		b.WriteString(")")
	case *New:
		b.WriteString("new{")
		for i, m := range n.Members {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s=", m.Name)
			printNode(b, m.Value)
		}
		b.WriteString("}")
	case *Field:
		if n.Scope != "" {
			fmt.Fprintf(b, "$$%s.%s", n.Scope, n.Path)
			return
		}
		fmt.Fprintf(b, "$%s", n.Path)
	case *FieldAsDocument:
		fmt.Fprintf(b, "{%s: ", n.Name)
		printNode(b, n.Inner)
		b.WriteString("}")
	case *Select:
		printNode(b, n.Source)
		fmt.Fprintf(b, ".Select(%s => ", n.Var)
		printNode(b, n.Selector)
		b.WriteString(")")
	case *Where:
		printNode(b, n.Source)
		fmt.Fprintf(b, ".Where(%s => ", n.Var)
		printNode(b, n.Predicate)
		b.WriteString(")")
	case *Accumulator:
		fmt.Fprintf(b, "%s(", accumulatorName(n.Kind))
		printNode(b, n.Arg)
		b.WriteString(")")
	case *GroupingKey:
		b.WriteString("key(")
		printNode(b, n.Key)
		b.WriteString(")")
	case *SetOperation:
		printNode(b, n.Source)
		fmt.Fprintf(b, ".%s(", setOpName(n.Op))
		printNode(b, n.Other)
		b.WriteString(")")
	case *Pipeline:
		b.WriteString("pipeline[")
		for i, s := range n.Stages {
			if i > 0 {
				b.WriteString(" -> ")
			}
			b.WriteString(printStage(s))
		}
		b.WriteString("]")
		if n.Result != nil {
			b.WriteString(".")
			printNode(b, n.Result)
		}
	case *ResultOperator:
		if n.Source != nil {
			printNode(b, n.Source)
			b.WriteString(".")
		}
		switch n.Kind {
		case ResultAny:
			b.WriteString("Any()")
		case ResultAnyPredicate:
			fmt.Fprintf(b, "Any(%s => ", n.Var)
			printNode(b, n.Predicate)
			b.WriteString(")")
		case ResultAll:
			fmt.Fprintf(b, "All(%s => ", n.Var)
			printNode(b, n.Predicate)
			b.WriteString(")")
		case ResultCount:
			b.WriteString("Count()")
		case ResultContains:
			b.WriteString("Contains(")
			printNode(b, n.Value)
			b.WriteString(")")
		case ResultFirst:
			b.WriteString("First()")
		case ResultSingle:
			b.WriteString("Single()")
		default:
			b.WriteString("Result?")
		}
	default:
		fmt.Fprintf(b, "<%T>", e)
	}
}

func printStage(s Stage) string {
	switch n := s.(type) {
	case *WhereStage:
		return "Where(" + Print(n.Predicate) + ")"
	case *SelectStage:
		return "Select(" + Print(n.Selector) + ")"
	case *GroupByStage:
		return "GroupBy(" + Print(n.Key) + ")"
	case *OrderStage:
		dir := "asc"
		if n.Descending {
			dir = "desc"
		}
		return "OrderBy(" + Print(n.Key) + ", " + dir + ")"
	case *SkipStage:
		return fmt.Sprintf("Skip(%d)", n.Count)
	case *TakeStage:
		return fmt.Sprintf("Take(%d)", n.Count)
	case *OfTypeStage:
		return "OfType(" + n.TypeName + ")"
	case *SelectManyStage:
		return "SelectMany(" + n.InnerPath + ", " + Print(n.ResultSelector) + ")"
	case *DistinctStage:
		if n.Projection == nil {
			return "Distinct()"
		}
		return "Distinct(" + Print(n.Projection) + ")"
	default:
		return fmt.Sprintf("<%T>", s)
	}
}

func binaryOpName(op BinaryOp) string {
	switch op {
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case Div:
		return "div"
	case Mod:
		return "mod"
	case And:
		return "and"
	case Or:
		return "or"
	case Eq:
		return "eq"
	case Ne:
		return "ne"
	case Lt:
		return "lt"
	case Le:
		return "le"
	case Gt:
		return "gt"
	case Ge:
		return "ge"
	case Coalesce:
		return "coalesce"
	default:
		return "binop?"
	}
}

func unaryOpName(op UnaryOp) string {
	switch op {
	case Not:
		return "not"
	case Convert:
		return "convert"
	case ArrayLength:
		return "length"
	case Negate:
		return "neg"
	default:
		return "unop?"
	}
}

func accumulatorName(k AccumulatorKind) string {
	switch k {
	case Sum:
		return "Sum"
	case Avg:
		return "Avg"
	case Min:
		return "Min"
	case Max:
		return "Max"
	case First:
		return "First"
	case Last:
		return "Last"
	case Push:
		return "Push"
	case AddToSet:
		return "AddToSet"
	default:
		return "Accumulator?"
	}
}

func setOpName(op SetOp) string {
	switch op {
	case Union:
		return "Union"
	case Intersect:
		return "Intersect"
	case Except:
		return "Except"
	default:
		return "SetOp?"
	}
}
