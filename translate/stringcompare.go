// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package translate

import "github.com/mongolinq/mongo-go-linq/expr"

// StringComparison mirrors the comparison-kind argument the front-end
// passes as the second argument of a two-argument string.Equals call.
type StringComparison int

const (
	Ordinal StringComparison = iota
	OrdinalIgnoreCase
)

// constantComparison extracts a StringComparison from a Constant node,
// returning false if e isn't one.
func constantComparison(e expr.Expression) (StringComparison, bool) {
	c, ok := e.(*expr.Constant)
	if !ok {
		return 0, false
	}
	switch v := c.Value.(type) {
	case StringComparison:
		return v, true
	case int:
		return StringComparison(v), true
	case int32:
		return StringComparison(v), true
	default:
		return 0, false
	}
}
