// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bsonutil holds the small, independently testable BSON-shaping
// rules the value translator applies to every emission: associative
// operator flattening, literal-string escaping, and canonical textual
// rendering.
package bsonutil

import "go.mongodb.org/mongo-driver/bson"

// Flattenable is the closed set of associative operators the flattening
// rule applies to: $and, $or, $add, $multiply, $concat.
var Flattenable = map[string]bool{
	"$and":      true,
	"$or":       true,
	"$add":      true,
	"$multiply": true,
	"$concat":   true,
}

// Flatten builds the array argument of an associative, flatten-eligible
// operator application. If left is already a single-key document for the
// same op with an array payload, the result is a copy of that array with
// right appended (left's own array is not modified), so no new nesting
// level is created; otherwise a fresh two-element array is returned. Flattening
// never changes what the expression evaluates to: {op: [a, b, c]} and
// {op: [{op: [a, b]}, c]} are equivalent for every op in Flattenable.
func Flatten(op string, left, right interface{}) bson.A {
	if !Flattenable[op] {
		return bson.A{left, right}
	}
	if d, ok := left.(bson.D); ok && len(d) == 1 && d[0].Key == op {
		if arr, ok := d[0].Value.(bson.A); ok {
			out := make(bson.A, len(arr), len(arr)+1)
			copy(out, arr)
			return append(out, right)
		}
	}
	return bson.A{left, right}
}
