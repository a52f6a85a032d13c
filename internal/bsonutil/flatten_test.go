// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFlattenFreshPair(t *testing.T) {
	got := Flatten("$add", int32(1), int32(2))
	assert.Equal(t, bson.A{int32(1), int32(2)}, got)
}

func TestFlattenAppendsToExistingOperator(t *testing.T) {
	left := bson.D{{Key: "$add", Value: bson.A{int32(1), int32(2)}}}
	got := Flatten("$add", left, int32(3))
	assert.Equal(t, bson.A{int32(1), int32(2), int32(3)}, got)
}

func TestFlattenDoesNotMutateSharedArray(t *testing.T) {
	arr := bson.A{int32(1), int32(2)}
	left := bson.D{{Key: "$add", Value: arr}}
	_ = Flatten("$add", left, int32(3))
	assert.Len(t, arr, 2, "the original array backing a prior $add must be left untouched")
}

func TestFlattenIgnoresUnrelatedOperator(t *testing.T) {
	left := bson.D{{Key: "$subtract", Value: bson.A{int32(1), int32(2)}}}
	got := Flatten("$add", left, int32(3))
	assert.Equal(t, bson.A{left, int32(3)}, got)
}

func TestEscapeLiteralWrapsDollarPrefixedString(t *testing.T) {
	got := EscapeLiteral("$A")
	assert.Equal(t, bson.D{{Key: "$literal", Value: "$A"}}, got)
}

func TestEscapeLiteralLeavesOthersAlone(t *testing.T) {
	assert.Equal(t, "plain", EscapeLiteral("plain"))
	assert.Equal(t, int32(5), EscapeLiteral(int32(5)))
}
