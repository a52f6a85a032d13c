// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package translate

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mongolinq/mongo-go-linq/expr"
)

// projectMembers collapses a New/MemberInit's ordered member list into a
// BSON document. A member whose value is a GroupingKey is renamed to
// _id and emitted first; otherwise anonymous-type member order is
// preserved and an explicit "_id: 0" is appended unless a member
// already writes _id explicitly.
func projectMembers(t *valueTranslator, members []expr.Member, ctx *stageCtx) (bson.D, error) {
	var idElem *bson.E
	rest := make(bson.D, 0, len(members))
	hasExplicitID := false

	for _, m := range members {
		if gk, ok := m.Value.(*expr.GroupingKey); ok {
			if idElem != nil {
				return nil, NewInternalInvariantViolation("a New/MemberInit carries more than one GroupingKey member")
			}
			v, err := t.translate(gk.Key, ctx)
			if err != nil {
				return nil, err
			}
			e := bson.E{Key: "_id", Value: v}
			idElem = &e
			continue
		}

		if m.Name == "_id" {
			hasExplicitID = true
		}
		v, err := t.translate(m.Value, ctx)
		if err != nil {
			return nil, err
		}
		rest = append(rest, bson.E{Key: m.Name, Value: v})
	}

	if idElem != nil {
		doc := make(bson.D, 0, len(rest)+1)
		doc = append(doc, *idElem)
		return append(doc, rest...), nil
	}
	if !hasExplicitID {
		rest = append(rest, bson.E{Key: "_id", Value: int32(0)})
	}
	return rest, nil
}
