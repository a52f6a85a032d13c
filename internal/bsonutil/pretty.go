// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonutil

import (
	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
	"go.mongodb.org/mongo-driver/bson"
)

// Canonical renders doc as relaxed extended JSON on a single line.
func Canonical(doc bson.D) (string, error) {
	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return "", errors.Wrap(err, "marshal canonical extended JSON")
	}
	return string(data), nil
}

// Indented renders doc the same way as Canonical, re-indented for human
// consumption (debug logging, test failure output).
func Indented(doc bson.D) (string, error) {
	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return "", errors.Wrap(err, "marshal canonical extended JSON")
	}
	return string(pretty.Pretty(data)), nil
}
