// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonutil

import "go.mongodb.org/mongo-driver/bson"

// EscapeLiteral wraps v in {"$literal": v} when v is a string beginning
// with "$", so the server does not mistake a user-provided constant for a
// field reference. Every other value is returned unchanged.
func EscapeLiteral(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok || len(s) == 0 || s[0] != '$' {
		return v
	}
	return bson.D{{Key: "$literal", Value: s}}
}
