// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package translate

// dateTimeMemberOps maps a DateTime member name to the aggregation date
// operator that computes it. DayOfWeek is handled separately: the server
// numbers Sunday=1 while the object model numbers Sunday=0, so it needs a
// -1 adjustment the other members don't.
var dateTimeMemberOps = map[string]string{
	"Day":         "$dayOfMonth",
	"DayOfYear":   "$dayOfYear",
	"Hour":        "$hour",
	"Minute":      "$minute",
	"Second":      "$second",
	"Millisecond": "$millisecond",
	"Month":       "$month",
	"Year":        "$year",
	"DayOfWeek":   "$dayOfWeek",
}
