// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package slotutil allocates the fresh placeholder and accumulator-slot
// names a single pipeline build needs (__fldN, __aggN). A Counter must
// never be shared between two independent pipeline builds: two builds
// sharing a counter could allocate the same slot name for two unrelated
// values, and a later stage would silently read the wrong one.
package slotutil

import "fmt"

// Counter allocates fresh names with a given prefix, scoped to one build.
type Counter struct {
	prefix string
	next   int
}

// NewCounter returns a Counter that allocates names "prefix0", "prefix1", ...
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

// Next allocates and returns the next fresh name.
func (c *Counter) Next() string {
	name := fmt.Sprintf("%s%d", c.prefix, c.next)
	c.next++
	return name
}

// FieldCounter is an alias for Counter. The two counters a pipeline build
// uses are bundled in Build, which keeps both scoped to the same build.
type FieldCounter = Counter

// Build bundles every fresh-name counter a single pipeline build needs.
// Constructing a Build gets you counters that cannot accidentally be
// shared with another translation call.
type Build struct {
	Field *Counter
	Agg   *Counter
}

// NewBuild returns a Build with its own, independent counters.
func NewBuild() *Build {
	return &Build{
		Field: NewCounter("__fld"),
		Agg:   NewCounter("__agg"),
	}
}
