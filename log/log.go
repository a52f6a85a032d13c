// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package log defines the leveled, component-tagged logging sink the
// translator reports its own construction steps through. The translator
// never selects a sink for itself and never reads configuration from the
// environment or a file; a caller that wants tracing wires a Sink in
// through translate.WithLogger.
package log

import "fmt"

// Level mirrors the severity levels a Sink is expected to understand.
// Info is level 0 so that a caller handing us a logr-style sink (where
// Info defaults to verbosity 0) needs no translation.
type Level int

const (
	InfoLevel Level = iota
	DebugLevel
	TraceLevel
)

// Component tags which part of the translator produced a log record.
type Component string

const (
	ComponentBuilder    Component = "builder"
	ComponentValue      Component = "value"
	ComponentProjection Component = "projection"
	ComponentFieldPath  Component = "fieldpath"
)

// Sink is the interface a caller implements to receive translator trace
// output. It is intentionally narrow: a single leveled, tagged message
// with structured key/value pairs, matching the shape most Go logging
// libraries (logrus, zap, logr) already expose an adapter for.
type Sink interface {
	Log(level Level, component Component, msg string, kv ...interface{})
}

// NopSink discards every record. It is the default when no Sink is
// configured, so the translator never pays for formatting log output
// nobody reads.
type NopSink struct{}

// Log implements Sink.
func (NopSink) Log(Level, Component, string, ...interface{}) {}

// Fields renders a flat kv slice as "k=v k2=v2" for sinks that want a
// plain string rather than structured fields.
func Fields(kv ...interface{}) string {
	s := ""
	for i := 0; i+1 < len(kv); i += 2 {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%v=%v", kv[i], kv[i+1])
	}
	return s
}
