// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package log

import "github.com/sirupsen/logrus"

// LogrusSink adapts a *logrus.Logger (or logrus.StandardLogger()) to Sink.
type LogrusSink struct {
	Logger *logrus.Logger
}

// NewLogrusSink returns a Sink backed by logger. A nil logger uses
// logrus's package-level standard logger.
func NewLogrusSink(logger *logrus.Logger) LogrusSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return LogrusSink{Logger: logger}
}

// Log implements Sink.
func (s LogrusSink) Log(level Level, component Component, msg string, kv ...interface{}) {
	entry := s.Logger.WithField("component", string(component))
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		entry = entry.WithField(key, kv[i+1])
	}
	switch level {
	case TraceLevel:
		entry.Trace(msg)
	case DebugLevel:
		entry.Debug(msg)
	default:
		entry.Info(msg)
	}
}
