// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package translate lowers a query-expression tree into an ordered list
// of MongoDB aggregation-pipeline stage documents.
package translate

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mongolinq/mongo-go-linq/expr"
	"github.com/mongolinq/mongo-go-linq/internal/slotutil"
	"github.com/mongolinq/mongo-go-linq/log"
)

// Option configures a translation call.
type Option func(*config)

type config struct {
	sink log.Sink
}

// WithLogger routes a translation's trace records through sink instead of
// discarding them.
func WithLogger(sink log.Sink) Option {
	return func(c *config) { c.sink = sink }
}

func newConfig(opts []Option) *config {
	c := &config{sink: log.NopSink{}}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Translate lowers a single, root-level expression to a BSON value. It is
// the entry point for expressions that are not a Pipeline — an in-memory
// array value's ResultOperator, a bare computed expression, and so on.
func Translate(e expr.Expression, opts ...Option) (interface{}, error) {
	c := newConfig(opts)
	t := newValueTranslator(slotutil.NewBuild(), c.sink)
	v, err := t.translate(e, &stageCtx{})
	if err != nil {
		return nil, errors.Wrap(err, "translate")
	}
	return v, nil
}

// TranslatePipeline lowers a Pipeline expression to its ordered list of
// aggregation stage documents. Translation is all-or-nothing: on error,
// the returned slice is always nil. buildPipeline attaches the 0-based
// stage index and stage kind active when the error occurred before it
// ever reaches here; this wrap only adds the overall pipeline's source
// stage count on top, without losing the underlying typed error — a
// caller can still errors.As into *UnsupportedExpressionError,
// *AmbiguousOrderingError, or *InternalInvariantViolationError.
func TranslatePipeline(p *expr.Pipeline, opts ...Option) ([]bson.D, error) {
	if p == nil || len(p.Stages) == 0 {
		return nil, NewInternalInvariantViolation("pipeline has no stages")
	}
	c := newConfig(opts)
	c.sink.Log(log.InfoLevel, log.ComponentBuilder, "translating pipeline", "stages", len(p.Stages))

	stages, err := buildPipeline(p, c.sink)
	if err != nil {
		return nil, errors.Wrapf(err, "translate pipeline (%d source stage(s))", len(p.Stages))
	}
	return stages, nil
}
