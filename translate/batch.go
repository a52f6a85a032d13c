// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package translate

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"github.com/mongolinq/mongo-go-linq/expr"
)

// BatchResult is one pipeline's translation result, paired back up with
// its input index so callers can recover which query it belongs to even
// after concurrent, out-of-order completion.
type BatchResult struct {
	Stages []bson.D
	Err    error
}

// Batch translates pipelines concurrently and returns their results in
// input order. Each worker performs an ordinary, synchronization-free
// TranslatePipeline call — independent pipelines share no state, so the
// only thing Batch adds is the fan-out itself. A single pipeline's error
// does not cancel the others; it is reported in that pipeline's slot.
// Batch only returns a top-level error when ctx is canceled.
func Batch(ctx context.Context, pipelines []expr.Pipeline, opts ...Option) ([]BatchResult, error) {
	results := make([]BatchResult, len(pipelines))
	g, ctx := errgroup.WithContext(ctx)

	for i := range pipelines {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stages, err := TranslatePipeline(&pipelines[i], opts...)
			results[i] = BatchResult{Stages: stages, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
