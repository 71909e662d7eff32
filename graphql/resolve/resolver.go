/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

// Package resolve binds the bookshelf store into the GraphQL schema and
// resolves requests against it.
package resolve

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	otrace "go.opencensus.io/trace"

	"github.com/bookshelf-gql/bookshelf/graphql/schema"
	"github.com/bookshelf-gql/bookshelf/store"
	"github.com/bookshelf-gql/bookshelf/x"
)

const (
	methodResolve = "resolve"

	errInternal = "Internal error"
)

// Options change how a RequestResolver treats requests.
type Options struct {
	// Extensions attaches a request id to every response.
	Extensions bool
	// Debug logs every request at Info level, regardless of glog verbosity.
	Debug bool
}

// RequestResolver can process GraphQL requests and write GraphQL JSON responses.
type RequestResolver struct {
	schema *schema.Schema
	store  *store.Store
	opts   Options
}

// New creates a new RequestResolver serving the contents of st.
func New(st *store.Store, opts Options) (*RequestResolver, error) {
	if st == nil {
		return nil, errors.New("no store supplied to resolver")
	}
	fr := &fieldResolvers{store: st}
	s, err := schema.New(fr)
	if err != nil {
		return nil, err
	}
	// The size gauges start from the seeded collections, not the first mutation.
	fr.recordSizes(context.Background())
	return &RequestResolver{
		schema: s,
		store:  st,
		opts:   opts,
	}, nil
}

// Store returns the store requests are resolved against.
func (r *RequestResolver) Store() *store.Store {
	return r.store
}

// Resolve processes gqlReq and returns a GraphQL response.
// Resolve records any errors in the response's error field.
func (r *RequestResolver) Resolve(ctx context.Context, gqlReq *schema.Request) *schema.Response {
	ctx, span := otrace.StartSpan(ctx, methodResolve)
	defer span.End()

	if r == nil || r.schema == nil {
		glog.Errorf("Call to Resolve with no schema")
		return schema.ErrorResponse(errors.New(errInternal))
	}

	startTime := time.Now()
	if gqlReq != nil && (r.opts.Debug || bool(glog.V(2))) && !gqlReq.IsIntrospection() {
		// don't log the introspection queries they are sent too frequently
		// by GraphQL dev tools
		b, err := json.Marshal(gqlReq.Variables)
		if err != nil {
			glog.Infof("Failed to marshal variables for logging : %s", err)
		}
		glog.Infof("Resolving GQL request: \n%s\nWith Variables: \n%s\n",
			gqlReq.Query, string(b))
	}

	resp := r.schema.Execute(ctx, gqlReq)
	if r.opts.Extensions {
		resp.Extensions = &schema.Extensions{RequestID: uuid.NewString()}
	}

	var err error
	if len(resp.Errors) > 0 {
		err = resp.Errors
		span.Annotatef(nil, "GraphQL errors: %s", resp.Errors.Error())
		if r.opts.Debug {
			glog.Infof("GraphQL request failed: %v", resp.Errors)
		}
	}
	mctx := x.WithMethod(ctx, methodResolve)
	status := x.TagValueStatusOK
	if err != nil {
		status = x.TagValueStatusError
	}
	_ = stats.RecordWithTags(mctx, []tag.Mutator{tag.Upsert(x.KeyStatus, status)},
		x.NumRequests.M(1))
	x.RecordLatency(mctx, startTime, err)

	return resp
}
