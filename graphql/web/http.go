/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

// Package web serves GraphQL over HTTP.
//
// Requests are accepted as GET with query, operationName and variables in the
// URL, or as POST with an application/json or application/graphql body. GET
// requests may only run queries. Every response, including one carrying only
// errors, is a 200 with a JSON body.
package web

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/bookshelf-gql/bookshelf/graphql/api"
	"github.com/bookshelf-gql/bookshelf/graphql/resolve"
	"github.com/bookshelf-gql/bookshelf/graphql/schema"
	"github.com/bookshelf-gql/bookshelf/x"
)

// An Endpoint serves a GraphQL resolver over http.
type Endpoint interface {
	// Swap replaces the resolver that serves subsequent requests.
	Swap(resolver *resolve.RequestResolver)

	// Handler returns the http.Handler to mount at the GraphQL path.
	Handler() http.Handler

	// Resolve runs gqlReq against the current resolver without going through http.
	Resolve(ctx context.Context, gqlReq *schema.Request) *schema.Response
}

type endpoint struct {
	resolver atomic.Pointer[resolve.RequestResolver]
	handler  http.Handler

	// 0 means no limit
	maxBody int64
}

// NewServer returns an Endpoint serving resolver. Request bodies larger than
// maxBody bytes are rejected.
func NewServer(resolver *resolve.RequestResolver, maxBody int64) Endpoint {
	e := &endpoint{maxBody: maxBody}
	e.resolver.Store(resolver)
	e.handler = recoveryHandler(commonHeaders(e))
	return e
}

func (e *endpoint) Handler() http.Handler {
	return e.handler
}

func (e *endpoint) Swap(resolver *resolve.RequestResolver) {
	e.resolver.Store(resolver)
}

func (e *endpoint) Resolve(ctx context.Context, gqlReq *schema.Request) *schema.Response {
	return e.resolver.Load().Resolve(ctx, gqlReq)
}

func (e *endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "http")
	defer span.End()

	if e.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, e.maxBody)
	}

	gqlReq, err := decodeRequest(r)
	if err != nil {
		span.Annotatef(nil, "bad request: %v", err)
		writeResponse(w, r, schema.ErrorResponse(err))
		return
	}

	defer api.Recover(gqlReq, func(resp *schema.Response) { writeResponse(w, r, resp) })
	resolver := e.resolver.Load()
	if resolver == nil {
		panic("endpoint has no resolver")
	}
	writeResponse(w, r, resolver.Resolve(ctx, gqlReq))
}

// writeResponse sends resp to the client, gzipped when the client said it
// can take that.
func writeResponse(w http.ResponseWriter, r *http.Request, resp *schema.Response) {
	var out io.Writer = w
	if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.Header().Set("Content-Encoding", "gzip")
		zw := gzip.NewWriter(w)
		defer func() {
			if err := zw.Close(); err != nil {
				glog.Errorf("while closing gzip writer: %v", err)
			}
		}()
		out = zw
	}

	if _, err := resp.WriteTo(out); err != nil {
		glog.Errorf("while writing GraphQL response: %v", err)
	}
}

// inflatedBody closes both the gzip reader and the request body under it.
type inflatedBody struct {
	*gzip.Reader
	body io.Closer
}

func (ib inflatedBody) Close() error {
	if err := ib.Reader.Close(); err != nil {
		return err
	}
	return ib.body.Close()
}

func decodeRequest(r *http.Request) (*schema.Request, error) {
	if r.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			return nil, errors.Wrap(err, "Unable to parse gzip")
		}
		r.Body = inflatedBody{Reader: zr, body: r.Body}
	}

	switch r.Method {
	case http.MethodGet:
		return fromQueryString(r.URL.Query())
	case http.MethodPost:
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			return nil, errors.Wrap(err, "unable to parse media type")
		}
		return fromBody(mediaType, r.Body)
	default:
		return nil, errors.Errorf(
			"Unrecognised request method %s.  Please use GET or POST for GraphQL requests",
			r.Method)
	}
}

func fromQueryString(params url.Values) (*schema.Request, error) {
	gqlReq := &schema.Request{
		Query:         params.Get("query"),
		OperationName: params.Get("operationName"),
		ReadOnly:      true,
	}
	if vars := params.Get("variables"); vars != "" {
		if err := json.Unmarshal([]byte(vars), &gqlReq.Variables); err != nil {
			return nil, errors.Wrap(err, "Not a valid GraphQL request body")
		}
	}
	return gqlReq, nil
}

func fromBody(mediaType string, body io.Reader) (*schema.Request, error) {
	gqlReq := &schema.Request{}
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(body).Decode(gqlReq); err != nil {
			return nil, errors.Wrap(err, "Not a valid GraphQL request body")
		}
	case "application/graphql":
		query, err := io.ReadAll(body)
		if err != nil {
			return nil, errors.Wrap(err, "Could not read GraphQL request body")
		}
		gqlReq.Query = string(query)
	default:
		return nil, errors.Errorf("Unrecognised Content-Type %s.  Please use application/json "+
			"or application/graphql for GraphQL requests", mediaType)
	}
	return gqlReq, nil
}

func commonHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		x.AddCorsHeaders(w)
		w.Header().Set("Content-Type", "application/json")

		// CORS preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func recoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer api.Recover(nil, func(resp *schema.Response) { writeResponse(w, r, resp) })
		next.ServeHTTP(w, r)
	})
}
