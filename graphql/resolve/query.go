/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package resolve

import (
	"context"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/pkg/errors"
	"go.opencensus.io/stats"

	"github.com/bookshelf-gql/bookshelf/store"
	"github.com/bookshelf-gql/bookshelf/x"
)

// fieldResolvers implements schema.Resolvers on top of a store. Not-found
// lookups resolve to null rather than to an error.
type fieldResolvers struct {
	store *store.Store
}

// observe counts a resolved root field against m and returns a func that
// records its latency.
func observe(p graphql.ResolveParams, m *stats.Int64Measure) func() {
	ctx := p.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = x.WithMethod(ctx, p.Info.FieldName)
	start := time.Now()
	stats.Record(ctx, m.M(1))
	return func() {
		x.RecordLatency(ctx, start, nil)
	}
}

func (fr *fieldResolvers) Books(p graphql.ResolveParams) (interface{}, error) {
	defer observe(p, x.NumQueries)()
	return fr.store.Books(), nil
}

func (fr *fieldResolvers) Book(p graphql.ResolveParams) (interface{}, error) {
	defer observe(p, x.NumQueries)()
	id, ok := p.Args["id"].(int)
	if !ok {
		return nil, nil
	}
	b, ok := fr.store.Book(id)
	if !ok {
		return nil, nil
	}
	return b, nil
}

func (fr *fieldResolvers) Authors(p graphql.ResolveParams) (interface{}, error) {
	defer observe(p, x.NumQueries)()
	return fr.store.Authors(), nil
}

func (fr *fieldResolvers) Author(p graphql.ResolveParams) (interface{}, error) {
	defer observe(p, x.NumQueries)()
	id, ok := p.Args["id"].(int)
	if !ok {
		return nil, nil
	}
	a, ok := fr.store.Author(id)
	if !ok {
		return nil, nil
	}
	return a, nil
}

// AuthorBooks is evaluated per author on every read.
func (fr *fieldResolvers) AuthorBooks(p graphql.ResolveParams) (interface{}, error) {
	switch a := p.Source.(type) {
	case store.Author:
		return fr.store.BooksByAuthor(a.ID), nil
	case *store.Author:
		return fr.store.BooksByAuthor(a.ID), nil
	default:
		return nil, errors.Errorf("Author.books resolved on unexpected value of type %T", p.Source)
	}
}
