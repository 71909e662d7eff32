/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package resolve

import (
	"context"

	"github.com/golang/glog"
	"github.com/graphql-go/graphql"
	"go.opencensus.io/stats"

	"github.com/bookshelf-gql/bookshelf/x"
)

// Both arguments are non-null in the schema, so the engine rejects requests
// without them before these resolvers run.

func (fr *fieldResolvers) AddBook(p graphql.ResolveParams) (interface{}, error) {
	defer observe(p, x.NumMutations)()
	name, _ := p.Args["name"].(string)
	authorID, _ := p.Args["authorId"].(int)

	b := fr.store.AddBook(name, authorID)
	glog.V(2).Infof("Added book %+v", b)
	fr.recordSizes(p.Context)
	return b, nil
}

func (fr *fieldResolvers) AddAuthor(p graphql.ResolveParams) (interface{}, error) {
	defer observe(p, x.NumMutations)()
	name, _ := p.Args["name"].(string)

	a := fr.store.AddAuthor(name)
	glog.V(2).Infof("Added author %+v", a)
	fr.recordSizes(p.Context)
	return a, nil
}

func (fr *fieldResolvers) recordSizes(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	numAuthors, numBooks := fr.store.Stats()
	stats.Record(ctx, x.NumAuthors.M(int64(numAuthors)), x.NumBooks.M(int64(numBooks)))
}
