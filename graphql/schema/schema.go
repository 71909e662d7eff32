/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

// Package schema builds the bookshelf GraphQL schema and defines the request
// and response types exchanged with the execution engine.
package schema

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/pkg/errors"
)

// Names of the object types in the schema.
const (
	AuthorType   = "Author"
	BookType     = "Book"
	QueryType    = "Query"
	MutationType = "Mutation"
)

// Resolvers are the field resolvers bound into the schema. Query and mutation
// resolvers get the root value as source; AuthorBooks gets the author being
// resolved.
type Resolvers interface {
	Books(p graphql.ResolveParams) (interface{}, error)
	Book(p graphql.ResolveParams) (interface{}, error)
	Authors(p graphql.ResolveParams) (interface{}, error)
	Author(p graphql.ResolveParams) (interface{}, error)
	AuthorBooks(p graphql.ResolveParams) (interface{}, error)

	AddBook(p graphql.ResolveParams) (interface{}, error)
	AddAuthor(p graphql.ResolveParams) (interface{}, error)
}

// Schema is an executable GraphQL schema.
type Schema struct {
	schema graphql.Schema
}

// registry holds the object types while the schema is being assembled. Types
// are declared first and fields that point at other types are attached once
// every type exists, so Author can refer to Book regardless of order.
type registry struct {
	objects map[string]*graphql.Object
}

func newRegistry() *registry {
	return &registry{objects: make(map[string]*graphql.Object)}
}

func (r *registry) declare(name, description string, fields graphql.Fields) error {
	if _, ok := r.objects[name]; ok {
		return errors.Errorf("type %s declared twice", name)
	}
	if fields == nil {
		fields = graphql.Fields{}
	}
	r.objects[name] = graphql.NewObject(graphql.ObjectConfig{
		Name:        name,
		Description: description,
		Fields:      fields,
	})
	return nil
}

func (r *registry) object(name string) (*graphql.Object, error) {
	obj, ok := r.objects[name]
	if !ok {
		return nil, errors.Errorf("type %s is not declared", name)
	}
	return obj, nil
}

func (r *registry) attach(typeName, fieldName string, field *graphql.Field) error {
	obj, err := r.object(typeName)
	if err != nil {
		return errors.Wrapf(err, "while attaching %s.%s", typeName, fieldName)
	}
	obj.AddFieldConfig(fieldName, field)
	return nil
}

// New builds the schema and binds rs into it.
func New(rs Resolvers) (*Schema, error) {
	reg := newRegistry()

	// First pass: every object type with the fields that need no other type.
	decls := []struct {
		name, description string
		fields            graphql.Fields
	}{
		{BookType, "This represents a book written by an author", graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"name":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"authorId": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		}},
		{AuthorType, "This represents an author of a book", graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		}},
		{QueryType, "Root Query", nil},
		{MutationType, "Root Mutation", nil},
	}
	for _, d := range decls {
		if err := reg.declare(d.name, d.description, d.fields); err != nil {
			return nil, err
		}
	}

	book, err := reg.object(BookType)
	if err != nil {
		return nil, err
	}
	author, err := reg.object(AuthorType)
	if err != nil {
		return nil, err
	}
	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.Int},
	}

	// Second pass: edges between types and the root fields.
	edges := []struct {
		typeName, fieldName string
		field               *graphql.Field
	}{
		{AuthorType, "books", &graphql.Field{
			Type:    graphql.NewList(book),
			Resolve: rs.AuthorBooks,
		}},

		{QueryType, "books", &graphql.Field{
			Type:        graphql.NewList(book),
			Description: "List of all books",
			Resolve:     rs.Books,
		}},
		{QueryType, "book", &graphql.Field{
			Type:        book,
			Description: "A single book",
			Args:        idArg,
			Resolve:     rs.Book,
		}},
		{QueryType, "authors", &graphql.Field{
			Type:        graphql.NewList(author),
			Description: "List of all authors",
			Resolve:     rs.Authors,
		}},
		{QueryType, "author", &graphql.Field{
			Type:        author,
			Description: "A single author",
			Args:        idArg,
			Resolve:     rs.Author,
		}},

		{MutationType, "addBook", &graphql.Field{
			Type:        book,
			Description: "Add a book",
			Args: graphql.FieldConfigArgument{
				"name":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"authorId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			},
			Resolve: rs.AddBook,
		}},
		{MutationType, "addAuthor", &graphql.Field{
			Type:        author,
			Description: "Add an author",
			Args: graphql.FieldConfigArgument{
				"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: rs.AddAuthor,
		}},
	}
	for _, e := range edges {
		if err := reg.attach(e.typeName, e.fieldName, e.field); err != nil {
			return nil, err
		}
	}

	query, err := reg.object(QueryType)
	if err != nil {
		return nil, err
	}
	mutation, err := reg.object(MutationType)
	if err != nil {
		return nil, err
	}
	s, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
	if err != nil {
		return nil, errors.Wrap(err, "while building schema")
	}
	return &Schema{schema: s}, nil
}

// Execute parses, validates and executes req against the schema.
func (s *Schema) Execute(ctx context.Context, req *Request) *Response {
	if req == nil || req.Query == "" {
		return ErrorResponse(errors.New("no query string supplied in request"))
	}
	if req.ReadOnly {
		if op := req.Operation(); op != nil && op.Operation == ast.OperationTypeMutation {
			return ErrorResponse(errors.New(
				"Can only perform a mutation operation from a POST request"))
		}
	}

	res := graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	resp := &Response{Data: res.Data}
	if len(res.Errors) > 0 {
		resp.Errors = GqlErrorList(res.Errors)
	}
	return resp
}
