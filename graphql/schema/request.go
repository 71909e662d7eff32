/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package schema

import (
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// A Request represents a GraphQL request.  It makes no guarantees that the
// request is valid.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`

	// ReadOnly requests arrived over a safe http method (GET) and may not
	// run mutations.
	ReadOnly bool `json:"-"`
}

// Operation parses the query and returns the operation the request selects.
// It returns nil if the query doesn't parse or doesn't pick out exactly one
// operation; execution reports those errors.
func (req *Request) Operation() *ast.OperationDefinition {
	if req == nil || req.Query == "" {
		return nil
	}
	doc, err := parser.Parse(parser.ParseParams{Source: req.Query})
	if err != nil {
		return nil
	}

	var found *ast.OperationDefinition
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if req.OperationName != "" {
			if op.Name != nil && op.Name.Value == req.OperationName {
				return op
			}
			continue
		}
		if found != nil {
			return nil
		}
		found = op
	}
	return found
}

// IsIntrospection reports whether the selected operation queries __schema or
// __type at the top level. __typename doesn't count.
func (req *Request) IsIntrospection() bool {
	op := req.Operation()
	if op == nil || op.SelectionSet == nil {
		return false
	}
	for _, sel := range op.SelectionSet.Selections {
		if f, ok := sel.(*ast.Field); ok && f.Name != nil {
			if f.Name.Value == "__schema" || f.Name.Value == "__type" {
				return true
			}
		}
	}
	return false
}
