/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package api

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookshelf-gql/bookshelf/graphql/schema"
)

func TestRecover(t *testing.T) {
	gqlReq := &schema.Request{Query: `mutation { addAuthor(name: "A") { id } }`}

	var got *schema.Response
	func() {
		defer Recover(gqlReq, func(resp *schema.Response) { got = resp })
		panic("boom")
	}()
	require.NotNil(t, got)
	require.Nil(t, got.Data)
	require.Len(t, got.Errors, 1)
	require.Equal(t, ErrPanic, got.Errors[0].Message)

	got = nil
	func() {
		defer Recover(gqlReq, func(resp *schema.Response) { got = resp })
	}()
	require.Nil(t, got)

	func() {
		defer Recover(nil, func(resp *schema.Response) { got = resp })
		panic("before decode")
	}()
	require.NotNil(t, got)
}

func TestDescribeRequest(t *testing.T) {
	// A POST body never shows up in the URL, so the decoded query is what gets logged.
	desc := describeRequest(&schema.Request{
		Query:         `query Q { books { id } }`,
		OperationName: "Q",
	})
	require.Contains(t, desc, `query Q { books { id } }`)
	require.Contains(t, desc, `operationName: "Q"`)

	require.Equal(t, "request: not decoded", describeRequest(nil))
}
