/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package api

import (
	"fmt"
	"runtime/debug"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/bookshelf-gql/bookshelf/graphql/schema"
)

// ErrPanic is the message sent to clients when a panic was recovered.
const ErrPanic = "Internal Server Error - a panic was trapped.  " +
	"This indicates a bug in the GraphQL server.  A stack trace was logged."

// Recover must be deferred directly. If the serving of gqlReq panicked, it logs
// the panic with the request and a stack trace, then hands write an error
// response to send in place of the result. gqlReq is nil when the panic came
// before the request was decoded.
func Recover(gqlReq *schema.Request, write func(*schema.Response)) {
	p := recover()
	if p == nil {
		return
	}
	glog.Errorf("panic: %v\n %s\n trace: %s", p, describeRequest(gqlReq), debug.Stack())
	write(schema.ErrorResponse(errors.New(ErrPanic)))
}

func describeRequest(gqlReq *schema.Request) string {
	if gqlReq == nil {
		return "request: not decoded"
	}
	return fmt.Sprintf("operationName: %q query: %s", gqlReq.OperationName, gqlReq.Query)
}
