/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package schema

import (
	"strings"

	"github.com/graphql-go/graphql/gqlerrors"
)

// GqlErrorList is a list of GraphQL errors as they appear in a response.
type GqlErrorList []gqlerrors.FormattedError

func (errList GqlErrorList) Error() string {
	var buf strings.Builder
	for i, gqlErr := range errList {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(gqlErr.Error())
	}
	return buf.String()
}

// AsGQLErrors formats an error as a list of GraphQL errors.
// A GqlErrorList gets returned as is, a single GraphQL error gets returned as a one
// item list, and all other errors get printed into a GraphQL error.  A nil input
// results in nil output.
func AsGQLErrors(err error) GqlErrorList {
	if err == nil {
		return nil
	}

	switch e := err.(type) {
	case GqlErrorList:
		return e
	case gqlerrors.FormattedError:
		return GqlErrorList{e}
	case *gqlerrors.Error:
		return GqlErrorList{gqlerrors.FormatError(e)}
	default:
		return GqlErrorList{gqlerrors.NewFormattedError(e.Error())}
	}
}
