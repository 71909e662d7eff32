/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package main

import (
	"github.com/bookshelf-gql/bookshelf/bookshelf/cmd"
)

func main() {
	cmd.Execute()
}
