/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package version

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	Version.Cmd.SetOut(&out)
	Version.Cmd.SetArgs([]string{})
	require.NoError(t, Version.Cmd.Execute())

	require.Contains(t, out.String(), "Bookshelf version : dev")
	require.Contains(t, out.String(), runtime.Version())
}
