/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookshelf-gql/bookshelf/x"
)

// Version is the sub-command invoked when running "bookshelf version".
var Version x.SubCommand

func init() {
	Version.Cmd = &cobra.Command{
		Use:   "version",
		Short: "Prints the bookshelf version details",
		Long:  "Version prints the bookshelf version as reported by the build details.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), x.BuildDetails())
		},
		Annotations: map[string]string{"group": "default"},
	}
	Version.EnvPrefix = "BOOKSHELF_VERSION"
	Version.Cmd.SetHelpTemplate(x.NonRootTemplate)
}
