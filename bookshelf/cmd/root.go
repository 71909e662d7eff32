/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package cmd

import (
	goflag "flag"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bookshelf-gql/bookshelf/bookshelf/cmd/server"
	"github.com/bookshelf-gql/bookshelf/bookshelf/cmd/version"
	"github.com/bookshelf-gql/bookshelf/x"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "bookshelf",
	Short: "Bookshelf: a GraphQL API over authors and books",
	Long: `
Bookshelf serves a small catalogue of authors and books over GraphQL. Books
and authors can be listed, looked up by id and added. Everything is held in
memory and starts from the same seed data on every run.
` + x.BuildDetails(),
	PersistentPreRunE: cobra.NoArgs,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	goflag.Parse()
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var rootConf = viper.New()

var subcommands = []*x.SubCommand{
	&server.Server, &version.Version,
}

func init() {
	persistent := RootCmd.PersistentFlags()
	persistent.String("profile_mode", "",
		"Enable profiling mode, one of [cpu, mem, mutex, block]")
	persistent.Int("block_rate", 0,
		"Block profiling rate. Must be used along with block profile_mode")
	persistent.String("profile_dir", "",
		"Directory profiles are written to. Defaults to a new temporary directory.")
	persistent.String("config", "",
		"Configuration file (json, yaml or toml). Values in it are overridden by "+
			"environment variables and flags.")
	persistent.Bool("bindall", true,
		"Use 0.0.0.0 instead of localhost to bind to all addresses on local machine.")
	persistent.Bool("expose_trace", false,
		"Allow the /debug/requests trace pages to be viewed from remote hosts.")
	x.Check(rootConf.BindPFlags(persistent))

	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	// glog writes everything to stderr; stderrthreshold is pinned and hidden.
	x.Check(flag.Set("stderrthreshold", "0"))
	x.Check(flag.CommandLine.MarkDeprecated("stderrthreshold",
		"Bookshelf always sets this flag to 0. It can't be overwritten."))

	for _, sc := range subcommands {
		RootCmd.AddCommand(sc.Cmd)
		bindSubCommand(sc)
	}
	cobra.OnInitialize(readConfig)
}

// bindSubCommand gives sc its own viper instance, layering its flags, the
// root's persistent flags and environment variables under sc.EnvPrefix.
func bindSubCommand(sc *x.SubCommand) {
	sc.Conf = viper.New()
	x.Check(sc.Conf.BindPFlags(sc.Cmd.Flags()))
	x.Check(sc.Conf.BindPFlags(RootCmd.PersistentFlags()))
	sc.Conf.SetEnvPrefix(sc.EnvPrefix)
	sc.Conf.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	sc.Conf.AutomaticEnv()
}

func readConfig() {
	cfg := rootConf.GetString("config")
	if cfg == "" {
		return
	}
	for _, sc := range subcommands {
		sc.Conf.SetConfigFile(cfg)
		x.Check(x.Wrapf(sc.Conf.ReadInConfig(), "reading config %s", cfg))
	}
}
