/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

// Package server runs the bookshelf GraphQL API over HTTP.
//
// GraphQL servers should serve both GET and POST
// https://graphql.org/learn/serving-over-http/
//
// GET should be like
// http://localhost:8000/graphql?query={books{name}}
//
// POST should have a json content body like
//
//	{
//	  "query": "...",
//	  "operationName": "...",
//	  "variables": { "myVariable": "someValue", ... }
//	}
//
// The server answers 200 even when the response carries errors.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/ristretto/v2/z"
	humanize "github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	otrace "go.opencensus.io/trace"
	"go.opencensus.io/zpages"
	"golang.org/x/net/trace"
	"golang.org/x/sync/errgroup"

	"github.com/bookshelf-gql/bookshelf/graphql/resolve"
	"github.com/bookshelf-gql/bookshelf/graphql/web"
	"github.com/bookshelf-gql/bookshelf/store"
	"github.com/bookshelf-gql/bookshelf/x"
)

// Server is the sub-command invoked when running "bookshelf server".
var Server x.SubCommand

func init() {
	Server.Cmd = &cobra.Command{
		Use:   "server",
		Short: "Run the Bookshelf GraphQL server",
		Long: `
Serves the author and book catalogue at /graphql. The catalogue is seeded on
start and lives in memory; additions are lost when the process exits.
`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runProfiled(); err != nil {
				if glog.V(2) {
					fmt.Printf("Error : %+v\n", err)
				} else {
					fmt.Printf("Error : %s\n", err)
				}
				os.Exit(1)
			}
		},
		Annotations: map[string]string{"group": "core"},
	}
	Server.EnvPrefix = "BOOKSHELF_SERVER"
	Server.Cmd.SetHelpTemplate(x.NonRootTemplate)

	// If you change any of the flags below, you must also update run() to call Server.Conf.Get
	// with the flag name so that the values are picked up by Cobra/Viper's various config inputs
	// (e.g, config file, env vars, cli flags, etc.)
	flag := Server.Cmd.Flags()
	flag.IntP("port_offset", "o", 0,
		fmt.Sprintf("Value added to all listening port numbers. [Http=%d]", x.PortHTTP))
	flag.Float64("trace", 0.01, "The ratio of queries to trace.")
	flag.Duration("shutdown_timeout", 10*time.Second,
		"How long in-flight requests may run after a shutdown signal before they are cut off.")

	flag.String("graphql", x.GraphQLDefaults, z.NewSuperFlagHelp(x.GraphQLDefaults).
		Head("GraphQL options").
		Flag("extensions",
			"If set to true, a requestID is attached to the extensions of every response.").
		Flag("debug",
			"If set to true, every request and its latency is logged at Info level.").
		Flag("max-body",
			"Requests with a body larger than this are rejected, e.g. 8MB. Set it to 0 for "+
				"no limit.").
		String())
}

func runProfiled() error {
	prof, err := x.StartProfile(Server.Conf)
	if err != nil {
		return err
	}
	defer prof.Stop()
	return run()
}

func run() error {
	x.PrintVersion()

	gqlFlag := z.NewSuperFlag(Server.Conf.GetString("graphql")).MergeAndCheckDefault(
		x.GraphQLDefaults)
	x.Config = x.Options{
		PortOffset:      Server.Conf.GetInt("port_offset"),
		Bindall:         Server.Conf.GetBool("bindall"),
		Tracing:         Server.Conf.GetFloat64("trace"),
		ShutdownTimeout: Server.Conf.GetDuration("shutdown_timeout"),
		GraphQL:         gqlFlag,
	}
	glog.Infof("x.Config: %+v", x.Config)

	maxBody, err := parseMaxBody(gqlFlag)
	if err != nil {
		return err
	}

	if Server.Conf.GetBool("expose_trace") {
		trace.AuthRequest = func(req *http.Request) (any, sensitive bool) {
			return true, true
		}
	}
	otrace.ApplyConfig(otrace.Config{
		DefaultSampler:             otrace.ProbabilitySampler(x.Config.Tracing),
		MaxAnnotationEventsPerSpan: 64,
	})

	st := store.New()
	resolver, err := resolve.New(st, resolve.Options{
		Extensions: gqlFlag.GetBool("extensions"),
		Debug:      gqlFlag.GetBool("debug"),
	})
	if err != nil {
		return err
	}
	mainServer := web.NewServer(resolver, maxBody)

	laddr := "localhost"
	if x.Config.Bindall {
		laddr = "0.0.0.0"
	}
	l, err := setupListener(laddr, x.HTTPPort())
	if err != nil {
		return errors.Wrapf(err, "while listening on port %d", x.HTTPPort())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopOnSignal(cancel)

	glog.Infof("Bringing up GraphQL HTTP API at %s/graphql", l.Addr())
	if err := serveHTTP(ctx, l, newMux(mainServer, st)); err != nil {
		return err
	}
	glog.Infoln("Server shutdown. Bye!")
	return nil
}

// parseMaxBody reads the max-body option, which may be written as "8MB",
// "512KiB" or a plain byte count.
func parseMaxBody(sf *z.SuperFlag) (int64, error) {
	raw := sf.GetString("max-body")
	if raw == "" || raw == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "while parsing --graphql max-body=%q", raw)
	}
	return cast.ToInt64E(n)
}

func setupListener(addr string, port int) (net.Listener, error) {
	return net.Listen("tcp", fmt.Sprintf("%s:%d", addr, port))
}

func newMux(gql web.Endpoint, st *store.Store) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/graphql", gql.Handler())
	mux.HandleFunc("/health", healthCheck)
	mux.HandleFunc("/debug/store", storeStatsHandler(st))
	mux.Handle("/debug/prometheus_metrics", x.MetricsHandler())
	mux.HandleFunc("/debug/requests", trace.Traces)
	mux.HandleFunc("/debug/events", trace.Events)

	// Add OpenCensus z-pages.
	zpages.Handle(mux, "/z")
	return mux
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	x.AddCorsHeaders(w)
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	x.Reply(w, http.StatusOK, x.Health())
}

func storeStatsHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		x.AddCorsHeaders(w)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		numAuthors, numBooks := st.Stats()
		fmt.Fprintf(w, "authors: %s\nbooks:   %s\n",
			humanize.Comma(int64(numAuthors)), humanize.Comma(int64(numBooks)))
	}
}

// serveHTTP serves on l until ctx is cancelled, then gives in-flight requests
// up to x.Config.ShutdownTimeout to finish.
func serveHTTP(ctx context.Context, l net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      600 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := srv.Serve(l)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "GraphQL server failed")
	})
	g.Go(func() error {
		<-ctx.Done()
		glog.Infoln("Stopped taking more http requests.")
		sctx, cancel := context.WithTimeout(context.Background(), x.Config.ShutdownTimeout)
		defer cancel()
		return errors.Wrap(srv.Shutdown(sctx), "Http shutdown err")
	})
	return g.Wait()
}

// stopOnSignal calls stop on the first SIGINT or SIGTERM and exits the
// process on the third.
func stopOnSignal(stop func()) {
	sdCh := make(chan os.Signal, 3)
	// sigint : Ctrl-C, sigterm : kill command.
	signal.Notify(sdCh, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		var numShutDownSig int
		for range sdCh {
			stop()
			numShutDownSig++
			glog.Infoln("Caught Ctrl-C. Terminating now (this may take a few seconds)...")
			if numShutDownSig == 3 {
				glog.Infoln("Signaled thrice. Aborting!")
				os.Exit(1)
			}
		}
	}()
}
