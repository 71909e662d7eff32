/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package x

import (
	"time"

	"github.com/dgraph-io/ristretto/v2/z"
)

const (
	// PortHTTP is the default HTTP port; the served port is PortHTTP + PortOffset.
	PortHTTP = 8000

	// GraphQLDefaults are the defaults for the --graphql super flag.
	GraphQLDefaults = `extensions=true; debug=false; max-body=8MB;`
)

// Options stores the options for this package.
type Options struct {
	// PortOffset will be used to determine the ports to use (port = default port + offset).
	PortOffset int
	// Bindall binds the HTTP listener to 0.0.0.0 instead of localhost.
	Bindall bool
	// Tracing is the ratio of requests to sample for tracing, between 0 and 1.
	Tracing float64
	// ShutdownTimeout bounds how long in-flight requests may run after a
	// shutdown signal.
	ShutdownTimeout time.Duration

	// GraphQL options:
	// extensions: attach a requestID to every response.
	// debug: log every request and response at Info level.
	// max-body: limit on request body size, e.g. 8MB.
	GraphQL *z.SuperFlag
}

// Config stores the global instance of this package's options.
var Config Options

// HTTPPort returns the port the HTTP server listens on.
func HTTPPort() int {
	return Config.PortOffset + PortHTTP
}
