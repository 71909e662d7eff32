/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package x

import (
	"context"
	"net/http"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	"github.com/golang/glog"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	// NumQueries is the total number of GraphQL query fields resolved.
	NumQueries = stats.Int64("num_queries_total",
		"Total number of queries", stats.UnitDimensionless)
	// NumMutations is the total number of GraphQL mutation fields resolved.
	NumMutations = stats.Int64("num_mutations_total",
		"Total number of mutations", stats.UnitDimensionless)
	// NumRequests is the total number of GraphQL requests served.
	NumRequests = stats.Int64("num_graphql_requests_total",
		"Total number of GraphQL requests", stats.UnitDimensionless)
	// LatencyMs is the latency of the various methods.
	LatencyMs = stats.Float64("latency",
		"Latency of the various methods", stats.UnitMilliseconds)
	// NumBooks is the current size of the book collection.
	NumBooks = stats.Int64("num_books",
		"Number of books in the store", stats.UnitDimensionless)
	// NumAuthors is the current size of the author collection.
	NumAuthors = stats.Int64("num_authors",
		"Number of authors in the store", stats.UnitDimensionless)

	// KeyStatus is the tag key used to record the status of the server.
	KeyStatus, _ = tag.NewKey("status")
	// KeyMethod is the tag key used to record the method (e.g read or mutate).
	KeyMethod, _ = tag.NewKey("method")

	// TagValueStatusOK represents the status of a successful call.
	TagValueStatusOK = "ok"
	// TagValueStatusError represents the status of a failed call.
	TagValueStatusError = "error"

	defaultLatencyMsDistribution = view.Distribution(
		0, 0.01, 0.05, 0.1, 0.3, 0.6, 0.8, 1, 2, 3, 4, 5, 6, 8, 10, 13, 16,
		20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500,
		650, 800, 1000, 2000, 5000, 10000, 20000, 50000, 100000)

	allTagKeys = []tag.Key{
		KeyStatus, KeyMethod,
	}

	allViews = []*view.View{
		{
			Name:        LatencyMs.Name(),
			Measure:     LatencyMs,
			Description: LatencyMs.Description(),
			Aggregation: defaultLatencyMsDistribution,
			TagKeys:     allTagKeys,
		},
		{
			Name:        NumQueries.Name(),
			Measure:     NumQueries,
			Description: NumQueries.Description(),
			Aggregation: view.Count(),
			TagKeys:     allTagKeys,
		},
		{
			Name:        NumMutations.Name(),
			Measure:     NumMutations,
			Description: NumMutations.Description(),
			Aggregation: view.Count(),
			TagKeys:     allTagKeys,
		},
		{
			Name:        NumRequests.Name(),
			Measure:     NumRequests,
			Description: NumRequests.Description(),
			Aggregation: view.Count(),
			TagKeys:     allTagKeys,
		},

		// Last value aggregations
		{
			Name:        NumBooks.Name(),
			Measure:     NumBooks,
			Description: NumBooks.Description(),
			Aggregation: view.LastValue(),
		},
		{
			Name:        NumAuthors.Name(),
			Measure:     NumAuthors,
			Description: NumAuthors.Description(),
			Aggregation: view.LastValue(),
		},
	}

	metricsHandler http.Handler
)

func init() {
	Checkf(view.Register(allViews...), "Failed to register OpenCensus views")

	reg := promclient.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: "bookshelf",
		Registry:  reg,
		OnError:   func(err error) { glog.Errorf("%v", err) },
	})
	Checkf(err, "Failed to create OpenCensus Prometheus exporter")
	view.RegisterExporter(pe)
	metricsHandler = pe
}

// MetricsHandler serves the registered views in the Prometheus text format.
func MetricsHandler() http.Handler {
	return metricsHandler
}

// WithMethod returns a new updated context with the tag KeyMethod set to the given value.
func WithMethod(parent context.Context, method string) context.Context {
	ctx, err := tag.New(parent, tag.Upsert(KeyMethod, method))
	Check(err)
	return ctx
}

// RecordLatency records the time since start against LatencyMs, tagged with
// the outcome of the call.
func RecordLatency(ctx context.Context, start time.Time, err error) {
	status := TagValueStatusOK
	if err != nil {
		status = TagValueStatusError
	}
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(KeyStatus, status)},
		LatencyMs.M(SinceMs(start)))
}

// SinceMs returns the time since startTime in milliseconds (as a float).
func SinceMs(startTime time.Time) float64 {
	return float64(time.Since(startTime)) / 1e6
}
