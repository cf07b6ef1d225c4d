// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus instrumentation for the server.
// A private registry keeps the /metrics output limited to what we
// register plus the standard Go and process collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for TailorCMS.
type Metrics struct {
	// HTTP metrics
	RequestsTotal          *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec

	// Page pipeline
	PageCacheHitsTotal   prometheus.Counter
	PageCacheMissesTotal prometheus.Counter
	PagesRenderedTotal   *prometheus.CounterVec
	PreviewViewsTotal    prometheus.Counter

	// Personalization
	PersonalizedBlocksTotal *prometheus.CounterVec

	// Conversions
	ContactSubmissionsTotal prometheus.Counter
	NewsletterSignupsTotal  prometheus.Counter

	// Abuse and background work
	RateLimitRejectionsTotal prometheus.Counter
	IndexSubmissionsTotal    *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with all metrics registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tailorcms_http_requests_total",
				Help: "Total HTTP requests served",
			},
			[]string{"method", "status"},
		),
		RequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tailorcms_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		PageCacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tailorcms_page_cache_hits_total",
			Help: "Public pages served from the Valkey cache",
		}),
		PageCacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tailorcms_page_cache_misses_total",
			Help: "Public pages rendered because the cache missed",
		}),
		PagesRenderedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tailorcms_pages_rendered_total",
				Help: "Pages assembled, by content type",
			},
			[]string{"type"},
		),
		PreviewViewsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tailorcms_preview_views_total",
			Help: "Draft previews served via share tokens",
		}),
		PersonalizedBlocksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tailorcms_personalized_blocks_total",
				Help: "Blocks rendered with an industry variant applied",
			},
			[]string{"industry"},
		),
		ContactSubmissionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tailorcms_contact_submissions_total",
			Help: "Contact form submissions accepted",
		}),
		NewsletterSignupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tailorcms_newsletter_signups_total",
			Help: "Newsletter signups accepted",
		}),
		RateLimitRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tailorcms_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		}),
		IndexSubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tailorcms_index_submissions_total",
				Help: "IndexNow URL submissions, by outcome",
			},
			[]string{"outcome"},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDurationSeconds,
		m.PageCacheHitsTotal,
		m.PageCacheMissesTotal,
		m.PagesRenderedTotal,
		m.PreviewViewsTotal,
		m.PersonalizedBlocksTotal,
		m.ContactSubmissionsTotal,
		m.NewsletterSignupsTotal,
		m.RateLimitRejectionsTotal,
		m.IndexSubmissionsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the response status for the HTTP middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency per method and status.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		m.RequestDurationSeconds.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
