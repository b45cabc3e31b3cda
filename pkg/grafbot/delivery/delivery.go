// SPDX-License-Identifier: AGPL-3.0-only

// Package delivery posts resolved charts to their destination. A destination
// either replies with links (console) or downloads the rendered image through
// the authenticated Grafana client and uploads it to a platform (Slack,
// RocketChat, Telegram, S3).
package delivery

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/grafana/grafbot/pkg/grafbot/client"
	"github.com/grafana/grafbot/pkg/grafbot/query"
)

var deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "grafbot",
	Name:      "deliveries_total",
	Help:      "Charts delivered, by destination and outcome.",
}, []string{"destination", "outcome"})

func observe(destination string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	deliveriesTotal.WithLabelValues(destination, outcome).Inc()
}

// Downloader fetches rendered image bytes with the Grafana credentials.
// *client.GrafanaClient satisfies it.
type Downloader interface {
	Download(ctx context.Context, url string) (*client.DownloadedFile, error)
}

// Responder delivers one resolved chart to a destination. Charts of one
// command are delivered sequentially to preserve message order.
type Responder interface {
	Name() string
	Send(ctx context.Context, room string, chart query.Chart) error
}

// WriterResponder replies with a plain link message. It is the fallback when
// no upload destination is configured, and the place upload failures degrade
// to.
type WriterResponder struct {
	Out io.Writer
}

func (r *WriterResponder) Name() string { return "link" }

func (r *WriterResponder) Send(_ context.Context, _ string, chart query.Chart) error {
	_, err := fmt.Fprintf(r.Out, "%s: %s - %s\n", chart.Title, chart.ImageURL, chart.Link)
	observe(r.Name(), err)
	return err
}
