// SPDX-License-Identifier: AGPL-3.0-only

package query_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/grafbot/pkg/grafbot/minisdk"
	"github.com/grafana/grafbot/pkg/grafbot/query"
)

const host = "https://play.grafana.org"

func defaultOptions() query.RenderOptions {
	return query.RenderOptions{
		Width:       "1000",
		Height:      "500",
		APIEndpoint: "d-solo",
	}
}

func TestBuildImageURL_Panel(t *testing.T) {
	panel := &minisdk.Panel{ID: 3, Title: "logins"}
	ts := query.Timespan{From: "now-6h", To: "now"}

	got := query.BuildImageURL(host, defaultOptions(), "97PlYC7Mk", panel, ts, "")
	assert.Equal(t, "https://play.grafana.org/render/d-solo/97PlYC7Mk/?panelId=3&width=1000&height=500&from=now-6h&to=now", got)
}

func TestBuildImageURL_Kiosk(t *testing.T) {
	opts := defaultOptions()
	opts.Kiosk = true
	opts.APIEndpoint = "d"
	ts := query.Timespan{From: "now-6h", To: "now"}

	got := query.BuildImageURL(host, opts, "97PlYC7Mk", nil, ts, "")
	assert.Equal(t, "https://play.grafana.org/render/d/97PlYC7Mk/?kiosk&autofitpanels&width=1000&height=500&from=now-6h&to=now", got)
}

func TestBuildImageURL_VariablesTimezoneAndOrg(t *testing.T) {
	opts := defaultOptions()
	opts.Timezone = "Europe/Amsterdam"
	opts.OrgID = "2"
	panel := &minisdk.Panel{ID: 1}
	ts := query.Timespan{From: "now-6h", To: "now"}

	got := query.BuildImageURL(host, opts, "000000091", panel, ts, "&var-server=backend_01")
	assert.Equal(t, "https://play.grafana.org/render/d-solo/000000091/?panelId=1&width=1000&height=500&from=now-6h&to=now&var-server=backend_01&tz=Europe%2FAmsterdam&orgId=2", got)
}

func TestBuildChartLink(t *testing.T) {
	panel := &minisdk.Panel{ID: 3}
	ts := query.Timespan{From: "now-6h", To: "now"}

	got := query.BuildChartLink(host, "97PlYC7Mk", panel, ts, "")
	assert.Equal(t, "https://play.grafana.org/d/97PlYC7Mk/?panelId=3&fullscreen&from=now-6h&to=now", got)

	got = query.BuildChartLink(host, "97PlYC7Mk", nil, ts, "&var-server=backend_01")
	assert.Equal(t, "https://play.grafana.org/d/97PlYC7Mk/?from=now-6h&to=now&var-server=backend_01", got)
}

func TestBuildImageURL_RoundTrip(t *testing.T) {
	opts := query.RenderOptions{Width: "1187", Height: "492", APIEndpoint: "d-solo"}
	ts := query.Timespan{From: "now-13h", To: "now-1h"}

	u, err := url.Parse(query.BuildImageURL(host, opts, "97PlYC7Mk", &minisdk.Panel{ID: 5}, ts, ""))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "1187", q.Get("width"))
	assert.Equal(t, "492", q.Get("height"))
	assert.Equal(t, "now-13h", q.Get("from"))
	assert.Equal(t, "now-1h", q.Get("to"))
	assert.Equal(t, "5", q.Get("panelId"))
}
