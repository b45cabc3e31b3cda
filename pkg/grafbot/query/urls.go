// SPDX-License-Identifier: AGPL-3.0-only

package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/grafana/grafbot/pkg/grafbot/minisdk"
)

// param is a single query-string parameter. Bare params render as just their
// name, the flag style the image renderer accepts ("kiosk" rather than
// "kiosk=").
type param struct {
	name  string
	value string
	bare  bool
}

// params is an ordered parameter list. Order is part of the contract: the
// rendering backend and years of pinned fixtures expect these URLs
// byte-for-byte, so nothing here may sort or re-encode.
type params []param

func (ps params) encode() string {
	var b strings.Builder
	for i, p := range ps {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.name)
		if !p.bare {
			b.WriteByte('=')
			b.WriteString(p.value)
		}
	}
	return b.String()
}

// BuildImageURL builds the renderer URL for a panel, or for the whole
// dashboard when panel is nil. The variables fragment is appended verbatim;
// it was pre-encoded in parse order.
func BuildImageURL(host string, opts RenderOptions, uid string, panel *minisdk.Panel, ts Timespan, variables string) string {
	var ps params
	if panel != nil {
		ps = append(ps, param{name: "panelId", value: strconv.Itoa(panel.ID)})
	} else if opts.Kiosk {
		ps = append(ps,
			param{name: "kiosk", bare: true},
			param{name: "autofitpanels", bare: true},
		)
	}
	ps = append(ps,
		param{name: "width", value: opts.Width},
		param{name: "height", value: opts.Height},
		param{name: "from", value: ts.From},
		param{name: "to", value: ts.To},
	)

	u := host + "/render/" + opts.APIEndpoint + "/" + uid + "/?" + ps.encode() + variables
	if opts.Timezone != "" {
		u += "&tz=" + url.QueryEscape(opts.Timezone)
	}
	if opts.OrgID != "" {
		u += "&orgId=" + url.QueryEscape(opts.OrgID)
	}
	return u
}

// BuildChartLink builds the human permalink into Grafana for a panel, or for
// the whole dashboard when panel is nil.
func BuildChartLink(host, uid string, panel *minisdk.Panel, ts Timespan, variables string) string {
	var ps params
	if panel != nil {
		ps = append(ps,
			param{name: "panelId", value: strconv.Itoa(panel.ID)},
			param{name: "fullscreen", bare: true},
		)
	}
	ps = append(ps,
		param{name: "from", value: ts.From},
		param{name: "to", value: ts.To},
	)
	return host + "/d/" + uid + "/?" + ps.encode() + variables
}
