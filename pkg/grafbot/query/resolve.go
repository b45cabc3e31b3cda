// SPDX-License-Identifier: AGPL-3.0-only

package query

import (
	"regexp"
	"strings"

	"github.com/grafana/grafbot/pkg/grafbot/minisdk"
)

var templateToken = regexp.MustCompile(`\$\w+`)

// Chart is one resolved rendering artifact, ready to hand to a delivery
// destination.
type Chart struct {
	Title    string
	ImageURL string
	Link     string
}

// TemplateMap builds the substitution map for $name tokens in panel titles.
// Every declared variable with a current selection contributes its selected
// text under the key "$name"; an explicit override from the command wins over
// the selection, wherever it appeared. Variables with neither are left out,
// which keeps their literal tokens intact at substitution time.
func TemplateMap(board *minisdk.Board, overrides []TemplateParam) map[string]string {
	byName := make(map[string]string, len(overrides))
	for _, o := range overrides {
		byName[o.Name] = o.Value
	}

	vars := make(map[string]string)
	for i := range board.Templating.List {
		tv := &board.Templating.List[i]
		if value, ok := byName[tv.Name]; ok {
			vars["$"+tv.Name] = value
			continue
		}
		if text, ok := tv.SelectedText(); ok {
			vars["$"+tv.Name] = text
		}
	}
	return vars
}

// FormatTitle substitutes every $identifier token in a panel title using the
// template map. Tokens that resolve to nothing keep their literal form.
func FormatTitle(title string, vars map[string]string) string {
	return templateToken.ReplaceAllStringFunc(title, func(token string) string {
		if value, ok := vars[token]; ok && value != "" {
			return value
		}
		return token
	})
}

// ResolveCharts walks the normalized panel tree in document order and yields
// at most maxCount charts matching the request's selector. Truncation at
// maxCount is silent. An empty result means no panel matched; reporting that
// is the caller's business.
//
// In kiosk mode selection is skipped entirely: the whole dashboard renders as
// one chart through the full-dashboard endpoint, titled like the dashboard.
func ResolveCharts(host string, req *DashboardRequest, board *minisdk.Board, vars map[string]string, maxCount int) []Chart {
	if req.Options.Kiosk {
		opts := req.Options
		opts.APIEndpoint = "d"
		return []Chart{{
			Title:    board.Title,
			ImageURL: BuildImageURL(host, opts, req.UID, nil, req.Timespan, req.Variables),
			Link:     BuildChartLink(host, req.UID, nil, req.Timespan, req.Variables),
		}}
	}

	var charts []Chart
	panelNumber := 0
	for _, row := range board.Rows {
		for i := range row.Panels {
			panel := &row.Panels[i]
			panelNumber++

			if req.VisualPanelID != 0 && req.VisualPanelID != panelNumber {
				continue
			}
			if req.APIPanelID != 0 && req.APIPanelID != panel.ID {
				continue
			}
			if req.PanelNameFilter != "" && !strings.Contains(strings.ToLower(panel.Title), req.PanelNameFilter) {
				continue
			}

			charts = append(charts, Chart{
				Title:    FormatTitle(panel.Title, vars),
				ImageURL: BuildImageURL(host, req.Options, req.UID, panel, req.Timespan, req.Variables),
				Link:     BuildChartLink(host, req.UID, panel, req.Timespan, req.Variables),
			})
			if len(charts) == maxCount {
				return charts
			}
		}
	}
	return charts
}
