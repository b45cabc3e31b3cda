// SPDX-License-Identifier: AGPL-3.0-only

package query_test

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/grafbot/pkg/grafbot/minisdk"
	"github.com/grafana/grafbot/pkg/grafbot/query"
)

func loadBoard(t *testing.T, path string) *minisdk.Board {
	t.Helper()

	buf, err := os.ReadFile(path)
	require.NoError(t, err)

	board := &minisdk.Board{}
	require.NoError(t, json.Unmarshal(buf, board))
	require.NoError(t, board.Normalize())
	return board
}

func resolve(t *testing.T, board *minisdk.Board, input string, maxCount int) []query.Chart {
	t.Helper()

	req, err := query.Parse(input, query.RenderDefaults{})
	require.NoError(t, err)

	vars := query.TemplateMap(board, req.TemplateParams)
	return query.ResolveCharts(host, req, board, vars, maxCount)
}

func TestResolveCharts_ByAPIPanelID(t *testing.T) {
	board := loadBoard(t, "testdata/dashboard_panels.json")

	charts := resolve(t, board, "97PlYC7Mk:panel-3", 25)
	require.Len(t, charts, 1)

	assert.Equal(t, "logins", charts[0].Title)
	assert.Equal(t, "https://play.grafana.org/render/d-solo/97PlYC7Mk/?panelId=3&width=1000&height=500&from=now-6h&to=now", charts[0].ImageURL)
	assert.Equal(t, "https://play.grafana.org/d/97PlYC7Mk/?panelId=3&fullscreen&from=now-6h&to=now", charts[0].Link)
}

func TestResolveCharts_ByVisualOrdinal(t *testing.T) {
	board := loadBoard(t, "testdata/dashboard_rows.json")
	titles := []string{"cpu", "memory", "logins", "logins errors", "disk io", "network"}

	for n, want := range titles {
		charts := resolve(t, board, fmt.Sprintf("97PlYC7Mk:%d", n+1), 25)
		require.Len(t, charts, 1)
		assert.Equal(t, want, charts[0].Title)
	}
}

func TestResolveCharts_ByNameFilter(t *testing.T) {
	board := loadBoard(t, "testdata/dashboard_panels.json")

	charts := resolve(t, board, "97PlYC7Mk:LOGINS", 25)
	require.Len(t, charts, 2)
	assert.Equal(t, "logins", charts[0].Title)
	assert.Equal(t, "logins errors", charts[1].Title)
}

func TestResolveCharts_NoMatch(t *testing.T) {
	board := loadBoard(t, "testdata/dashboard_panels.json")

	assert.Empty(t, resolve(t, board, "97PlYC7Mk:100", 25))
	assert.Empty(t, resolve(t, board, "97PlYC7Mk:panel-100", 25))
	assert.Empty(t, resolve(t, board, "97PlYC7Mk:nosuchpanel", 25))
}

func TestResolveCharts_MaxCountBoundary(t *testing.T) {
	board := loadBoard(t, "testdata/dashboard_panels.json")

	// 6 panels match, but only the first maxCount come back, in document order
	charts := resolve(t, board, "97PlYC7Mk", 2)
	require.Len(t, charts, 2)
	assert.Equal(t, "cpu", charts[0].Title)
	assert.Equal(t, "memory", charts[1].Title)
}

func TestResolveCharts_Kiosk(t *testing.T) {
	board := loadBoard(t, "testdata/dashboard_panels.json")

	// kiosk wins over any panel selector and always yields one chart
	charts := resolve(t, board, "97PlYC7Mk:3 kiosk", 25)
	require.Len(t, charts, 1)

	assert.Equal(t, "Production Overview", charts[0].Title)
	assert.Equal(t, "https://play.grafana.org/render/d/97PlYC7Mk/?kiosk&autofitpanels&width=1000&height=500&from=now-6h&to=now", charts[0].ImageURL)
	assert.Equal(t, "https://play.grafana.org/d/97PlYC7Mk/?from=now-6h&to=now", charts[0].Link)
}

func TestResolveCharts_LegacySchemaEquivalence(t *testing.T) {
	legacy := loadBoard(t, "testdata/dashboard_rows.json")
	modern := loadBoard(t, "testdata/dashboard_panels.json")

	for _, input := range []string{"97PlYC7Mk", "97PlYC7Mk:3", "97PlYC7Mk:logins", "97PlYC7Mk kiosk"} {
		assert.Equal(t, resolve(t, legacy, input, 25), resolve(t, modern, input, 25), "input %q", input)
	}
}

func TestResolveCharts_TemplatedTitleAndVariables(t *testing.T) {
	board := loadBoard(t, "testdata/dashboard_templated.json")

	charts := resolve(t, board, "000000091:graph server=backend_01 now-6h", 25)
	require.Len(t, charts, 1)

	assert.Equal(t, "graph of backend_01", charts[0].Title)
	assert.Equal(t, "https://play.grafana.org/render/d-solo/000000091/?panelId=1&width=1000&height=500&from=now-6h&to=now&var-server=backend_01", charts[0].ImageURL)
	assert.Equal(t, "https://play.grafana.org/d/000000091/?panelId=1&fullscreen&from=now-6h&to=now&var-server=backend_01", charts[0].Link)
}

func TestTemplateMap(t *testing.T) {
	board := loadBoard(t, "testdata/dashboard_templated.json")

	// no overrides: declared variables with a selection contribute their text
	vars := query.TemplateMap(board, nil)
	assert.Equal(t, map[string]string{
		"$server":     "ww1.example.com",
		"$datacenter": "eu-west",
	}, vars)

	// an override wins over the selection; interval has no selection and no
	// override, so it stays out of the map
	vars = query.TemplateMap(board, []query.TemplateParam{{Name: "server", Value: "backend_01"}})
	assert.Equal(t, map[string]string{
		"$server":     "backend_01",
		"$datacenter": "eu-west",
	}, vars)

	// an override reaches variables that have no current selection
	vars = query.TemplateMap(board, []query.TemplateParam{{Name: "interval", Value: "5m"}})
	assert.Equal(t, "5m", vars["$interval"])
}

func TestFormatTitle(t *testing.T) {
	vars := map[string]string{"$server": "backend_01", "$empty": ""}

	assert.Equal(t, "graph of backend_01", query.FormatTitle("graph of $server", vars))
	assert.Equal(t, "no variables here", query.FormatTitle("no variables here", vars))
	// unknown and empty-valued tokens keep their literal form
	assert.Equal(t, "$unknown of $empty", query.FormatTitle("$unknown of $empty", vars))
}
