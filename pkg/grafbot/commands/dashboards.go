// SPDX-License-Identifier: AGPL-3.0-only

package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/grafana-tools/sdk"
	log "github.com/sirupsen/logrus"

	"github.com/grafana/grafbot/pkg/grafbot/client"
)

// DashboardsCommand lists and searches the dashboards of a Grafana instance.
type DashboardsCommand struct {
	clientConfig  client.Config
	tag           string
	query         string
	maxDashboards int

	out io.Writer
}

// Register the dashboards command and its subcommands with the kingpin
// application.
func (c *DashboardsCommand) Register(app *kingpin.Application, envVars EnvVarNames) {
	cmd := app.Command("dashboards", "List and search dashboards.")
	registerClientFlags(cmd, envVars, &c.clientConfig)
	cmd.Flag("max-dashboards", "Maximum number of dashboards listed.").
		Default("25").Envar(envVars.MaxDashboards).IntVar(&c.maxDashboards)

	listCmd := cmd.Command("list", "List all dashboards, optionally by tag.").Action(c.list)
	listCmd.Flag("tag", "Only list dashboards carrying this tag.").Default("").StringVar(&c.tag)

	searchCmd := cmd.Command("search", "Search dashboards by keyword.").Action(c.search)
	searchCmd.Arg("keyword", "The search keyword.").Required().StringVar(&c.query)

	c.out = os.Stdout
}

func (c *DashboardsCommand) list(_ *kingpin.ParseContext) error {
	params := []sdk.SearchParam{sdk.SearchType(sdk.SearchTypeDashboard)}
	title := "Available dashboards:"
	if c.tag != "" {
		params = append(params, sdk.SearchTag(c.tag))
		title = fmt.Sprintf("Dashboards tagged `%s`:", c.tag)
	}

	boards, err := c.searchDashboards(context.Background(), params)
	if err != nil {
		return err
	}
	c.printBoards(title, boards)
	return nil
}

func (c *DashboardsCommand) search(_ *kingpin.ParseContext) error {
	log.WithFields(log.Fields{"query": c.query}).Debugln("searching dashboards")

	boards, err := c.searchDashboards(context.Background(), []sdk.SearchParam{
		sdk.SearchType(sdk.SearchTypeDashboard),
		sdk.SearchQuery(c.query),
	})
	if err != nil {
		return err
	}
	c.printBoards(fmt.Sprintf("Dashboards matching `%s`:", c.query), boards)
	return nil
}

// searchDashboards pages through the search API until it runs dry.
func (c *DashboardsCommand) searchDashboards(ctx context.Context, params []sdk.SearchParam) ([]sdk.FoundBoard, error) {
	sdkClient, err := sdk.NewClient(c.clientConfig.Address, c.clientConfig.APIKey, sdk.DefaultHTTPClient)
	if err != nil {
		return nil, err
	}

	var currentPage uint = 1
	var results []sdk.FoundBoard
	for {
		pageResults, err := sdkClient.Search(ctx, append(params, sdk.SearchPage(currentPage))...)
		if err != nil {
			return nil, err
		}
		if len(pageResults) == 0 {
			return results, nil
		}
		results = append(results, pageResults...)
		currentPage++
	}
}

// printBoards prints at most maxDashboards-1 entries plus an "(and N more)"
// trailer once the list overflows, matching the truncation the bot has always
// shown in chat.
func (c *DashboardsCommand) printBoards(title string, boards []sdk.FoundBoard) {
	if len(boards) == 0 {
		return
	}

	remaining := 0
	if c.maxDashboards > 0 && len(boards) > c.maxDashboards {
		remaining = len(boards) - c.maxDashboards
		boards = boards[:c.maxDashboards-1]
	}

	fmt.Fprintln(c.out, title)
	for _, board := range boards {
		fmt.Fprintf(c.out, "- %s: %s\n", board.UID, board.Title)
	}
	if remaining > 0 {
		fmt.Fprintf(c.out, " (and %d more)\n", remaining)
	}
}
