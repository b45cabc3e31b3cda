// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/grafana/grafbot/pkg/grafbot/commands"
	"github.com/grafana/grafbot/pkg/grafbot/version"
)

var (
	logConfig         commands.LoggerConfig
	renderCommand     commands.RenderCommand
	dashboardsCommand commands.DashboardsCommand
	alertCommand      commands.AlertCommand
)

func main() {
	app := kingpin.New("grafbot", "A command-line tool to query Grafana dashboards and deliver rendered charts to chat or storage destinations.")

	envVars := commands.NewEnvVarsWithPrefix("GRAFANA")

	// Register logger first so its PreAction runs before others
	logConfig.Register(app)

	renderCommand.Register(app, envVars)
	dashboardsCommand.Register(app, envVars)
	alertCommand.Register(app, envVars)

	app.Command("version", "Get the version of the grafbot CLI").Action(func(*kingpin.ParseContext) error {
		fmt.Fprint(os.Stdout, version.Template)
		version.CheckLatest()
		return nil
	})

	kingpin.MustParse(app.Parse(os.Args[1:]))
}
