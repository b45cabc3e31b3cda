// SPDX-License-Identifier: AGPL-3.0-only

package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/grafana/dskit/multierror"
	log "github.com/sirupsen/logrus"

	"github.com/grafana/grafbot/pkg/grafbot/client"
)

// AlertCommand works with the legacy Grafana alerting API: listing alerts and
// pausing or resuming them.
type AlertCommand struct {
	clientConfig client.Config
	state        string
	alertID      int64

	out io.Writer
}

// Register the alerts command and its subcommands with the kingpin
// application.
func (c *AlertCommand) Register(app *kingpin.Application, envVars EnvVarNames) {
	cmd := app.Command("alerts", "Work with Grafana alerts.")
	registerClientFlags(cmd, envVars, &c.clientConfig)

	listCmd := cmd.Command("list", "List alerts, optionally by state.").Action(c.list)
	listCmd.Flag("state", "Only list alerts in this state.").Default("").StringVar(&c.state)

	pauseCmd := cmd.Command("pause", "Pause the alert with the given id.").Action(c.pause)
	pauseCmd.Arg("id", "The alert id.").Required().Int64Var(&c.alertID)

	unpauseCmd := cmd.Command("unpause", "Resume the alert with the given id.").Action(c.unpause)
	unpauseCmd.Arg("id", "The alert id.").Required().Int64Var(&c.alertID)

	cmd.Command("pause-all", "Pause all alerts. Requires an API key with admin permissions.").Action(c.pauseAll)
	cmd.Command("unpause-all", "Resume all alerts. Requires an API key with admin permissions.").Action(c.unpauseAll)

	c.out = os.Stdout
}

func (c *AlertCommand) list(_ *kingpin.ParseContext) error {
	cli, err := client.New(c.clientConfig)
	if err != nil {
		return err
	}

	alerts, err := cli.Alerts(context.Background(), c.state)
	if err != nil {
		return err
	}

	if c.state != "" {
		fmt.Fprintf(c.out, "Alerts with state '%s':\n", c.state)
	} else {
		fmt.Fprintln(c.out, "All alerts:")
	}
	for _, alert := range alerts {
		fmt.Fprintf(c.out, "- *%s* (%d): `%s`\n", alert.Name, alert.ID, alert.State)
		if alert.NewStateDate != "" {
			fmt.Fprintf(c.out, "  last state change: %s\n", alert.NewStateDate)
		}
		if alert.ExecutionError != "" {
			fmt.Fprintf(c.out, "  execution error: %s\n", alert.ExecutionError)
		}
	}
	return nil
}

func (c *AlertCommand) pause(_ *kingpin.ParseContext) error {
	return c.setPaused(c.alertID, true)
}

func (c *AlertCommand) unpause(_ *kingpin.ParseContext) error {
	return c.setPaused(c.alertID, false)
}

func (c *AlertCommand) setPaused(id int64, paused bool) error {
	cli, err := client.New(c.clientConfig)
	if err != nil {
		return err
	}

	message, err := cli.PauseAlert(context.Background(), id, paused)
	if err != nil {
		return err
	}
	if message != "" {
		fmt.Fprintln(c.out, message)
	}
	return nil
}

func (c *AlertCommand) pauseAll(_ *kingpin.ParseContext) error {
	return c.setAllPaused(true)
}

func (c *AlertCommand) unpauseAll(_ *kingpin.ParseContext) error {
	return c.setAllPaused(false)
}

func (c *AlertCommand) setAllPaused(paused bool) error {
	cli, err := client.New(c.clientConfig)
	if err != nil {
		return err
	}

	ctx := context.Background()
	alerts, err := cli.Alerts(ctx, "")
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		return nil
	}

	verb := "pause"
	if !paused {
		verb = "unpause"
	}

	merr := multierror.New()
	errored := 0
	for _, alert := range alerts {
		if _, err := cli.PauseAlert(ctx, alert.ID, paused); err != nil {
			log.WithError(err).WithFields(log.Fields{"alert": alert.ID}).Errorln("pause request failed")
			merr.Add(err)
			errored++
		}
	}

	fmt.Fprintf(c.out, "Successfully tried to %s *%d* alerts.\n*Success: %d*\n*Errored: %d*\n",
		verb, len(alerts), len(alerts)-errored, errored)
	return merr.Err()
}
