// SPDX-License-Identifier: AGPL-3.0-only

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/grafana-tools/sdk"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/grafana/grafbot/pkg/grafbot/client"
	"github.com/grafana/grafbot/pkg/grafbot/delivery"
	"github.com/grafana/grafbot/pkg/grafbot/minisdk"
	"github.com/grafana/grafbot/pkg/grafbot/query"
)

// RenderCommand resolves a dashboard query into charts and delivers them.
type RenderCommand struct {
	clientConfig   client.Config
	roomConfigFile string
	room           string

	queryParts []string

	timeRange   string
	width       int
	height      int
	timezone    string
	orgID       string
	apiEndpoint string

	maxDashboards int

	s3                 delivery.S3UploaderConfig
	slackToken         string
	rocketChatURL      string
	rocketChatUser     string
	rocketChatPassword string
	telegramToken      string
	linksOnly          bool

	out io.Writer
}

// Register the render command and its flags with the kingpin application.
func (c *RenderCommand) Register(app *kingpin.Application, envVars EnvVarNames) {
	cmd := app.Command("render", "Resolve a dashboard query into rendered charts and deliver them.").Action(c.render)

	cmd.Arg("query", "Dashboard query: \"<uid>[:<panel>] [<var>=<value>]... [<from>] [<to>]\". The panel selector is an ordinal (\"3\"), an API panel id (\"panel-8\") or a title substring.").
		Required().StringsVar(&c.queryParts)

	registerClientFlags(cmd, envVars, &c.clientConfig)

	cmd.Flag("room", "Chat room the reply belongs to. Selects a per-room endpoint when --room-config is set; also the upload destination channel.").
		Default("").StringVar(&c.room)
	cmd.Flag("room-config", "YAML file with per-room Grafana endpoints.").
		Default("").Envar(envVars.RoomConfig).StringVar(&c.roomConfigFile)

	cmd.Flag("time-range", "Default query time window, as a Grafana relative range.").
		Default("6h").Envar(envVars.TimeRange).StringVar(&c.timeRange)
	cmd.Flag("width", "Default width for rendered images.").
		Default("1000").Envar(envVars.Width).IntVar(&c.width)
	cmd.Flag("height", "Default height for rendered images.").
		Default("500").Envar(envVars.Height).IntVar(&c.height)
	cmd.Flag("tz", "Default render time zone.").
		Default("").Envar(envVars.TimeZone).StringVar(&c.timezone)
	cmd.Flag("org-id", "Organization id passed to the renderer.").
		Default("").Envar(envVars.OrgID).StringVar(&c.orgID)
	cmd.Flag("api-endpoint", "Render endpoint used for single panels.").
		Default("d-solo").Envar(envVars.APIEndpoint).StringVar(&c.apiEndpoint)
	cmd.Flag("max-dashboards", "Maximum number of charts returned for one query.").
		Default("25").Envar(envVars.MaxDashboards).IntVar(&c.maxDashboards)

	cmd.Flag("s3-bucket", "S3 bucket to copy rendered charts into. Takes precedence over the other upload destinations.").
		Default("").Envar(envVars.S3Bucket).StringVar(&c.s3.Bucket)
	cmd.Flag("s3-prefix", "Key prefix inside the S3 bucket, useful for shared buckets.").
		Default("").Envar(envVars.S3Prefix).StringVar(&c.s3.Prefix)
	cmd.Flag("s3-region", "Region of the S3 bucket.").
		Default("us-standard").Envar(envVars.S3Region).StringVar(&c.s3.Region)
	cmd.Flag("slack-token", "Slack token; when set charts are uploaded to the --room channel.").
		Default("").Envar(envVars.SlackToken).StringVar(&c.slackToken)
	cmd.Flag("rocketchat-url", "Rocket.Chat instance to upload charts to.").
		Default("").Envar(envVars.RocketChatURL).StringVar(&c.rocketChatURL)
	cmd.Flag("rocketchat-user", "Rocket.Chat bot username.").
		Default("").Envar(envVars.RocketChatUser).StringVar(&c.rocketChatUser)
	cmd.Flag("rocketchat-password", "Rocket.Chat bot password.").
		Default("").Envar(envVars.RocketChatPassword).StringVar(&c.rocketChatPassword)
	cmd.Flag("telegram-token", "Telegram bot token; --room is the chat id.").
		Default("").Envar(envVars.TelegramToken).StringVar(&c.telegramToken)
	cmd.Flag("links-only", "Reply with links even when an upload destination is configured.").
		BoolVar(&c.linksOnly)

	c.out = os.Stdout
}

func (c *RenderCommand) render(_ *kingpin.ParseContext) error {
	ctx := context.Background()

	cfg, err := c.endpointConfig()
	if err != nil {
		return err
	}

	cli, err := client.New(cfg)
	if err != nil {
		return err
	}

	req, err := query.Parse(strings.Join(c.queryParts, " "), query.RenderDefaults{
		Width:       c.width,
		Height:      c.height,
		Timezone:    c.timezone,
		OrgID:       c.orgID,
		APIEndpoint: c.apiEndpoint,
		TimeRange:   c.timeRange,
	})
	if err != nil {
		return err
	}

	board, err := cli.GetDashboard(ctx, req.UID)
	switch {
	case errors.Is(err, client.ErrDashboardNotFound):
		if suggestion := suggestUID(ctx, cfg, req.UID); suggestion != "" {
			return errors.Errorf("dashboard not found, try your query again with `%s` instead of `%s`", suggestion, req.UID)
		}
		return err
	case errors.Is(err, minisdk.ErrEmptyDashboard):
		return errors.New("dashboard empty")
	case err != nil:
		return err
	}

	vars := query.TemplateMap(board, req.TemplateParams)
	charts := query.ResolveCharts(cli.Address(), req, board, vars, c.maxDashboards)
	if len(charts) == 0 {
		return errors.New("could not locate desired panel")
	}

	responder, err := c.buildResponder(ctx, cli)
	if err != nil {
		return err
	}

	// Charts are delivered in document order; a failed upload degrades to a
	// link message rather than swallowing the chart.
	for _, chart := range charts {
		if err := responder.Send(ctx, c.room, chart); err != nil {
			log.WithError(err).WithFields(log.Fields{"destination": responder.Name()}).Errorln("chart delivery failed")
			fmt.Fprintf(c.out, "%s - [Upload Error] - %s\n", chart.Title, chart.Link)
		}
	}
	return nil
}

// endpointConfig picks the Grafana endpoint for this invocation: the room's
// own entry when a room config is set and has one, the global flags otherwise.
func (c *RenderCommand) endpointConfig() (client.Config, error) {
	cfg := c.clientConfig
	if c.roomConfigFile == "" || c.room == "" {
		return cfg, nil
	}

	rooms, err := LoadRoomConfig(c.roomConfigFile)
	if err != nil {
		return client.Config{}, err
	}
	if endpoint, ok := rooms.Lookup(c.room); ok {
		cfg.Address = endpoint.Address
		cfg.APIKey = endpoint.APIKey
	}
	return cfg, nil
}

func (c *RenderCommand) buildResponder(ctx context.Context, cli *client.GrafanaClient) (delivery.Responder, error) {
	if c.linksOnly {
		return &delivery.WriterResponder{Out: c.out}, nil
	}

	switch {
	case c.s3.Bucket != "":
		return delivery.NewS3Uploader(ctx, c.s3, cli, c.out)
	case c.slackToken != "":
		return delivery.NewSlackUploader(c.slackToken, cli), nil
	case c.rocketChatURL != "":
		return delivery.NewRocketChatUploader(c.rocketChatURL, c.rocketChatUser, c.rocketChatPassword, cli), nil
	case c.telegramToken != "":
		return delivery.NewTelegramUploader(c.telegramToken, cli), nil
	}
	return &delivery.WriterResponder{Out: c.out}, nil
}

// suggestUID searches the instance for a dashboard whose URL slug matches the
// uid the user typed. People regularly paste the slug instead of the uid.
func suggestUID(ctx context.Context, cfg client.Config, uid string) string {
	sdkClient, err := sdk.NewClient(cfg.Address, cfg.APIKey, sdk.DefaultHTTPClient)
	if err != nil {
		return ""
	}

	boards, err := sdkClient.Search(ctx, sdk.SearchType(sdk.SearchTypeDashboard))
	if err != nil {
		log.WithError(err).Debugln("fallback dashboard search failed")
		return ""
	}

	pattern, err := regexp.Compile(`(?i)/d/[a-z0-9\-]+/` + regexp.QuoteMeta(uid) + `$`)
	if err != nil {
		return ""
	}
	for _, board := range boards {
		if pattern.MatchString(board.URL) {
			return board.UID
		}
	}
	return ""
}
