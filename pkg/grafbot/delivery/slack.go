// SPDX-License-Identifier: AGPL-3.0-only

package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/grafana/grafbot/pkg/grafbot/query"
)

const slackAuthTestURL = "https://slack.com/api/auth.test"

// SlackUploader posts rendered images as file uploads into a Slack channel.
type SlackUploader struct {
	token      string
	downloader Downloader
	client     *http.Client
	authURL    string
}

func NewSlackUploader(token string, downloader Downloader) *SlackUploader {
	return &SlackUploader{
		token:      token,
		downloader: downloader,
		client:     http.DefaultClient,
		authURL:    slackAuthTestURL,
	}
}

func (u *SlackUploader) Name() string { return "slack" }

func (u *SlackUploader) Send(ctx context.Context, room string, chart query.Chart) (err error) {
	defer func() { observe(u.Name(), err) }()

	// auth.test tells us which workspace URL to upload against.
	teamURL, err := u.teamURL(ctx)
	if err != nil {
		return err
	}

	file, err := u.downloader.Download(ctx, chart.ImageURL)
	if err != nil {
		return errors.Wrap(err, "downloading rendered image")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	for name, value := range map[string]string{
		"title":    chart.Title,
		"channels": room,
		"token":    u.token,
		"filetype": "png",
	} {
		if err := form.WriteField(name, value); err != nil {
			return err
		}
	}
	part, err := form.CreateFormFile("file", "chart.png")
	if err != nil {
		return err
	}
	if _, err := part.Write(file.Body); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}

	uploadURL := strings.TrimSuffix(teamURL, "/") + "/api/files.upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var reply struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := u.doJSON(req, &reply); err != nil {
		return errors.Wrap(err, "uploading to Slack")
	}
	if !reply.OK {
		return errors.Errorf("Slack service error while posting data: %s", reply.Error)
	}

	log.WithFields(log.Fields{"channel": room, "bytes": len(file.Body)}).Debugln("uploaded chart to Slack")
	return nil
}

func (u *SlackUploader) teamURL(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.authURL,
		strings.NewReader(url.Values{"token": {u.token}}.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var reply struct {
		OK    bool   `json:"ok"`
		URL   string `json:"url"`
		Error string `json:"error"`
	}
	if err := u.doJSON(req, &reply); err != nil {
		return "", errors.Wrap(err, "Slack auth.test failed")
	}
	if !reply.OK {
		return "", errors.Errorf("Slack auth.test failed: %s", reply.Error)
	}
	return reply.URL, nil
}

func (u *SlackUploader) doJSON(req *http.Request, out interface{}) error {
	res, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
