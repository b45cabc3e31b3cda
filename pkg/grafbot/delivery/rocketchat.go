// SPDX-License-Identifier: AGPL-3.0-only

package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/grafana/grafbot/pkg/grafbot/query"
)

// RocketChatUploader posts rendered images into a Rocket.Chat room.
type RocketChatUploader struct {
	baseURL    string
	user       string
	password   string
	downloader Downloader
	client     *http.Client
}

func NewRocketChatUploader(baseURL, user, password string, downloader Downloader) *RocketChatUploader {
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "http://" + baseURL
	}
	return &RocketChatUploader{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		user:       user,
		password:   password,
		downloader: downloader,
		client:     http.DefaultClient,
	}
}

func (u *RocketChatUploader) Name() string { return "rocketchat" }

func (u *RocketChatUploader) Send(ctx context.Context, room string, chart query.Chart) (err error) {
	defer func() { observe(u.Name(), err) }()

	authToken, userID, err := u.login(ctx)
	if err != nil {
		return err
	}

	file, err := u.downloader.Download(ctx, chart.ImageURL)
	if err != nil {
		return errors.Wrap(err, "downloading rendered image")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("msg", fmt.Sprintf("%s: %s", chart.Title, chart.Link)); err != nil {
		return err
	}
	part, err := form.CreateFormFile("file", chart.Title+".png")
	if err != nil {
		return err
	}
	if _, err := part.Write(file.Body); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/api/v1/rooms.upload/"+url.PathEscape(room), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("X-Auth-Token", authToken)
	req.Header.Set("X-User-Id", userID)

	var reply struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := u.doJSON(req, &reply); err != nil {
		return errors.Wrap(err, "uploading to Rocket.Chat")
	}
	if !reply.Success {
		return errors.Errorf("Rocket.Chat service error while posting data: %s", reply.Error)
	}

	log.WithFields(log.Fields{"room": room, "bytes": len(file.Body)}).Debugln("uploaded chart to Rocket.Chat")
	return nil
}

func (u *RocketChatUploader) login(ctx context.Context) (authToken, userID string, err error) {
	form := url.Values{
		"username": {u.user},
		"password": {u.password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/api/v1/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var reply struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Data    struct {
			AuthToken string `json:"authToken"`
			UserID    string `json:"userId"`
		} `json:"data"`
	}
	if err := u.doJSON(req, &reply); err != nil {
		return "", "", errors.Wrap(err, "Rocket.Chat login failed")
	}
	if reply.Status != "success" {
		return "", "", errors.Errorf("Rocket.Chat login failed: %s", reply.Message)
	}
	return reply.Data.AuthToken, reply.Data.UserID, nil
}

func (u *RocketChatUploader) doJSON(req *http.Request, out interface{}) error {
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
