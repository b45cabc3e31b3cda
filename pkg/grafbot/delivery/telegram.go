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

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/grafana/grafbot/pkg/grafbot/query"
)

const telegramAPIURL = "https://api.telegram.org"

// TelegramUploader sends rendered images as photos to a Telegram chat. The
// room argument of Send is the chat id.
type TelegramUploader struct {
	token      string
	downloader Downloader
	client     *http.Client
	apiURL     string
}

func NewTelegramUploader(token string, downloader Downloader) *TelegramUploader {
	return &TelegramUploader{
		token:      token,
		downloader: downloader,
		client:     http.DefaultClient,
		apiURL:     telegramAPIURL,
	}
}

func (u *TelegramUploader) Name() string { return "telegram" }

func (u *TelegramUploader) Send(ctx context.Context, room string, chart query.Chart) (err error) {
	defer func() { observe(u.Name(), err) }()

	file, err := u.downloader.Download(ctx, chart.ImageURL)
	if err != nil {
		return errors.Wrap(err, "downloading rendered image")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("chat_id", room); err != nil {
		return err
	}
	if err := form.WriteField("caption", fmt.Sprintf("%s: %s", chart.Title, chart.Link)); err != nil {
		return err
	}
	part, err := form.CreateFormFile("photo", "chart.png")
	if err != nil {
		return err
	}
	if _, err := part.Write(file.Body); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.apiURL+"/bot"+u.token+"/sendPhoto", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	res, err := u.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "uploading to Telegram")
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	var reply struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return errors.Wrap(err, "can't unmarshal Telegram response")
	}
	if !reply.OK {
		return errors.Errorf("Telegram service error while posting data: %s", reply.Description)
	}

	log.WithFields(log.Fields{"chat": room, "bytes": len(file.Body)}).Debugln("uploaded chart to Telegram")
	return nil
}
