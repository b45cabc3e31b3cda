// SPDX-License-Identifier: AGPL-3.0-only

package delivery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/grafbot/pkg/grafbot/client"
)

func TestTelegramUploader_Send(t *testing.T) {
	var gotPath, gotChatID, gotCaption string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotChatID = r.FormValue("chat_id")
		gotCaption = r.FormValue("caption")
		_, _, err := r.FormFile("photo")
		require.NoError(t, err)
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	downloader := &stubDownloader{file: &client.DownloadedFile{Body: []byte("png-bytes")}}
	u := NewTelegramUploader("123:secret", downloader)
	u.apiURL = srv.URL

	chart := testChart()
	require.NoError(t, u.Send(context.Background(), "-100200300", chart))

	assert.Equal(t, "/bot123:secret/sendPhoto", gotPath)
	assert.Equal(t, "-100200300", gotChatID)
	assert.Equal(t, "logins: "+chart.Link, gotCaption)
	assert.Equal(t, chart.ImageURL, downloader.gotURL)
}

func TestTelegramUploader_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok": false, "description": "chat not found"}`))
	}))
	defer srv.Close()

	downloader := &stubDownloader{file: &client.DownloadedFile{Body: []byte("png-bytes")}}
	u := NewTelegramUploader("123:secret", downloader)
	u.apiURL = srv.URL

	err := u.Send(context.Background(), "-1", testChart())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}
