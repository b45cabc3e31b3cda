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

func TestSlackUploader_Send(t *testing.T) {
	var uploaded struct {
		title, channels, token, filetype string
		fileBody                         []byte
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth.test":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "xoxb-token", r.FormValue("token"))
			// point the upload at ourselves
			_, _ = w.Write([]byte(`{"ok": true, "url": "` + srvURL(r) + `/"}`))
		case "/api/files.upload":
			require.NoError(t, r.ParseMultipartForm(1 << 20))
			uploaded.title = r.FormValue("title")
			uploaded.channels = r.FormValue("channels")
			uploaded.token = r.FormValue("token")
			uploaded.filetype = r.FormValue("filetype")
			file, _, err := r.FormFile("file")
			require.NoError(t, err)
			buf := make([]byte, 16)
			n, _ := file.Read(buf)
			uploaded.fileBody = buf[:n]
			_, _ = w.Write([]byte(`{"ok": true}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	downloader := &stubDownloader{file: &client.DownloadedFile{Body: []byte("png-bytes"), ContentType: "image/png"}}
	u := NewSlackUploader("xoxb-token", downloader)
	u.authURL = srv.URL + "/api/auth.test"

	chart := testChart()
	require.NoError(t, u.Send(context.Background(), "#ops", chart))

	assert.Equal(t, chart.ImageURL, downloader.gotURL)
	assert.Equal(t, "logins", uploaded.title)
	assert.Equal(t, "#ops", uploaded.channels)
	assert.Equal(t, "xoxb-token", uploaded.token)
	assert.Equal(t, "png", uploaded.filetype)
	assert.Equal(t, []byte("png-bytes"), uploaded.fileBody)
}

func TestSlackUploader_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok": false, "error": "invalid_auth"}`))
	}))
	defer srv.Close()

	u := NewSlackUploader("bad-token", &stubDownloader{})
	u.authURL = srv.URL + "/api/auth.test"

	err := u.Send(context.Background(), "#ops", testChart())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_auth")
}

func TestSlackUploader_UploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth.test" {
			_, _ = w.Write([]byte(`{"ok": true, "url": "` + srvURL(r) + `/"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	}))
	defer srv.Close()

	downloader := &stubDownloader{file: &client.DownloadedFile{Body: []byte("png-bytes")}}
	u := NewSlackUploader("xoxb-token", downloader)
	u.authURL = srv.URL + "/api/auth.test"

	err := u.Send(context.Background(), "#ops", testChart())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func srvURL(r *http.Request) string {
	return "http://" + r.Host
}
