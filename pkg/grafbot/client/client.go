// SPDX-License-Identifier: AGPL-3.0-only
// Provenance-includes-location: https://github.com/grafana/cortex-tools/blob/main/pkg/client/client.go
// Provenance-includes-license: Apache-2.0
// Provenance-includes-copyright: The Cortex Authors.

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/grafana/dskit/crypto/tls"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/grafana/grafbot/pkg/grafbot/minisdk"
	"github.com/grafana/grafbot/pkg/grafbot/version"
)

var (
	// ErrDashboardNotFound is returned when Grafana knows no dashboard with
	// the requested uid. Callers may follow up with a search to suggest a
	// corrected uid.
	ErrDashboardNotFound = errors.New("dashboard not found")

	errNotFound = errors.New("requested resource not found")
)

// UserAgent returns build information in format suitable to be used in HTTP User-Agent header.
func UserAgent() string {
	return fmt.Sprintf("grafbot/%s", version.Version)
}

// Config is used to configure a GrafanaClient.
type Config struct {
	Address string `yaml:"address"`
	APIKey  string `yaml:"api_key"`
	TLS     tls.ClientConfig
}

// GrafanaClient is a client to the Grafana HTTP API.
type GrafanaClient struct {
	apiKey   string
	endpoint *url.URL
	Client   http.Client
}

// New returns a new GrafanaClient.
func New(cfg Config) (*GrafanaClient, error) {
	if cfg.Address == "" {
		return nil, errors.New("no Grafana endpoint configured")
	}

	endpoint, err := url.Parse(cfg.Address)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"address": cfg.Address,
	}).Debugln("New Grafana client created")

	client := http.Client{}

	// Setup TLS client
	tlsConfig, err := cfg.TLS.GetTLSConfig()
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"tls-ca":   cfg.TLS.CAPath,
			"tls-cert": cfg.TLS.CertPath,
			"tls-key":  cfg.TLS.KeyPath,
		}).Errorf("error loading TLS files")
		return nil, fmt.Errorf("Grafana client initialization unsuccessful")
	}

	if tlsConfig != nil {
		transport := &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: tlsConfig,
		}
		client = http.Client{Transport: transport}
	}

	return &GrafanaClient{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		Client:   client,
	}, nil
}

// Address returns the configured Grafana base URL without a trailing slash.
// Chart URLs are built against it.
func (c *GrafanaClient) Address() string {
	return strings.TrimSuffix(c.endpoint.String(), "/")
}

// GetDashboard fetches a dashboard document by uid and returns it already
// normalized. A 404 maps to ErrDashboardNotFound, an empty document to
// minisdk.ErrEmptyDashboard.
func (c *GrafanaClient) GetDashboard(ctx context.Context, uid string) (*minisdk.Board, error) {
	res, err := c.doRequest(ctx, "/api/dashboards/uid/"+url.PathEscape(uid), http.MethodGet, nil)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, ErrDashboardNotFound
		}
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var reply struct {
		Dashboard minisdk.Board `json:"dashboard"`
		Message   string        `json:"message,omitempty"`
	}
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		return nil, errors.Wrapf(err, "can't unmarshal dashboard %s", uid)
	}

	if err := reply.Dashboard.Normalize(); err != nil {
		return nil, err
	}

	return &reply.Dashboard, nil
}

// Alert is one legacy-API alert rule.
type Alert struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	State          string `json:"state"`
	NewStateDate   string `json:"newStateDate,omitempty"`
	ExecutionError string `json:"executionError,omitempty"`
}

// Alerts lists alerts, optionally filtered by state.
func (c *GrafanaClient) Alerts(ctx context.Context, state string) ([]Alert, error) {
	path := "/api/alerts"
	if state != "" {
		path += "?state=" + url.QueryEscape(state)
	}

	res, err := c.doRequest(ctx, path, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var alerts []Alert
	if err := json.NewDecoder(res.Body).Decode(&alerts); err != nil {
		return nil, errors.Wrap(err, "can't unmarshal alerts")
	}
	return alerts, nil
}

// PauseAlert pauses or resumes a single alert and returns Grafana's result
// message.
func (c *GrafanaClient) PauseAlert(ctx context.Context, id int64, paused bool) (string, error) {
	payload, err := json.Marshal(map[string]bool{"paused": paused})
	if err != nil {
		return "", err
	}

	res, err := c.doRequest(ctx, fmt.Sprintf("/api/alerts/%d/pause", id), http.MethodPost, strings.NewReader(string(payload)))
	if err != nil {
		return "", err
	}
	defer func() { _ = res.Body.Close() }()

	var reply struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		return "", errors.Wrap(err, "can't unmarshal pause response")
	}
	return reply.Message, nil
}

// DownloadedFile is a rendered image fetched from the Grafana renderer.
type DownloadedFile struct {
	Body        []byte
	ContentType string
}

// Download fetches a rendered image with the client's credentials. The URL
// was produced by the query package and points at this Grafana instance.
func (c *GrafanaClient) Download(ctx context.Context, imageURL string) (*DownloadedFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("User-Agent", UserAgent())
	if c.apiKey != "" {
		req.Header.Add("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if err := checkResponse(res); err != nil {
		return nil, errors.Wrapf(err, "GET request to %s failed", imageURL)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading image body")
	}

	log.WithFields(log.Fields{
		"bytes":        len(body),
		"content-type": res.Header.Get("Content-Type"),
	}).Debugln("downloaded rendered image")

	return &DownloadedFile{
		Body:        body,
		ContentType: res.Header.Get("Content-Type"),
	}, nil
}

func (c *GrafanaClient) doRequest(ctx context.Context, path, method string, payload io.Reader) (*http.Response, error) {
	req, err := buildRequest(ctx, path, method, *c.endpoint, payload)
	if err != nil {
		return nil, err
	}

	if c.apiKey != "" {
		req.Header.Add("Authorization", "Bearer "+c.apiKey)
	}
	if payload != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	log.WithFields(log.Fields{
		"url":    req.URL.String(),
		"method": req.Method,
	}).Debugln("sending request to Grafana API")

	resp, err := c.Client.Do(req)
	if err != nil {
		log.WithFields(log.Fields{
			"url":    req.URL.String(),
			"method": req.Method,
			"error":  err.Error(),
		}).Errorln("error during request to Grafana API")
		return nil, err
	}

	if err := checkResponse(resp); err != nil {
		_ = resp.Body.Close()
		return nil, errors.Wrapf(err, "%s request to %s failed", req.Method, req.URL.String())
	}

	return resp, nil
}

// checkResponse checks an API response for errors.
func checkResponse(r *http.Response) error {
	log.WithFields(log.Fields{
		"status": r.Status,
	}).Debugln("checking response")
	if 200 <= r.StatusCode && r.StatusCode <= 299 {
		return nil
	}

	bodyHead, err := io.ReadAll(io.LimitReader(r.Body, 1024))
	if err != nil {
		return errors.Wrapf(err, "reading body")
	}
	bodyStr := string(bodyHead)
	if r.StatusCode == http.StatusNotFound {
		log.WithFields(log.Fields{
			"status": r.Status,
			"body":   bodyStr,
		}).Debugln("response")
		return errNotFound
	}

	log.WithFields(log.Fields{
		"status": r.Status,
		"body":   bodyStr,
	}).Errorln("response")

	if bodyStr == "" {
		return errors.Errorf("server returned HTTP status: %s", r.Status)
	}
	return errors.Errorf("server returned HTTP status: %s, body: %q", r.Status, bodyStr)
}

func joinPath(baseURLPath, targetPath string) string {
	// trim exactly one slash at the end of the base URL, this expects target
	// path to always start with a slash
	return strings.TrimSuffix(baseURLPath, "/") + targetPath
}

func buildRequest(ctx context.Context, p, m string, endpoint url.URL, payload io.Reader) (*http.Request, error) {
	// parse path parameter again (as it already contains escaped path information
	pURL, err := url.Parse(p)
	if err != nil {
		return nil, err
	}

	// if path or endpoint contains escaping that requires RawPath to be populated, also join rawPath
	if pURL.RawPath != "" || endpoint.RawPath != "" {
		endpoint.RawPath = joinPath(endpoint.EscapedPath(), pURL.EscapedPath())
	}
	endpoint.Path = joinPath(endpoint.Path, pURL.Path)
	endpoint.RawQuery = pURL.RawQuery
	r, err := http.NewRequestWithContext(ctx, m, endpoint.String(), payload)
	if err != nil {
		return nil, err
	}
	r.Header.Add("User-Agent", UserAgent())
	return r, nil
}
