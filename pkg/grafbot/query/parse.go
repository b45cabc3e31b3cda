// SPDX-License-Identifier: AGPL-3.0-only

package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidRequest is returned for command strings that do not name a
// dashboard.
var ErrInvalidRequest = errors.New("invalid dashboard request")

var apiPanelIDPattern = regexp.MustCompile(`^panel-[0-9]+$`)

// timeSlot tracks which positional timespan slot the next bare token fills.
// The first bare token sets "from", the second sets "to", later ones are
// dropped.
type timeSlot int

const (
	slotFrom timeSlot = iota
	slotTo
	slotDone
)

// Parse turns the free-form text after the command keyword into a
// DashboardRequest, e.g.
//
//	AAy9r_bmk:cpu server=ww3.example.com now-6h
//
// The first whitespace-delimited token names the dashboard, optionally with a
// panel selector after a colon. Every remaining token is classified as a
// render option, a from/to override, the kiosk flag, a template variable
// override or a positional time bound. Parse performs no I/O.
func Parse(commandTail string, defaults RenderDefaults) (*DashboardRequest, error) {
	defaults = defaults.withFallbacks()

	fields := strings.Fields(commandTail)
	if len(fields) == 0 {
		return nil, errors.Wrap(ErrInvalidRequest, "empty command")
	}

	req := &DashboardRequest{
		Timespan: Timespan{
			From: "now-" + defaults.TimeRange,
			To:   "now",
		},
		Options: RenderOptions{
			Width:       strconv.Itoa(defaults.Width),
			Height:      strconv.Itoa(defaults.Height),
			Timezone:    defaults.Timezone,
			OrgID:       defaults.OrgID,
			APIEndpoint: defaults.APIEndpoint,
		},
	}

	if err := parseUIDToken(req, fields[0]); err != nil {
		return nil, err
	}

	slot := slotFrom
	for _, token := range fields[1:] {
		slot = applyToken(req, token, slot)
	}

	return req, nil
}

// parseUIDToken splits the leading token on its first colon. The left part is
// the dashboard uid; the right part, when present, selects a panel by API id
// ("panel-8"), by document-order position ("3") or by title substring.
func parseUIDToken(req *DashboardRequest, token string) error {
	uid, selector, _ := strings.Cut(token, ":")
	if uid == "" {
		return errors.Wrap(ErrInvalidRequest, "missing dashboard uid")
	}
	req.UID = uid

	switch {
	case selector == "":
	case apiPanelIDPattern.MatchString(selector):
		id, err := strconv.Atoi(strings.TrimPrefix(selector, "panel-"))
		if err != nil {
			return errors.Wrapf(ErrInvalidRequest, "panel selector %q", selector)
		}
		req.APIPanelID = id
	default:
		if n, err := strconv.Atoi(selector); err == nil {
			req.VisualPanelID = n
		} else {
			req.PanelNameFilter = strings.ToLower(selector)
		}
	}

	return nil
}

// applyToken folds one token into the request and returns the next positional
// time slot. Tokens are never silently dropped: anything that is not a
// recognized option becomes a template variable override or a time bound,
// except a third bare time token which has no slot left to fill.
func applyToken(req *DashboardRequest, token string, slot timeSlot) timeSlot {
	if name, value, ok := strings.Cut(token, "="); ok {
		switch {
		case req.Options.apply(name, value):
		case name == "from":
			req.Timespan.From = value
		case name == "to":
			req.Timespan.To = value
		default:
			req.TemplateParams = append(req.TemplateParams, TemplateParam{Name: name, Value: value})
			req.Variables += "&var-" + token
		}
		return slot
	}

	if token == "kiosk" {
		req.Options.Kiosk = true
		return slot
	}

	switch slot {
	case slotFrom:
		req.Timespan.From = token
		return slotTo
	case slotTo:
		req.Timespan.To = token
	}
	return slotDone
}
