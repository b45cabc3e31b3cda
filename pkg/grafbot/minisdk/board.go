// SPDX-License-Identifier: AGPL-3.0-only
// Provenance-includes-location: https://github.com/grafana-tools/sdk/blob/master/board.go
// Provenance-includes-license: Apache-2.0
// Provenance-includes-copyright: 2016 Alexander I.Grafov <grafov@gmail.com>.
// Provenance-includes-copyright: 2016-2019 The Grafana SDK authors

package minisdk

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ErrEmptyDashboard is returned by Normalize for documents that declare
// neither rows nor panels.
var ErrEmptyDashboard = errors.New("dashboard contains no panels")

// Board represents a Grafana dashboard document.
//
// Documents produced before Grafana 5.0 group their panels into rows; later
// documents carry a flat panel list positioned by grid coordinates. Board
// accepts both shapes.
type Board struct {
	UID        string     `json:"uid"`
	Title      string     `json:"title"`
	Templating Templating `json:"templating"`
	Panels     []Panel    `json:"panels,omitempty"`
	Rows       []*Row     `json:"rows,omitempty"`
}

// Row is the legacy grouping construct for panels. After Normalize every
// Board exposes its panels through rows, legacy or not.
type Row struct {
	Title  string  `json:"title"`
	Panels []Panel `json:"panels"`
}

// Panel is a single visualization unit. ID is the author-assigned numeric id,
// unique within a document. Title may contain $variable tokens.
type Panel struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Templating holds the dashboard's declared template variables.
type Templating struct {
	List []TemplateVar `json:"list"`
}

// TemplateVar is one declared template variable. Current is nil when the
// variable has no selected value.
type TemplateVar struct {
	Name    string      `json:"name"`
	Current *VarCurrent `json:"current,omitempty"`
}

// VarCurrent is the currently selected value of a template variable.
type VarCurrent struct {
	Text  flexString `json:"text"`
	Value flexString `json:"value"`
}

// SelectedText returns the display text of the variable's current selection.
// The second return value reports whether the variable has a selection at all;
// a selection with empty text still counts.
func (v *TemplateVar) SelectedText() (string, bool) {
	if v.Current == nil {
		return "", false
	}
	return string(v.Current.Text), true
}

// Normalize rewrites a flat-panel document into the rows-of-panels shape, so
// nothing downstream ever branches on schema version again. A document with a
// top-level panel list becomes a single synthetic row.
func (b *Board) Normalize() error {
	if len(b.Panels) > 0 {
		b.Rows = []*Row{{Panels: b.Panels}}
		b.Panels = nil
		return nil
	}
	if len(b.Rows) == 0 {
		return ErrEmptyDashboard
	}
	return nil
}

// flexString tolerates Grafana's habit of encoding multi-value selections as
// arrays of strings.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var parts []string
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		*s = flexString(strings.Join(parts, " + "))
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = flexString(str)
	return nil
}
