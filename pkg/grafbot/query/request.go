// SPDX-License-Identifier: AGPL-3.0-only

package query

// RenderDefaults carries the configured rendering defaults. The zero value is
// usable: missing fields fall back to the product defaults.
type RenderDefaults struct {
	Width       int
	Height      int
	Timezone    string
	OrgID       string
	APIEndpoint string
	// TimeRange is the default query window expressed as a Grafana relative
	// range suffix, e.g. "6h" for now-6h..now.
	TimeRange string
}

func (d RenderDefaults) withFallbacks() RenderDefaults {
	if d.Width == 0 {
		d.Width = 1000
	}
	if d.Height == 0 {
		d.Height = 500
	}
	if d.APIEndpoint == "" {
		d.APIEndpoint = "d-solo"
	}
	if d.TimeRange == "" {
		d.TimeRange = "6h"
	}
	return d
}

// Timespan is the requested render window. Both ends use Grafana time syntax,
// relative ("now-6h") or absolute, and are passed to the renderer verbatim.
type Timespan struct {
	From string
	To   string
}

// TemplateParam is one explicit variable override from the command, in the
// order it was typed.
type TemplateParam struct {
	Name  string
	Value string
}

// RenderOptions are the per-request rendering knobs. Width and Height stay
// strings: they are overridable from command tokens and end up in the URL
// untouched.
type RenderOptions struct {
	Width       string
	Height      string
	Timezone    string
	OrgID       string
	APIEndpoint string
	Kiosk       bool
}

// apply sets the render option addressed by its user-facing key. It reports
// whether the key named a render option at all.
func (o *RenderOptions) apply(key, value string) bool {
	switch key {
	case "width":
		o.Width = value
	case "height":
		o.Height = value
	case "tz":
		o.Timezone = value
	case "orgId":
		o.OrgID = value
	case "apiEndpoint":
		o.APIEndpoint = value
	default:
		return false
	}
	return true
}

// DashboardRequest is a parsed and validated dashboard command. It is built
// once by Parse and not mutated afterwards.
//
// At most one of VisualPanelID, APIPanelID and PanelNameFilter is set; they
// all derive from the optional colon suffix of the uid token.
type DashboardRequest struct {
	UID string

	// VisualPanelID is the 1-based position of the wanted panel in document
	// order, 0 when unset.
	VisualPanelID int
	// APIPanelID is the panel's own numeric id, 0 when unset.
	APIPanelID int
	// PanelNameFilter is a lower-cased substring match against panel titles,
	// empty when unset.
	PanelNameFilter string

	Timespan       Timespan
	TemplateParams []TemplateParam
	// Variables accumulates the pre-encoded "&var-name=value" query fragment
	// in the order the overrides were typed.
	Variables string
	Options   RenderOptions
}
