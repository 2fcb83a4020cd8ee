package chart

import "encoding/json"

// Config is a Chart.js chart configuration.
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one series. Zero-valued optional fields are left out so the
// renderer applies its own defaults.
type Dataset struct {
	Type            string    `json:"type,omitempty"`
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor Paint     `json:"backgroundColor,omitempty"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
	YAxisID         string    `json:"yAxisID,omitempty"`
	Order           int       `json:"order,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
	Fill            *Fill     `json:"fill,omitempty"`
	PointRadius     *int      `json:"pointRadius,omitempty"`
}

// Paint is either one colour for the whole dataset or one colour per point.
type Paint []string

// Solid paints every point with c.
func Solid(c string) Paint { return Paint{c} }

func (p Paint) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	return json.Marshal([]string(p))
}

// Fill selects what area under a line is filled. The zero value disables
// filling.
type Fill struct {
	target string
}

var (
	// FillNext fills towards the following dataset.
	FillNext = &Fill{target: "+1"}
	// NoFill disables filling explicitly.
	NoFill = &Fill{}
)

func (f Fill) MarshalJSON() ([]byte, error) {
	if f.target == "" {
		return []byte("false"), nil
	}
	return json.Marshal(f.target)
}

type Options struct {
	Responsive          bool             `json:"responsive"`
	MaintainAspectRatio bool             `json:"maintainAspectRatio"`
	Plugins             *Plugins         `json:"plugins,omitempty"`
	Scales              map[string]Scale `json:"scales,omitempty"`
}

type Plugins struct {
	Legend *Legend `json:"legend,omitempty"`
	Title  *Title  `json:"title,omitempty"`
}

type Legend struct {
	Position string `json:"position"`
}

type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type Scale struct {
	Type        string `json:"type,omitempty"`
	Display     bool   `json:"display,omitempty"`
	Position    string `json:"position,omitempty"`
	BeginAtZero bool   `json:"beginAtZero,omitempty"`
	Title       *Title `json:"title,omitempty"`
	Grid        *Grid  `json:"grid,omitempty"`
}

type Grid struct {
	DrawOnChartArea bool `json:"drawOnChartArea"`
}
