package config

import "sort"

// Preset is a named panel geometry.
type Preset struct {
	Description      string
	Layout           Layout
	DecelerationRate float64
}

var Presets = map[string]Preset{
	"default": {
		Description: "inner panel two screens down, three screens of inner content",
		Layout:      Layout{OuterContent: 2400, OuterViewport: 600, InnerTop: 800, InnerContent: 1200, InnerViewport: 400},
	},
	"tall-inner": {
		Description: "long inner feed that absorbs most flings",
		Layout:      Layout{OuterContent: 2400, OuterViewport: 600, InnerTop: 800, InnerContent: 8000, InnerViewport: 400},
	},
	"short-inner": {
		Description: "inner content shorter than its viewport",
		Layout:      Layout{OuterContent: 2400, OuterViewport: 600, InnerTop: 800, InnerContent: 200, InnerViewport: 400},
	},
	"flush-top": {
		Description: "inner panel starts at the top of the outer content",
		Layout:      Layout{OuterContent: 1600, OuterViewport: 600, InnerTop: 0, InnerContent: 2000, InnerViewport: 400},
	},
	"heavy": {
		Description:      "lower deceleration rate",
		Layout:           Layout{OuterContent: 2400, OuterViewport: 600, InnerTop: 800, InnerContent: 4000, InnerViewport: 400},
		DecelerationRate: 0.5,
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
