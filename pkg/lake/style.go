package lake

import (
	"github.com/mapgrid/lakeproc/pkg/structs"
)

// breakRamp is the sequential ramp used for graduated styles, darkest
// last. Five colors caps styles at five classes.
var breakRamp = []string{"#dbeafe", "#93c5fd", "#3b82f6", "#1d4ed8", "#1e3a8a"}

// BaseStyle returns the default rendering style for a geometry kind.
func BaseStyle(kind structs.GeometryKind) map[string]interface{} {
	switch kind {
	case structs.GeomPoint:
		return map[string]interface{}{
			"type": "circle",
			"paint": map[string]interface{}{
				"circle-radius":       5,
				"circle-color":        "#3b82f6",
				"circle-stroke-width": 1,
				"circle-stroke-color": "#ffffff",
			},
		}
	case structs.GeomLine:
		return map[string]interface{}{
			"type": "line",
			"paint": map[string]interface{}{
				"line-color": "#3b82f6",
				"line-width": 2,
			},
		}
	default:
		return map[string]interface{}{
			"type": "fill",
			"paint": map[string]interface{}{
				"fill-color":         "#3b82f6",
				"fill-opacity":       0.5,
				"fill-outline-color": "#1e40af",
			},
		}
	}
}

// GraduatedStyle returns a style that colors features by the given
// numeric column, classified at the given interior breaks. Falls back
// to the base style when there are no breaks or too many classes for
// the ramp.
func GraduatedStyle(kind structs.GeometryKind, column string, breaks []float64) map[string]interface{} {
	classes := len(breaks) + 1
	if len(breaks) == 0 || classes > len(breakRamp) {
		return BaseStyle(kind)
	}

	style := BaseStyle(kind)
	style["classification"] = map[string]interface{}{
		"column": column,
		"method": "quantile",
		"breaks": breaks,
		"colors": breakRamp[len(breakRamp)-classes:],
	}
	return style
}
