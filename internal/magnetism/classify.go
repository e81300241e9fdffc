package magnetism

import "math"

// minAspectDenominator floors the shorter footprint dimension when computing
// the aspect ratio, keeping the classifier total over degenerate zero-width
// shapes.
const minAspectDenominator = 0.01

// AnomalySignature is the classifier input: how strong the disturbance is
// and what footprint it appears to have.
type AnomalySignature struct {
	Intensity float64                `json:"intensity"`
	Spatial   SpatialCharacteristics `json:"spatial"`
}

// footprint carries the derived geometry the rules test against.
type footprint struct {
	intensity   float64
	shape       Shape
	area        float64
	aspectRatio float64
}

// classificationRule pairs a predicate with its verdict. The ladder is
// evaluated top to bottom and the first satisfied rule returns its result.
// The guards deliberately overlap (e.g. a strong rectangular footprint
// matches both foundation rules), so the order below is a contract, not an
// implementation detail. Do not reorder.
type classificationRule struct {
	name    string
	matches func(footprint) bool
	result  Classification
}

var classificationRules = []classificationRule{
	{
		// Long thin footprints read as pipes at any intensity.
		name: "linear footprint",
		matches: func(f footprint) bool {
			return f.shape == ShapeLinear || f.aspectRatio >= 3.0
		},
		result: ClassificationPipe,
	},
	{
		name: "strong rectangular mass",
		matches: func(f footprint) bool {
			return f.intensity >= 50 && (f.shape == ShapeRectangular || f.aspectRatio >= 1.5) && f.area >= 1.0
		},
		result: ClassificationFoundation,
	},
	{
		name: "moderate rectangular mass",
		matches: func(f footprint) bool {
			return f.intensity >= 20 && f.shape == ShapeRectangular && f.area >= 0.5
		},
		result: ClassificationFoundation,
	},
	{
		name: "weak compact source",
		matches: func(f footprint) bool {
			return f.intensity < 50 && (f.shape == ShapeIrregular || f.shape == ShapePoint || f.area < 0.5)
		},
		result: ClassificationMetalDebris,
	},
	{
		name: "trace signal",
		matches: func(f footprint) bool {
			return f.intensity < 5
		},
		result: ClassificationMetalDebris,
	},
}

// ClassifyAnomaly assigns a semantic label from intensity and footprint via
// the fixed rule ladder. It is a pure, total function: every valid signature
// yields a label, falling through to "unknown" when no rule fires.
func ClassifyAnomaly(sig AnomalySignature) Classification {
	result, _ := classifyWithRule(sig)
	return result
}

// classifyWithRule additionally reports which rule fired, so tests can pin
// ladder precedence at boundary inputs. An empty name means the fallthrough.
func classifyWithRule(sig AnomalySignature) (Classification, string) {
	f := deriveFootprint(sig)
	for _, rule := range classificationRules {
		if rule.matches(f) {
			return rule.result, rule.name
		}
	}
	return ClassificationUnknown, ""
}

func deriveFootprint(sig AnomalySignature) footprint {
	width, length := sig.Spatial.Width, sig.Spatial.Length
	longer := math.Max(width, length)
	shorter := math.Min(width, length)
	return footprint{
		intensity:   sig.Intensity,
		shape:       sig.Spatial.Shape,
		area:        width * length,
		aspectRatio: longer / math.Max(shorter, minAspectDenominator),
	}
}

// ClassifyDetectedAnomaly labels a detected anomaly, merging a partial
// spatial hint over the point-source default: zero-valued hint fields keep
// the default. Pass nil when no shape inference is available.
func ClassifyDetectedAnomaly(anomaly DetectedAnomaly, hint *SpatialCharacteristics) MagneticAnomaly {
	spatial := DefaultSpatialCharacteristics()
	if hint != nil {
		if hint.Width > 0 {
			spatial.Width = hint.Width
		}
		if hint.Length > 0 {
			spatial.Length = hint.Length
		}
		if hint.Depth != nil {
			spatial.Depth = hint.Depth
		}
		if hint.Shape != "" {
			spatial.Shape = hint.Shape
		}
	}

	return MagneticAnomaly{
		ID:        anomaly.ID,
		Position:  anomaly.Position,
		Intensity: anomaly.Intensity,
		Classification: ClassifyAnomaly(AnomalySignature{
			Intensity: anomaly.Intensity,
			Spatial:   spatial,
		}),
	}
}
