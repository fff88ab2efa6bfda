package models

// Feature names making up the 16-column observation contract. Records always
// hold them in this canonical order regardless of how the input file was laid
// out.
const (
	FeatureFlagNotTransit     = "koi_fpflag_nt"
	FeatureFlagStellarEclipse = "koi_fpflag_ss"
	FeatureFlagCentroidOffset = "koi_fpflag_co"
	FeatureFlagEphemerisMatch = "koi_fpflag_ec"
	FeaturePeriod             = "koi_period"
	FeatureImpact             = "koi_impact"
	FeatureDuration           = "koi_duration"
	FeatureDepth              = "koi_depth"
	FeaturePlanetRadius       = "koi_prad"
	FeatureEquilibriumTemp    = "koi_teq"
	FeatureInsolation         = "koi_insol"
	FeatureModelSNR           = "koi_model_snr"
	FeatureStellarTemp        = "koi_steff"
	FeatureStellarGravity     = "koi_slogg"
	FeatureStellarRadius      = "koi_srad"
	FeatureStellarMagnitude   = "koi_kepmag"
)

// FeatureOrder is the canonical contract order expected by the model service.
var FeatureOrder = []string{
	FeatureFlagNotTransit,
	FeatureFlagStellarEclipse,
	FeatureFlagCentroidOffset,
	FeatureFlagEphemerisMatch,
	FeaturePeriod,
	FeatureImpact,
	FeatureDuration,
	FeatureDepth,
	FeaturePlanetRadius,
	FeatureEquilibriumTemp,
	FeatureInsolation,
	FeatureModelSNR,
	FeatureStellarTemp,
	FeatureStellarGravity,
	FeatureStellarRadius,
	FeatureStellarMagnitude,
}

// FeatureCount is the number of required contract features.
const FeatureCount = 16

// GroundTruthAliases lists accepted label column names in priority order. The
// first header match wins when a file carries more than one.
var GroundTruthAliases = []string{
	"koi_disposition",
	"koi_pdisposition",
	"disposition",
	"label",
}

var featureIndex = func() map[string]int {
	idx := make(map[string]int, len(FeatureOrder))
	for i, name := range FeatureOrder {
		idx[name] = i
	}
	return idx
}()

// FeatureIndex returns the canonical position of a contract feature.
func FeatureIndex(name string) (int, bool) {
	i, ok := featureIndex[name]
	return i, ok
}

// Record is one reconciled observation row. Features are stored in canonical
// contract order; the optional ground-truth column is carried through raw
// under the alias it arrived with.
type Record struct {
	Row        int
	Features   [FeatureCount]float64
	TruthField string
	TruthValue string

	// Diagnostic annotations filled by the heuristic path; not part of the
	// persisted contract.
	RawScore float64
	Factors  []string
}

// Feature returns the value of a contract feature by name. Unknown names
// return zero.
func (r *Record) Feature(name string) float64 {
	if i, ok := featureIndex[name]; ok {
		return r.Features[i]
	}
	return 0
}

// SetFeature assigns a contract feature by name and reports whether the name
// belongs to the contract.
func (r *Record) SetFeature(name string, value float64) bool {
	i, ok := featureIndex[name]
	if !ok {
		return false
	}
	r.Features[i] = value
	return true
}

// HasTruth reports whether a ground-truth column accompanied this record.
func (r *Record) HasTruth() bool {
	return r.TruthField != ""
}
