package models

// ConsolidatedHolding is an investment as it appears in the consolidated
// endpoint's cross-type listing: the shared position fields plus the kind
// tag and face value, without the variant-specific detail the per-type
// endpoints carry.
type ConsolidatedHolding struct {
	Position
	KindTag InstrumentKind `json:"kind"`
	Face    float64        `json:"faceValue,omitempty"`
}

func (h ConsolidatedHolding) Kind() InstrumentKind { return h.KindTag }
func (h ConsolidatedHolding) FaceValue() float64   { return h.Face }

var _ Instrument = ConsolidatedHolding{}
