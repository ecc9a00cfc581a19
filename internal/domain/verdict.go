package domain

import (
	"fmt"
	"time"
)

// Label is the classifier's binary decision.
type Label int

const (
	LabelNoFlood Label = 0
	LabelFlood   Label = 1
)

func (l Label) String() string {
	switch l {
	case LabelFlood:
		return "flood"
	case LabelNoFlood:
		return "no_flood"
	default:
		return fmt.Sprintf("label(%d)", int(l))
	}
}

// LabelFromClass converts a raw class value emitted by a model artifact.
func LabelFromClass(class int64) (Label, error) {
	switch class {
	case 0:
		return LabelNoFlood, nil
	case 1:
		return LabelFlood, nil
	default:
		return 0, fmt.Errorf("unexpected class %d: expected 0 or 1", class)
	}
}

// User-facing verdict text.
const (
	FloodMessage   = "Flood likely! Take precautions."
	NoFloodMessage = "No flood expected. Stay alert for weather changes."
	Disclaimer     = "This prediction does not account for sudden extreme events. Always follow local advisories."
)

// Verdict is the rendered result of a single assessment.
type Verdict struct {
	Label      Label  `json:"label"`
	Flood      bool   `json:"flood"`
	Message    string `json:"message"`
	Disclaimer string `json:"disclaimer"`
}

// Render maps a label to its message. The disclaimer is always attached.
func Render(l Label) Verdict {
	v := Verdict{Label: l, Disclaimer: Disclaimer}
	if l == LabelFlood {
		v.Flood = true
		v.Message = FloodMessage
	} else {
		v.Message = NoFloodMessage
	}
	return v
}

// Assessment is the full outcome of one submission. It is returned to the
// caller and not retained.
type Assessment struct {
	ID         string                 `json:"id"`
	Request    FloodAssessmentRequest `json:"request"`
	Features   map[string]float64     `json:"features"`
	Verdict    Verdict                `json:"verdict"`
	Model      string                 `json:"model,omitempty"`
	AssessedAt time.Time              `json:"assessed_at"`
}
