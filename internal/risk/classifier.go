package risk

import (
	"strings"
	"time"

	"github.com/hospitalops/estadia-api/internal/model"
)

// Thresholds parameterize the traffic-light policies. Ward teams have run
// with different cut points over time (0.33/0.66 and 0.4/0.7 for
// probability, 7/15 and 15/20 days for stay length), so these are
// configuration rather than literals.
type Thresholds struct {
	ProbabilityRed       float64 // p >= red → rojo
	ProbabilityYellow    float64 // p >= yellow → amarillo
	StayRedDays          int     // days > red → rojo
	StayYellowDays       int     // days > yellow → amarillo
	PendingDischargeDays int     // days > this with no discharge → alta_pendiente
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ProbabilityRed:       0.66,
		ProbabilityYellow:    0.33,
		StayRedDays:          15,
		StayYellowDays:       7,
		PendingDischargeDays: 14,
	}
}

type Classifier struct {
	t Thresholds
}

func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{t: t}
}

// Classify maps stay length, an optional overstay probability and the
// categorical GRD severity/mortality descriptors to a risk tier.
//
// The categorical override is evaluated first and wins over both numeric
// policies: a "Mayor" severity forces rojo even with a low probability.
// When a probability is available it decides the tier; otherwise stay
// length does.
func (c *Classifier) Classify(lengthOfStayDays int, overstayProbability *float64, severity, mortality string) model.RiskTier {
	if tier, ok := c.categoricalOverride(severity, mortality); ok {
		return tier
	}

	if overstayProbability != nil {
		p := *overstayProbability
		switch {
		case p >= c.t.ProbabilityRed:
			return model.RiskTierRed
		case p >= c.t.ProbabilityYellow:
			return model.RiskTierYellow
		default:
			return model.RiskTierGreen
		}
	}

	switch {
	case lengthOfStayDays > c.t.StayRedDays:
		return model.RiskTierRed
	case lengthOfStayDays > c.t.StayYellowDays:
		return model.RiskTierYellow
	default:
		return model.RiskTierGreen
	}
}

func (c *Classifier) categoricalOverride(severity, mortality string) (model.RiskTier, bool) {
	s := strings.ToLower(severity)
	m := strings.ToLower(mortality)

	if strings.Contains(s, "mayor") || strings.Contains(m, "mayor") {
		return model.RiskTierRed, true
	}
	if strings.Contains(s, "moderada") || strings.Contains(m, "moderada") ||
		strings.Contains(s, "outlier") || strings.Contains(m, "outlier") {
		return model.RiskTierYellow, true
	}
	return "", false
}

// DeriveStatus is independent of the risk tier: a discharge date means the
// stay is over, a long stay without one means discharge is pending.
func (c *Classifier) DeriveStatus(dischargeDate *time.Time, lengthOfStayDays int) model.PatientStatus {
	if dischargeDate != nil {
		return model.PatientStatusDischarged
	}
	if lengthOfStayDays > c.t.PendingDischargeDays {
		return model.PatientStatusPendingDischarge
	}
	return model.PatientStatusActive
}
