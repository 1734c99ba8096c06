package fitter

import "slide-composer/internal/common/config"

type TierName string

const (
	TierDense    TierName = "dense"
	TierMany     TierName = "many"
	TierModerate TierName = "moderate"
	TierFew      TierName = "few"
)

// Tier fixes font sizes (pt), paragraph spacing after (pt) and the line
// spacing multiplier for a bullet list.
type Tier struct {
	Name             TierName
	PrimarySize      float64
	SecondarySize    float64
	PrimarySpacing   float64
	SecondarySpacing float64
	LineSpacing      float64
}

// TierTable selects a Tier from bullet count and average length.
type TierTable struct {
	DenseMinCount     int
	DenseMinAvgLength float64
	ManyMinCount      int
	ModerateMinCount  int
	Dense             Tier
	Many              Tier
	Moderate          Tier
	Few               Tier
}

func DefaultTierTable() TierTable {
	return TierTableFromConfig(config.DefaultBulletTiers())
}

// TierTableFromConfig builds the table from c. Zero fields take the
// default table's values.
func TierTableFromConfig(c config.BulletTierConfig) TierTable {
	config.ApplyTierDefaults(&c)
	tier := func(name TierName, t config.TierConfig) Tier {
		return Tier{
			Name:             name,
			PrimarySize:      t.PrimarySize,
			SecondarySize:    t.SecondarySize,
			PrimarySpacing:   t.PrimarySpacing,
			SecondarySpacing: t.SecondarySpacing,
			LineSpacing:      t.LineSpacing,
		}
	}
	return TierTable{
		DenseMinCount:     c.DenseMinCount,
		DenseMinAvgLength: c.DenseMinAvgLength,
		ManyMinCount:      c.ManyMinCount,
		ModerateMinCount:  c.ModerateMinCount,
		Dense:             tier(TierDense, c.Dense),
		Many:              tier(TierMany, c.Many),
		Moderate:          tier(TierModerate, c.Moderate),
		Few:               tier(TierFew, c.Few),
	}
}

func (t TierTable) Select(count int, avgLength float64) Tier {
	switch {
	case count >= t.DenseMinCount && avgLength > t.DenseMinAvgLength:
		return t.Dense
	case count >= t.ManyMinCount:
		return t.Many
	case count >= t.ModerateMinCount:
		return t.Moderate
	default:
		return t.Few
	}
}

// ForBullets selects the tier for a list of bullet texts.
func (t TierTable) ForBullets(texts []string) Tier {
	return t.Select(len(texts), AverageLength(texts))
}
