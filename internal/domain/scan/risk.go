package scan

// RiskRule is one weighted signal evaluated by Assess.
type RiskRule struct {
	Name    string
	Weight  int
	Applies func(Report) bool
}

// RiskAssessment is the value produced by Assess.
type RiskAssessment struct {
	Level   RiskLevel
	Score   int
	Factors []string
}

// strongGrades are transport grades that do not add risk.
var strongGrades = map[string]bool{"A": true, "A+": true}

// riskRules is evaluated in order; every rule is independent of the others.
// The weights and thresholds are a heuristic, not a calibrated model.
var riskRules = []RiskRule{
	{
		Name:   "transport_grade",
		Weight: 1,
		Applies: func(r Report) bool {
			return r.Transport.Grade == nil || !strongGrades[*r.Transport.Grade]
		},
	},
	{
		Name:    "hsts_disabled",
		Weight:  1,
		Applies: func(r Report) bool { return !r.HSTS.Enabled },
	},
	{
		Name:    "no_edge_provider",
		Weight:  1,
		Applies: func(r Report) bool { return r.EdgeProvider.Name == ProviderNone },
	},
	{
		Name:    "threat_reputation",
		Weight:  2,
		Applies: func(r Report) bool { return r.Reputation == ReputationThreat },
	},
	{
		Name:    "brand_lookalike",
		Weight:  1,
		Applies: func(r Report) bool { return r.BrandSimilarity.Suspicious },
	},
}

// RiskRules returns a copy of the ordered rule list.
func RiskRules() []RiskRule {
	return append([]RiskRule(nil), riskRules...)
}

// Assess reduces the rule list over r. It is pure and ignores r's existing
// risk fields.
func Assess(r Report) RiskAssessment {
	a := RiskAssessment{Factors: []string{}}
	for _, rule := range riskRules {
		if rule.Applies(r) {
			a.Score += rule.Weight
			a.Factors = append(a.Factors, rule.Name)
		}
	}
	a.Level = LevelForScore(a.Score)
	return a
}

// LevelForScore maps accumulated points to a level: <=1 low, 2 medium, >=3 high.
func LevelForScore(score int) RiskLevel {
	switch {
	case score <= 1:
		return RiskLow
	case score == 2:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// rank orders levels for comparisons.
func (l RiskLevel) rank() int {
	switch l {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	}
	return -1
}

// AtLeast reports whether l is as severe as other.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return l.rank() >= other.rank()
}
