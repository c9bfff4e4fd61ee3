package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// defaultHealthScore applies when no condition panel matches the submitted
// markers.
const defaultHealthScore = 85

// conditionMarkers names the lab markers considered for each condition's
// risk panel. Matching is substring-based on normalized names.
var conditionMarkers = map[string][]string{
	"cardiovascular": {"cholesterol_total", "ldl", "hdl", "triglycerides", "crp", "homocysteine"},
	"diabetes":       {"glucose", "hba1c", "insulin", "c_peptide"},
	"liver":          {"alt", "ast", "bilirubin", "albumin", "alp"},
	"kidney":         {"creatinine", "bun", "egfr", "protein"},
	"thyroid":        {"tsh", "t4", "t3", "reverse_t3"},
	"inflammation":   {"crp", "esr", "il6", "tnf_alpha"},
}

// AssessRisk scores condition-level risk from the fraction of each
// condition's matched markers that are abnormal, and derives an overall
// health score of 100 minus the average risk.
func (a *Analyzer) AssessRisk(req AnalysisRequest) *RiskAssessment {
	scores := make(map[string]ConditionRisk)

	for condition, markers := range conditionMarkers {
		var matched []string
		abnormal := 0

		for _, lab := range req.LabValues {
			if !matchesPanel(lab.Name, markers) {
				continue
			}
			matched = append(matched, lab.Name)
			if lab.abnormal() {
				abnormal++
			}
		}

		if len(matched) == 0 {
			continue
		}

		riskPct := float64(abnormal) / float64(len(matched)) * 100
		scores[condition] = ConditionRisk{
			RiskPercentage:   riskPct,
			RiskLevel:        riskLevel(riskPct),
			MarkersEvaluated: matched,
			AbnormalMarkers:  abnormal,
			TotalMarkers:     len(matched),
		}
	}

	score := float64(defaultHealthScore)
	if len(scores) > 0 {
		total := 0.0
		for _, s := range scores {
			total += s.RiskPercentage
		}
		score = 100 - total/float64(len(scores))
		if score < 0 {
			score = 0
		}
	}

	return &RiskAssessment{
		PatientID:          req.PatientID,
		OverallHealthScore: score,
		RiskAssessments:    scores,
		Recommendations:    healthRecommendations(scores),
		AssessmentDate:     a.now().Format(time.RFC3339),
	}
}

// matchesPanel normalizes a lab name (lowercase, spaces and hyphens to
// underscores) and checks it against the panel's marker substrings.
func matchesPanel(name string, markers []string) bool {
	normalized := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(name))
	for _, marker := range markers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}

func riskLevel(pct float64) string {
	switch {
	case pct < 25:
		return "low"
	case pct < 50:
		return "moderate"
	default:
		return "high"
	}
}

// healthRecommendations derives prioritized follow-ups per scored condition,
// in stable condition-name order.
func healthRecommendations(scores map[string]ConditionRisk) []Recommendation {
	conditions := make([]string, 0, len(scores))
	for condition := range scores {
		conditions = append(conditions, condition)
	}
	sort.Strings(conditions)

	var recs []Recommendation
	anyHigh := false
	for _, condition := range conditions {
		risk := scores[condition]
		switch risk.RiskLevel {
		case "high":
			anyHigh = true
			recs = append(recs, Recommendation{
				Category: condition,
				Priority: "high",
				Action:   fmt.Sprintf("Immediate consultation recommended for %s risk factors", condition),
				Details:  fmt.Sprintf("%d out of %d markers abnormal", risk.AbnormalMarkers, risk.TotalMarkers),
			})
		case "moderate":
			recs = append(recs, Recommendation{
				Category: condition,
				Priority: "moderate",
				Action:   fmt.Sprintf("Monitor and lifestyle modifications for %s health", condition),
				Details:  fmt.Sprintf("Some %s markers outside optimal ranges", condition),
			})
		}
	}

	if !anyHigh {
		recs = append(recs, Recommendation{
			Category: "general",
			Priority: "low",
			Action:   "Continue healthy lifestyle practices",
			Details:  "Most health markers within acceptable ranges",
		})
	}
	return recs
}
