// Package analytics provides statistical analysis of lab panels: abnormal
// marker detection, outlier detection, condition-level risk scoring and
// combined insight reports.
package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/skillsenselab/medscribe/logger"
)

// Analyzer runs lab panel analyses. It is stateless and safe for concurrent
// use.
type Analyzer struct {
	log *logger.Logger
	now func() time.Time
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		log: logger.Get("analytics"),
		now: time.Now,
	}
}

// AnalyzeLabs produces the full statistical report for a lab panel:
// distribution summary, abnormal markers with severity, per-category
// aggregates and a coarse risk indicator.
func (a *Analyzer) AnalyzeLabs(req AnalysisRequest) *LabAnalysis {
	values := make([]float64, len(req.LabValues))
	for i, lab := range req.LabValues {
		values[i] = lab.Value
	}

	lo, hi := minMax(values)
	report := &LabAnalysis{
		PatientInfo: PatientInfo{
			PatientID:    req.PatientID,
			PatientName:  req.PatientName,
			AnalysisDate: a.now().Format(time.RFC3339),
			TotalMarkers: len(req.LabValues),
		},
		StatisticalSummary: StatisticalSummary{
			Mean:         mean(values),
			StdDeviation: sampleStdDev(values),
			Min:          lo,
			Max:          hi,
		},
		CategoriesAnalysis: make(map[string]CategoryAnalysis),
	}

	for _, lab := range req.LabValues {
		if marker, ok := classifyMarker(lab); ok {
			report.AbnormalMarkers = append(report.AbnormalMarkers, marker)
		}
	}

	abnormalByName := make(map[string]bool, len(report.AbnormalMarkers))
	for _, m := range report.AbnormalMarkers {
		abnormalByName[m.Name] = true
	}
	for _, lab := range req.LabValues {
		cat := lab.category()
		entry := report.CategoriesAnalysis[cat]
		entry.MarkerCount++
		entry.AverageValue += lab.Value
		if abnormalByName[lab.Name] {
			entry.AbnormalCount++
		}
		report.CategoriesAnalysis[cat] = entry
	}
	for cat, entry := range report.CategoriesAnalysis {
		entry.AverageValue /= float64(entry.MarkerCount)
		report.CategoriesAnalysis[cat] = entry
	}

	report.RiskIndicators = riskIndicators(report.AbnormalMarkers)

	a.log.Debug("lab analysis complete", logger.Fields(
		"markers", len(req.LabValues),
		"abnormal", len(report.AbnormalMarkers),
	))
	return report
}

// classifyMarker flags a lab value outside its reference range. Severity is
// high past 70% of the lower bound or 130% of the upper bound.
func classifyMarker(lab LabValue) (AbnormalMarker, bool) {
	if !lab.abnormal() {
		return AbnormalMarker{}, false
	}
	refMin, refMax := *lab.RefMin, *lab.RefMax

	severity := "moderate"
	if lab.Value < refMin*0.7 || lab.Value > refMax*1.3 {
		severity = "high"
	}

	deviation := "high"
	if lab.Value < refMin {
		deviation = "low"
	}

	mid := (refMin + refMax) / 2
	halfRange := (refMax - refMin) / 2
	percent := 0.0
	if halfRange != 0 {
		percent = math.Abs(lab.Value-mid) / halfRange * 100
	}

	return AbnormalMarker{
		Name:             lab.Name,
		Value:            lab.Value,
		Unit:             lab.Unit,
		ReferenceRange:   fmt.Sprintf("%g-%g", refMin, refMax),
		Deviation:        deviation,
		Severity:         severity,
		PercentDeviation: percent,
	}, true
}

// riskIndicators maps abnormal marker counts onto a single triage level.
func riskIndicators(markers []AbnormalMarker) []RiskIndicator {
	high, moderate := 0, 0
	for _, m := range markers {
		switch m.Severity {
		case "high":
			high++
		case "moderate":
			moderate++
		}
	}

	switch {
	case high > 0:
		return []RiskIndicator{{
			Level:          "high",
			Description:    fmt.Sprintf("%d markers with significant deviations detected", high),
			Recommendation: "Immediate medical consultation recommended",
		}}
	case moderate > 2:
		return []RiskIndicator{{
			Level:          "moderate",
			Description:    fmt.Sprintf("%d markers outside normal ranges", moderate),
			Recommendation: "Follow-up testing and lifestyle modifications suggested",
		}}
	default:
		return []RiskIndicator{{
			Level:          "low",
			Description:    "Most markers within acceptable ranges",
			Recommendation: "Continue current health maintenance practices",
		}}
	}
}
