package analytics

import "math"

// minOutlierSamples is the smallest panel worth running outlier detection on.
const minOutlierSamples = 3

// DetectOutliers flags statistically unusual values using two detectors: a
// z-score threshold of 2 and Tukey's 1.5*IQR fences. Panels smaller than
// three values return an explanatory message instead of results.
func (a *Analyzer) DetectOutliers(req AnalysisRequest) *OutlierReport {
	if len(req.LabValues) < minOutlierSamples {
		return &OutlierReport{
			Outliers: []Outlier{},
			Message:  "Insufficient data points for outlier detection (minimum 3 required)",
		}
	}

	values := make([]float64, len(req.LabValues))
	for i, lab := range req.LabValues {
		values[i] = lab.Value
	}

	m := mean(values)
	std := populationStdDev(values)

	zScores := make([]float64, len(values))
	for i, v := range values {
		if std != 0 {
			zScores[i] = math.Abs(v-m) / std
		}
	}

	q1 := percentile(values, 25)
	q3 := percentile(values, 75)
	iqr := q3 - q1
	lowerFence := q1 - 1.5*iqr
	upperFence := q3 + 1.5*iqr

	var outliers []Outlier
	for i := range values {
		byZ := zScores[i] > 2
		byIQR := values[i] < lowerFence || values[i] > upperFence
		if !byZ && !byIQR {
			continue
		}

		method := "both"
		if !byZ {
			method = "iqr"
		} else if !byIQR {
			method = "z_score"
		}

		severity := "moderate"
		if zScores[i] > 3 {
			severity = "high"
		}

		outliers = append(outliers, Outlier{
			Name:     req.LabValues[i].Name,
			Value:    values[i],
			ZScore:   zScores[i],
			Method:   method,
			Severity: severity,
		})
	}

	report := &OutlierReport{
		Outliers: outliers,
		Statistics: &OutlierStatistics{
			TotalMarkers:      len(values),
			OutlierCount:      len(outliers),
			OutlierPercentage: float64(len(outliers)) / float64(len(values)) * 100,
			Mean:              m,
			Std:               std,
			Q1:                q1,
			Q3:                q3,
			IQR:               iqr,
		},
	}
	if report.Outliers == nil {
		report.Outliers = []Outlier{}
	}
	return report
}
