package anomaly

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/salaryqa/internal/domain/model"
	"github.com/okian/salaryqa/internal/domain/stats"
)

// Review thresholds on the 0-100 anomaly score.
const (
	// AutoApproveThreshold is the lowest score that is not auto-approved and
	// the lowest score reported as anomalous.
	AutoApproveThreshold = 30
	// ManualReviewThreshold is the lowest score that requires manual review.
	ManualReviewThreshold = 70

	maxScore = 100
	minScore = 0
)

// Z-score heuristic.
const (
	zExtreme     = 4.0
	zSignificant = 3.0
	zModerate    = 2.5

	scoreZExtreme     = 95
	scoreZSignificant = 75
	scoreZModerate    = 50
)

// Tukey fence heuristic.
const (
	fenceExtreme  = 3.5
	fenceStandard = 3.0

	scoreFenceExtreme  = 90
	scoreFenceStandard = 60
)

// Deviation from median heuristic (as a fraction of the median).
const (
	deviationExtreme = 3.0
	deviationLarge   = 2.0

	scoreDeviationExtreme = 85
	scoreDeviationLarge   = 55
)

// Absolute sanity bounds, independent of currency.
const (
	absoluteLow  = 1_000
	absoluteHigh = 1_000_000

	scoreAbsoluteLow  = 80
	scoreAbsoluteHigh = 85
)

// Ratio heuristic.
const (
	meanRatioMin   = 0.2
	meanRatioMax   = 5.0
	medianRatioMin = 0.25
	medianRatioMax = 4.0

	scoreMeanRatio   = 70
	scoreMedianRatio = 65
)

// Outcome is the scorer's verdict for one salary.
type Outcome struct {
	IsAnomaly bool
	Score     int
	Reason    string
}

// signal is a triggered heuristic.
type signal struct {
	score  int
	reason string
}

type heuristic func(value float64, p stats.Profile) []signal

var heuristics = []heuristic{ //nolint:gochecknoglobals // fixed evaluation order
	zScoreCheck,
	fenceCheck,
	medianDeviationCheck,
	absoluteBoundsCheck,
	ratioCheck,
}

// Score evaluates value against p with every heuristic. The final score is
// the maximum of the triggered heuristics, never their sum.
func Score(value float64, p stats.Profile) Outcome {
	var (
		best    int
		reasons []string
	)
	for _, h := range heuristics {
		for _, s := range h(value, p) {
			if s.score > best {
				best = s.score
			}
			reasons = append(reasons, s.reason)
		}
	}
	best = clamp(best)

	reason := strings.Join(reasons, "; ")
	if len(reasons) == 0 {
		reason = fmt.Sprintf("Within normal range (mean %.0f, median %.0f, std %.0f)", p.Mean, p.Median, p.StdDev)
	}
	return Outcome{
		IsAnomaly: best >= AutoApproveThreshold,
		Score:     best,
		Reason:    reason,
	}
}

// Classify maps an anomaly score to a review status.
func Classify(score int) model.ReviewStatus {
	switch {
	case score < AutoApproveThreshold:
		return model.StatusApproved
	case score >= ManualReviewThreshold:
		return model.StatusNeedsReview
	default:
		return model.StatusPending
	}
}

// ZScore returns |value-mean|/std, or 0 for a zero-spread profile.
func ZScore(value float64, p stats.Profile) float64 {
	if p.StdDev == 0 {
		return 0
	}
	return math.Abs(value-p.Mean) / p.StdDev
}

func zScoreCheck(value float64, p stats.Profile) []signal {
	z := ZScore(value, p)
	switch {
	case z >= zExtreme:
		return []signal{{scoreZExtreme, fmt.Sprintf("Z-score %.1f: extremely high deviation from mean %.0f", z, p.Mean)}}
	case z >= zSignificant:
		return []signal{{scoreZSignificant, fmt.Sprintf("Z-score %.1f: significant deviation from mean %.0f", z, p.Mean)}}
	case z >= zModerate:
		return []signal{{scoreZModerate, fmt.Sprintf("Z-score %.1f: moderate deviation from mean %.0f", z, p.Mean)}}
	}
	return nil
}

func fenceCheck(value float64, p stats.Profile) []signal {
	if p.IQR == 0 {
		return nil
	}
	lowX, highX := p.Q1-fenceExtreme*p.IQR, p.Q3+fenceExtreme*p.IQR
	if value < lowX || value > highX {
		return []signal{{scoreFenceExtreme, fmt.Sprintf("Outside extreme IQR fences [%.0f, %.0f]", lowX, highX)}}
	}
	low, high := p.Q1-fenceStandard*p.IQR, p.Q3+fenceStandard*p.IQR
	if value < low || value > high {
		return []signal{{scoreFenceStandard, fmt.Sprintf("Outside IQR fences [%.0f, %.0f]", low, high)}}
	}
	return nil
}

func medianDeviationCheck(value float64, p stats.Profile) []signal {
	if p.Median == 0 {
		return nil
	}
	dev := math.Abs(value-p.Median) / p.Median
	switch {
	case dev > deviationExtreme:
		return []signal{{scoreDeviationExtreme, fmt.Sprintf("%.0f%% deviation from median %.0f (extreme)", dev*100, p.Median)}}
	case dev > deviationLarge:
		return []signal{{scoreDeviationLarge, fmt.Sprintf("%.0f%% deviation from median %.0f", dev*100, p.Median)}}
	}
	return nil
}

func absoluteBoundsCheck(value float64, _ stats.Profile) []signal {
	switch {
	case value < absoluteLow:
		return []signal{{scoreAbsoluteLow, fmt.Sprintf("Salary %.0f is suspiciously low (below %d)", value, absoluteLow)}}
	case value > absoluteHigh:
		return []signal{{scoreAbsoluteHigh, fmt.Sprintf("Salary %.0f is suspiciously high (above %d)", value, absoluteHigh)}}
	}
	return nil
}

func ratioCheck(value float64, p stats.Profile) []signal {
	var out []signal
	if p.Mean != 0 {
		r := value / p.Mean
		if r < meanRatioMin || r > meanRatioMax {
			out = append(out, signal{scoreMeanRatio, fmt.Sprintf("Ratio to mean %.2f outside [%g, %g]", r, meanRatioMin, meanRatioMax)})
		}
	}
	if p.Median != 0 {
		r := value / p.Median
		if r < medianRatioMin || r > medianRatioMax {
			out = append(out, signal{scoreMedianRatio, fmt.Sprintf("Ratio to median %.2f outside [%g, %g]", r, medianRatioMin, medianRatioMax)})
		}
	}
	return out
}

func clamp(score int) int {
	return int(math.Max(minScore, math.Min(maxScore, float64(score))))
}
