package audit

import (
	"fmt"
	"math"
)

// Bias detection thresholds: a probability gap, mean margin error, or mean
// total error beyond these marks a systematic lean rather than noise.
const (
	probabilityBiasLimit = 0.05
	marginBiasLimit      = 3.0
	totalBiasLimit       = 6.0
)

// BiasFinding is one detector's verdict
type BiasFinding struct {
	Name      string  `json:"name"`
	Samples   int     `json:"samples"`
	Magnitude float64 `json:"magnitude"`
	Biased    bool    `json:"biased"`
	Detail    string  `json:"detail"`
}

// BiasReport collects every detector's findings for one run
type BiasReport struct {
	Findings []BiasFinding `json:"findings"`
}

// Biased reports whether any detector with enough samples flagged a lean
func (r *BiasReport) Biased() bool {
	for _, f := range r.Findings {
		if f.Biased {
			return true
		}
	}
	return false
}

// DetectBias runs every systematic-lean detector over the outcomes. Detectors
// with fewer than the configured minimum samples report but never flag.
func (a *Auditor) DetectBias(outcomes []PredictionOutcome) *BiasReport {
	report := &BiasReport{}
	report.Findings = append(report.Findings,
		a.homeBias(outcomes),
		a.favoriteBias(outcomes),
		a.gameTypeBias(outcomes),
	)
	report.Findings = append(report.Findings, a.marginRangeBias(outcomes)...)
	report.Findings = append(report.Findings, a.scoreRangeBias(outcomes)...)
	return report
}

// homeBias compares the mean predicted home win probability against the
// realized home win rate.
func (a *Auditor) homeBias(outcomes []PredictionOutcome) BiasFinding {
	var probSum float64
	wins, n := 0, 0
	for _, o := range outcomes {
		if o.NeutralSite {
			continue
		}
		probSum += o.HomeWinProbability
		if o.HomeWon {
			wins++
		}
		n++
	}
	f := BiasFinding{Name: "home_team", Samples: n}
	if n == 0 {
		return f
	}
	gap := probSum/float64(n) - float64(wins)/float64(n)
	f.Magnitude = gap
	f.Biased = n >= a.cfg.MinBiasSamples && math.Abs(gap) > probabilityBiasLimit
	f.Detail = fmt.Sprintf("mean predicted home probability off realized rate by %+.3f", gap)
	return f
}

// favoriteBias checks whether predicted favorites win as often as their
// probabilities claim.
func (a *Auditor) favoriteBias(outcomes []PredictionOutcome) BiasFinding {
	var probSum float64
	wins, n := 0, 0
	for _, o := range outcomes {
		p, won := o.HomeWinProbability, o.HomeWon
		if p < 0.5 {
			p, won = 1-p, !won
		}
		probSum += p
		if won {
			wins++
		}
		n++
	}
	f := BiasFinding{Name: "favorite", Samples: n}
	if n == 0 {
		return f
	}
	gap := probSum/float64(n) - float64(wins)/float64(n)
	f.Magnitude = gap
	f.Biased = n >= a.cfg.MinBiasSamples && math.Abs(gap) > probabilityBiasLimit
	f.Detail = fmt.Sprintf("favorites priced %+.3f off their realized win rate", gap)
	return f
}

// gameTypeBias compares signed margin error between hosted and neutral games
func (a *Auditor) gameTypeBias(outcomes []PredictionOutcome) BiasFinding {
	var hostedErr, neutralErr float64
	hosted, neutral := 0, 0
	for _, o := range outcomes {
		err := o.PredictedMargin - o.ActualMargin
		if o.NeutralSite {
			neutralErr += err
			neutral++
		} else {
			hostedErr += err
			hosted++
		}
	}
	f := BiasFinding{Name: "game_type", Samples: hosted + neutral}
	if hosted == 0 || neutral == 0 {
		f.Detail = "only one game type present; nothing to compare"
		return f
	}
	gap := hostedErr/float64(hosted) - neutralErr/float64(neutral)
	f.Magnitude = gap
	f.Biased = hosted >= a.cfg.MinBiasSamples && neutral >= a.cfg.MinBiasSamples && math.Abs(gap) > marginBiasLimit
	f.Detail = fmt.Sprintf("hosted games mis-priced %+.1f points relative to neutral sites", gap)
	return f
}

// marginRangeBias buckets games by predicted closeness and reports the mean
// signed margin error per bucket. A model can be honest on average while
// leaning one way in blowouts.
func (a *Auditor) marginRangeBias(outcomes []PredictionOutcome) []BiasFinding {
	type bucket struct {
		name     string
		min, max float64
	}
	buckets := []bucket{
		{"margin_close", 0, closeGameMargin},
		{"margin_moderate", closeGameMargin, blowoutMargin},
		{"margin_blowout", blowoutMargin, math.Inf(1)},
	}

	findings := make([]BiasFinding, 0, len(buckets))
	for _, b := range buckets {
		var errSum float64
		n := 0
		for _, o := range outcomes {
			m := math.Abs(o.PredictedMargin)
			if m < b.min || m >= b.max {
				continue
			}
			errSum += o.PredictedMargin - o.ActualMargin
			n++
		}
		f := BiasFinding{Name: b.name, Samples: n}
		if n > 0 {
			mean := errSum / float64(n)
			f.Magnitude = mean
			f.Biased = n >= a.cfg.MinBiasSamples && math.Abs(mean) > marginBiasLimit
			f.Detail = fmt.Sprintf("mean signed margin error %+.1f points", mean)
		}
		findings = append(findings, f)
	}
	return findings
}

// scoreRangeBias buckets games by realized total points and reports the mean
// signed total error per bucket. Shootouts and defensive slogs can each hide
// a lean the season-wide average washes out.
func (a *Auditor) scoreRangeBias(outcomes []PredictionOutcome) []BiasFinding {
	type bucket struct {
		name     string
		min, max float64
	}
	buckets := []bucket{
		{"total_low_scoring", 0, highScoringTotal},
		{"total_high_scoring", highScoringTotal, math.Inf(1)},
	}

	findings := make([]BiasFinding, 0, len(buckets))
	for _, b := range buckets {
		var errSum float64
		n := 0
		for _, o := range outcomes {
			if o.ActualTotal < b.min || o.ActualTotal >= b.max {
				continue
			}
			errSum += o.PredictedTotal - o.ActualTotal
			n++
		}
		f := BiasFinding{Name: b.name, Samples: n}
		if n > 0 {
			mean := errSum / float64(n)
			f.Magnitude = mean
			f.Biased = n >= a.cfg.MinBiasSamples && math.Abs(mean) > totalBiasLimit
			f.Detail = fmt.Sprintf("mean signed total error %+.1f points", mean)
		}
		findings = append(findings, f)
	}
	return findings
}
