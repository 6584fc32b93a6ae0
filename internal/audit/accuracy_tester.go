package audit

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/yourusername/gridiron-edge/internal/models"
)

// probEpsilon keeps log-loss finite for overconfident probabilities
const probEpsilon = 1e-12

// Game-shape thresholds shared by the stratified sampler and the bias
// detectors.
const (
	closeGameMargin  = 7.0
	blowoutMargin    = 17.0
	highScoringTotal = 55.0
)

// PredictionOutcome pairs one prediction with the realized result
type PredictionOutcome struct {
	GameID             uuid.UUID              `json:"game_id"`
	Season             int                    `json:"season"`
	HomeWinProbability float64                `json:"home_win_probability"`
	PredictedMargin    float64                `json:"predicted_margin"`
	PredictedTotal     float64                `json:"predicted_total"`
	ActualMargin       float64                `json:"actual_margin"`
	ActualTotal        float64                `json:"actual_total"`
	HomeWon            bool                   `json:"home_won"`
	NeutralSite        bool                   `json:"neutral_site"`
	ConfidenceLevel    models.ConfidenceLevel `json:"confidence_level"`
}

// CalibrationBin is one probability decile's predicted-versus-observed rate
type CalibrationBin struct {
	Lower         float64 `json:"lower"`
	Upper         float64 `json:"upper"`
	Count         int     `json:"count"`
	PredictedMean float64 `json:"predicted_mean"`
	ObservedRate  float64 `json:"observed_rate"`
}

// AccuracyReport holds every accuracy and calibration measure for one run
type AccuracyReport struct {
	Samples     int              `json:"samples"`
	BrierScore  float64          `json:"brier_score"`
	LogLoss     float64          `json:"log_loss"`
	Accuracy    float64          `json:"accuracy"`
	Precision   float64          `json:"precision"`
	Recall      float64          `json:"recall"`
	F1          float64          `json:"f1"`
	ROCAUC      float64          `json:"roc_auc"`
	MarginMAE   float64          `json:"margin_mae"`
	MarginRMSE  float64          `json:"margin_rmse"`
	Calibration []CalibrationBin `json:"calibration"`
	ECE         float64          `json:"ece"`
	MCE         float64          `json:"mce"`
}

// EvaluateAccuracy scores a set of prediction outcomes. When the set exceeds
// the configured sample size it is downsampled with game-shape strata
// preserved, so close games, blowouts, shootouts, defensive slogs, and both
// winner sides all stay represented.
func (a *Auditor) EvaluateAccuracy(outcomes []PredictionOutcome) (*AccuracyReport, error) {
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("%w: no prediction outcomes to audit", models.ErrInsufficientData)
	}
	sample := a.stratifiedSample(outcomes)

	report := &AccuracyReport{Samples: len(sample)}

	var brier, logLoss, absErr, sqErr float64
	var tp, fp, fn, tn int
	for _, o := range sample {
		p := clampProb(o.HomeWinProbability)
		y := 0.0
		if o.HomeWon {
			y = 1.0
		}
		brier += (p - y) * (p - y)
		logLoss -= y*math.Log(p) + (1-y)*math.Log(1-p)

		predictedHome := o.HomeWinProbability > 0.5
		switch {
		case predictedHome && o.HomeWon:
			tp++
		case predictedHome && !o.HomeWon:
			fp++
		case !predictedHome && o.HomeWon:
			fn++
		default:
			tn++
		}

		marginErr := o.PredictedMargin - o.ActualMargin
		absErr += math.Abs(marginErr)
		sqErr += marginErr * marginErr
	}

	n := float64(len(sample))
	report.BrierScore = brier / n
	report.LogLoss = logLoss / n
	report.Accuracy = float64(tp+tn) / n
	report.Precision = ratio(tp, tp+fp)
	report.Recall = ratio(tp, tp+fn)
	if report.Precision+report.Recall > 0 {
		report.F1 = 2 * report.Precision * report.Recall / (report.Precision + report.Recall)
	}
	report.MarginMAE = absErr / n
	report.MarginRMSE = math.Sqrt(sqErr / n)
	report.ROCAUC = rocAUC(sample)

	report.Calibration, report.ECE, report.MCE = a.calibrationBins(sample)
	return report, nil
}

// sampleStratum buckets an outcome by the game characteristics an audit must
// keep represented: competitiveness, scoring volume, and which side won.
func sampleStratum(o PredictionOutcome) string {
	shape := "moderate"
	switch m := math.Abs(o.ActualMargin); {
	case m < closeGameMargin:
		shape = "close"
	case m >= blowoutMargin:
		shape = "blowout"
	}
	scoring := "low_scoring"
	if o.ActualTotal >= highScoringTotal {
		scoring = "high_scoring"
	}
	side := "away_win"
	if o.HomeWon {
		side = "home_win"
	}
	return shape + "/" + scoring + "/" + side
}

// stratifiedSample downsamples to the configured size while keeping each game
// shape's share of the population, with at least one draw per occupied
// stratum. Order within a stratum is preserved, so the draw is deterministic.
func (a *Auditor) stratifiedSample(outcomes []PredictionOutcome) []PredictionOutcome {
	if len(outcomes) <= a.cfg.SampleSize {
		return outcomes
	}

	strata := make(map[string][]PredictionOutcome)
	for _, o := range outcomes {
		key := sampleStratum(o)
		strata[key] = append(strata[key], o)
	}
	keys := make([]string, 0, len(strata))
	for key := range strata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	frac := float64(a.cfg.SampleSize) / float64(len(outcomes))
	sample := make([]PredictionOutcome, 0, a.cfg.SampleSize)
	for _, key := range keys {
		group := strata[key]
		take := int(math.Round(float64(len(group)) * frac))
		if take > len(group) {
			take = len(group)
		}
		if take == 0 {
			take = 1
		}
		step := float64(len(group)) / float64(take)
		for i := 0; i < take; i++ {
			sample = append(sample, group[int(float64(i)*step)])
		}
	}
	return sample
}

// calibrationBins buckets predictions into equal-width probability bins and
// derives expected and maximum calibration error.
func (a *Auditor) calibrationBins(outcomes []PredictionOutcome) ([]CalibrationBin, float64, float64) {
	bins := make([]CalibrationBin, a.cfg.CalibrationBins)
	width := 1.0 / float64(a.cfg.CalibrationBins)
	for i := range bins {
		bins[i].Lower = float64(i) * width
		bins[i].Upper = bins[i].Lower + width
	}

	sums := make([]float64, len(bins))
	wins := make([]int, len(bins))
	for _, o := range outcomes {
		idx := int(o.HomeWinProbability / width)
		if idx >= len(bins) {
			idx = len(bins) - 1
		}
		bins[idx].Count++
		sums[idx] += o.HomeWinProbability
		if o.HomeWon {
			wins[idx]++
		}
	}

	var ece, mce float64
	total := float64(len(outcomes))
	for i := range bins {
		if bins[i].Count == 0 {
			continue
		}
		bins[i].PredictedMean = sums[i] / float64(bins[i].Count)
		bins[i].ObservedRate = float64(wins[i]) / float64(bins[i].Count)
		gap := math.Abs(bins[i].PredictedMean - bins[i].ObservedRate)
		ece += gap * float64(bins[i].Count) / total
		if gap > mce {
			mce = gap
		}
	}
	return bins, ece, mce
}

// rocAUC computes the area under the ROC curve by rank statistic: the
// probability a random home win was scored above a random home loss.
func rocAUC(outcomes []PredictionOutcome) float64 {
	type scored struct {
		p   float64
		won bool
	}
	items := make([]scored, len(outcomes))
	pos, neg := 0, 0
	for i, o := range outcomes {
		items[i] = scored{p: o.HomeWinProbability, won: o.HomeWon}
		if o.HomeWon {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0.5
	}

	sort.Slice(items, func(i, j int) bool { return items[i].p < items[j].p })

	// Sum of positive ranks with tie-averaged ranks.
	rankSum := 0.0
	i := 0
	for i < len(items) {
		j := i
		for j < len(items) && items[j].p == items[i].p {
			j++
		}
		avgRank := float64(i+j+1) / 2.0 // ranks are 1-based
		for k := i; k < j; k++ {
			if items[k].won {
				rankSum += avgRank
			}
		}
		i = j
	}
	return (rankSum - float64(pos)*float64(pos+1)/2) / (float64(pos) * float64(neg))
}

func clampProb(p float64) float64 {
	return math.Min(1-probEpsilon, math.Max(probEpsilon, p))
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// BaselineBrier is the Brier score of always predicting the observed home win
// rate, used to judge whether the model adds skill over the base rate.
func BaselineBrier(outcomes []PredictionOutcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	wins := 0
	for _, o := range outcomes {
		if o.HomeWon {
			wins++
		}
	}
	rate := float64(wins) / float64(len(outcomes))
	return rate * (1 - rate)
}
