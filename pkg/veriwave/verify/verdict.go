package verify

import (
	"gonum.org/v1/gonum/stat"

	"github.com/veriwave/veriwave/pkg/veriwave/model"
)

// Aggregate reduces a MatchResult to a single VerificationVerdict in one
// pass. Tampering dominates every other condition.
func Aggregate(res *MatchResult) *model.VerificationVerdict {
	v := &model.VerificationVerdict{
		TotalSegments:   len(res.Matches) + len(res.Extra),
		MissingSegments: len(res.Missing),
		ExtraSegments:   len(res.Extra),
		IndustryUsed:    res.IndustryUsed,
		Matches:         res.Matches,
	}

	similarities := make([]float64, 0, len(res.Matches))
	for _, m := range res.Matches {
		similarities = append(similarities, m.PerceptualSimilarity)
		if m.IsTampered {
			v.TamperedSegments++
			v.TamperedRegions = append(v.TamperedRegions, model.TamperedRegion{
				StartTime:  m.Segment.StartTime,
				EndTime:    m.Segment.EndTime,
				Similarity: m.PerceptualSimilarity,
			})
			continue
		}
		v.ValidSegments++
		v.ValidRegions = append(v.ValidRegions, model.ValidRegion{
			StartTime:  m.Segment.StartTime,
			EndTime:    m.Segment.EndTime,
			ExactMatch: m.ExactMatch,
		})
	}
	if len(similarities) > 0 {
		v.AvgSimilarity = stat.Mean(similarities, nil)
	}

	switch {
	case v.TamperedSegments > 0:
		v.Status = model.StatusTampered
	case v.ValidSegments == 0 && v.TotalSegments > 0:
		v.Status = model.StatusNoMatch
	case v.MissingSegments > 0 || v.ExtraSegments > 0:
		v.Status = model.StatusPartialVerified
	default:
		v.Status = model.StatusFullyVerified
	}
	return v
}
