package rulebase

import (
	"math"
	"sort"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ppiankov/riskgate/internal/model"
)

type thresholder interface {
	marginThresholds() []float64
	profitThresholds() []float64
}

// SampleProfiles enumerates a finite set of legal profiles that covers
// every region the base rule guards can distinguish: all enum and SIA
// combinations, profit absent or present, and margins on both sides of
// (and exactly at) every margin threshold. Declarative guards are
// piecewise constant between thresholds, so the set is exhaustive for
// them.
func SampleProfiles(rb *RuleBase) []model.ProjectProfile {
	margins := []float64{-1, 0, 1}
	profits := []*float64{nil, model.Profit(0)}

	for _, r := range rb.rules {
		t, ok := r.Guard.(thresholder)
		if !ok {
			continue
		}
		for _, m := range t.marginThresholds() {
			eps := 1e-9 * math.Max(1, math.Abs(m))
			margins = append(margins, m-eps, m, m+eps)
		}
		for _, p := range t.profitThresholds() {
			profits = append(profits, model.Profit(p), model.Profit(math.Nextafter(p, math.Inf(1))))
		}
	}
	margins = uniqueSorted(margins)

	var out []model.ProjectProfile
	for _, pt := range model.ProjectTypes {
		for sia := model.MinSIAComplexity; sia <= model.MaxSIAComplexity; sia++ {
			for _, ct := range model.ContractTypes {
				for _, rel := range model.ClientRelationships {
					for _, cl := range model.ClientTypes {
						for _, m := range margins {
							for _, pr := range profits {
								out = append(out, model.ProjectProfile{
									MarginFraction:     m,
									ProjectType:        pt,
									SIAComplexity:      sia,
									ContractType:       ct,
									ClientRelationship: rel,
									ClientType:         cl,
									ExpectedProfit:     pr,
								})
							}
						}
					}
				}
			}
		}
	}
	return out
}

// CheckTotality verifies that some base rule matches every sampled legal
// profile. The first gap is reported as ErrUndefinedRiskProfile.
func CheckTotality(rb *RuleBase) error {
	for _, p := range SampleProfiles(rb) {
		_, ok, err := rb.MatchBase(p)
		if err != nil {
			return err
		}
		if !ok {
			return goerr.Wrap(model.ErrUndefinedRiskProfile, "no base rule matches profile",
				goerr.V("profile", p.ToMap()))
		}
	}
	return nil
}

func uniqueSorted(in []float64) []float64 {
	sort.Float64s(in)
	out := in[:0]
	for _, v := range in {
		if len(out) == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
