package classifier

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/ppiankov/riskgate/internal/model"
	"github.com/ppiankov/riskgate/internal/rulebase"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(rulebase.Default(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func fullCatalogue() []model.Suggestion {
	return Mitigations(model.High, rulebase.Default().Catalogue())
}

func TestCalibrationScenarios(t *testing.T) {
	tests := []struct {
		name      string
		profile   model.ProjectProfile
		wantBase  model.RiskLevel
		wantRisk  model.RiskLevel
		overrides []string
	}{
		{
			name: "low margin fixed price is high",
			profile: model.NewProfile(5.0, model.PlanningAndExecution, 1, model.FixedPrice,
				model.EstablishedClient, model.PrivateClient, model.Profit(10_000)),
			wantBase: model.High,
			wantRisk: model.High,
		},
		{
			name: "healthy hourly government project is low",
			profile: model.NewProfile(18.0, model.PlanningAndExecution, 2, model.Hourly,
				model.EstablishedClient, model.GovernmentClient, model.Profit(100_000)),
			wantBase: model.Low,
			wantRisk: model.Low,
		},
		{
			name: "large profit downgrades medium to low",
			profile: model.NewProfile(12.0, model.PlanningAndExecution, 2, model.FixedPrice,
				model.EstablishedClient, model.PrivateClient, model.Profit(2_500_000)),
			wantBase:  model.Medium,
			wantRisk:  model.Low,
			overrides: []string{"profit"},
		},
		{
			name: "large profit downgrades high to medium",
			profile: model.NewProfile(5.0, model.ExecutionOnly, 4, model.FixedPrice,
				model.NewClient, model.PrivateClient, model.Profit(2_500_000)),
			wantBase:  model.High,
			wantRisk:  model.Medium,
			overrides: []string{"profit"},
		},
		{
			name: "strong margin downgrades high to medium",
			profile: model.NewProfile(25.0, model.ExecutionOnly, 4, model.Hourly,
				model.NewClient, model.PrivateClient, model.Profit(100_000)),
			wantBase:  model.High,
			wantRisk:  model.Medium,
			overrides: []string{"margin"},
		},
		{
			name: "thin margin escalates fixed-price planning to high",
			profile: model.NewProfile(5.0, model.PlanningOnly, 2, model.FixedPrice,
				model.EstablishedClient, model.PrivateClient, nil),
			wantBase:  model.Medium,
			wantRisk:  model.High,
			overrides: []string{"margin"},
		},
		{
			name: "fixed-price planning stays medium at a healthy margin",
			profile: model.NewProfile(20.0, model.PlanningOnly, 3, model.FixedPrice,
				model.NewClient, model.GovernmentClient, nil),
			wantBase: model.Medium,
			wantRisk: model.Medium,
		},
		{
			name: "both overrides chain",
			profile: model.NewProfile(22.0, model.ExecutionOnly, 5, model.FixedPrice,
				model.NewClient, model.PrivateClient, model.Profit(3_000_000)),
			wantBase:  model.High,
			wantRisk:  model.Low,
			overrides: []string{"margin", "profit"},
		},
		{
			name: "absent profit skips the profit override",
			profile: model.NewProfile(5.0, model.ExecutionOnly, 4, model.FixedPrice,
				model.NewClient, model.PrivateClient, nil),
			wantBase: model.High,
			wantRisk: model.High,
		},
		{
			name: "profit exactly at threshold does not override",
			profile: model.NewProfile(12.0, model.PlanningAndExecution, 2, model.FixedPrice,
				model.EstablishedClient, model.PrivateClient, model.Profit(2_000_000)),
			wantBase: model.Medium,
			wantRisk: model.Medium,
		},
		{
			name: "margin exactly 20 percent does not override",
			profile: model.NewProfile(20.0, model.ExecutionOnly, 4, model.Hourly,
				model.NewClient, model.PrivateClient, nil),
			wantBase: model.High,
			wantRisk: model.High,
		},
	}

	e := newEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := e.Classify(tt.profile)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if r.BaseRisk != tt.wantBase {
				t.Errorf("expected base %s, got %s (rule %s)", tt.wantBase, r.BaseRisk, r.BaseRuleID)
			}
			if r.Risk != tt.wantRisk {
				t.Errorf("expected risk %s, got %s (%s)", tt.wantRisk, r.Risk, r.Reason())
			}
			var applied []string
			for _, s := range r.Applied {
				applied = append(applied, s.Override)
			}
			if !reflect.DeepEqual(applied, tt.overrides) {
				t.Errorf("expected overrides %v, got %v", tt.overrides, applied)
			}
		})
	}
}

func TestHighRiskCarriesFullCatalogue(t *testing.T) {
	e := newEngine(t)
	r, err := e.Classify(model.NewProfile(5.0, model.PlanningAndExecution, 1, model.FixedPrice,
		model.EstablishedClient, model.PrivateClient, model.Profit(10_000)))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.Suggestions, fullCatalogue()) {
		t.Errorf("expected the full catalogue in order, got %d suggestions", len(r.Suggestions))
	}
	if r.Suggestions[0].Category != "Team Composition" {
		t.Errorf("expected Team Composition first, got %s", r.Suggestions[0].Category)
	}
	if last := r.Suggestions[len(r.Suggestions)-1]; last.Category != "Phase Splitting" {
		t.Errorf("expected Phase Splitting last, got %s", last.Category)
	}
}

func TestLowRiskHasNoSuggestions(t *testing.T) {
	e := newEngine(t)
	r, err := e.Classify(model.NewProfile(18.0, model.PlanningAndExecution, 2, model.Hourly,
		model.EstablishedClient, model.GovernmentClient, model.Profit(100_000)))
	if err != nil {
		t.Fatal(err)
	}
	if r.Suggestions == nil || len(r.Suggestions) != 0 {
		t.Errorf("expected empty non-nil suggestions, got %v", r.Suggestions)
	}
}

func TestInvalidProfileRejected(t *testing.T) {
	e := newEngine(t, WithCache(8))
	p := model.NewProfile(15, model.PlanningAndExecution, 7, model.Hourly,
		model.EstablishedClient, model.PrivateClient, nil)

	r, err := e.Classify(p)
	if !errors.Is(err, model.ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
	if !reflect.DeepEqual(r, model.Result{}) {
		t.Errorf("expected zero result on error, got %+v", r)
	}
	if e.CacheLen() != 0 {
		t.Error("invalid profile must not populate the cache")
	}
}

// Every legal profile region classifies to a valid level, the suggestion
// invariant holds, each override moves at most two steps, and repeated
// calls agree.
func TestPropertiesOverSampledDomain(t *testing.T) {
	e := newEngine(t)
	catalogue := fullCatalogue()

	for _, base := range rulebase.SampleProfiles(e.RuleBase()) {
		for _, profit := range []*float64{nil, model.Profit(2_500_000)} {
			p := base
			p.ExpectedProfit = profit

			r1, err := e.Classify(p)
			if err != nil {
				t.Fatalf("profile %+v: %v", p, err)
			}
			r2, err := e.Classify(p)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(r1, r2) {
				t.Fatalf("non-deterministic result for %+v", p)
			}
			if !r1.Risk.Valid() {
				t.Fatalf("invalid level %d for %+v", r1.Risk, p)
			}
			if (len(r1.Suggestions) > 0) != (r1.Risk == model.High) {
				t.Fatalf("suggestions present=%v for level %s", len(r1.Suggestions) > 0, r1.Risk)
			}
			if r1.Risk == model.High && !reflect.DeepEqual(r1.Suggestions, catalogue) {
				t.Fatalf("high risk without the full catalogue for %+v", p)
			}
			for _, s := range r1.Applied {
				d := int(s.To) - int(s.From)
				if d < -2 || d > 2 || d == 0 {
					t.Fatalf("override %s moved %d steps", s.Override, d)
				}
			}
		}
	}
}

func TestUndefinedRiskProfileSurfaced(t *testing.T) {
	onlyFixed := rulebase.GuardFunc(func(f rulebase.Facts) (bool, error) {
		return f.Profile.ContractType == model.FixedPrice, nil
	})
	rb, err := rulebase.New("partial", []rulebase.Rule{
		{ID: "fixed_only", Guard: onlyFixed, Risk: model.Medium},
	}, nil, rulebase.Default().Catalogue())
	if err != nil {
		t.Fatal(err)
	}
	e, err := New(rb)
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Classify(model.NewProfile(15, model.PlanningAndExecution, 2, model.Hourly,
		model.EstablishedClient, model.PrivateClient, nil))
	if !errors.Is(err, model.ErrUndefinedRiskProfile) {
		t.Fatalf("expected ErrUndefinedRiskProfile, got %v", err)
	}
	if errors.Is(err, model.ErrInvalidProfile) {
		t.Error("undefined profile must be distinguishable from invalid input")
	}
}

func TestEvaluationFailureSurfaced(t *testing.T) {
	failing := rulebase.GuardFunc(func(rulebase.Facts) (bool, error) {
		return false, errors.New("binding unavailable")
	})
	panicking := rulebase.GuardFunc(func(rulebase.Facts) (bool, error) {
		var m map[string]int
		m["boom"]++
		return true, nil
	})
	always := rulebase.GuardFunc(func(rulebase.Facts) (bool, error) { return true, nil })

	tests := []struct {
		name      string
		rules     []rulebase.Rule
		overrides []rulebase.Override
	}{
		{
			name:  "base guard error",
			rules: []rulebase.Rule{{ID: "broken", Guard: failing, Risk: model.Low}},
		},
		{
			name:  "base guard panic",
			rules: []rulebase.Rule{{ID: "broken", Guard: panicking, Risk: model.Low}},
		},
		{
			name:  "override guard error",
			rules: []rulebase.Rule{{ID: "all", Guard: always, Risk: model.High}},
			overrides: []rulebase.Override{{
				ID:      "broken",
				Clauses: []rulebase.Clause{{Guard: failing, Outcome: rulebase.ShiftBy(-1)}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb, err := rulebase.New("broken", tt.rules, tt.overrides, rulebase.Default().Catalogue())
			if err != nil {
				t.Fatal(err)
			}
			e, err := New(rb)
			if err != nil {
				t.Fatal(err)
			}
			r, err := e.Classify(model.NewProfile(15, model.PlanningAndExecution, 2, model.Hourly,
				model.EstablishedClient, model.PrivateClient, nil))
			if !errors.Is(err, model.ErrEvaluationFailure) {
				t.Fatalf("expected ErrEvaluationFailure, got %v", err)
			}
			if r.Risk != model.Low || r.BaseRuleID != "" {
				t.Errorf("expected zero result on failure, got %+v", r)
			}
		})
	}
}

func TestNewRequiresRuleBase(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, model.ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestCacheReturnsIndependentCopies(t *testing.T) {
	e := newEngine(t, WithCache(16))
	p := model.NewProfile(5.0, model.PlanningAndExecution, 1, model.FixedPrice,
		model.EstablishedClient, model.PrivateClient, model.Profit(10_000))

	first, err := e.Classify(p)
	if err != nil {
		t.Fatal(err)
	}
	first.Suggestions[0].Action = "tampered"

	second, err := e.Classify(p)
	if err != nil {
		t.Fatal(err)
	}
	if second.Suggestions[0].Action == "tampered" {
		t.Error("cached result was mutated through a returned value")
	}
	if e.CacheLen() != 1 {
		t.Errorf("expected 1 cached result, got %d", e.CacheLen())
	}

	// Same values, different profit pointer: same key.
	q := p
	q.ExpectedProfit = model.Profit(10_000)
	if _, err := e.Classify(q); err != nil {
		t.Fatal(err)
	}
	if e.CacheLen() != 1 {
		t.Errorf("expected equal profiles to share a cache entry, got %d entries", e.CacheLen())
	}
}

func TestConcurrentClassify(t *testing.T) {
	e := newEngine(t, WithCache(64))
	profiles := []model.ProjectProfile{
		model.NewProfile(5.0, model.PlanningAndExecution, 1, model.FixedPrice, model.EstablishedClient, model.PrivateClient, model.Profit(10_000)),
		model.NewProfile(18.0, model.PlanningAndExecution, 2, model.Hourly, model.EstablishedClient, model.GovernmentClient, model.Profit(100_000)),
		model.NewProfile(12.0, model.PlanningAndExecution, 2, model.FixedPrice, model.EstablishedClient, model.PrivateClient, model.Profit(2_500_000)),
	}
	want := make([]model.Result, len(profiles))
	for i, p := range profiles {
		r, err := e.Classify(p)
		if err != nil {
			t.Fatal(err)
		}
		want[i] = r
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				i := (g + n) % len(profiles)
				r, err := e.Classify(profiles[i])
				if err != nil || !reflect.DeepEqual(r, want[i]) {
					errs <- string(profiles[i].ProjectType)
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for pt := range errs {
		t.Errorf("concurrent classification diverged for %s", pt)
	}
}

func TestHolderSwap(t *testing.T) {
	h := NewHolder(nil)
	p := model.NewProfile(18.0, model.PlanningAndExecution, 2, model.Hourly,
		model.EstablishedClient, model.GovernmentClient, nil)

	if _, err := h.Classify(p); !errors.Is(err, model.ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded before load, got %v", err)
	}

	allHigh := rulebase.GuardFunc(func(rulebase.Facts) (bool, error) { return true, nil })
	strict, err := rulebase.New("strict", []rulebase.Rule{{ID: "all", Guard: allHigh, Risk: model.High}}, nil, rulebase.Default().Catalogue())
	if err != nil {
		t.Fatal(err)
	}

	h.Swap(newEngine(t))
	r, err := h.Classify(p)
	if err != nil || r.Risk != model.Low {
		t.Fatalf("expected low with default rules, got %v, %v", r.Risk, err)
	}

	e, err := New(strict)
	if err != nil {
		t.Fatal(err)
	}
	prev := h.Swap(e)
	if prev == nil || prev.RuleBase() != rulebase.Default() {
		t.Error("expected Swap to return the previous engine")
	}
	r, err = h.Classify(p)
	if err != nil || r.Risk != model.High {
		t.Fatalf("expected high after swap, got %v, %v", r.Risk, err)
	}
}
