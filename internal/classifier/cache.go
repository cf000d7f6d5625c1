package classifier

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ppiankov/riskgate/internal/model"
)

// cacheKey is the full profile by value; the optional profit pointer is
// flattened so equal profiles produce equal keys.
type cacheKey struct {
	margin       float64
	projectType  model.ProjectType
	sia          int
	contract     model.ContractType
	relationship model.ClientRelationship
	client       model.ClientType
	hasProfit    bool
	profit       float64
}

func keyFor(p model.ProjectProfile) cacheKey {
	return cacheKey{
		margin:       p.MarginFraction,
		projectType:  p.ProjectType,
		sia:          p.SIAComplexity,
		contract:     p.ContractType,
		relationship: p.ClientRelationship,
		client:       p.ClientType,
		hasProfit:    p.HasProfit(),
		profit:       p.ProfitValue(),
	}
}

// resultCache stores private copies; callers always receive clones.
type resultCache struct {
	lru *lru.Cache[cacheKey, model.Result]
}

func newResultCache(size int) (*resultCache, error) {
	c, err := lru.New[cacheKey, model.Result](size)
	if err != nil {
		return nil, err
	}
	return &resultCache{lru: c}, nil
}

func (c *resultCache) get(p model.ProjectProfile) (model.Result, bool) {
	r, ok := c.lru.Get(keyFor(p))
	if !ok {
		return model.Result{}, false
	}
	return r.Clone(), true
}

func (c *resultCache) add(p model.ProjectProfile, r model.Result) {
	c.lru.Add(keyFor(p), r.Clone())
}

// CacheLen reports the number of cached results. Zero when caching is off.
func (e *Engine) CacheLen() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.lru.Len()
}
