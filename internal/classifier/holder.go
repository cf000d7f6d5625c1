package classifier

import (
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ppiankov/riskgate/internal/model"
)

// Holder publishes the current Engine. Swapping replaces the whole engine
// (rule base and cache together), so a reader sees either the old or the
// new configuration, never a mix.
type Holder struct {
	engine atomic.Pointer[Engine]
}

// NewHolder returns a holder, optionally primed with an engine.
func NewHolder(e *Engine) *Holder {
	h := &Holder{}
	if e != nil {
		h.engine.Store(e)
	}
	return h
}

// Engine returns the current engine, or nil before the first Swap.
func (h *Holder) Engine() *Engine {
	return h.engine.Load()
}

// Swap installs e and returns the previous engine.
func (h *Holder) Swap(e *Engine) *Engine {
	return h.engine.Swap(e)
}

// Classify delegates to the current engine.
func (h *Holder) Classify(p model.ProjectProfile) (model.Result, error) {
	e := h.engine.Load()
	if e == nil {
		return model.Result{}, goerr.Wrap(model.ErrNotLoaded, "no rule base has been loaded")
	}
	return e.Classify(p)
}
