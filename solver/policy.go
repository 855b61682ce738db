package solver

import "errors"

// Policy exposes read-only access to a Blueprint for sampling actions during
// live play, the concrete backing of spec.md §6's get_strategy surface for
// callers that only have a saved blueprint file, not a live Trainer.
type Policy struct {
	blueprint *Blueprint
}

// LoadPolicy constructs a runtime policy from a stored blueprint file.
func LoadPolicy(path string) (*Policy, error) {
	bp, err := LoadBlueprint(path)
	if err != nil {
		return nil, err
	}
	return &Policy{blueprint: bp}, nil
}

// Blueprint returns the underlying blueprint.
func (p *Policy) Blueprint() *Blueprint {
	if p == nil {
		return nil
	}
	return p.blueprint
}

// ActionWeights returns actionCount weights for key: the uniform
// distribution when the key is absent, otherwise the stored vector truncated
// to actionCount, with any missing trailing entries set to 1/actionCount.
// Padded or truncated vectors are not renormalised, so they need not sum to
// 1. It always returns a vector, never an absence, unlike
// Blueprint.Strategy's (vector, bool) contract.
func (p *Policy) ActionWeights(key InfoSetKey, actionCount int) ([]float64, error) {
	if p == nil || p.blueprint == nil {
		return nil, errors.New("solver: nil policy")
	}
	if actionCount <= 0 {
		return nil, errors.New("solver: action count must be positive")
	}

	out := make([]float64, actionCount)
	if strat, ok := p.blueprint.Strategy(key); ok {
		copy(out, strat)
		if len(strat) >= actionCount {
			return out, nil
		}
		uniform := 1.0 / float64(actionCount)
		for i := len(strat); i < actionCount; i++ {
			out[i] = uniform
		}
		return out, nil
	}

	uniform := 1.0 / float64(actionCount)
	for i := range out {
		out[i] = uniform
	}
	return out, nil
}
