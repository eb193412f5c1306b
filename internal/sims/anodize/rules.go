package anodize

import (
	"fmt"
	"math"
)

// Rule identifies the table entry that produced an outcome.
type Rule uint8

const (
	RuleNone Rule = iota
	RulePassivation
	RuleDissolution
	RuleAnionIncorporation
	RuleAnionOxidation
	RuleFieldGeneration
	RuleFieldDiffusion
	RuleAnionDiffusion
	RuleReorganization
)

// NumRules counts RuleNone plus the eight table entries.
const NumRules = 9

var ruleNames = [NumRules]string{
	"none",
	"passivation",
	"dissolution",
	"anion_incorporation",
	"anion_oxidation",
	"field_generation",
	"field_diffusion",
	"anion_diffusion",
	"reorganization",
}

func (r Rule) String() string {
	if int(r) >= NumRules {
		return fmt.Sprintf("rule(%d)", uint8(r))
	}
	return ruleNames[r]
}

// Rules lists the table entries in precedence order.
func Rules() []Rule {
	return []Rule{
		RulePassivation,
		RuleDissolution,
		RuleAnionIncorporation,
		RuleAnionOxidation,
		RuleFieldGeneration,
		RuleFieldDiffusion,
		RuleAnionDiffusion,
		RuleReorganization,
	}
}

// Outcome is the new state of an interacting pair.
type Outcome struct {
	A, B CellState
	Rule Rule
}

// Fired reports whether a rule changed the pair.
func (o Outcome) Fired() bool { return o.Rule != RuleNone }

// Neighborhood supplies the oxide-like neighbor counts of the two sites of a
// pair, in (A, B) order. It is only consulted by the reorganization rule.
type Neighborhood interface {
	OxideLikeCounts() (na, nb int)
}

// NeighborhoodFunc adapts a function to Neighborhood.
type NeighborhoodFunc func() (int, int)

// OxideLikeCounts calls f.
func (f NeighborhoodFunc) OxideLikeCounts() (int, int) { return f() }

// Engine evaluates the ordered rule table. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	p Params
}

// NewEngine validates the probabilities and returns an Engine.
func NewEngine(p Params) (*Engine, error) {
	cfg := DefaultConfig()
	cfg.Params = p
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{p: p}, nil
}

// Params returns the probabilities the engine was built with.
func (e *Engine) Params() Params { return e.p }

// Apply decides the new states of the pair (a, b) for the given draw. The
// first matching rule wins; a pair no rule matches, or whose probability gate
// fails, passes through with RuleNone.
func (e *Engine) Apply(a, b CellState, rand float64, nb Neighborhood) (Outcome, error) {
	if !a.Valid() || !b.Valid() {
		return Outcome{A: a, B: b}, fmt.Errorf("%w: pair (%s, %s)", ErrCorruption, a, b)
	}
	pass := Outcome{A: a, B: b, Rule: RuleNone}

	// Reactions.
	if _, ok := pair(a, b, Metal, Solvent); ok {
		return Outcome{A: Oxide, B: Oxide, Rule: RulePassivation}, nil
	}
	if fieldIsA, ok := pair(a, b, ElectricField, Solvent); ok {
		switch {
		case rand < e.p.PDissolution:
			return setSide(pass, fieldIsA, Solvent, RuleDissolution), nil
		case rand < e.p.PDissolution+e.p.PAnion:
			return setSide(pass, fieldIsA, Anion, RuleAnionIncorporation), nil
		}
		return pass, nil
	}
	if _, ok := pair(a, b, Metal, Anion); ok {
		return Outcome{A: Oxide, B: Oxide, Rule: RuleAnionOxidation}, nil
	}
	if metalIsA, ok := pair(a, b, Metal, Oxide); ok {
		if rand < e.p.PFieldGen {
			return setSide(pass, !metalIsA, ElectricField, RuleFieldGeneration), nil
		}
		return pass, nil
	}

	// Diffusion.
	if _, ok := pair(a, b, ElectricField, Oxide); ok {
		if rand < e.p.PDiffusion {
			return Outcome{A: b, B: a, Rule: RuleFieldDiffusion}, nil
		}
		return pass, nil
	}
	if _, ok := pair(a, b, ElectricField, Anion); ok {
		if rand < e.p.PDiffusion {
			return Outcome{A: b, B: a, Rule: RuleAnionDiffusion}, nil
		}
		return pass, nil
	}

	// Surface reorganization.
	solventIsA, ok := pair(a, b, Solvent, Oxide)
	if !ok {
		solventIsA, ok = pair(a, b, Solvent, Anion)
	}
	if ok {
		var na, nbCount int
		if nb != nil {
			na, nbCount = nb.OxideLikeCounts()
		}
		nSolvent, nOther := na, nbCount
		if !solventIsA {
			nSolvent, nOther = nbCount, na
		}
		if rand < ReorganizationProbability(e.p.PBond, nSolvent, nOther) {
			return Outcome{A: b, B: a, Rule: RuleReorganization}, nil
		}
		return pass, nil
	}
	return pass, nil
}

// ReorganizationProbability is the swap probability of the reorganization
// rule given the oxide-like neighbor counts of the solvent side and of the
// oxide or anion side. A solvent side with strictly fewer oxide-like neighbors
// always swaps; otherwise the probability is pBond^max(N, 1) with
// N = |nSolvent - nOther|.
func ReorganizationProbability(pBond float64, nSolvent, nOther int) float64 {
	if nSolvent < nOther {
		return 1
	}
	n := nSolvent - nOther
	if n < 1 {
		n = 1
	}
	return math.Pow(pBond, float64(n))
}

// pair reports whether {a, b} equals {x, y}; first is true when a == x.
func pair(a, b, x, y CellState) (first bool, ok bool) {
	switch {
	case a == x && b == y:
		return true, true
	case a == y && b == x:
		return false, true
	}
	return false, false
}

func setSide(o Outcome, onA bool, s CellState, r Rule) Outcome {
	if onA {
		o.A = s
	} else {
		o.B = s
	}
	o.Rule = r
	return o
}
