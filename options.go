package ipf

import (
	"github.com/causalgo/ipf/internal/ipflog"
	"github.com/causalgo/ipf/internal/ndarray"
)

// Options configures a single Fit invocation. Construct via DefaultOptions
// and override the fields you need, following causalgo's
// scic.DefaultConfig() constructor pattern rather than magic zero-value
// filling (MaxIter: 0 is itself a meaningful boundary value — "return the
// initialization factors without iterating" — so it cannot double as "use
// the default").
type Options[F ndarray.Float] struct {
	// MaxIter bounds the fixed-point iteration (spec default 1000).
	MaxIter int

	// Tol is the absolute convergence tolerance on the max factor delta
	// (spec default 1e-10), clamped up to at least the machine epsilon of
	// F before use.
	Tol F

	// ForceConsistency, when true, resolves a post-normalization overlap
	// inconsistency by averaging (margins.MakeOverlapConsistent) instead
	// of failing. Default false.
	ForceConsistency bool

	// Logger receives the engine's diagnostic events. Defaults to
	// ipflog.Noop() if nil, so a zero-value Options never panics; pass
	// ipflog.Default() for the teacher pack's zerolog-backed stderr sink.
	Logger ipflog.Logger
}

// DefaultOptions returns spec's documented defaults: MaxIter 1000, Tol
// 1e-10, ForceConsistency false, logging to ipflog.Default().
func DefaultOptions[F ndarray.Float]() Options[F] {
	return Options[F]{
		MaxIter:          1000,
		Tol:              F(1e-10),
		ForceConsistency: false,
		Logger:           ipflog.Default(),
	}
}

func (o Options[F]) logger() ipflog.Logger {
	if o.Logger == nil {
		return ipflog.Noop()
	}
	return o.Logger
}

// effectiveTol clamps Tol up to the machine epsilon of F, per spec's
// "clamped to at least machine epsilon of the chosen precision".
func (o Options[F]) effectiveTol() F {
	eps := epsilon[F]()
	if o.Tol < eps {
		return eps
	}
	return o.Tol
}

// float32Epsilon and float64Epsilon are the standard machine epsilons: the
// smallest value such that 1+eps != 1 in that precision.
const (
	float32Epsilon = 1.1920929e-07
	float64Epsilon = 2.220446049250313e-16
)

func epsilon[F ndarray.Float]() F {
	var zero F
	switch any(zero).(type) {
	case float32:
		return F(float32Epsilon)
	default:
		return F(float64Epsilon)
	}
}
