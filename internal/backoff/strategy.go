// Package backoff computes the wait between retry attempts.
package backoff

import (
	"math/rand"
	"time"
)

// Params bounds a strategy. Multiplier and Jitter are ignored by strategies
// that do not use them.
type Params struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// Strategy returns the wait before retry number attempt (1-based). random
// yields values in [0, 1).
type Strategy interface {
	Delay(attempt int, p Params, random func() float64) time.Duration
}

// Exponential grows the wait by Multiplier per attempt and adds up to Jitter
// of the result on top, never exceeding Max.
type Exponential struct{}

// Delay implements Strategy.
func (Exponential) Delay(attempt int, p Params, random func() float64) time.Duration {
	if attempt < 1 {
		return 0
	}
	// 2^30 overflows any sane Initial well before this.
	if attempt > 30 {
		attempt = 30
	}

	wait := time.Duration(float64(p.Initial) * pow(p.Multiplier, attempt-1))
	if wait < 0 || wait > p.Max {
		wait = p.Max
	}

	if jitter := clamp(p.Jitter); jitter > 0 {
		wait += time.Duration(float64(wait) * jitter * random())
		if wait > p.Max {
			wait = p.Max
		}
	}
	return wait
}

// Decorrelated picks a random wait in [Initial, min(Max, Initial*3^attempt)).
type Decorrelated struct{}

// Delay implements Strategy.
func (Decorrelated) Delay(attempt int, p Params, random func() float64) time.Duration {
	if attempt < 1 {
		return 0
	}
	if attempt > 10 {
		attempt = 10
	}

	base := float64(p.Initial)
	upper := base * pow(3, attempt)
	if upper > float64(p.Max) || upper < 0 {
		upper = float64(p.Max)
	}
	if upper < base {
		upper = base
	}

	wait := time.Duration(base + random()*(upper-base))
	if wait < 0 || wait > p.Max {
		wait = p.Max
	}
	return wait
}

// Policy pairs a strategy with its parameters. A nil Policy never waits.
type Policy struct {
	strategy Strategy
	params   Params
	random   func() float64
}

// NewPolicy returns a policy using math/rand for jitter.
func NewPolicy(strategy Strategy, params Params) *Policy {
	return &Policy{strategy: strategy, params: params, random: rand.Float64}
}

// Delay returns the wait before retry number attempt.
func (p *Policy) Delay(attempt int) time.Duration {
	if p == nil || p.strategy == nil {
		return 0
	}
	return p.strategy.Delay(attempt, p.params, p.random)
}

// Params returns the policy parameters.
func (p *Policy) Params() Params {
	if p == nil {
		return Params{}
	}
	return p.params
}

func clamp(jitter float64) float64 {
	if jitter < 0 {
		return 0
	}
	if jitter > 1 {
		return 1
	}
	return jitter
}

func pow(base float64, exponent int) float64 {
	result := 1.0
	for i := 0; i < exponent; i++ {
		result *= base
	}
	return result
}
