package generator

import (
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// Source is the single seeded stream every table draws from. Draw order is
// part of the output contract: the same seed and row counts must produce the
// same files.
type Source struct {
	r *rand.Rand
}

func NewSource(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// IntN returns a uniform integer in [lo, hi).
func (s *Source) IntN(lo, hi int) int {
	return lo + s.r.Intn(hi-lo)
}

// Uniform returns a uniform float in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + s.r.Float64()*(hi-lo)
}

func (s *Source) LogNormal(mu, sigma float64) float64 {
	return math.Exp(mu + sigma*s.r.NormFloat64())
}

func (s *Source) Exponential(mean float64) float64 {
	return s.r.ExpFloat64() * mean
}

// Poisson uses Knuth's multiplication method; fine for the small lambdas
// used here.
func (s *Source) Poisson(lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= s.r.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

func (s *Source) Bernoulli(p float64) bool {
	return s.r.Float64() < p
}

// Moment returns a uniform day in [start, start+days) plus a uniform second
// of that day.
func (s *Source) Moment(start time.Time, days int) time.Time {
	day := s.IntN(0, days)
	sec := s.IntN(0, 86400)
	return start.AddDate(0, 0, day).Add(time.Duration(sec) * time.Second)
}

// Day returns a uniform midnight in [start, start+days).
func (s *Source) Day(start time.Time, days int) time.Time {
	return start.AddDate(0, 0, s.IntN(0, days))
}

func Pick[T any](s *Source, values []T) T {
	return values[s.r.Intn(len(values))]
}

type Choice[T any] struct {
	Value  T
	Weight float64
}

// Weighted is a fixed categorical distribution. Weights need not sum to 1.
type Weighted[T any] struct {
	values []T
	cum    []float64
	total  float64
}

func NewWeighted[T any](choices ...Choice[T]) Weighted[T] {
	w := Weighted[T]{
		values: make([]T, len(choices)),
		cum:    make([]float64, len(choices)),
	}
	for i, c := range choices {
		w.total += c.Weight
		w.values[i] = c.Value
		w.cum[i] = w.total
	}
	return w
}

func (w Weighted[T]) Pick(s *Source) T {
	x := s.r.Float64() * w.total
	for i, c := range w.cum {
		if x < c {
			return w.values[i]
		}
	}
	return w.values[len(w.values)-1]
}

func (w Weighted[T]) Values() []T {
	return w.values
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
