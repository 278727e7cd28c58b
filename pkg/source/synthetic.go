package source

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

// DefaultOutputTokens is the fixed reply of the synthetic generator.
var DefaultOutputTokens = []string{
	"The", "cat", "sits", "on", "the", "mat", "and", "watches",
	"birds", "fly", "high", "in", "the", "sky", ".",
}

// DefaultZeroLength lists stream indices whose vector has zero length.
// Index 0 sits on the origin; every other listed index repeats the previous
// destination.
var DefaultZeroLength = []int{0, 1, 5, 9, 10, 14, 17, 18}

// SpreadRadius bounds random destinations to [-SpreadRadius, SpreadRadius]
// on each axis.
const SpreadRadius = 3.0

// wordPattern splits a leading word from one trailing punctuation mark.
var wordPattern = regexp.MustCompile(`^([\p{L}\p{N}_]+)([.,!?;:])?`)

// Tokenize splits input on whitespace, then splits each word into its
// leading word characters and an optional punctuation mark that follows
// them directly. Characters after that are dropped. A word that does not
// start with a word character is kept whole.
func Tokenize(input string) []string {
	var tokens []string
	for _, word := range strings.Fields(input) {
		m := wordPattern.FindStringSubmatch(word)
		if m == nil {
			tokens = append(tokens, word)
			continue
		}
		tokens = append(tokens, m[1])
		if m[2] != "" {
			tokens = append(tokens, m[2])
		}
	}
	return tokens
}

// Synthetic generates placeholder trajectories: the input is tokenized, a
// fixed reply is appended, and each token gets a pseudo-random destination.
// The same input and seed always produce the same stream.
type Synthetic struct {
	Seed       uint64
	Outputs    []string
	ZeroLength []int
}

// NewSynthetic creates a generator with the default reply and zero-length
// indices.
func NewSynthetic(seed uint64) *Synthetic {
	return &Synthetic{Seed: seed, Outputs: DefaultOutputTokens, ZeroLength: DefaultZeroLength}
}

// Name returns "synthetic".
func (s *Synthetic) Name() string { return "synthetic" }

// Generate builds the wire response for input. It does not trim or validate.
func (s *Synthetic) Generate(input string) *Response {
	inputs := Tokenize(input)
	all := append(append([]string(nil), inputs...), s.Outputs...)

	zero := make(map[int]bool, len(s.ZeroLength))
	for _, i := range s.ZeroLength {
		zero[i] = true
	}

	rng := rand.New(rand.NewPCG(s.Seed, inputSeed(input)))
	records := make([]trajectory.Record, len(all))
	prev := []float64{0, 0, 0}
	for i, tok := range all {
		var dest []float64
		switch {
		case zero[i] && i == 0:
			dest = []float64{0, 0, 0}
		case zero[i]:
			dest = append([]float64(nil), prev...)
		default:
			dest = []float64{spread(rng), spread(rng), spread(rng)}
		}
		records[i] = trajectory.Record{Token: tok, Destination: dest, IsInput: i < len(inputs)}
		prev = dest
	}
	return &Response{Tokens: records}
}

// Fetch validates input and generates its stream.
func (s *Synthetic) Fetch(ctx context.Context, input string) (*Result, error) {
	return observe(ctx, s.Name(), input, func() (*Result, error) {
		text, err := errors.NormalizeInput(input)
		if err != nil {
			return nil, err
		}
		return s.Generate(text).Result(), nil
	})
}

func spread(r *rand.Rand) float64 {
	return -SpreadRadius + 2*SpreadRadius*r.Float64()
}

func inputSeed(input string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(input))
	return h.Sum64()
}
