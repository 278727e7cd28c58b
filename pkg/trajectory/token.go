package trajectory

import "fmt"

// Category separates prompt tokens from generated tokens. Renderers color by
// category.
type Category int

const (
	Input Category = iota
	Output
)

// CategoryOf maps the wire-level is_input flag to a Category.
func CategoryOf(isInput bool) Category {
	if isInput {
		return Input
	}
	return Output
}

func (c Category) String() string {
	switch c {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// MarshalText encodes the category as "input" or "output".
func (c Category) MarshalText() ([]byte, error) {
	switch c {
	case Input, Output:
		return []byte(c.String()), nil
	}
	return nil, fmt.Errorf("unknown category %d", int(c))
}

// UnmarshalText parses "input" or "output".
func (c *Category) UnmarshalText(b []byte) error {
	switch string(b) {
	case "input":
		*c = Input
	case "output":
		*c = Output
	default:
		return fmt.Errorf("unknown category %q", b)
	}
	return nil
}

// TokenVector is one token of the stream and the endpoint of its vector.
// The start point is implicit: the previous token's Destination, or [Origin].
type TokenVector struct {
	Token       string `json:"token" bson:"token"`
	Destination Vec3   `json:"destination" bson:"destination"`
	IsInput     bool   `json:"is_input" bson:"is_input"`
}

// Category returns Input or Output according to IsInput.
func (t TokenVector) Category() Category { return CategoryOf(t.IsInput) }

// Record is the wire form of a TokenVector as delivered by token sources.
// Destination is kept as a raw list so malformed coordinates can be detected
// instead of failing the decode.
type Record struct {
	Token       string    `json:"token"`
	Destination []float64 `json:"destination"`
	IsInput     bool      `json:"is_input"`
}

// FromRecords converts wire records to token vectors.
//
// A record whose destination has fewer than three components or contains
// NaN or infinite values is malformed. It keeps its text and category but
// its destination is set to the previous anchor, so it contributes a
// zero-length vector rather than blanking the scene. Extra components beyond
// the third are ignored. The number of malformed records is returned.
func FromRecords(records []Record) (tokens []TokenVector, malformed int) {
	tokens = make([]TokenVector, 0, len(records))
	prev := Origin
	for _, r := range records {
		dest, ok := recordDestination(r.Destination)
		if !ok {
			malformed++
			dest = prev
		}
		tokens = append(tokens, TokenVector{Token: r.Token, Destination: dest, IsInput: r.IsInput})
		prev = dest
	}
	return tokens, malformed
}

func recordDestination(c []float64) (Vec3, bool) {
	if len(c) < 3 {
		return Vec3{}, false
	}
	v := Vec3{c[0], c[1], c[2]}
	return v, v.IsFinite()
}

// ToRecords converts token vectors to their wire form.
func ToRecords(tokens []TokenVector) []Record {
	out := make([]Record, len(tokens))
	for i, t := range tokens {
		out[i] = Record{
			Token:       t.Token,
			Destination: []float64{t.Destination.X, t.Destination.Y, t.Destination.Z},
			IsInput:     t.IsInput,
		}
	}
	return out
}

// OutputIndices returns the stream index of every output token, in order.
func OutputIndices(tokens []TokenVector) []int {
	var idx []int
	for i, t := range tokens {
		if !t.IsInput {
			idx = append(idx, i)
		}
	}
	return idx
}

// Split partitions tokens into input and output tokens, preserving order.
func Split(tokens []TokenVector) (inputs, outputs []TokenVector) {
	for _, t := range tokens {
		if t.IsInput {
			inputs = append(inputs, t)
		} else {
			outputs = append(outputs, t)
		}
	}
	return inputs, outputs
}
