package source

import (
	"context"
	"reflect"
	"testing"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"hello world", []string{"hello", "world"}},
		{"Hello, world!", []string{"Hello", ",", "world", "!"}},
		{"  spaced   out  ", []string{"spaced", "out"}},
		{"don't stop", []string{"don", "stop"}},
		{"(aside) ok", []string{"(aside)", "ok"}},
		{"end.", []string{"end", "."}},
		{"wait...", []string{"wait", "."}},
		{"안녕 세계?", []string{"안녕", "세계", "?"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Tokenize(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSyntheticGenerate(t *testing.T) {
	s := NewSynthetic(42)
	resp := s.Generate("I like cats.")

	inputs := []string{"I", "like", "cats", "."}
	if len(resp.Tokens) != len(inputs)+len(DefaultOutputTokens) {
		t.Fatalf("got %d records, want %d", len(resp.Tokens), len(inputs)+len(DefaultOutputTokens))
	}
	for i, r := range resp.Tokens {
		if want := i < len(inputs); r.IsInput != want {
			t.Errorf("record %d is_input = %v, want %v", i, r.IsInput, want)
		}
		if len(r.Destination) != 3 {
			t.Fatalf("record %d has %d coordinates", i, len(r.Destination))
		}
		for _, c := range r.Destination {
			if c < -SpreadRadius || c > SpreadRadius {
				t.Errorf("record %d coordinate %v outside spread", i, c)
			}
		}
	}
	if got := resp.Tokens[len(inputs)].Token; got != "The" {
		t.Errorf("first output = %q, want The", got)
	}

	if !reflect.DeepEqual(resp.Tokens[0].Destination, []float64{0, 0, 0}) {
		t.Errorf("index 0 should sit on the origin, got %v", resp.Tokens[0].Destination)
	}
	for _, i := range DefaultZeroLength[1:] {
		if !reflect.DeepEqual(resp.Tokens[i].Destination, resp.Tokens[i-1].Destination) {
			t.Errorf("index %d should repeat the previous destination", i)
		}
	}
}

func TestSyntheticDeterministic(t *testing.T) {
	a := NewSynthetic(7).Generate("same input")
	b := NewSynthetic(7).Generate("same input")
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed and input should produce the same stream")
	}
	c := NewSynthetic(8).Generate("same input")
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds should produce different streams")
	}
}

func TestSyntheticFetch(t *testing.T) {
	s := NewSynthetic(1)
	res, err := s.Fetch(context.Background(), "  hi there \n")
	if err != nil {
		t.Fatal(err)
	}
	if res.Tokens[0].Token != "hi" || res.Tokens[1].Token != "there" {
		t.Errorf("input not trimmed/tokenized: %q %q", res.Tokens[0].Token, res.Tokens[1].Token)
	}
	if res.Malformed != 0 {
		t.Errorf("malformed = %d", res.Malformed)
	}

	if _, err := s.Fetch(context.Background(), "   "); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty input error = %v, want INVALID_INPUT", err)
	}
}
