package trajectory

import (
	"strings"
	"unicode/utf8"
)

// DefaultFontSize is the label font size in model units.
const DefaultFontSize = 0.15

// Monospace estimate ratios, relative to the font size.
const (
	charWidthRatio  = 0.6
	spaceWidthRatio = 0.3
)

// LabelPlacement is where a (possibly merged) label is drawn.
type LabelPlacement struct {
	Text     string   `json:"text"`
	Position Vec3     `json:"position"`
	Category Category `json:"category"`
}

// WidthFunc estimates the rendered width of text made of words
// space-separated words, in model units.
type WidthFunc func(text string, words int) float64

// MonospaceWidth returns a fixed-pitch estimate:
//
//	len(text)*charWidth + (words-1)*spaceWidth
//
// with charWidth = 0.6*fontSize and spaceWidth = 0.3*fontSize. Length is
// counted in runes.
func MonospaceWidth(fontSize float64) WidthFunc {
	charW := fontSize * charWidthRatio
	spaceW := fontSize * spaceWidthRatio
	return func(text string, words int) float64 {
		return float64(utf8.RuneCountInString(text))*charW + float64(max(words-1, 0))*spaceW
	}
}

type labelConfig struct {
	fontSize float64
	width    WidthFunc
}

// LabelOption configures [ComputeLabels].
type LabelOption func(*labelConfig)

// WithFontSize sets the font size used by the default width estimate and
// the gap between merged groups.
func WithFontSize(size float64) LabelOption {
	return func(c *labelConfig) { c.fontSize = size }
}

// WithWidthFunc replaces the monospace width estimate.
func WithWidthFunc(fn WidthFunc) LabelOption {
	return func(c *labelConfig) { c.width = fn }
}

func newLabelConfig(opts []LabelOption) labelConfig {
	c := labelConfig{fontSize: DefaultFontSize}
	for _, opt := range opts {
		opt(&c)
	}
	if c.fontSize <= 0 {
		c.fontSize = DefaultFontSize
	}
	if c.width == nil {
		c.width = MonospaceWidth(c.fontSize)
	}
	return c
}

// ComputeLabels places token text for the stream.
//
// A token with a non-zero vector gets one label at the vector midpoint. A run
// of tokens whose destinations equal the current start exactly is merged:
// consecutive tokens of the same category become one space-joined label, and
// the resulting groups are laid out left to right on the X axis, centered as
// a whole on the shared point. The start anchor does not move across a run.
func ComputeLabels(tokens []TokenVector, opts ...LabelOption) []LabelPlacement {
	cfg := newLabelConfig(opts)
	labels := make([]LabelPlacement, 0, len(tokens))

	start := Origin
	for i := 0; i < len(tokens); {
		end := tokens[i].Destination
		if !end.Sub(start).IsZero() {
			labels = append(labels, LabelPlacement{
				Text:     tokens[i].Token,
				Position: Midpoint(start, end),
				Category: tokens[i].Category(),
			})
			start = end
			i++
			continue
		}

		j := i + 1
		for j < len(tokens) && tokens[j].Destination.Sub(start).IsZero() {
			j++
		}
		labels = append(labels, cfg.layoutRun(start, tokens[i:j])...)
		i = j
	}
	return labels
}

type labelGroup struct {
	text     string
	category Category
	width    float64
}

// groupRun splits a zero-length run into consecutive same-category groups.
func (c labelConfig) groupRun(run []TokenVector) []labelGroup {
	var groups []labelGroup
	for i := 0; i < len(run); {
		cat := run[i].Category()
		j := i
		words := make([]string, 0, len(run)-i)
		for j < len(run) && run[j].Category() == cat {
			words = append(words, run[j].Token)
			j++
		}
		text := strings.Join(words, " ")
		groups = append(groups, labelGroup{
			text:     text,
			category: cat,
			width:    c.width(text, len(words)),
		})
		i = j
	}
	return groups
}

func (c labelConfig) layoutRun(at Vec3, run []TokenVector) []LabelPlacement {
	groups := c.groupRun(run)
	gap := c.fontSize * spaceWidthRatio

	total := gap * float64(len(groups)-1)
	for _, g := range groups {
		total += g.width
	}

	out := make([]LabelPlacement, len(groups))
	x := at.X - total/2
	for i, g := range groups {
		out[i] = LabelPlacement{
			Text:     g.text,
			Position: Vec3{X: x + g.width/2, Y: at.Y, Z: at.Z},
			Category: g.category,
		}
		x += g.width + gap
	}
	return out
}
