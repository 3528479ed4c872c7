package scene

import (
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Measurer reports the rendered width of text at a pixel font size.
type Measurer interface {
	Width(text string, sizePx float64) float64
}

// FontMeasurer measures text with the Go Regular typeface, a close stand-in
// for the sans-serif the browser draws labels with.
type FontMeasurer struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFontMeasurer parses the embedded Go Regular font.
func NewFontMeasurer() (*FontMeasurer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return &FontMeasurer{font: f, faces: make(map[float64]font.Face)}, nil
}

func (m *FontMeasurer) Width(text string, sizePx float64) float64 {
	if text == "" {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	face, ok := m.faces[sizePx]
	if !ok {
		var err error
		face, err = opentype.NewFace(m.font, &opentype.FaceOptions{
			Size:    sizePx,
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			return float64(len([]rune(text))) * sizePx * 0.6
		}
		m.faces[sizePx] = face
	}

	adv := font.MeasureString(face, text)
	return float64(adv) / 64
}

var (
	defaultMeasurerOnce sync.Once
	defaultMeasurer     Measurer
)

// DefaultMeasurer returns a process-wide Go Regular measurer, falling back
// to an average-advance estimate if the font cannot be parsed.
func DefaultMeasurer() Measurer {
	defaultMeasurerOnce.Do(func() {
		m, err := NewFontMeasurer()
		if err != nil {
			defaultMeasurer = approxMeasurer{}
			return
		}
		defaultMeasurer = m
	})
	return defaultMeasurer
}

type approxMeasurer struct{}

func (approxMeasurer) Width(text string, sizePx float64) float64 {
	return float64(len([]rune(text))) * sizePx * 0.55
}

// Label is a node title broken into display lines.
type Label struct {
	Lines    []string `json:"lines"`
	FontSize float64  `json:"fontSize"`
}

// Wrapped reports whether the label spans more than one line.
func (l Label) Wrapped() bool { return len(l.Lines) > 1 }

// LineOffsets returns each line's vertical offset from the node center in
// em, centering the block on the node.
func (l Label) LineOffsets() []float64 {
	out := make([]float64, len(l.Lines))
	mid := float64(len(l.Lines)-1) / 2
	for i := range l.Lines {
		out[i] = (float64(i) - mid) * LineHeightEm
	}
	return out
}

// LineHeightEm is the spacing between wrapped label lines.
const LineHeightEm = 1.2

// LabelConfig tunes label wrapping.
type LabelConfig struct {
	FontSize        float64 `mapstructure:"font_size" yaml:"font_size"`
	WrappedFontSize float64 `mapstructure:"wrapped_font_size" yaml:"wrapped_font_size"`
	WrappedRadius   float64 `mapstructure:"wrapped_radius" yaml:"wrapped_radius"`
	// WidthRatio is the share of the enlarged diameter wrapped lines may use.
	WidthRatio float64 `mapstructure:"width_ratio" yaml:"width_ratio"`
	MaxLines   int     `mapstructure:"max_lines" yaml:"max_lines"`
}

// DefaultLabelConfig matches the portfolio's typography.
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{
		FontSize:        14,
		WrappedFontSize: 12,
		WrappedRadius:   55,
		WidthRatio:      0.8,
		MaxLines:        3,
	}
}

const ellipsis = "…"

// Labeler decides how a title is drawn and how large its node must be.
type Labeler struct {
	m   Measurer
	cfg LabelConfig
}

// NewLabeler returns a labeler using m for measurement.
func NewLabeler(m Measurer, cfg LabelConfig) *Labeler {
	if cfg.MaxLines < 1 {
		cfg.MaxLines = 1
	}
	return &Labeler{m: m, cfg: cfg}
}

// Layout fits title into a node of baseRadius. Titles that fit the diameter
// stay on one line at the default size. Longer titles are word-wrapped at
// the smaller size and the node grows to the wrapped radius. A single word
// is never broken; if wrapping cannot produce more than one line the title
// is drawn as-is.
func (l *Labeler) Layout(title string, baseRadius float64) (Label, float64) {
	single := Label{Lines: []string{title}, FontSize: l.cfg.FontSize}
	if l.m.Width(title, l.cfg.FontSize) <= 2*baseRadius {
		return single, baseRadius
	}

	maxWidth := 2 * l.cfg.WrappedRadius * l.cfg.WidthRatio
	lines := l.wrap(strings.Fields(title), maxWidth)
	if len(lines) <= 1 {
		return single, baseRadius
	}

	if len(lines) > l.cfg.MaxLines {
		tail := strings.Join(lines[l.cfg.MaxLines-1:], " ")
		lines = append(lines[:l.cfg.MaxLines-1], l.ellipsize(tail, maxWidth))
	}

	return Label{Lines: lines, FontSize: l.cfg.WrappedFontSize}, max(baseRadius, l.cfg.WrappedRadius)
}

// wrap greedily packs words into lines no wider than maxWidth.
func (l *Labeler) wrap(words []string, maxWidth float64) []string {
	var lines []string
	cur := ""
	for _, w := range words {
		if cur == "" {
			cur = w
			continue
		}
		candidate := cur + " " + w
		if l.m.Width(candidate, l.cfg.WrappedFontSize) <= maxWidth {
			cur = candidate
			continue
		}
		lines = append(lines, cur)
		cur = w
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// ellipsize drops trailing words until text plus an ellipsis fits. The first
// word is always kept.
func (l *Labeler) ellipsize(text string, maxWidth float64) string {
	words := strings.Fields(text)
	for n := len(words); n > 1; n-- {
		candidate := strings.Join(words[:n], " ") + ellipsis
		if l.m.Width(candidate, l.cfg.WrappedFontSize) <= maxWidth {
			return candidate
		}
	}
	return words[0] + ellipsis
}
