package engine

import (
	"fmt"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ZapfDingbats glyphs: "4" is a check mark, "l" a filled circle
const (
	checkGlyph = "4"
	radioGlyph = "l"
)

// buttonAppearance builds the /AP dictionary of a checkbox or radio widget with an
// on state drawing glyph and an empty off state
func (f *Form) buttonAppearance(onState, glyph string, width, height float64) (types.Dict, error) {
	w := math.Abs(width)
	h := math.Abs(height)

	size := math.Min(w, h) * 0.8
	tx := (w - size*0.75) / 2
	ty := (h - size*0.7) / 2

	on, err := f.formXObject(w, h, fmt.Sprintf("q 0 g BT /%s %.2f Tf %.2f %.2f Td (%s) Tj ET Q",
		symbolFontName, size, tx, ty, glyph))
	if err != nil {
		return nil, fmt.Errorf("on appearance: %w", err)
	}

	off, err := f.formXObject(w, h, "q Q")
	if err != nil {
		return nil, fmt.Errorf("off appearance: %w", err)
	}

	return types.Dict{
		"N": types.Dict{
			onState:  on,
			offState: off,
		},
	}, nil
}

// formXObject stores a Form XObject with the given content and returns its reference
func (f *Form) formXObject(width, height float64, content string) (types.IndirectRef, error) {
	sd, err := f.ctx.NewStreamDictForBuf([]byte(content))
	if err != nil {
		return types.IndirectRef{}, err
	}

	sd.Dict["Type"] = types.Name("XObject")
	sd.Dict["Subtype"] = types.Name("Form")
	sd.Dict["BBox"] = types.Array{
		types.Float(0),
		types.Float(0),
		types.Float(width),
		types.Float(height),
	}
	sd.Dict["Resources"] = types.Dict{
		"Font": types.Dict{symbolFontName: f.symbolFont},
	}

	if err := sd.Encode(); err != nil {
		return types.IndirectRef{}, err
	}

	ref, err := f.ctx.IndRefForNewObject(*sd)
	if err != nil {
		return types.IndirectRef{}, err
	}
	return *ref, nil
}
