package fillable

import "fmt"

// Rect is a rectangle in PDF user space: (LLX, LLY) is the lower-left corner and
// (URX, URY) the upper-right one.
type Rect struct {
	LLX float64 `json:"llx"`
	LLY float64 `json:"lly"`
	URX float64 `json:"urx"`
	URY float64 `json:"ury"`
}

// Width returns URX - LLX
func (r Rect) Width() float64 { return r.URX - r.LLX }

// Height returns URY - LLY
func (r Rect) Height() float64 { return r.URY - r.LLY }

// Translate shifts the rectangle by (dx, dy)
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{LLX: r.LLX + dx, LLY: r.LLY + dy, URX: r.URX + dx, URY: r.URY + dy}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", r.LLX, r.LLY, r.URX, r.URY)
}

// Transform converts a normalized top-left-origin area into a bottom-left-origin
// rectangle on a page of the given size. The page height scales both the vertical
// offset and the area height. Out-of-range fractions are not clamped.
func Transform(area Area, pageWidth, pageHeight float64) Rect {
	x0 := area.X * pageWidth
	topY := area.Y * pageHeight
	yAbs := pageHeight - topY
	width := area.W * pageWidth
	height := area.H * pageHeight

	return Rect{
		LLX: x0,
		LLY: yAbs - height,
		URX: x0 + width,
		URY: yAbs,
	}
}
