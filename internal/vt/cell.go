package vt

// Color is an indexed terminal color. Only the eight base colors are
// representable; everything richer coming off the wire is ignored upstream.
type Color int8

// ColorDefault means "no explicit color": the renderer decides.
const ColorDefault Color = -1

const (
	ColorBlack Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

// Valid reports whether c is one of the eight indexed colors.
func (c Color) Valid() bool { return c >= ColorBlack && c <= ColorWhite }

// Attr is a bitmask of text attributes.
type Attr uint16

const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrSlowBlink
	AttrRapidBlink
	AttrReverse
	AttrHidden
	AttrCrossedOut
)

// Style is the rendition applied to a printed cell. The zero value is not
// the default style; use DefaultStyle.
type Style struct {
	Fg    Color
	Bg    Color
	Attrs Attr
}

// DefaultStyle is the style of a fresh screen: no colors, no attributes.
func DefaultStyle() Style {
	return Style{Fg: ColorDefault, Bg: ColorDefault}
}

// Has reports whether all attributes in a are set.
func (s Style) Has(a Attr) bool { return s.Attrs&a == a }

func (s *Style) set(a Attr)   { s.Attrs |= a }
func (s *Style) clear(a Attr) { s.Attrs &^= a }

// Cell is a single display cell: one rune plus its style.
type Cell struct {
	Rune  rune
	Style Style
}

// BlankCell returns a space cell carrying the given style. Erase and scroll
// operations blank with the screen's current style, not the default one.
func BlankCell(style Style) Cell {
	return Cell{Rune: ' ', Style: style}
}
