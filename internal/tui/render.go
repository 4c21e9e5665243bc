package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pink10000/rintty/internal/vt"
)

// Box-drawing pieces for form borders.
const (
	borderH  = '─'
	borderV  = '│'
	borderTL = '┌'
	borderTR = '┐'
	borderBL = '└'
	borderBR = '┘'
)

// drawBox outlines a w×h rectangle at (x, y) and blanks its interior, so a
// form panel fully occludes the animation behind it.
func drawBox(frame *vt.Buffer, x, y, w, h int, style vt.Style) {
	if w < 2 || h < 2 {
		return
	}
	interior := vt.BlankCell(style)
	for yy := y + 1; yy < y+h-1; yy++ {
		for xx := x + 1; xx < x+w-1; xx++ {
			frame.SetCell(xx, yy, interior)
		}
	}
	for xx := x + 1; xx < x+w-1; xx++ {
		frame.SetCell(xx, y, vt.Cell{Rune: borderH, Style: style})
		frame.SetCell(xx, y+h-1, vt.Cell{Rune: borderH, Style: style})
	}
	for yy := y + 1; yy < y+h-1; yy++ {
		frame.SetCell(x, yy, vt.Cell{Rune: borderV, Style: style})
		frame.SetCell(x+w-1, yy, vt.Cell{Rune: borderV, Style: style})
	}
	frame.SetCell(x, y, vt.Cell{Rune: borderTL, Style: style})
	frame.SetCell(x+w-1, y, vt.Cell{Rune: borderTR, Style: style})
	frame.SetCell(x, y+h-1, vt.Cell{Rune: borderBL, Style: style})
	frame.SetCell(x+w-1, y+h-1, vt.Cell{Rune: borderBR, Style: style})
}

// drawText writes s starting at (x, y), truncated to maxW cells.
func drawText(frame *vt.Buffer, x, y, maxW int, s string, style vt.Style) {
	i := 0
	for _, r := range s {
		if i >= maxW {
			break
		}
		frame.SetCell(x+i, y, vt.Cell{Rune: r, Style: style})
		i++
	}
}

// renderFrame serializes the composed cell buffer into one styled string
// for the program's view. Consecutive cells sharing a style render as a
// single run to keep the output compact.
func renderFrame(frame *vt.Buffer) string {
	var out strings.Builder
	var run strings.Builder
	for y := 0; y < frame.Height(); y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		runStyle := vt.DefaultStyle()
		run.Reset()
		for x := 0; x < frame.Width(); x++ {
			cell := frame.Cell(x, y)
			if cell.Style != runStyle {
				flushRun(&out, &run, runStyle)
				runStyle = cell.Style
			}
			if cell.Style.Has(vt.AttrHidden) {
				run.WriteByte(' ')
			} else {
				run.WriteRune(cell.Rune)
			}
		}
		flushRun(&out, &run, runStyle)
	}
	return out.String()
}

func flushRun(out *strings.Builder, run *strings.Builder, style vt.Style) {
	if run.Len() == 0 {
		return
	}
	out.WriteString(lipglossFor(style).Render(run.String()))
	run.Reset()
}

// lipglossFor maps a cell style onto the host styling layer. Only the eight
// indexed colors exist on this path; everything richer was filtered out by
// the screen model already.
func lipglossFor(style vt.Style) lipgloss.Style {
	ls := lipgloss.NewStyle()
	if style.Fg.Valid() {
		ls = ls.Foreground(lipgloss.Color(strconv.Itoa(int(style.Fg))))
	}
	if style.Bg.Valid() {
		ls = ls.Background(lipgloss.Color(strconv.Itoa(int(style.Bg))))
	}
	if style.Has(vt.AttrBold) {
		ls = ls.Bold(true)
	}
	if style.Has(vt.AttrDim) {
		ls = ls.Faint(true)
	}
	if style.Has(vt.AttrItalic) {
		ls = ls.Italic(true)
	}
	if style.Has(vt.AttrUnderline) {
		ls = ls.Underline(true)
	}
	if style.Has(vt.AttrSlowBlink) || style.Has(vt.AttrRapidBlink) {
		ls = ls.Blink(true)
	}
	if style.Has(vt.AttrReverse) {
		ls = ls.Reverse(true)
	}
	if style.Has(vt.AttrCrossedOut) {
		ls = ls.Strikethrough(true)
	}
	return ls
}

// lastN returns the trailing n characters of s, so long input scrolls
// horizontally inside a fixed-width field.
func lastN(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
