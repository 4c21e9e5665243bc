package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/pink10000/rintty/internal/vt"
)

// plainProfile strips styling so frame content can be compared literally.
func plainProfile(t *testing.T) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

func TestRenderFramePlainText(t *testing.T) {
	plainProfile(t)

	frame := vt.NewBuffer(3, 2)
	drawText(frame, 0, 0, 3, "abc", vt.DefaultStyle())
	drawText(frame, 0, 1, 3, "de", vt.DefaultStyle())

	require.Equal(t, "abc\nde ", renderFrame(frame))
}

func TestRenderFrameHiddenCellsBecomeSpaces(t *testing.T) {
	plainProfile(t)

	hidden := vt.DefaultStyle()
	hidden.Attrs |= vt.AttrHidden

	frame := vt.NewBuffer(3, 1)
	drawText(frame, 0, 0, 3, "xyz", hidden)

	require.Equal(t, "   ", renderFrame(frame))
}

func TestRenderFrameGroupsStyleRuns(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })

	red := vt.Style{Fg: vt.ColorRed, Bg: vt.ColorDefault}
	frame := vt.NewBuffer(4, 1)
	drawText(frame, 0, 0, 2, "ab", red)
	drawText(frame, 2, 0, 2, "cd", vt.DefaultStyle())

	out := renderFrame(frame)
	// One escape sequence for the whole red run, not one per cell.
	require.Equal(t, 1, strings.Count(out, "[31m"))
	require.Contains(t, out, "ab")
	require.Contains(t, out, "cd")
}

func TestDrawBoxOccludesInterior(t *testing.T) {
	frame := vt.NewBuffer(6, 4)
	frame.Fill(vt.Cell{Rune: '#', Style: vt.DefaultStyle()})

	drawBox(frame, 0, 0, 6, 4, vt.DefaultStyle())

	require.Equal(t, borderTL, frame.Cell(0, 0).Rune)
	require.Equal(t, borderTR, frame.Cell(5, 0).Rune)
	require.Equal(t, borderBL, frame.Cell(0, 3).Rune)
	require.Equal(t, borderBR, frame.Cell(5, 3).Rune)
	require.Equal(t, borderH, frame.Cell(2, 0).Rune)
	require.Equal(t, borderV, frame.Cell(0, 1).Rune)
	require.Equal(t, ' ', frame.Cell(2, 1).Rune, "interior is blanked")
}

func TestDrawBoxTooSmallIsNoOp(t *testing.T) {
	frame := vt.NewBuffer(4, 4)
	frame.Fill(vt.Cell{Rune: '#', Style: vt.DefaultStyle()})

	drawBox(frame, 0, 0, 1, 4, vt.DefaultStyle())
	drawBox(frame, 0, 0, 4, 1, vt.DefaultStyle())

	require.Equal(t, '#', frame.Cell(0, 0).Rune)
}

func TestDrawTextTruncates(t *testing.T) {
	frame := vt.NewBuffer(10, 1)
	drawText(frame, 0, 0, 3, "overflow", vt.DefaultStyle())

	require.Equal(t, 'o', frame.Cell(0, 0).Rune)
	require.Equal(t, 'e', frame.Cell(2, 0).Rune)
	require.Equal(t, ' ', frame.Cell(3, 0).Rune)
}

func TestLastN(t *testing.T) {
	require.Equal(t, "cde", lastN("abcde", 3))
	require.Equal(t, "abc", lastN("abc", 5))
	require.Equal(t, "", lastN("abc", 0))
	require.Equal(t, "héllo", lastN("héllo", 5))
}
