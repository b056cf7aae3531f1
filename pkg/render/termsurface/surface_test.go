package termsurface

import (
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(cols, rows)
	t.Cleanup(screen.Fini)
	return screen
}

func TestSurface_SizeInPixels(t *testing.T) {
	s := New(newSimScreen(t, 80, 24))
	w, h := s.Size()
	assert.Equal(t, 80*CellWidth, w)
	assert.Equal(t, 24*CellHeight, h)
}

func TestCanvas_DrawsIntoCells(t *testing.T) {
	s := New(newSimScreen(t, 20, 10))
	c, err := s.Context2D()
	require.NoError(t, err)

	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	c.Clear(color.NRGBA{A: 255})
	c.StrokeLine(4, 8, 76, 8, 1, white) // 第 0 行，第 0-9 列
	c.FillCircle(44, 72, 5, white)      // 第 5 列，第 4 行
	c.FillCircle(12, 40, 2, white)      // 第 1 列，第 2 行

	tests := []struct {
		name     string
		col, row int
		want     rune
	}{
		{"线段起点", 0, 0, '-'},
		{"线段终点", 9, 0, '-'},
		{"线段之外", 10, 0, 0},
		{"大圆点", 5, 4, '●'},
		{"小圆点", 1, 2, '•'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.cellAt(tt.col, tt.row).r)
		})
	}

	c.Clear(color.NRGBA{A: 255})
	assert.Equal(t, rune(0), s.cellAt(0, 0).r, "Clear must reset cells")
}

func TestCanvas_DiagonalReachesEnd(t *testing.T) {
	s := New(newSimScreen(t, 20, 20))
	c, err := s.Context2D()
	require.NoError(t, err)

	c.StrokeLine(4, 8, 4+8*7, 8+16*7, 1, color.NRGBA{R: 255, A: 255})
	for i := 0; i <= 7; i++ {
		assert.Equal(t, '\\', s.cellAt(i, i).r, "cell %d", i)
	}
}

func TestLineRune(t *testing.T) {
	tests := []struct {
		dx, dy float64
		want   rune
	}{
		{1, 0, '-'},
		{-1, 0, '-'},
		{0, 1, '|'},
		{0, -1, '|'},
		{1, 1, '\\'},
		{-1, -1, '\\'},
		{1, -1, '/'},
		{-1, 1, '/'},
	}
	for _, tt := range tests {
		if got := lineRune(tt.dx, tt.dy); got != tt.want {
			t.Errorf("lineRune(%v, %v) = %q, want %q", tt.dx, tt.dy, got, tt.want)
		}
	}
}

func TestBlend(t *testing.T) {
	black := color.NRGBA{A: 255}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	assert.Equal(t, white, blend(white, black), "opaque keeps colour")
	assert.Equal(t, black, blend(color.NRGBA{R: 255, G: 255, B: 255, A: 0}, black), "transparent is background")

	half := blend(color.NRGBA{R: 255, G: 255, B: 255, A: 128}, black)
	assert.Equal(t, uint8(255), half.A)
	assert.Greater(t, half.R, uint8(0))
	assert.Less(t, half.R, uint8(255))
}

func TestSurface_HandleEvent(t *testing.T) {
	screen := newSimScreen(t, 10, 5)
	s := New(screen)

	var resized [2]int
	var moved [2]float64
	left := 0
	s.OnResize(func(w, h int) { resized = [2]int{w, h} })
	s.OnPointerMove(func(x, y float64) { moved = [2]float64{x, y} })
	s.OnPointerLeave(func() { left++ })

	assert.True(t, s.HandleEvent(tcell.NewEventResize(30, 12)))
	assert.Equal(t, [2]int{30 * CellWidth, 12 * CellHeight}, resized)
	w, h := s.Size()
	assert.Equal(t, 30*CellWidth, w)
	assert.Equal(t, 12*CellHeight, h)

	assert.True(t, s.HandleEvent(tcell.NewEventMouse(2, 3, tcell.ButtonNone, tcell.ModNone)))
	assert.Equal(t, [2]float64{2.5 * CellWidth, 3.5 * CellHeight}, moved)

	assert.True(t, s.HandleEvent(tcell.NewEventFocus(false)))
	assert.False(t, s.HandleEvent(tcell.NewEventFocus(true)))
	assert.Equal(t, 1, left)

	assert.False(t, s.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
}

func TestCanvas_FlushShowsScreen(t *testing.T) {
	screen := newSimScreen(t, 4, 2)
	s := New(screen)
	c, err := s.Context2D()
	require.NoError(t, err)

	c.Clear(color.NRGBA{A: 255})
	c.FillCircle(4, 8, 1, color.NRGBA{R: 255, A: 255})
	c.(interface{ Flush() }).Flush()

	mainc, _, _, _ := screen.GetContent(0, 0)
	assert.Equal(t, '•', mainc)
	mainc, _, _, _ = screen.GetContent(3, 1)
	assert.Equal(t, ' ', mainc)
}
