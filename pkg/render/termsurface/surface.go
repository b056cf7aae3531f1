// Package termsurface 在终端（tcell.Screen）上绘制粒子网络
//
// 每个字符单元对应 CellWidth x CellHeight 像素，表面尺寸以像素计，
// 因此动画参数与窗口版本保持一致。终端不支持半透明，
// 颜色在 Lab 空间中向背景色混合来模拟透明度。
package termsurface

import (
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/netfield/pkg/field"
)

// 单元格对应的像素尺寸
const (
	CellWidth  = 8
	CellHeight = 16
)

// 终端默认背景按黑色混合
var defaultBackground = color.NRGBA{A: 255}

type cell struct {
	r  rune
	fg color.NRGBA
}

// Surface 实现 field.Surface 与 field.PointerSource
type Surface struct {
	screen tcell.Screen

	mu         sync.Mutex
	cols, rows int
	bg         color.NRGBA
	cells      []cell

	resize field.Listeners[func(w, h int)]
	move   field.Listeners[func(x, y float64)]
	leave  field.Listeners[func()]
}

// New 以已初始化的 screen 创建表面
func New(screen tcell.Screen) *Surface {
	s := &Surface{screen: screen}
	cols, rows := screen.Size()
	s.setGrid(cols, rows)
	return s
}

func (s *Surface) setGrid(cols, rows int) {
	s.cols, s.rows = max(cols, 0), max(rows, 0)
	s.cells = make([]cell, s.cols*s.rows)
}

// Size 返回像素尺寸
func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols * CellWidth, s.rows * CellHeight
}

// Context2D 返回绘制上下文
func (s *Surface) Context2D() (field.Canvas, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cols == 0 || s.rows == 0 {
		return nil, fmt.Errorf("terminal has no cells (%dx%d)", s.cols, s.rows)
	}
	return &canvas{s: s}, nil
}

// OnResize 注册尺寸变化回调（像素）
func (s *Surface) OnResize(fn func(w, h int)) func() { return s.resize.Add(fn) }

// OnPointerMove 注册鼠标移动回调（像素，取单元格中心）
func (s *Surface) OnPointerMove(fn func(x, y float64)) func() { return s.move.Add(fn) }

// OnPointerLeave 注册失去焦点回调
func (s *Surface) OnPointerLeave(fn func()) func() { return s.leave.Add(fn) }

// HandleEvent 处理与表面相关的终端事件，返回是否已处理
func (s *Surface) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		s.mu.Lock()
		s.setGrid(cols, rows)
		s.mu.Unlock()
		s.screen.Sync()
		for _, fn := range s.resize.Snapshot() {
			fn(cols*CellWidth, rows*CellHeight)
		}
		return true

	case *tcell.EventMouse:
		col, row := ev.Position()
		x := (float64(col) + 0.5) * CellWidth
		y := (float64(row) + 0.5) * CellHeight
		for _, fn := range s.move.Snapshot() {
			fn(x, y)
		}
		return true

	case *tcell.EventFocus:
		if ev.Focused {
			return false
		}
		for _, fn := range s.leave.Snapshot() {
			fn()
		}
		return true
	}
	return false
}

// cellAt 返回单元格内容，供测试检查
func (s *Surface) cellAt(col, row int) cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return cell{}
	}
	return s.cells[row*s.cols+col]
}

type canvas struct {
	s *Surface
}

func (c *canvas) Clear(bg color.NRGBA) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.bg = bg
	clear(c.s.cells)
}

// StrokeLine 用 Bresenham 算法在单元格坐标系中画线
func (c *canvas) StrokeLine(x1, y1, x2, y2, width float64, col color.NRGBA) {
	if width <= 0 || col.A == 0 {
		return
	}
	r := lineRune(x2-x1, y2-y1)

	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	fg := blend(col, c.s.background())
	cx0, cy0 := toCell(x1, y1)
	cx1, cy1 := toCell(x2, y2)

	dx, dy := abs(cx1-cx0), -abs(cy1-cy0)
	sx, sy := sign(cx1-cx0), sign(cy1-cy0)
	e := dx + dy
	for {
		c.s.set(cx0, cy0, cell{r: r, fg: fg})
		if cx0 == cx1 && cy0 == cy1 {
			break
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			cx0 += sx
		}
		if e2 <= dx {
			e += dx
			cy0 += sy
		}
	}
}

func (c *canvas) FillCircle(x, y, r float64, col color.NRGBA) {
	if r <= 0 || col.A == 0 {
		return
	}
	glyph := '•'
	if r >= 4 {
		glyph = '●'
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cx, cy := toCell(x, y)
	c.s.set(cx, cy, cell{r: glyph, fg: blend(col, c.s.background())})
}

// Flush 把单元格缓冲写入终端并显示
func (c *canvas) Flush() {
	c.s.mu.Lock()
	bg := c.s.background()
	base := tcell.StyleDefault
	if c.s.bg.A != 0 {
		base = base.Background(tcell.NewRGBColor(int32(bg.R), int32(bg.G), int32(bg.B)))
	}
	for row := 0; row < c.s.rows; row++ {
		for col := 0; col < c.s.cols; col++ {
			cl := c.s.cells[row*c.s.cols+col]
			if cl.r == 0 {
				c.s.screen.SetContent(col, row, ' ', nil, base)
				continue
			}
			style := base.Foreground(tcell.NewRGBColor(int32(cl.fg.R), int32(cl.fg.G), int32(cl.fg.B)))
			c.s.screen.SetContent(col, row, cl.r, nil, style)
		}
	}
	c.s.mu.Unlock()
	c.s.screen.Show()
}

// 调用方持有锁
func (s *Surface) set(col, row int, cl cell) {
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return
	}
	s.cells[row*s.cols+col] = cl
}

// 调用方持有锁
func (s *Surface) background() color.NRGBA {
	if s.bg.A == 0 {
		return defaultBackground
	}
	return s.bg
}

// blend 按 alpha 在 Lab 空间中把 fg 混向 bg，返回不透明颜色
func blend(fg, bg color.NRGBA) color.NRGBA {
	a := float64(fg.A) / 255
	f := colorful.Color{R: float64(fg.R) / 255, G: float64(fg.G) / 255, B: float64(fg.B) / 255}
	b := colorful.Color{R: float64(bg.R) / 255, G: float64(bg.G) / 255, B: float64(bg.B) / 255}
	r, g, bl := b.BlendLab(f, a).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: 255}
}

// lineRune 按像素空间中的方向选择字符（y 轴向下）
func lineRune(dx, dy float64) rune {
	deg := math.Atan2(dy, dx) * 180 / math.Pi
	if deg < 0 {
		deg += 180
	}
	switch {
	case deg < 22.5 || deg >= 157.5:
		return '-'
	case deg < 67.5:
		return '\\'
	case deg < 112.5:
		return '|'
	default:
		return '/'
	}
}

func toCell(x, y float64) (int, int) {
	return int(math.Floor(x / CellWidth)), int(math.Floor(y / CellHeight))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
