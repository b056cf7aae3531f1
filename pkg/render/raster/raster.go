// Package raster 提供基于 image.RGBA 的软件绘制表面
//
// 使用 golang.org/x/image/vector 光栅化线段与圆点，
// 用于 snapshot 子命令导出 PNG，以及不依赖图形环境的测试。
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sync"

	"golang.org/x/image/vector"

	"github.com/decker502/netfield/pkg/field"
)

// Surface 软件绘制表面，实现 field.Surface 与 field.PointerSource
type Surface struct {
	mu  sync.Mutex
	img *image.RGBA
	z   *vector.Rasterizer

	resize field.Listeners[func(w, h int)]
	move   field.Listeners[func(x, y float64)]
	leave  field.Listeners[func()]
}

// New 创建 width x height 的表面
func New(width, height int) *Surface {
	s := &Surface{}
	s.alloc(width, height)
	return s
}

func (s *Surface) alloc(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	s.z = vector.NewRasterizer(width, height)
}

// Size 返回像素尺寸
func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Context2D 返回绘制上下文；空表面没有可用的上下文
func (s *Surface) Context2D() (field.Canvas, error) {
	w, h := s.Size()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("raster surface is empty (%dx%d)", w, h)
	}
	return &canvas{s: s}, nil
}

// OnResize 注册尺寸变化回调
func (s *Surface) OnResize(fn func(w, h int)) func() { return s.resize.Add(fn) }

// OnPointerMove 注册指针移动回调
func (s *Surface) OnPointerMove(fn func(x, y float64)) func() { return s.move.Add(fn) }

// OnPointerLeave 注册指针离开回调
func (s *Surface) OnPointerLeave(fn func()) func() { return s.leave.Add(fn) }

// Resize 重新分配图像（内容清空）并通知监听者
func (s *Surface) Resize(width, height int) {
	s.mu.Lock()
	s.alloc(width, height)
	s.mu.Unlock()
	for _, fn := range s.resize.Snapshot() {
		fn(width, height)
	}
}

// MovePointer 模拟指针移动
func (s *Surface) MovePointer(x, y float64) {
	for _, fn := range s.move.Snapshot() {
		fn(x, y)
	}
}

// LeavePointer 模拟指针离开表面
func (s *Surface) LeavePointer() {
	for _, fn := range s.leave.Snapshot() {
		fn()
	}
}

// Image 返回当前画面的拷贝
func (s *Surface) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// WritePNG 将当前画面编码为 PNG
func (s *Surface) WritePNG(w io.Writer) error {
	if err := png.Encode(w, s.Image()); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// canvas 在 Surface 的图像上绘制
type canvas struct {
	s *Surface
}

func (c *canvas) Clear(bg color.NRGBA) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	draw.Draw(c.s.img, c.s.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

// StrokeLine 以四边形近似宽度为 width 的线段
func (c *canvas) StrokeLine(x1, y1, x2, y2, width float64, col color.NRGBA) {
	if width <= 0 || col.A == 0 {
		return
	}
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	// 法线方向偏移半个线宽
	nx, ny := -dy/length*width/2, dx/length*width/2

	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	z := c.s.z
	b := c.s.img.Bounds()
	z.Reset(b.Dx(), b.Dy())
	z.MoveTo(float32(x1+nx), float32(y1+ny))
	z.LineTo(float32(x2+nx), float32(y2+ny))
	z.LineTo(float32(x2-nx), float32(y2-ny))
	z.LineTo(float32(x1-nx), float32(y1-ny))
	z.ClosePath()
	z.Draw(c.s.img, b, image.NewUniform(col), image.Point{})
}

// FillCircle 以多边形近似圆
func (c *canvas) FillCircle(x, y, r float64, col color.NRGBA) {
	if r <= 0 || col.A == 0 {
		return
	}
	segments := int(math.Max(16, math.Ceil(r*4)))

	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	z := c.s.z
	b := c.s.img.Bounds()
	z.Reset(b.Dx(), b.Dy())
	z.MoveTo(float32(x+r), float32(y))
	for i := 1; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		z.LineTo(float32(x+r*math.Cos(a)), float32(y+r*math.Sin(a)))
	}
	z.ClosePath()
	z.Draw(c.s.img, b, image.NewUniform(col), image.Point{})
}
