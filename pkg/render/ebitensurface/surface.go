// Package ebitensurface 提供基于 Ebitengine 离屏图像的绘制表面
//
// 动画帧在 Game.Update 中绘制到离屏 *ebiten.Image，
// Game.Draw 再把离屏图像合成到屏幕上。图像在首次获取
// 绘制上下文时分配，尺寸变化时重新分配。
package ebitensurface

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/netfield/pkg/field"
)

// Surface 实现 field.Surface 与 field.PointerSource
type Surface struct {
	mu            sync.Mutex
	width, height int
	img           *ebiten.Image

	resize field.Listeners[func(w, h int)]
	move   field.Listeners[func(x, y float64)]
	leave  field.Listeners[func()]
}

// New 创建逻辑尺寸为 width x height 的表面
func New(width, height int) *Surface {
	return &Surface{width: width, height: height}
}

// Size 返回逻辑像素尺寸
func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Context2D 返回绘制上下文，必要时分配离屏图像
func (s *Surface) Context2D() (field.Canvas, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width <= 0 || s.height <= 0 {
		return nil, fmt.Errorf("ebiten surface has no area (%dx%d)", s.width, s.height)
	}
	if s.img == nil {
		s.img = ebiten.NewImage(s.width, s.height)
	}
	return &canvas{s: s}, nil
}

// OnResize 注册尺寸变化回调
func (s *Surface) OnResize(fn func(w, h int)) func() { return s.resize.Add(fn) }

// OnPointerMove 注册指针移动回调
func (s *Surface) OnPointerMove(fn func(x, y float64)) func() { return s.move.Add(fn) }

// OnPointerLeave 注册指针离开回调
func (s *Surface) OnPointerLeave(fn func()) func() { return s.leave.Add(fn) }

// Resize 更新尺寸；尺寸未变化时不做任何事
//
// 已分配的离屏图像会被释放，下一次绘制时按新尺寸重新分配。
// 由 Game.Layout 在窗口尺寸变化时调用（最小化时可能为 0x0）。
func (s *Surface) Resize(width, height int) {
	s.mu.Lock()
	if width == s.width && height == s.height {
		s.mu.Unlock()
		return
	}
	s.width, s.height = width, height
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
	s.mu.Unlock()

	for _, fn := range s.resize.Snapshot() {
		fn(width, height)
	}
}

// MovePointer 分发指针移动（表面局部坐标）
func (s *Surface) MovePointer(x, y float64) {
	for _, fn := range s.move.Snapshot() {
		fn(x, y)
	}
}

// LeavePointer 分发指针离开
func (s *Surface) LeavePointer() {
	for _, fn := range s.leave.Snapshot() {
		fn()
	}
}

// DrawTo 将离屏图像合成到 dst
// alpha 用于淡入效果，1 表示不透明
func (s *Surface) DrawTo(dst *ebiten.Image, alpha float32) {
	s.mu.Lock()
	img := s.img
	s.mu.Unlock()
	if img == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.ColorScale.ScaleAlpha(alpha)
	dst.DrawImage(img, op)
}

// canvas 在离屏图像上绘制
type canvas struct {
	s *Surface
}

// target 返回离屏图像，尺寸变化后按当前尺寸重新分配
// 面积为 0 时返回 nil，本帧的绘制被丢弃
func (c *canvas) target() *ebiten.Image {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.img == nil && c.s.width > 0 && c.s.height > 0 {
		c.s.img = ebiten.NewImage(c.s.width, c.s.height)
	}
	return c.s.img
}

func (c *canvas) Clear(bg color.NRGBA) {
	img := c.target()
	if img == nil {
		return
	}
	if bg.A == 0 {
		img.Clear()
		return
	}
	img.Fill(bg)
}

func (c *canvas) StrokeLine(x1, y1, x2, y2, width float64, col color.NRGBA) {
	img := c.target()
	if img == nil || width <= 0 || col.A == 0 {
		return
	}
	vector.StrokeLine(img, float32(x1), float32(y1), float32(x2), float32(y2), float32(width), col, true)
}

func (c *canvas) FillCircle(x, y, r float64, col color.NRGBA) {
	img := c.target()
	if img == nil || r <= 0 || col.A == 0 {
		return
	}
	vector.FillCircle(img, float32(x), float32(y), float32(r), col, true)
}

// Release 释放离屏图像
func (c *canvas) Release() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.img != nil {
		c.s.img.Deallocate()
		c.s.img = nil
	}
}
