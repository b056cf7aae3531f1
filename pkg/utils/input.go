// Package utils 提供宿主使用的输入与数值工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Pointer 当前帧的指针状态（窗口逻辑坐标）
type Pointer struct {
	X, Y float64
	// Touch 是否来自触摸输入
	Touch bool
	// Active 指针是否存在：鼠标总是存在，触摸只在按下期间存在
	Active bool
}

// GetPointer 获取当前指针，优先返回第一个活动触摸
func GetPointer() Pointer {
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		x, y := ebiten.TouchPosition(ids[0])
		return Pointer{X: float64(x), Y: float64(y), Touch: true, Active: true}
	}
	if IsMobile() {
		return Pointer{}
	}
	x, y := ebiten.CursorPosition()
	return Pointer{X: float64(x), Y: float64(y), Active: true}
}

// PointerTracker 把逐帧采样的指针位置转换为移动/离开事件
//
// 指针位于 [0,w)x[0,h) 之外或不活动时视为离开；
// 仅在位置变化或重新进入时报告移动。
type PointerTracker struct {
	inside  bool
	lastX   float64
	lastY   float64
	OnMove  func(x, y float64)
	OnLeave func()
}

// Update 处理一次采样
func (pt *PointerTracker) Update(p Pointer, width, height int) {
	inside := p.Active && p.X >= 0 && p.Y >= 0 && p.X < float64(width) && p.Y < float64(height)
	switch {
	case inside && (!pt.inside || p.X != pt.lastX || p.Y != pt.lastY):
		pt.lastX, pt.lastY = p.X, p.Y
		if pt.OnMove != nil {
			pt.OnMove(p.X, p.Y)
		}
	case !inside && pt.inside:
		if pt.OnLeave != nil {
			pt.OnLeave()
		}
	}
	pt.inside = inside
}

// Inside 返回上一次采样时指针是否在表面内
func (pt *PointerTracker) Inside() bool {
	return pt.inside
}
