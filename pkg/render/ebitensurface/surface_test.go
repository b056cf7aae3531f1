package ebitensurface

import (
	"image/color"
	"testing"
)

// 以下测试不分配离屏图像，不需要图形环境

func TestSurface_ZeroSizeHasNoContext(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"宽度为 0", 0, 100},
		{"高度为 0", 100, 0},
		{"负尺寸", -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.w, tt.h)
			if _, err := s.Context2D(); err == nil {
				t.Errorf("Context2D() on %dx%d surface: expected error", tt.w, tt.h)
			}
		})
	}
}

func TestSurface_ResizeNotifiesOnlyOnChange(t *testing.T) {
	s := New(800, 600)

	calls := 0
	var lastW, lastH int
	remove := s.OnResize(func(w, h int) {
		calls++
		lastW, lastH = w, h
	})

	s.Resize(800, 600)
	if calls != 0 {
		t.Errorf("same size must not notify, got %d calls", calls)
	}

	s.Resize(1024, 768)
	if calls != 1 || lastW != 1024 || lastH != 768 {
		t.Errorf("expected one call with 1024x768, got %d calls with %dx%d", calls, lastW, lastH)
	}
	if w, h := s.Size(); w != 1024 || h != 768 {
		t.Errorf("Size() = %dx%d, want 1024x768", w, h)
	}

	remove()
	s.Resize(640, 480)
	if calls != 1 {
		t.Errorf("removed listener still called, %d calls", calls)
	}
}

func TestSurface_PointerDispatch(t *testing.T) {
	s := New(100, 100)

	var moved [][2]float64
	left := 0
	removeMove := s.OnPointerMove(func(x, y float64) { moved = append(moved, [2]float64{x, y}) })
	removeLeave := s.OnPointerLeave(func() { left++ })

	s.MovePointer(10, 20)
	s.LeavePointer()
	removeMove()
	removeLeave()
	s.MovePointer(30, 40)
	s.LeavePointer()

	if len(moved) != 1 || moved[0] != [2]float64{10, 20} {
		t.Errorf("unexpected moves %v", moved)
	}
	if left != 1 {
		t.Errorf("expected 1 leave, got %d", left)
	}
}

// TestCanvas_ReallocatesAfterZeroSize 最小化（0x0）后恢复窗口，绘制目标按新尺寸重新分配
func TestCanvas_ReallocatesAfterZeroSize(t *testing.T) {
	s := New(100, 100)
	c, err := s.Context2D()
	if err != nil {
		t.Fatalf("Context2D() failed: %v", err)
	}
	cv := c.(*canvas)

	s.Resize(0, 0)
	if img := cv.target(); img != nil {
		t.Fatalf("0x0 surface must have no draw target, got %v", img.Bounds())
	}

	s.Resize(200, 150)
	img := cv.target()
	if img == nil {
		t.Fatal("draw target not reallocated after resize to 200x150")
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Errorf("draw target = %dx%d, want 200x150", b.Dx(), b.Dy())
	}
	if cv.target() != img {
		t.Error("draw target must be reused while the size is unchanged")
	}

	// 恢复后的绘制调用落在新图像上
	c.Clear(color.NRGBA{A: 255})
	c.StrokeLine(0, 0, 200, 150, 1, color.NRGBA{R: 255, A: 255})
	c.FillCircle(100, 75, 5, color.NRGBA{G: 255, A: 255})
	if cv.target() != img {
		t.Error("drawing must not reallocate the target")
	}

	cv.Release()
	s.mu.Lock()
	released := s.img == nil
	s.mu.Unlock()
	if !released {
		t.Error("Release must drop the offscreen image")
	}
}
