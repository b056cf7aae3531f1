// Package app 提供粒子网络动画的 Ebitengine 宿主
//
// 该包将窗口宿主逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
//
// Ebitengine 的 Update 即显示同步：每个 tick 推进一次 ManualScheduler，
// 动画帧绘制到离屏表面，Draw 再把它合成到屏幕。
package app

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/decker502/netfield/pkg/field"
	"github.com/decker502/netfield/pkg/render/ebitensurface"
	"github.com/decker502/netfield/pkg/utils"
)

// 默认窗口尺寸
const (
	WindowWidth  = 1280
	WindowHeight = 720
)

// 切换预设后的淡入时长（秒）
const reloadFadeSeconds = 0.4

// Config 定义应用启动配置
type Config struct {
	// Field 动画配置
	Field field.Config
	// Logger 为空时不输出日志
	Logger *zap.Logger
	// Width, Height 初始表面尺寸，0 使用默认窗口尺寸
	Width, Height int
}

// App 是动画宿主，实现 ebiten.Game 接口
type App struct {
	log     *zap.Logger
	sched   *field.ManualScheduler
	surface *ebitensurface.Surface
	anim    *field.Animator
	pointer utils.PointerTracker

	// 热重载的新配置，在下一次 Update 中应用
	reload chan field.Config

	fadeStart time.Time

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建应用并挂载动画
func NewApp(cfg Config) (*App, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = WindowWidth, WindowHeight
	}

	a := &App{
		log:     log,
		sched:   field.NewManualScheduler(),
		surface: ebitensurface.New(w, h),
		reload:  make(chan field.Config, 1),
	}
	a.pointer.OnMove = a.surface.MovePointer
	a.pointer.OnLeave = a.surface.LeavePointer

	anim, err := a.attach(cfg.Field)
	if err != nil {
		return nil, err
	}
	a.anim = anim
	log.Info("[App] animator attached",
		zap.String("id", anim.ID()),
		zap.Int("particles", cfg.Field.ParticleCount),
		zap.Int("width", w), zap.Int("height", h))
	return a, nil
}

func (a *App) attach(cfg field.Config) (*field.Animator, error) {
	anim, err := field.New(cfg, field.WithScheduler(a.sched), field.WithLogger(a.log))
	if err != nil {
		return nil, fmt.Errorf("动画配置无效: %w", err)
	}
	if err := anim.Attach(a.surface); err != nil {
		return nil, fmt.Errorf("动画挂载失败: %w", err)
	}
	return anim, nil
}

// Reload 请求在下一次 Update 时用新配置替换动画
// 可在任意 goroutine 调用；多次调用只保留最新的配置
func (a *App) Reload(cfg field.Config) {
	for {
		select {
		case a.reload <- cfg:
			return
		default:
		}
		select {
		case <-a.reload:
		default:
		}
	}
}

// applyReload 在 Update 中替换动画；新配置无效时保留当前动画
func (a *App) applyReload() {
	var cfg field.Config
	select {
	case cfg = <-a.reload:
	default:
		return
	}
	if err := cfg.Validate(); err != nil {
		a.log.Warn("[App] reload rejected, keeping current animation", zap.Error(err))
		return
	}
	a.anim.Detach()
	anim, err := a.attach(cfg)
	if err != nil {
		a.log.Error("[App] reload failed", zap.Error(err))
		return
	}
	a.anim = anim
	a.fadeStart = time.Now()
	a.log.Info("[App] animation reloaded", zap.String("id", anim.ID()))
}

// Update 更新逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(WindowWidth, WindowHeight)
			a.log.Debug("[App] delayed SetWindowSize", zap.Int("width", WindowWidth), zap.Int("height", WindowHeight))
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			a.log.Debug("[App] exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	a.applyReload()

	w, h := a.surface.Size()
	a.pointer.Update(utils.GetPointer(), w, h)

	a.sched.Advance(time.Now())
	return nil
}

// Draw 把离屏表面合成到屏幕
func (a *App) Draw(screen *ebiten.Image) {
	a.surface.DrawTo(screen, float32(a.fadeAlpha(time.Now())))
}

func (a *App) fadeAlpha(now time.Time) float64 {
	if a.fadeStart.IsZero() {
		return 1
	}
	return utils.Lerp(0.2, 1, utils.Fade(now.Sub(a.fadeStart).Seconds(), reloadFadeSeconds))
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 逻辑尺寸跟随窗口尺寸，动画表面随之调整
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.surface.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Animator 返回当前动画器
func (a *App) Animator() *field.Animator {
	return a.anim
}

// Close 停止动画并释放离屏图像
func (a *App) Close() {
	a.anim.Detach()
	a.log.Info("[App] closed", zap.Uint64("frames", a.anim.Stats().Frames))
}
