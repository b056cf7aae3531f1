// Package terminal 在终端中运行粒子网络动画
//
// 宿主由两个 goroutine 组成（errgroup 管理）：
//   - 事件泵：阻塞在 screen.PollEvent，把事件转发到通道
//   - 主循环：处理按键、尺寸变化和鼠标事件
//
// 动画帧由 field.TickerScheduler 驱动，按 q / Esc / Ctrl+C 退出。
package terminal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/decker502/netfield/pkg/field"
	"github.com/decker502/netfield/pkg/render/termsurface"
)

// Options 终端宿主配置
type Options struct {
	// Logger 为空时不输出日志（避免破坏终端画面）
	Logger *zap.Logger
	// FrameInterval 帧间隔，默认 field.DefaultFrameInterval
	FrameInterval time.Duration
	// Reload 非空时，收到的新配置会替换当前动画
	Reload <-chan field.Config
}

// Run 在已初始化的 screen 上运行动画，直到 ctx 结束或用户退出
//
// screen 的 Init/Fini 由调用方负责。
func Run(ctx context.Context, screen tcell.Screen, cfg field.Config, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = field.DefaultFrameInterval
	}

	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.EnableFocus()
	defer screen.DisableMouse()
	defer screen.DisableFocus()

	sched := field.NewTickerScheduler(interval)
	defer sched.Close()

	surface := termsurface.New(screen)
	anim, err := start(cfg, surface, sched, log)
	if err != nil {
		return err
	}
	defer func() { anim.Detach() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 16)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return nil
			}
			if _, ok := ev.(*tcell.EventInterrupt); ok && gctx.Err() != nil {
				return nil
			}
			select {
			case events <- ev:
			case <-gctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		// 退出时唤醒事件泵
		defer func() { _ = screen.PostEvent(tcell.NewEventInterrupt(nil)) }()
		defer cancel()
		for {
			select {
			case <-gctx.Done():
				return nil

			case next := <-opts.Reload:
				replacement, err := field.New(next, field.WithScheduler(sched), field.WithLogger(log))
				if err != nil {
					log.Warn("[Terminal] reload rejected, keeping current animation", zap.Error(err))
					continue
				}
				anim.Detach()
				anim = replacement
				if err := anim.Attach(surface); err != nil {
					return fmt.Errorf("failed to attach reloaded animator: %w", err)
				}
				log.Info("[Terminal] animation reloaded", zap.String("id", anim.ID()))

			case ev := <-events:
				if quit(ev) {
					log.Debug("[Terminal] quit requested")
					return nil
				}
				surface.HandleEvent(ev)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// start 创建动画器并挂载到表面
func start(cfg field.Config, surface *termsurface.Surface, sched field.Scheduler, log *zap.Logger) (*field.Animator, error) {
	anim, err := field.New(cfg, field.WithScheduler(sched), field.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create animator: %w", err)
	}
	if err := anim.Attach(surface); err != nil {
		return nil, fmt.Errorf("failed to attach animator: %w", err)
	}
	return anim, nil
}

func quit(ev tcell.Event) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}
	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return key.Rune() == 'q' || key.Rune() == 'Q'
	}
	return false
}
