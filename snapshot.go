package main

import (
	"fmt"
	"io"
	"time"

	"github.com/decker502/netfield/pkg/field"
	"github.com/decker502/netfield/pkg/render/raster"
)

// renderSnapshot 在软件表面上模拟 frames 帧并把最后一帧编码为 PNG
//
// 帧时间从固定起点按 60 FPS 递增，结果只取决于配置和随机源。
func renderSnapshot(cfg field.Config, width, height, frames int, opts []field.Option, w io.Writer) error {
	sched := field.NewManualScheduler()
	anim, err := field.New(cfg, append(opts, field.WithScheduler(sched))...)
	if err != nil {
		return err
	}

	surface := raster.New(width, height)
	if err := anim.Attach(surface); err != nil {
		return err
	}
	defer anim.Detach()

	now := time.Unix(0, 0)
	for i := 0; i < frames; i++ {
		if sched.Advance(now) == 0 {
			return fmt.Errorf("frame loop stopped after %d frames", i)
		}
		now = now.Add(field.DefaultFrameInterval)
	}
	return surface.WritePNG(w)
}
