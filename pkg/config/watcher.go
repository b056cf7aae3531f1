package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultReloadDebounce 合并编辑器保存时的连续写事件
const DefaultReloadDebounce = 200 * time.Millisecond

// PresetWatcher 监听预设文件变化并重新加载
//
// 监听的是文件所在目录而不是文件本身，因为很多编辑器保存时会先写临时文件再
// rename，直接监听文件会在第一次保存后失效。
// 解析失败时保留旧配置，只记录警告。
type PresetWatcher struct {
	path     string
	onChange func(*PresetFile)
	log      *zap.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewPresetWatcher 创建监听器，onChange 在每次成功重新加载后调用
func NewPresetWatcher(path string, onChange func(*PresetFile), log *zap.Logger) (*PresetWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve preset path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PresetWatcher{
		path:     abs,
		onChange: onChange,
		log:      log,
		debounce: DefaultReloadDebounce,
		watcher:  w,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce 修改防抖时间（必须在 Start 之前调用）
func (pw *PresetWatcher) SetDebounce(d time.Duration) {
	pw.debounce = d
}

// Start 开始监听，非阻塞
func (pw *PresetWatcher) Start(ctx context.Context) error {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	if pw.running {
		return nil
	}
	if err := pw.watcher.Add(filepath.Dir(pw.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(pw.path), err)
	}
	pw.running = true
	go pw.run(ctx)
	pw.log.Info("[Config] watching preset file", zap.String("path", pw.path))
	return nil
}

// Stop 停止监听并等待后台 goroutine 退出，可重复调用
func (pw *PresetWatcher) Stop() {
	pw.mu.Lock()
	if !pw.running {
		pw.mu.Unlock()
		_ = pw.watcher.Close()
		return
	}
	pw.running = false
	pw.mu.Unlock()

	close(pw.stopCh)
	<-pw.doneCh
	_ = pw.watcher.Close()
}

func (pw *PresetWatcher) run(ctx context.Context) {
	defer close(pw.doneCh)

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pw.stopCh:
			return
		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if !pw.relevant(event) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(pw.debounce)
			timerC = timer.C
		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			pw.log.Warn("[Config] watcher error", zap.Error(err))
		case <-timerC:
			timerC = nil
			pw.reload()
		}
	}
}

func (pw *PresetWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != pw.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (pw *PresetWatcher) reload() {
	file, err := LoadPresetFile(pw.path)
	if err != nil {
		pw.log.Warn("[Config] reload failed, keeping previous presets",
			zap.String("path", pw.path), zap.Error(err))
		return
	}
	pw.log.Info("[Config] presets reloaded",
		zap.String("path", pw.path), zap.Strings("presets", file.Names()))
	if pw.onChange != nil {
		pw.onChange(file)
	}
}
