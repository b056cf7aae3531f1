package terminal

import "github.com/decker502/netfield/pkg/field"

// ReloadQueue 保存最新一份待应用的配置，作为 Options.Reload 传给 Run
type ReloadQueue chan field.Config

// NewReloadQueue 创建容量为 1 的队列
func NewReloadQueue() ReloadQueue {
	return make(ReloadQueue, 1)
}

// Offer 放入新配置，替换尚未被取走的旧配置；从不阻塞
// 宿主退出后仍可安全调用
func (q ReloadQueue) Offer(cfg field.Config) {
	for {
		select {
		case q <- cfg:
			return
		default:
		}
		select {
		case <-q:
		default:
		}
	}
}
