package utils

import "math"

// 缓动与插值
//
// 用于切换预设后的淡入效果。输入进度 t ∈ [0, 1]。

// EaseOutCubic 三次方缓出
// 特点：开始快，结束慢
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-Clamp(t, 0, 1), 3)
}

// Lerp 线性插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp 把 v 限制在 [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Fade 计算淡入进度
//
// 参数:
//   - elapsed: 已经过的时间（秒）
//   - duration: 淡入总时长（秒），<= 0 时立即完成
//
// 返回缓动后的不透明度 ∈ [0, 1]
func Fade(elapsed, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	return EaseOutCubic(elapsed / duration)
}
