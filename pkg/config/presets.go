// Package config 加载粒子网络动画的 YAML 预设
//
// 预设文件结构见 data/presets.yaml。内置预设通过 embedded 包读取，
// 也可以用 --config 指定磁盘上的文件覆盖，并在 --watch 模式下热重载。
package config

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/decker502/netfield/pkg/embedded"
	"github.com/decker502/netfield/pkg/field"
)

// EmbeddedPresetPath 内置预设在嵌入文件系统中的路径
const EmbeddedPresetPath = "data/presets.yaml"

// PresetFile 预设文件根结构
type PresetFile struct {
	// Default 未指定 --preset 时使用的预设名
	Default string `yaml:"default"`

	// Presets 预设名 -> 预设配置
	Presets map[string]FieldPreset `yaml:"presets"`
}

// FieldPreset 单个动画预设
//
// 数值字段为 0 时使用 field.DefaultConfig() 的默认值，
// 因此 maxSpeed: 0 与 restitution: 0 不表示静止或完全非弹性。
type FieldPreset struct {
	ParticleCount      int     `yaml:"particleCount"`
	MaxSpeed           float64 `yaml:"maxSpeed"`
	MaxVelocity        float64 `yaml:"maxVelocity"`
	ConnectionDistance float64 `yaml:"connectionDistance"`
	LineWidth          float64 `yaml:"lineWidth"`

	// 颜色 (#RRGGBB 或 #RGB) 与透明度 (0-1)，透明度省略时为 1
	LineColor       string   `yaml:"lineColor"`
	LineOpacity     *float64 `yaml:"lineOpacity"`
	DotColor        string   `yaml:"dotColor"`
	DotOpacity      *float64 `yaml:"dotOpacity"`
	CategoryColors  []string `yaml:"categoryColors"`
	ColorByCategory bool     `yaml:"colorByCategory"`
	Background      string   `yaml:"background"`

	Radius RadiusRange `yaml:"radius"`

	// Boundary 边界策略: bounce | wrap
	Boundary    string  `yaml:"boundary"`
	Restitution float64 `yaml:"restitution"`
	Friction    float64 `yaml:"friction"`
	Gravity     float64 `yaml:"gravity"`

	Pointer PointerConfig `yaml:"pointer"`

	// SpatialIndex 连线查找方式: brute | quadtree
	SpatialIndex string `yaml:"spatialIndex"`
	TimeScaled   bool   `yaml:"timeScaled"`
}

// RadiusRange 粒子基础半径范围
type RadiusRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// PointerConfig 指针吸引配置
type PointerConfig struct {
	Enabled          bool    `yaml:"enabled"`
	AttractionRadius float64 `yaml:"attractionRadius"`
	Force            float64 `yaml:"force"`
	HoverScale       float64 `yaml:"hoverScale"`
}

// LoadPresetFile 从磁盘加载预设文件
//
// 参数:
//   - path: 配置文件路径（如 "presets.yaml"）
//
// 返回:
//   - *PresetFile: 校验通过的预设
//   - error: 读取、解析或校验失败时返回错误
func LoadPresetFile(path string) (*PresetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}
	return ParsePresets(data)
}

// LoadEmbeddedPresets 加载内置预设（需要先调用 embedded.Init）
func LoadEmbeddedPresets() (*PresetFile, error) {
	data, err := embedded.ReadFile(EmbeddedPresetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded presets: %w", err)
	}
	return ParsePresets(data)
}

// ParsePresets 解析并校验 YAML 预设内容
func ParsePresets(data []byte) (*PresetFile, error) {
	var file PresetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("invalid presets: %w", err)
	}
	return &file, nil
}

// Validate 验证预设文件
//
// 检查：
//   - 至少包含一个预设
//   - default 指向存在的预设
//   - 每个预设都能转换为合法的 field.Config
func (f *PresetFile) Validate() error {
	if len(f.Presets) == 0 {
		return fmt.Errorf("no presets defined")
	}
	if f.Default != "" {
		if _, ok := f.Presets[f.Default]; !ok {
			return fmt.Errorf("default preset %q not found", f.Default)
		}
	}
	for _, name := range f.Names() {
		p := f.Presets[name]
		cfg, err := p.ToField()
		if err != nil {
			return fmt.Errorf("preset %q: %w", name, err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return nil
}

// Names 返回排序后的预设名
func (f *PresetFile) Names() []string {
	names := make([]string, 0, len(f.Presets))
	for name := range f.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup 查找预设；name 为空时使用 default
func (f *PresetFile) Lookup(name string) (FieldPreset, error) {
	if name == "" {
		name = f.Default
	}
	p, ok := f.Presets[name]
	if !ok {
		return FieldPreset{}, fmt.Errorf("preset %q not found (available: %v)", name, f.Names())
	}
	return p, nil
}

// FieldConfig 查找预设并转换为 field.Config
func (f *PresetFile) FieldConfig(name string) (field.Config, error) {
	p, err := f.Lookup(name)
	if err != nil {
		return field.Config{}, err
	}
	return p.ToField()
}

// ToField 将预设转换为 field.Config
// 只做格式转换（颜色、枚举名），数值范围由 field.Config.Validate 负责
func (p FieldPreset) ToField() (field.Config, error) {
	cfg := field.Config{
		ParticleCount:      p.ParticleCount,
		MaxSpeed:           p.MaxSpeed,
		MaxVelocity:        p.MaxVelocity,
		ConnectionDistance: p.ConnectionDistance,
		LineWidth:          p.LineWidth,
		ColorByCategory:    p.ColorByCategory,
		MinRadius:          p.Radius.Min,
		MaxRadius:          p.Radius.Max,
		Restitution:        p.Restitution,
		Friction:           p.Friction,
		Gravity:            p.Gravity,
		PointerInteraction: p.Pointer.Enabled,
		AttractionRadius:   p.Pointer.AttractionRadius,
		AttractionForce:    p.Pointer.Force,
		HoverScale:         p.Pointer.HoverScale,
		TimeScaled:         p.TimeScaled,
	}

	var err error
	if cfg.Boundary, err = field.ParseBoundary(p.Boundary); err != nil {
		return cfg, err
	}
	if cfg.SpatialIndex, err = field.ParseSpatialIndex(p.SpatialIndex); err != nil {
		return cfg, err
	}

	if cfg.LineColor, err = ParseColor(p.LineColor, opacity(p.LineOpacity)); err != nil {
		return cfg, fmt.Errorf("lineColor: %w", err)
	}
	if cfg.DotColor, err = ParseColor(p.DotColor, opacity(p.DotOpacity)); err != nil {
		return cfg, fmt.Errorf("dotColor: %w", err)
	}
	if cfg.Background, err = ParseColor(p.Background, 1); err != nil {
		return cfg, fmt.Errorf("background: %w", err)
	}

	if n := len(p.CategoryColors); n != 0 && n != len(cfg.CategoryColors) {
		return cfg, fmt.Errorf("categoryColors: want %d colors, got %d", len(cfg.CategoryColors), n)
	}
	for i, s := range p.CategoryColors {
		if cfg.CategoryColors[i], err = ParseColor(s, opacity(p.DotOpacity)); err != nil {
			return cfg, fmt.Errorf("categoryColors[%d]: %w", i, err)
		}
	}
	return cfg, nil
}

func opacity(v *float64) float64 {
	if v == nil {
		return 1
	}
	return *v
}

// ParseColor 解析 #RRGGBB / #RGB 颜色并附加透明度
//
// 空字符串与 "transparent" 返回零值（field 包会替换为默认颜色，
// 背景则保持透明）。
func ParseColor(s string, alpha float64) (color.NRGBA, error) {
	if s == "" || s == "transparent" {
		return color.NRGBA{}, nil
	}
	if math.IsNaN(alpha) || alpha < 0 || alpha > 1 {
		return color.NRGBA{}, fmt.Errorf("opacity %v out of range [0,1]", alpha)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(alpha * 255))}, nil
}
