//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包。
// 使用 ebitenmobile 工具构建时会自动调用 init() 函数。
//
// 此文件仅在使用 -tags mobile 构建时编译。
//
//	# Android
//	go generate -tags mobile ./mobile && ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.netfield -o build/android/netfield.aar -v ./mobile
//
//	# iOS (仅 macOS)
//	go generate -tags mobile ./mobile && ebitenmobile bind -target ios -tags mobile -o build/ios/Netfield.xcframework -v ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"
	"go.uber.org/zap"

	"github.com/decker502/netfield/pkg/app"
	"github.com/decker502/netfield/pkg/config"
	"github.com/decker502/netfield/pkg/embedded"
)

// 移动端使用的预设：支持触摸吸引
const mobilePreset = "interactive"

func init() {
	embedded.Init(dataFS)

	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}

	presets, err := config.LoadEmbeddedPresets()
	if err != nil {
		log.Fatalf("预设加载失败: %v", err)
	}
	cfg, err := presets.FieldConfig(mobilePreset)
	if err != nil {
		log.Fatalf("预设加载失败: %v", err)
	}

	gameApp, err := app.NewApp(app.Config{Field: cfg, Logger: logger})
	if err != nil {
		log.Fatalf("应用初始化失败: %v", err)
	}

	// 注册到 ebitenmobile
	mobile.SetGame(gameApp)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
