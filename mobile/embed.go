//go:build mobile

// embed.go - 移动端数据嵌入声明
//
// 此文件仅在使用 -tags mobile 构建时编译。
// go:embed 不能引用上级目录，预设文件需要先复制到本目录：
//
//	go generate -tags mobile ./mobile
//	ebitenmobile bind -target android -tags mobile ./mobile
package mobile

import "embed"

//go:generate cp ../data/presets.yaml data/presets.yaml

//go:embed data/presets.yaml
var dataFS embed.FS
