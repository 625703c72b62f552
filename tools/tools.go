//go:build tools
// +build tools

package tools

// 只用于固定开发工具的版本，service 中的 go:generate 用 mockery 生成 mocks 包
import (
	_ "github.com/vektra/mockery/v2"
)
