// 包 config：进程级默认凭据，启动时读取一次，之后只读
package config

import "os"

// 文档注释：默认凭据配置
// 背景：两个可选的默认凭据决定自动策略的一级候选集合；按值传入编排层，
//      运行期不可变，并发读取无需加锁。
// 约束：凭据不得写入日志或任何响应；对外仅暴露“是否已配置”的布尔判断。
type Defaults struct {
	BaiduAK string
	AmapKey string
}

// FromEnv：从环境变量装载默认凭据；未配置即空串
func FromEnv() Defaults {
	return Defaults{
		BaiduAK: os.Getenv("BAIDU_DEFAULT_AK"),
		AmapKey: os.Getenv("AMAP_DEFAULT_KEY"),
	}
}

// HasBaiduAK：百度默认 AK 是否已配置
func (d Defaults) HasBaiduAK() bool { return d.BaiduAK != "" }

// HasAmapKey：高德默认 key 是否已配置
func (d Defaults) HasAmapKey() bool { return d.AmapKey != "" }
