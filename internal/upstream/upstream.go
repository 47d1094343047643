// 包 upstream：上游定位数据源的统一抽象与四个具体客户端
// 背景：各上游 REST 接口的鉴权方式、成败编码与返回结构互不兼容；此处抽象为同构客户端，
//      编排层只面向 Provider 接口与描述符构建候选顺序，新增上游仅需新增一个实现。
package upstream

import (
	"context"

	"ip-location/internal/geo"
)

// 上游名称：对外路由分流、凭据映射与指标标签共用
const (
	NameBaiduMap = "baidumap"
	NameAmap     = "amap"
	NameOpenData = "opendata"
	NamePConline = "pconline"
)

// Tier：候选优先级分层；同层内可乱序，层间绝不交叉
type Tier int

const (
	TierCredentialed Tier = iota + 1 // 持默认凭据的上游，优先尝试
	TierFree                         // 免凭据上游，兜底
)

// Format：上游原生报文形态；转换层据此决定透传或重建
type Format int

const (
	FormatNone Format = iota
	FormatBaidu
	FormatAmap
)

// 文档注释：上游描述符
// 背景：编排层仅依赖描述符构建候选顺序与凭据映射，不感知具体实现。
type Descriptor struct {
	Name               string
	Tier               Tier
	RequiresCredential bool
	Native             Format
}

// 文档注释：单次查询结果
// 背景：统一携带归一化位置；原生报文按需透传，转换层在同形输出时不再重建，
//      以保留坐标等仅原生链路才有的字段。
type Result struct {
	Provider string
	Location geo.Location
	Native   Format
	Baidu    *BaiduResponse
	Amap     *AmapResponse
}

// 文档注释：上游客户端契约
// 背景：一次抓取对应一次上游调用；凭据缺失时直接跳过不发网络请求；
//      传输失败与数据失败分类返回，编排层据此推进候选。
// 约束：单次调用受共享 HTTP 客户端的 5s 超时约束；coor 仅百度地图消费，其余实现忽略。
type Provider interface {
	Descriptor() Descriptor
	Fetch(ctx context.Context, ip, cred, coor string) (Result, error)
}
