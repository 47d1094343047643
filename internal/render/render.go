// 包 render：把查询结果渲染为指定上游的原生报文形态
// 背景：调用方可能依赖某一上游的报文结构解析结果；无论实际由哪个上游应答，
//      都能以目标形态输出，保证客户端解析兼容。
package render

import (
	"ip-location/internal/upstream"
)

// 文档注释：渲染为百度地图原生形态（A 形）
// 背景：来源本就是 A 形时原样透传，保留坐标等原生字段；否则由归一化位置构造。
// 约束：非原生来源的坐标、街道、区县字段一律留空，不凭空编造。
func ToBaidu(res upstream.Result) *upstream.BaiduResponse {
	if res.Baidu != nil {
		return res.Baidu
	}
	loc := res.Location
	addr := loc.Address
	if addr == "" {
		addr = loc.Province + loc.City
	}
	return &upstream.BaiduResponse{
		Status:  0,
		Address: "CN|" + loc.Province + "|" + loc.City + "||None||||",
		Content: upstream.BaiduContent{
			Address: addr,
			AddressDetail: upstream.BaiduDetail{
				Adcode:   loc.Adcode,
				City:     loc.City,
				Province: loc.Province,
			},
			Point: upstream.BaiduPoint{},
		},
	}
}

// 文档注释：渲染为高德原生形态（B 形）
// 背景：B 风格端点无论实际命中哪个上游，最终都以此形态返回。
// 约束：rectangle 仅原生链路才有，非原生来源恒为空。
func ToAmap(res upstream.Result) *upstream.AmapResponse {
	if res.Amap != nil {
		return res.Amap
	}
	loc := res.Location
	out := &upstream.AmapResponse{
		Status:   "0",
		Infocode: "10003",
		Province: loc.Province,
		City:     loc.City,
		Adcode:   loc.Adcode,
	}
	if loc.Province != "" {
		out.Status = "1"
		out.Info = "OK"
		out.Infocode = "10000"
	}
	return out
}

// AmapFailure：构造 B 形失败报文
// 背景：B 风格端点在降级彻底失败时仍返回结构完整的载荷而非 HTTP 错误，
//      保持既有客户端的解析兼容。
func AmapFailure(info string) *upstream.AmapResponse {
	return &upstream.AmapResponse{Status: "0", Info: info, Infocode: "10003"}
}
