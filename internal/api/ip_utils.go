package api

import (
	"net/http"
	"strings"
)

// 文档注释：获取待查询 IP（参数缺省时回退访问来源）
// 背景：多层代理环境下，优先显式参数，其次常见反向代理头，最后回退远端地址。
// 约束：头部存在伪造风险时需结合可信代理白名单在网关层处理；此处只做顺位提取。
func clientIP(r *http.Request) string {
	if q := r.URL.Query().Get("ip"); q != "" {
		return q
	}
	h := r.Header
	if x := h.Get("x-forwarded-for"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	if x := h.Get("x-real-ip"); x != "" {
		return x
	}
	if x := h.Get("x-client-ip"); x != "" {
		return x
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		return host[:i]
	}
	return host
}
