// 包 api：注册查询路由；IP 校验、凭据分流与输出形态选择都在此层完成
package api

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"ip-location/internal/config"
	"ip-location/internal/logger"
	"ip-location/internal/metrics"
	"ip-location/internal/render"
	"ip-location/internal/resolve"
	"ip-location/internal/upstream"
)

// 文档注释：路由装配器
// 背景：持有编排器与默认凭据的可见性信息；输出形态的随机选择可注入，测试据此固定分支。
type Routes struct {
	resolver *resolve.Resolver
	defaults config.Defaults
	pick     func(n int) int
}

func NewRoutes(r *resolve.Resolver, defaults config.Defaults) *Routes {
	return &Routes{resolver: r, defaults: defaults, pick: rand.Intn}
}

// WithPick：注入确定性的形态选择，供测试断言两种输出分支
func (rt *Routes) WithPick(f func(n int) int) *Routes {
	rt.pick = f
	return rt
}

// Build：独立 ServeMux 便于在主入口挂载
func (rt *Routes) Build() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/location/ip", rt.handleGeneric)
	mux.HandleFunc("/v3/ip", rt.handleAmapStyle)
	mux.HandleFunc("/health", rt.handleHealth)
	return mux
}

// 文档注释：通用查询端点
// 背景：显式 ak 单发百度地图、显式 key 单发高德，二者失败即 503 不降级；
//      无显式凭据时走自动分级降级，输出形态在两种原生形之间均匀随机。
func (rt *Routes) handleGeneric(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t0 := time.Now()
	metrics.RequestsTotal.Inc()
	defer func() {
		metrics.RequestDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	}()

	ip := clientIP(r)
	if !IsValidIPv4(ip) {
		metrics.InvalidIPTotal.Inc()
		writeError(w, http.StatusBadRequest, "invalid ip address")
		return
	}
	coor := r.URL.Query().Get("coor")
	if coor == "" {
		coor = "bd09ll"
	}

	if ak := r.URL.Query().Get("ak"); ak != "" {
		res, err := rt.resolver.ResolveExplicit(ctx, upstream.NameBaiduMap, ip, ak, coor)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "upstream lookup failed")
			return
		}
		writeJSON(w, render.ToBaidu(res))
		return
	}
	if key := r.URL.Query().Get("key"); key != "" {
		res, err := rt.resolver.ResolveExplicit(ctx, upstream.NameAmap, ip, key, "")
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "upstream lookup failed")
			return
		}
		writeJSON(w, render.ToAmap(res))
		return
	}

	res, err := rt.resolver.Resolve(ctx, ip, coor)
	if err != nil {
		if errors.Is(err, resolve.ErrNoUpstream) {
			writeError(w, http.StatusInternalServerError, "no upstream provider configured")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "all upstream providers unavailable")
		return
	}
	if rt.pick(2) == 0 {
		writeJSON(w, render.ToBaidu(res))
	} else {
		writeJSON(w, render.ToAmap(res))
	}
}

// 文档注释：B 风格查询端点
// 背景：显式 key 先试高德，失败（或未带 key）落入自动降级；无论实际命中哪个上游，
//      结果一律渲染为 B 形。校验通过后的失败也以 B 形失败载荷 + 200 返回，保持客户端解析兼容。
func (rt *Routes) handleAmapStyle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t0 := time.Now()
	metrics.RequestsTotal.Inc()
	defer func() {
		metrics.RequestDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	}()

	ip := clientIP(r)
	if !IsValidIPv4(ip) {
		metrics.InvalidIPTotal.Inc()
		writeError(w, http.StatusBadRequest, "invalid ip address")
		return
	}
	if key := r.URL.Query().Get("key"); key != "" {
		if res, err := rt.resolver.ResolveExplicit(ctx, upstream.NameAmap, ip, key, ""); err == nil {
			writeJSON(w, render.ToAmap(res))
			return
		}
		logger.L().Warn("amap_style_explicit_failed", "ip", ip)
	}
	res, err := rt.resolver.Resolve(ctx, ip, "bd09ll")
	if err != nil {
		writeJSON(w, render.AmapFailure("UNKNOWN_ERROR"))
		return
	}
	writeJSON(w, render.ToAmap(res))
}

// handleHealth：存活探针；只暴露默认凭据“是否配置”，不暴露凭据本身
func (rt *Routes) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":              "ok",
		"baidu_ak_configured": rt.defaults.HasBaiduAK(),
		"amap_key_configured": rt.defaults.HasAmapKey(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
