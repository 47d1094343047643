package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ip-location/internal/geo"
	"ip-location/internal/logger"
	"ip-location/internal/metrics"
)

// 文档注释：百度地图 IP 定位响应（原生 A 形）
// 背景：status 用于成败判定；content.address_detail 提供结构化省市与区划码；
//      point 坐标仅原生链路保留，转换层对非原生来源一律置空。
type BaiduResponse struct {
	Status  int          `json:"status"`
	Address string       `json:"address"`
	Content BaiduContent `json:"content"`
}

type BaiduContent struct {
	Address       string      `json:"address"`
	AddressDetail BaiduDetail `json:"address_detail"`
	Point         BaiduPoint  `json:"point"`
}

type BaiduDetail struct {
	Adcode       string `json:"adcode"`
	City         string `json:"city"`
	CityCode     int    `json:"city_code"`
	District     string `json:"district"`
	Province     string `json:"province"`
	Street       string `json:"street"`
	StreetNumber string `json:"street_number"`
}

type BaiduPoint struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// AK 无效/受限错误码（240: AK 不存在或非法；230: AK 权限不足；101: 服务被禁用）
// 命中时按数据失败处理以触发降级，避免把误导性地址透传给调用方
var baiduAuthErrorCodes = map[int]bool{240: true, 230: true, 101: true}

// 文档注释：百度地图客户端（需 AK）
// 背景：唯一消费 coor 坐标系参数的上游；命中默认 AK 时进入一级候选。
type BaiduMap struct {
	client *http.Client
}

func NewBaiduMap(client *http.Client) *BaiduMap {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &BaiduMap{client: client}
}

func (p *BaiduMap) Descriptor() Descriptor {
	return Descriptor{Name: NameBaiduMap, Tier: TierCredentialed, RequiresCredential: true, Native: FormatBaidu}
}

func (p *BaiduMap) Fetch(ctx context.Context, ip, cred, coor string) (Result, error) {
	if cred == "" {
		metrics.UpstreamSkipTotal.WithLabelValues(NameBaiduMap).Inc()
		logger.L().Debug("baidumap_skip", "reason", "no_ak")
		return Result{}, fmt.Errorf("baidumap: %w", ErrCredentialMissing)
	}
	q := url.Values{}
	q.Set("ip", ip)
	q.Set("ak", cred)
	if coor != "" {
		q.Set("coor", coor)
	}
	u := "https://api.map.baidu.com/location/ip?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Result{}, fmt.Errorf("baidumap: %w: %v", ErrTransport, err)
	}
	t0 := time.Now()
	metrics.UpstreamRequestsTotal.WithLabelValues(NameBaiduMap).Inc()
	logger.L().Debug("baidumap_req", "ip", ip, "coor", coor)
	resp, err := p.client.Do(req)
	if err != nil {
		metrics.UpstreamFailTotal.WithLabelValues(NameBaiduMap).Inc()
		logger.L().Error("baidumap_http_error", "err", err)
		return Result{}, fmt.Errorf("baidumap: %w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	metrics.UpstreamDurationMs.WithLabelValues(NameBaiduMap).Observe(float64(time.Since(t0).Milliseconds()))
	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamFailTotal.WithLabelValues(NameBaiduMap).Inc()
		logger.L().Error("baidumap_http_status", "status", resp.StatusCode)
		return Result{}, fmt.Errorf("baidumap: %w: status %d", ErrTransport, resp.StatusCode)
	}
	var r BaiduResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		metrics.UpstreamFailTotal.WithLabelValues(NameBaiduMap).Inc()
		logger.L().Error("baidumap_decode_error", "err", err)
		return Result{}, fmt.Errorf("baidumap: %w: %v", ErrBadPayload, err)
	}
	if baiduAuthErrorCodes[r.Status] {
		metrics.UpstreamFailTotal.WithLabelValues(NameBaiduMap).Inc()
		logger.L().Warn("baidumap_ak_rejected", "status", r.Status)
		return Result{}, fmt.Errorf("baidumap: %w: ak rejected, status=%d", ErrBadPayload, r.Status)
	}
	if r.Status != 0 {
		metrics.UpstreamFailTotal.WithLabelValues(NameBaiduMap).Inc()
		logger.L().Warn("baidumap_bad_status", "status", r.Status)
		return Result{}, fmt.Errorf("baidumap: %w: status=%d", ErrBadPayload, r.Status)
	}
	province := strings.TrimSpace(r.Content.AddressDetail.Province)
	city := strings.TrimSpace(r.Content.AddressDetail.City)
	if city == "" {
		// 直辖市/特别行政区：市名缺省与省同名
		city = province
	}
	loc := geo.Location{
		Province: province,
		City:     city,
		Adcode:   r.Content.AddressDetail.Adcode,
		Address:  r.Content.Address,
		Point:    geo.Point{X: r.Content.Point.X, Y: r.Content.Point.Y},
	}
	if !loc.Valid() {
		metrics.UpstreamFailTotal.WithLabelValues(NameBaiduMap).Inc()
		logger.L().Warn("baidumap_missing_location", "ip", ip)
		return Result{}, fmt.Errorf("baidumap: %w: missing province/city", ErrBadPayload)
	}
	metrics.UpstreamSuccessTotal.WithLabelValues(NameBaiduMap).Inc()
	logger.L().Debug("baidumap_resp", "ip", ip, "province", loc.Province, "city", loc.City)
	return Result{Provider: NameBaiduMap, Location: loc, Native: FormatBaidu, Baidu: &r}, nil
}
