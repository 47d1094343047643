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

// 文档注释：高德 IP 定位响应（原生 B 形）
// 背景：status/infocode 用于成败判定；省市为结构化字段，直辖市场景下两者同名；
//      rectangle 仅原生链路保留。
type AmapResponse struct {
	Status    string `json:"status"`
	Info      string `json:"info"`
	Infocode  string `json:"infocode"`
	Province  string `json:"province"`
	City      string `json:"city"`
	Adcode    string `json:"adcode"`
	Rectangle string `json:"rectangle"`
}

// 文档注释：高德客户端（需 key）
// 背景：命中默认 key 时进入一级候选；B 风格端点的显式凭据也落在此实现。
type Amap struct {
	client *http.Client
}

func NewAmap(client *http.Client) *Amap {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Amap{client: client}
}

func (p *Amap) Descriptor() Descriptor {
	return Descriptor{Name: NameAmap, Tier: TierCredentialed, RequiresCredential: true, Native: FormatAmap}
}

func (p *Amap) Fetch(ctx context.Context, ip, cred, coor string) (Result, error) {
	if cred == "" {
		metrics.UpstreamSkipTotal.WithLabelValues(NameAmap).Inc()
		logger.L().Debug("amap_skip", "reason", "no_key")
		return Result{}, fmt.Errorf("amap: %w", ErrCredentialMissing)
	}
	q := url.Values{}
	q.Set("key", cred)
	q.Set("ip", ip)
	u := "https://restapi.amap.com/v3/ip?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Result{}, fmt.Errorf("amap: %w: %v", ErrTransport, err)
	}
	t0 := time.Now()
	metrics.UpstreamRequestsTotal.WithLabelValues(NameAmap).Inc()
	logger.L().Debug("amap_req", "ip", ip)
	resp, err := p.client.Do(req)
	if err != nil {
		metrics.UpstreamFailTotal.WithLabelValues(NameAmap).Inc()
		logger.L().Error("amap_http_error", "err", err)
		return Result{}, fmt.Errorf("amap: %w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	metrics.UpstreamDurationMs.WithLabelValues(NameAmap).Observe(float64(time.Since(t0).Milliseconds()))
	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamFailTotal.WithLabelValues(NameAmap).Inc()
		logger.L().Error("amap_http_status", "status", resp.StatusCode)
		return Result{}, fmt.Errorf("amap: %w: status %d", ErrTransport, resp.StatusCode)
	}
	var r AmapResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		metrics.UpstreamFailTotal.WithLabelValues(NameAmap).Inc()
		logger.L().Error("amap_decode_error", "err", err)
		return Result{}, fmt.Errorf("amap: %w: %v", ErrBadPayload, err)
	}
	if r.Status != "1" {
		// infocode 包含凭据无效/配额超限等业务错误，统一按数据失败降级
		metrics.UpstreamFailTotal.WithLabelValues(NameAmap).Inc()
		logger.L().Warn("amap_bad_status", "status", r.Status, "infocode", r.Infocode, "info", r.Info)
		return Result{}, fmt.Errorf("amap: %w: status=%s infocode=%s", ErrBadPayload, r.Status, r.Infocode)
	}
	province := strings.TrimSpace(r.Province)
	city := strings.TrimSpace(r.City)
	if city == "" {
		city = province
	}
	loc := geo.Location{
		Province: province,
		City:     city,
		Adcode:   r.Adcode,
		Address:  province + city,
	}
	if !loc.Valid() {
		metrics.UpstreamFailTotal.WithLabelValues(NameAmap).Inc()
		logger.L().Warn("amap_missing_location", "ip", ip, "infocode", r.Infocode)
		return Result{}, fmt.Errorf("amap: %w: missing province/city", ErrBadPayload)
	}
	metrics.UpstreamSuccessTotal.WithLabelValues(NameAmap).Inc()
	logger.L().Debug("amap_resp", "ip", ip, "province", loc.Province, "city", loc.City, "adcode", loc.Adcode)
	return Result{Provider: NameAmap, Location: loc, Native: FormatAmap, Amap: &r}, nil
}
