package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"

	"ip-location/internal/geo"
	"ip-location/internal/logger"
	"ip-location/internal/metrics"
)

// 文档注释：太平洋电脑网 whois 响应
// 背景：免凭据接口，报文为 GBK 编码，需先转码再解析；省市为结构化字段，
//      另附省/市数字编码用于拼接区划码。err 非空即业务失败。
type pconlineResponse struct {
	IP         string `json:"ip"`
	Pro        string `json:"pro"`
	ProCode    string `json:"proCode"`
	City       string `json:"city"`
	CityCode   string `json:"cityCode"`
	Region     string `json:"region"`
	RegionCode string `json:"regionCode"`
	Addr       string `json:"addr"`
	Err        string `json:"err"`
}

// 文档注释：pconline 客户端（免凭据，结构化）
// 背景：二级候选；唯一需要 GBK 转码的上游。
type PConline struct {
	client *http.Client
}

func NewPConline(client *http.Client) *PConline {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &PConline{client: client}
}

func (p *PConline) Descriptor() Descriptor {
	return Descriptor{Name: NamePConline, Tier: TierFree, RequiresCredential: false, Native: FormatNone}
}

func (p *PConline) Fetch(ctx context.Context, ip, cred, coor string) (Result, error) {
	q := url.Values{}
	q.Set("ip", ip)
	q.Set("json", "true")
	u := "http://whois.pconline.com.cn/ipJson.jsp?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Result{}, fmt.Errorf("pconline: %w: %v", ErrTransport, err)
	}
	t0 := time.Now()
	metrics.UpstreamRequestsTotal.WithLabelValues(NamePConline).Inc()
	logger.L().Debug("pconline_req", "ip", ip)
	resp, err := p.client.Do(req)
	if err != nil {
		metrics.UpstreamFailTotal.WithLabelValues(NamePConline).Inc()
		logger.L().Error("pconline_http_error", "err", err)
		return Result{}, fmt.Errorf("pconline: %w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	metrics.UpstreamDurationMs.WithLabelValues(NamePConline).Observe(float64(time.Since(t0).Milliseconds()))
	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamFailTotal.WithLabelValues(NamePConline).Inc()
		logger.L().Error("pconline_http_status", "status", resp.StatusCode)
		return Result{}, fmt.Errorf("pconline: %w: status %d", ErrTransport, resp.StatusCode)
	}
	// 报文为 GBK 编码，转码后再走 JSON 解析
	body := simplifiedchinese.GBK.NewDecoder().Reader(resp.Body)
	var r pconlineResponse
	if err := json.NewDecoder(body).Decode(&r); err != nil {
		metrics.UpstreamFailTotal.WithLabelValues(NamePConline).Inc()
		logger.L().Error("pconline_decode_error", "err", err)
		return Result{}, fmt.Errorf("pconline: %w: %v", ErrBadPayload, err)
	}
	if r.Err != "" {
		metrics.UpstreamFailTotal.WithLabelValues(NamePConline).Inc()
		logger.L().Warn("pconline_upstream_err", "err", r.Err)
		return Result{}, fmt.Errorf("pconline: %w: %s", ErrBadPayload, r.Err)
	}
	province := strings.TrimSpace(r.Pro)
	city := strings.TrimSpace(r.City)
	if city == "" {
		city = province
	}
	loc := geo.Location{
		Province: province,
		City:     city,
		Adcode:   pconlineAdcode(strings.TrimSpace(r.ProCode), strings.TrimSpace(r.CityCode)),
		Address:  province + city,
	}
	if !loc.Valid() {
		metrics.UpstreamFailTotal.WithLabelValues(NamePConline).Inc()
		logger.L().Warn("pconline_missing_location", "ip", ip)
		return Result{}, fmt.Errorf("pconline: %w: missing province/city", ErrBadPayload)
	}
	metrics.UpstreamSuccessTotal.WithLabelValues(NamePConline).Inc()
	logger.L().Debug("pconline_resp", "ip", ip, "province", loc.Province, "city", loc.City, "adcode", loc.Adcode)
	return Result{Provider: NamePConline, Location: loc, Native: FormatNone}, nil
}

// pconlineAdcode：省编码拼接市编码去掉前两位的余段
// 沿用历史线上行为的截断方式，不按标准区划码语义推导；任一编码缺失则不产出区划码
func pconlineAdcode(proCode, cityCode string) string {
	if proCode == "" || cityCode == "" {
		return ""
	}
	suffix := ""
	if len(cityCode) > 2 {
		suffix = cityCode[2:]
	}
	return proCode + suffix
}
