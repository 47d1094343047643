package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ip-location/internal/geo"
	"ip-location/internal/logger"
	"ip-location/internal/metrics"
)

// 文档注释：百度开放平台响应
// 背景：免凭据接口，status 为字符串 "0" 表示成功；位置只有 data[0].location 一个
//      自由文本字段（省市连写，末尾携带运营商），需经文本解析切分省市。
type openDataResponse struct {
	Status string             `json:"status"`
	Data   []openDataLocation `json:"data"`
}

type openDataLocation struct {
	Location string `json:"location"`
}

// 文档注释：百度开放平台客户端（免凭据，自由文本）
// 背景：二级候选；resource_id=6006 为 IP 归属地查询资源位。
type OpenData struct {
	client *http.Client
}

func NewOpenData(client *http.Client) *OpenData {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &OpenData{client: client}
}

func (p *OpenData) Descriptor() Descriptor {
	return Descriptor{Name: NameOpenData, Tier: TierFree, RequiresCredential: false, Native: FormatNone}
}

func (p *OpenData) Fetch(ctx context.Context, ip, cred, coor string) (Result, error) {
	q := url.Values{}
	q.Set("query", ip)
	q.Set("co", "")
	q.Set("resource_id", "6006")
	q.Set("oe", "utf8")
	u := "https://opendata.baidu.com/api.php?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Result{}, fmt.Errorf("opendata: %w: %v", ErrTransport, err)
	}
	t0 := time.Now()
	metrics.UpstreamRequestsTotal.WithLabelValues(NameOpenData).Inc()
	logger.L().Debug("opendata_req", "ip", ip)
	resp, err := p.client.Do(req)
	if err != nil {
		metrics.UpstreamFailTotal.WithLabelValues(NameOpenData).Inc()
		logger.L().Error("opendata_http_error", "err", err)
		return Result{}, fmt.Errorf("opendata: %w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	metrics.UpstreamDurationMs.WithLabelValues(NameOpenData).Observe(float64(time.Since(t0).Milliseconds()))
	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamFailTotal.WithLabelValues(NameOpenData).Inc()
		logger.L().Error("opendata_http_status", "status", resp.StatusCode)
		return Result{}, fmt.Errorf("opendata: %w: status %d", ErrTransport, resp.StatusCode)
	}
	var r openDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		metrics.UpstreamFailTotal.WithLabelValues(NameOpenData).Inc()
		logger.L().Error("opendata_decode_error", "err", err)
		return Result{}, fmt.Errorf("opendata: %w: %v", ErrBadPayload, err)
	}
	if r.Status != "0" || len(r.Data) == 0 {
		metrics.UpstreamFailTotal.WithLabelValues(NameOpenData).Inc()
		logger.L().Warn("opendata_bad_status", "status", r.Status, "records", len(r.Data))
		return Result{}, fmt.Errorf("opendata: %w: status=%s", ErrBadPayload, r.Status)
	}
	location := r.Data[0].Location
	if location == "" {
		metrics.UpstreamFailTotal.WithLabelValues(NameOpenData).Inc()
		logger.L().Warn("opendata_empty_location", "ip", ip)
		return Result{}, fmt.Errorf("opendata: %w: empty location", ErrBadPayload)
	}
	province, city, adcode := geo.Extract(location)
	loc := geo.Location{
		Province: province,
		City:     city,
		Adcode:   adcode,
		Address:  geo.StripCarrier(location),
	}
	if !loc.Valid() {
		metrics.UpstreamFailTotal.WithLabelValues(NameOpenData).Inc()
		logger.L().Warn("opendata_unparsable_location", "location", location)
		return Result{}, fmt.Errorf("opendata: %w: missing province/city", ErrBadPayload)
	}
	metrics.UpstreamSuccessTotal.WithLabelValues(NameOpenData).Inc()
	logger.L().Debug("opendata_resp", "ip", ip, "province", loc.Province, "city", loc.City)
	return Result{Provider: NameOpenData, Location: loc, Native: FormatNone}, nil
}
