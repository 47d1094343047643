package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"

	"ip-location/internal/upstream"
)

const baiduURL = "https://api.map.baidu.com/location/ip"

type BaiduMapTestSuite struct {
	UpstreamTestSuite

	prov *upstream.BaiduMap
}

func (s *BaiduMapTestSuite) SetupTest() {
	s.prov = upstream.NewBaiduMap(s.client)
}

func (s *BaiduMapTestSuite) TestDescriptor() {
	d := s.prov.Descriptor()
	s.Equal(upstream.NameBaiduMap, d.Name)
	s.Equal(upstream.TierCredentialed, d.Tier)
	s.True(d.RequiresCredential)
	s.Equal(upstream.FormatBaidu, d.Native)
}

func (s *BaiduMapTestSuite) TestSkipWithoutCredential() {
	_, err := s.prov.Fetch(context.Background(), "1.2.3.4", "", "bd09ll")

	s.ErrorIs(err, upstream.ErrCredentialMissing)
	s.Equal(0, httpmock.GetTotalCallCount(), "凭据缺失不得发起网络请求")
}

func (s *BaiduMapTestSuite) TestTransportError() {
	httpmock.RegisterResponder(http.MethodGet, baiduURL,
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := s.prov.Fetch(context.Background(), "1.2.3.4", "ak", "bd09ll")

	s.ErrorIs(err, upstream.ErrTransport)
}

func (s *BaiduMapTestSuite) TestHTTPStatusError() {
	httpmock.RegisterResponder(http.MethodGet, baiduURL,
		httpmock.NewStringResponder(http.StatusBadGateway, ""))

	_, err := s.prov.Fetch(context.Background(), "1.2.3.4", "ak", "bd09ll")

	s.ErrorIs(err, upstream.ErrTransport)
}

func (s *BaiduMapTestSuite) TestBadJSON() {
	httpmock.RegisterResponder(http.MethodGet, baiduURL,
		httpmock.NewStringResponder(http.StatusOK, "{["))

	_, err := s.prov.Fetch(context.Background(), "1.2.3.4", "ak", "bd09ll")

	s.ErrorIs(err, upstream.ErrBadPayload)
}

func (s *BaiduMapTestSuite) TestAKRejectedCodes() {
	// 240/230/101 均为 AK 无效/受限的业务码，必须按失败降级而非成功透传
	for _, code := range []int{240, 230, 101} {
		httpmock.RegisterResponder(http.MethodGet, baiduURL,
			httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"status": code}))

		_, err := s.prov.Fetch(context.Background(), "1.2.3.4", "ak", "bd09ll")

		s.ErrorIs(err, upstream.ErrBadPayload, "status=%d", code)
	}
}

func (s *BaiduMapTestSuite) TestMissingProvince() {
	httpmock.RegisterResponder(http.MethodGet, baiduURL,
		httpmock.NewStringResponder(http.StatusOK,
			`{"status":0,"content":{"address_detail":{"province":"","city":"清远市"}}}`))

	_, err := s.prov.Fetch(context.Background(), "1.2.3.4", "ak", "bd09ll")

	s.ErrorIs(err, upstream.ErrBadPayload)
}

func (s *BaiduMapTestSuite) TestMunicipalityCityDefault() {
	httpmock.RegisterResponder(http.MethodGet, baiduURL,
		httpmock.NewStringResponder(http.StatusOK,
			`{"status":0,"content":{"address_detail":{"province":"北京市","city":""}}}`))

	res, err := s.prov.Fetch(context.Background(), "1.2.3.4", "ak", "bd09ll")

	s.NoError(err)
	s.Equal("北京市", res.Location.Province)
	s.Equal("北京市", res.Location.City)
}

func (s *BaiduMapTestSuite) TestFetchOK() {
	httpmock.RegisterResponder(http.MethodGet, baiduURL,
		httpmock.NewStringResponder(http.StatusOK, `{
			"status": 0,
			"address": "CN|广东省|清远市||None||||",
			"content": {
				"address": "广东省清远市",
				"address_detail": {
					"adcode": "441800",
					"city": "清远市",
					"city_code": 197,
					"province": "广东省"
				},
				"point": {"x": "113.03", "y": "23.70"}
			}
		}`))

	res, err := s.prov.Fetch(context.Background(), "1.2.3.4", "ak", "bd09ll")

	s.NoError(err)
	s.Equal(upstream.NameBaiduMap, res.Provider)
	s.Equal(upstream.FormatBaidu, res.Native)
	s.Require().NotNil(res.Baidu)
	s.Equal("广东省", res.Location.Province)
	s.Equal("清远市", res.Location.City)
	s.Equal("441800", res.Location.Adcode)
	s.Equal("113.03", res.Location.Point.X)
	s.Equal("23.70", res.Location.Point.Y)
}

func TestBaiduMap(t *testing.T) {
	suite.Run(t, &BaiduMapTestSuite{})
}
