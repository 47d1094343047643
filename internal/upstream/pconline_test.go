package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/encoding/simplifiedchinese"

	"ip-location/internal/upstream"
)

const pconlineURL = "http://whois.pconline.com.cn/ipJson.jsp"

type PConlineTestSuite struct {
	UpstreamTestSuite

	prov *upstream.PConline
}

func (s *PConlineTestSuite) SetupTest() {
	s.prov = upstream.NewPConline(s.client)
}

// gbk：上游报文为 GBK 编码，测试挡板按同样编码回放
func (s *PConlineTestSuite) gbk(utf8 string) string {
	out, err := simplifiedchinese.GBK.NewEncoder().String(utf8)
	s.Require().NoError(err)
	return out
}

func (s *PConlineTestSuite) TestDescriptor() {
	d := s.prov.Descriptor()
	s.Equal(upstream.NamePConline, d.Name)
	s.Equal(upstream.TierFree, d.Tier)
	s.False(d.RequiresCredential)
	s.Equal(upstream.FormatNone, d.Native)
}

func (s *PConlineTestSuite) TestTransportError() {
	httpmock.RegisterResponder(http.MethodGet, pconlineURL,
		httpmock.NewErrorResponder(errors.New("connection reset")))

	_, err := s.prov.Fetch(context.Background(), "1.2.3.4", "", "")

	s.ErrorIs(err, upstream.ErrTransport)
}

func (s *PConlineTestSuite) TestUpstreamErrField() {
	httpmock.RegisterResponder(http.MethodGet, pconlineURL,
		httpmock.NewStringResponder(http.StatusOK,
			s.gbk(`{"ip":"1.2.3.4","pro":"","city":"","err":"IP格式错误"}`)))

	_, err := s.prov.Fetch(context.Background(), "1.2.3.4", "", "")

	s.ErrorIs(err, upstream.ErrBadPayload)
}

func (s *PConlineTestSuite) TestMissingProvince() {
	httpmock.RegisterResponder(http.MethodGet, pconlineURL,
		httpmock.NewStringResponder(http.StatusOK,
			s.gbk(`{"ip":"1.2.3.4","pro":"","proCode":"","city":"","cityCode":"","err":""}`)))

	_, err := s.prov.Fetch(context.Background(), "1.2.3.4", "", "")

	s.ErrorIs(err, upstream.ErrBadPayload)
}

func (s *PConlineTestSuite) TestFetchOK() {
	httpmock.RegisterResponder(http.MethodGet, pconlineURL,
		httpmock.NewStringResponder(http.StatusOK, s.gbk(
			`{"ip":"1.2.3.4","pro":"广东省","proCode":"440000","city":"清远市","cityCode":"441800","region":"","regionCode":"0","addr":"广东省清远市 电信","err":""}`)))

	res, err := s.prov.Fetch(context.Background(), "1.2.3.4", "", "")

	s.NoError(err)
	s.Equal(upstream.NamePConline, res.Provider)
	s.Equal(upstream.FormatNone, res.Native)
	s.Equal("广东省", res.Location.Province)
	s.Equal("清远市", res.Location.City)
	// 区划码拼接沿用历史截断方式：省编码 + 市编码去掉前两位
	s.Equal("4400001800", res.Location.Adcode)
}

func (s *PConlineTestSuite) TestAdcodeOmittedWhenCodesMissing() {
	httpmock.RegisterResponder(http.MethodGet, pconlineURL,
		httpmock.NewStringResponder(http.StatusOK, s.gbk(
			`{"ip":"1.2.3.4","pro":"广东省","proCode":"","city":"清远市","cityCode":"","err":""}`)))

	res, err := s.prov.Fetch(context.Background(), "1.2.3.4", "", "")

	s.NoError(err)
	s.Empty(res.Location.Adcode, "编码缺失时不得编造区划码")
}

func (s *PConlineTestSuite) TestMunicipalityCityDefault() {
	httpmock.RegisterResponder(http.MethodGet, pconlineURL,
		httpmock.NewStringResponder(http.StatusOK, s.gbk(
			`{"ip":"1.2.3.4","pro":"上海市","proCode":"310000","city":"","cityCode":"","err":""}`)))

	res, err := s.prov.Fetch(context.Background(), "1.2.3.4", "", "")

	s.NoError(err)
	s.Equal("上海市", res.Location.Province)
	s.Equal("上海市", res.Location.City)
}

func TestPConline(t *testing.T) {
	suite.Run(t, &PConlineTestSuite{})
}
