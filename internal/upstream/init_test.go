package upstream_test

import (
	"net/http"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"
)

// UpstreamTestSuite：各客户端共用的挡板基座，拦截共享 HTTP 客户端的出站请求
type UpstreamTestSuite struct {
	suite.Suite

	client *http.Client
}

func (s *UpstreamTestSuite) SetupSuite() {
	s.client = &http.Client{}
	httpmock.ActivateNonDefault(s.client)
}

func (s *UpstreamTestSuite) TearDownSuite() {
	httpmock.DeactivateAndReset()
}

func (s *UpstreamTestSuite) TearDownTest() {
	httpmock.Reset()
}
