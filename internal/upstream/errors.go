package upstream

import "errors"

// 失败分类：编排层据此推进候选并分类打点；具体原因只进日志，不对调用方透出
var (
	// 必需凭据未提供：软失败，跳过该候选，不发起网络请求
	ErrCredentialMissing = errors.New("credential missing")
	// 传输层失败：超时、连接错误或非 2xx 状态
	ErrTransport = errors.New("upstream transport failure")
	// 数据层失败：报文不可解析、缺少省市字段，或上游以业务码表达凭据无效/受限
	ErrBadPayload = errors.New("upstream payload invalid")
)
