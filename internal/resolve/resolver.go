// 包 resolve：分级降级编排——按策略逐个尝试上游，首个成功即返回
package resolve

import (
	"context"
	"errors"
	"math/rand"

	"ip-location/internal/config"
	"ip-location/internal/logger"
	"ip-location/internal/metrics"
	"ip-location/internal/upstream"
)

var (
	// 所有候选均失败或被跳过：对外聚合为一次不可用，单个上游的失败原因只进日志
	ErrExhausted = errors.New("all upstream providers exhausted")
	// 候选列表为空：既无默认凭据也无免凭据上游，属于部署配置错误
	ErrNoUpstream = errors.New("no upstream provider configured")
)

// 文档注释：降级编排器
// 背景：显式凭据走单发策略，失败即终止；自动策略按两级候选顺序尝试，
//      一级为持默认凭据的上游、二级为免凭据上游，层内乱序、层间绝不交叉。
// 约束：候选严格串行，不并发竞速；乱序仅作用于单次请求，不依据历史成败调序。
type Resolver struct {
	providers []upstream.Provider
	defaults  config.Defaults
	shuffle   func(n int, swap func(i, j int))
}

func New(defaults config.Defaults, providers ...upstream.Provider) *Resolver {
	return &Resolver{providers: providers, defaults: defaults, shuffle: rand.Shuffle}
}

// WithShuffle：注入确定性乱序实现，供测试固定候选顺序
func (r *Resolver) WithShuffle(f func(n int, swap func(i, j int))) *Resolver {
	r.shuffle = f
	return r
}

// 文档注释：显式凭据单发策略
// 背景：调用方自带凭据时只命中对应上游；失败即终止且不降级，
//      避免用调用方凭据之外的来源顶替其期望的原生结果。
func (r *Resolver) ResolveExplicit(ctx context.Context, name, ip, cred, coor string) (upstream.Result, error) {
	for _, p := range r.providers {
		if p.Descriptor().Name != name {
			continue
		}
		res, err := p.Fetch(ctx, ip, cred, coor)
		if err != nil {
			logger.L().Warn("explicit_fetch_failed", "provider", name, "err", err)
			return upstream.Result{}, err
		}
		return res, nil
	}
	return upstream.Result{}, ErrNoUpstream
}

// 文档注释：自动分级降级策略
// 背景：逐个尝试候选，首个成功即短路返回；跳过与失败同样推进游标；
//      全部耗尽后对外聚合为一次不可用。
func (r *Resolver) Resolve(ctx context.Context, ip, coor string) (upstream.Result, error) {
	candidates := r.candidates()
	if len(candidates) == 0 {
		logger.L().Error("resolve_no_upstream")
		return upstream.Result{}, ErrNoUpstream
	}
	for _, p := range candidates {
		d := p.Descriptor()
		res, err := p.Fetch(ctx, ip, r.credentialFor(d), coor)
		if err != nil {
			if errors.Is(err, upstream.ErrCredentialMissing) {
				logger.L().Debug("candidate_skipped", "provider", d.Name)
			} else {
				logger.L().Warn("candidate_failed", "provider", d.Name, "err", err)
			}
			continue
		}
		logger.L().Debug("resolve_hit", "provider", d.Name, "province", res.Location.Province, "city", res.Location.City)
		return res, nil
	}
	metrics.ResolveExhaustedTotal.Inc()
	logger.L().Warn("resolve_exhausted", "ip", ip, "candidates", len(candidates))
	return upstream.Result{}, ErrExhausted
}

// candidates：构建分级候选列表
// 一级收录持默认凭据的上游，二级收录免凭据上游；需凭据但未配置默认凭据的上游不入选。
// 两级各自乱序后拼接，保证一级穷尽后才轮到二级。
func (r *Resolver) candidates() []upstream.Provider {
	var tier1, tier2 []upstream.Provider
	for _, p := range r.providers {
		d := p.Descriptor()
		switch {
		case d.RequiresCredential && r.credentialFor(d) != "":
			tier1 = append(tier1, p)
		case !d.RequiresCredential:
			tier2 = append(tier2, p)
		}
	}
	r.shuffle(len(tier1), func(i, j int) { tier1[i], tier1[j] = tier1[j], tier1[i] })
	r.shuffle(len(tier2), func(i, j int) { tier2[i], tier2[j] = tier2[j], tier2[i] })
	return append(tier1, tier2...)
}

// credentialFor：按上游名映射默认凭据；未配置返回空串
func (r *Resolver) credentialFor(d upstream.Descriptor) string {
	switch d.Name {
	case upstream.NameBaiduMap:
		return r.defaults.BaiduAK
	case upstream.NameAmap:
		return r.defaults.AmapKey
	}
	return ""
}
