package geo

import (
	"strings"
	"unicode"
)

// 省级后缀：扫描顺序固定，先匹配者生效
var provinceSuffixes = []string{"省", "自治区", "直辖市", "特别行政区"}

// 市级后缀：扫描顺序固定
var citySuffixes = []string{"市", "州", "盟", "地区"}

// StripCarrier：去除末尾以空白分隔的运营商标注（仅最后一段）
// 背景：百度开放平台的 location 形如“广东省清远市 电信”，末段为运营商而非行政区划
func StripCarrier(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexFunc(s, unicode.IsSpace); i >= 0 {
		if head := strings.TrimSpace(s[:i]); head != "" {
			return head
		}
	}
	return s
}

// 文档注释：自由文本行政区划解析
// 背景：部分上游仅返回自由文本，需切分为省、市两级；区划码无法从文本推导，恒为空串。
// 约束：纯函数，永不失败，解析不出时省为空即代表“无结果”；后缀关键词的优先级顺序
//      不可调整，地名本身含关键词子串属于上游固有歧义，不在此处修补。
func Extract(freeText string) (province, city, adcode string) {
	s := StripCarrier(freeText)
	if s == "" {
		return "", "", ""
	}
	p, rest := cutSuffix(s, provinceSuffixes)
	if p == "" {
		// 无省级后缀：整段视为省级单位（直辖市/特别行政区的常见形态）
		p, rest = s, ""
	}
	rest = strings.TrimSpace(rest)
	c, _ := cutSuffix(rest, citySuffixes)
	if c == "" {
		if rest != "" {
			c = rest
		} else {
			c = p
		}
	}
	if c == p && !isMunicipality(p) {
		// 省市同名但省并非直辖市：尝试从剩余文本的首个空白分段恢复市名
		if f := strings.Fields(rest); len(f) > 0 {
			c = f[0]
		}
	}
	return p, c, ""
}

// cutSuffix：按关键词顺序扫描，命中则返回“截至关键词（含）”的片段与剩余文本
func cutSuffix(s string, keys []string) (seg, rest string) {
	for _, k := range keys {
		if i := strings.Index(s, k); i >= 0 {
			return s[:i+len(k)], s[i+len(k):]
		}
	}
	return "", s
}

// isMunicipality：省级单位本身即市（直辖市）或特别行政区，市名缺省与省同名
func isMunicipality(p string) bool {
	return strings.HasSuffix(p, "市") || strings.HasSuffix(p, "特别行政区")
}
