package collector

import (
	"net/url"
	"strings"
)

// Rule 从页面上的一个 href 中提取候选链接；纯函数，不做网络请求
type Rule interface {
	Extract(pageURL, href string) (string, bool)
}

// DefaultKeywords 普通招聘站点的关键词
var DefaultKeywords = []string{"job", "jobs", "intern"}

// KeywordRule 对 href 做不区分大小写的关键词匹配，站内相对链接补全为 https 绝对地址
type KeywordRule struct {
	Keywords []string
}

func (k KeywordRule) Extract(pageURL, href string) (string, bool) {
	keywords := k.Keywords
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	lower := strings.ToLower(href)
	matched := false
	for _, w := range keywords {
		if strings.Contains(lower, w) {
			matched = true
			break
		}
	}
	if !matched {
		return "", false
	}

	switch {
	case strings.HasPrefix(href, "/"):
		host := hostOf(pageURL)
		if host == "" {
			return "", false
		}
		return "https://" + host + href, true
	case strings.HasPrefix(href, "http"):
		return href, true
	default:
		return "", false
	}
}

// RedirectMarker 搜索引擎结果页中包裹真实地址的参数
const RedirectMarker = "url?q="

// RedirectRule 只接受带跳转参数的 href，取参数与下一个 & 之间的内容作为真实链接
type RedirectRule struct {
	Marker string
}

func (r RedirectRule) Extract(_, href string) (string, bool) {
	marker := r.Marker
	if marker == "" {
		marker = RedirectMarker
	}

	idx := strings.Index(href, marker)
	if idx == -1 {
		return "", false
	}
	target := href[idx+len(marker):]
	// 同一个 href 中若再次出现 marker，只取第一段
	if j := strings.Index(target, marker); j != -1 {
		target = target[:j]
	}
	if j := strings.IndexByte(target, '&'); j != -1 {
		target = target[:j]
	}
	return target, true
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
