package collector

import "fmt"

// Entry 一次采集中的一条结果：要么是找到的链接，要么是该站点的错误占位
type Entry struct {
	Source string
	Link   string
	Err    error
}

// String 渲染为邮件正文中的一行
func (e Entry) String() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: Error - %s", e.Source, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Link)
}

// Result 按目录顺序、站点内按发现顺序排列的采集结果
type Result []Entry

// Lines 返回每条结果的文本形式
func (r Result) Lines() []string {
	out := make([]string, 0, len(r))
	for _, e := range r {
		out = append(out, e.String())
	}
	return out
}

// Counts 统计链接数与错误数
func (r Result) Counts() (links, errs int) {
	for _, e := range r {
		if e.Err != nil {
			errs++
			continue
		}
		links++
	}
	return links, errs
}
