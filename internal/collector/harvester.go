package collector

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/LJTian/JobAlert/internal/metrics"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// MaxLinksPerSource 每个站点最多收集的链接数（按文档顺序取前几个）
	MaxLinksPerSource = 3

	defaultUserAgent = "Mozilla/5.0"
	defaultTimeout   = 10 * time.Second
)

// Harvester 逐个站点串行抓取，单个站点失败只记录错误占位，不影响其余站点
type Harvester struct {
	userAgent string
	timeout   time.Duration
	maxLinks  int
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewHarvester(userAgent string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Harvester {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harvester{
		userAgent: userAgent,
		timeout:   timeout,
		maxLinks:  MaxLinksPerSource,
		logger:    logger,
		metrics:   m,
	}
}

// Harvest 对目录做一轮完整采集。ctx 被取消后，剩余站点直接记为错误
func (h *Harvester) Harvest(ctx context.Context, catalog Catalog) Result {
	start := time.Now()
	result := make(Result, 0, len(catalog)*h.maxLinks)

	for _, src := range catalog {
		if err := ctx.Err(); err != nil {
			result = append(result, Entry{Source: src.Name, Err: err})
			continue
		}

		h.logger.Info("scraping source", zap.String("source", src.Name))
		links, err := h.fetchSource(src)
		h.metrics.ObserveFetch(src.Name, err)
		if err != nil {
			h.logger.Warn("scrape source failed", zap.String("source", src.Name), zap.Error(err))
			result = append(result, Entry{Source: src.Name, Err: err})
			continue
		}

		h.metrics.ObserveLinks(src.Name, len(links))
		for _, link := range links {
			result = append(result, Entry{Source: src.Name, Link: link})
		}
	}

	elapsed := time.Since(start)
	h.metrics.ObserveHarvest(elapsed)
	links, errs := result.Counts()
	h.logger.Info("harvest done",
		zap.Int("sources", len(catalog)),
		zap.Int("links", links),
		zap.Int("errors", errs),
		zap.Duration("elapsed", elapsed),
	)
	return result
}

// fetchSource 发起一次 GET（不重试），解析页面并按站点规则提取链接
func (h *Harvester) fetchSource(src Source) (links []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	c := colly.NewCollector(
		colly.UserAgent(h.userAgent),
	)
	c.SetRequestTimeout(h.timeout)
	// 非 2xx 的页面同样解析
	c.ParseHTTPErrorResponse = true

	var parseErr error
	c.OnResponse(func(r *colly.Response) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			parseErr = errors.Wrap(err, "parse html")
			return
		}
		links = ExtractLinks(doc, src, h.maxLinks)
	})

	if err := c.Visit(src.URL); err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return links, nil
}

// ExtractLinks 按文档顺序遍历所有 <a href>，达到上限即停止
func ExtractLinks(doc *goquery.Document, src Source, limit int) []string {
	rule := src.rule()
	if limit <= 0 {
		return nil
	}
	links := make([]string, 0, limit)

	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return true
		}
		if link, accepted := rule.Extract(src.URL, href); accepted {
			links = append(links, link)
		}
		return len(links) < limit
	})
	return links
}
