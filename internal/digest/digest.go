package digest

import (
	"bytes"
	"mime"
	"strings"
	"time"
)

const (
	// Subject 固定的邮件标题
	Subject = "🚀 Daily Entry-Level AI/ML/DS Jobs at Top Startups & Job Boards"

	intro      = "Here are today's latest entry-level AI/ML/DS jobs:"
	timeLayout = "2006-01-02 15:04:05"
)

// Message 一次发送的邮件，构造后不再修改
type Message struct {
	Subject string
	From    string
	To      string
	Body    string
}

// Compose 把采集结果拼成纯文本正文；调用方保证 lines 非空
func Compose(lines []string, now time.Time, from, to string) Message {
	var b strings.Builder
	b.WriteString(intro)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nTime: ")
	b.WriteString(now.Format(timeLayout))

	return Message{
		Subject: Subject,
		From:    from,
		To:      to,
		Body:    b.String(),
	}
}

// Bytes 渲染为 SMTP DATA 段的原始报文，行尾统一为 CRLF
func (m Message) Bytes() []byte {
	var buf bytes.Buffer
	writeHeader(&buf, "From", m.From)
	writeHeader(&buf, "To", m.To)
	writeHeader(&buf, "Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	writeHeader(&buf, "MIME-Version", "1.0")
	writeHeader(&buf, "Content-Type", `text/plain; charset="utf-8"`)
	writeHeader(&buf, "Content-Transfer-Encoding", "8bit")
	buf.WriteString("\r\n")

	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	buf.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	buf.WriteString("\r\n")
	return buf.Bytes()
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}
