package digest

import (
	"mime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeBody(t *testing.T) {
	now := time.Date(2024, 1, 1, 11, 0, 0, 0, time.Local)

	msg := Compose([]string{"A: http://a", "B: http://b"}, now, "me@example.com", "you@example.com")

	assert.Equal(t, Subject, msg.Subject)
	assert.Equal(t, "me@example.com", msg.From)
	assert.Equal(t, "you@example.com", msg.To)
	assert.True(t, strings.HasPrefix(msg.Body, "Here are today's latest entry-level AI/ML/DS jobs:\n\n"))
	assert.True(t, strings.HasSuffix(msg.Body, "\nTime: 2024-01-01 11:00:00"))

	a := strings.Index(msg.Body, "A: http://a")
	b := strings.Index(msg.Body, "B: http://b")
	require.NotEqual(t, -1, a)
	require.NotEqual(t, -1, b)
	assert.Less(t, a, b)
}

func TestComposeExactLayout(t *testing.T) {
	now := time.Date(2025, 3, 9, 7, 5, 3, 0, time.UTC)
	msg := Compose([]string{"X: Error - timeout"}, now, "", "")

	want := "Here are today's latest entry-level AI/ML/DS jobs:\n\nX: Error - timeout\n\nTime: 2025-03-09 07:05:03"
	assert.Equal(t, want, msg.Body)
}

func TestMessageBytes(t *testing.T) {
	msg := Compose([]string{"A: http://a"}, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), "me@example.com", "you@example.com")
	raw := string(msg.Bytes())

	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, head, "From: me@example.com\r\n")
	assert.Contains(t, head, "To: you@example.com\r\n")
	assert.Contains(t, head, "Content-Type: text/plain")

	var subject string
	for _, line := range strings.Split(head, "\r\n") {
		if v, found := strings.CutPrefix(line, "Subject: "); found {
			subject = v
		}
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(subject)
	require.NoError(t, err)
	assert.Equal(t, Subject, decoded)

	assert.NotContains(t, strings.ReplaceAll(body, "\r\n", ""), "\n")
	assert.Contains(t, body, "A: http://a\r\n")
}
