package notifier

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/LJTian/JobAlert/internal/digest"
	"github.com/LJTian/JobAlert/internal/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const dialTimeout = 30 * time.Second

// ErrAuthentication 邮箱账号或应用专用密码被服务器拒绝
var ErrAuthentication = errors.New("smtp authentication failed")

type smtpClient interface {
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

type dialFunc func(ctx context.Context, addr string, cfg *tls.Config) (smtpClient, error)

// Mailer 每次发送都新建一条 SMTP over TLS 连接，发送完立即关闭
type Mailer struct {
	host     string
	port     string
	username string
	password string
	dial     dialFunc
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewMailer(host, port, username, password string, logger *zap.Logger, m *metrics.Metrics) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		dial:     dialTLS,
		logger:   logger,
		metrics:  m,
	}
}

// Send 连接、认证、投递、退出；任何路径上连接都会被关闭
func (m *Mailer) Send(ctx context.Context, msg digest.Message) error {
	err := m.send(ctx, msg)
	m.metrics.ObserveEmail(err)
	if err != nil {
		return err
	}
	m.logger.Info("email sent", zap.String("recipient", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func (m *Mailer) send(ctx context.Context, msg digest.Message) error {
	addr := net.JoinHostPort(m.host, m.port)
	c, err := m.dial(ctx, addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return errors.Wrapf(err, "dial %s", addr)
	}
	defer c.Close()

	if err := c.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
		if isAuthRejected(err) {
			return errors.Wrap(ErrAuthentication, err.Error())
		}
		return errors.Wrap(err, "smtp auth")
	}
	if err := c.Mail(msg.From); err != nil {
		return errors.Wrap(err, "smtp mail from")
	}
	if err := c.Rcpt(msg.To); err != nil {
		return errors.Wrap(err, "smtp rcpt to")
	}

	w, err := c.Data()
	if err != nil {
		return errors.Wrap(err, "smtp data")
	}
	if _, err := w.Write(msg.Bytes()); err != nil {
		_ = w.Close()
		return errors.Wrap(err, "write message")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "finish message")
	}

	if err := c.Quit(); err != nil {
		return errors.Wrap(err, "smtp quit")
	}
	return nil
}

// isAuthRejected 服务器对 AUTH 给出的任何拒绝应答（530/534/535/454 等）都按凭据问题处理；
// 连接中断等传输错误不是 textproto.Error，按普通发送失败处理
func isAuthRejected(err error) bool {
	var tpErr *textproto.Error
	return errors.As(err, &tpErr)
}

func dialTLS(ctx context.Context, addr string, cfg *tls.Config) (smtpClient, error) {
	d := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: dialTimeout},
		Config:    cfg,
	}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}
