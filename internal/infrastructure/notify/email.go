// Package notify delivers finished reports to outbound channels.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"AIDailyNews/internal/config"
	"AIDailyNews/internal/ports"
)

var _ ports.Notifier = (*EmailNotifier)(nil)

// EmailNotifier sends the markdown report over SMTP as a
// multipart/alternative message with a rendered HTML part.
type EmailNotifier struct {
	cfg    config.EmailConfig
	logger *slog.Logger
}

// NewEmailNotifier creates an SMTP-backed notifier.
func NewEmailNotifier(cfg config.EmailConfig, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, logger: logger}
}

// SendReport mails the report at reportPath to the configured recipients.
// Missing credentials or recipients downgrade the send to a warning so a
// run without email setup still completes.
func (n *EmailNotifier) SendReport(ctx context.Context, reportPath string) error {
	if n.cfg.Username == "" || n.cfg.Password == "" || len(n.cfg.Recipients) == 0 {
		n.warn("email notifier not configured, skipping send")
		return nil
	}

	body, err := os.ReadFile(reportPath)
	if err != nil {
		return fmt.Errorf("read report %s: %w", reportPath, err)
	}

	subject := fmt.Sprintf("AI Daily Report %s", reportDate(reportPath))
	msg, err := n.buildMessage(subject, string(body))
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	if err := n.send(ctx, msg); err != nil {
		return fmt.Errorf("send report mail: %w", err)
	}
	n.info("report mailed", slog.Int("recipients", len(n.cfg.Recipients)))
	return nil
}

func (n *EmailNotifier) buildMessage(subject, markdown string) ([]byte, error) {
	var buf strings.Builder
	mw := multipart.NewWriter(&buf)

	headers := []string{
		fmt.Sprintf("From: %s", n.cfg.Username),
		fmt.Sprintf("To: %s", strings.Join(n.cfg.Recipients, ", ")),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", mw.Boundary()),
		"",
		"",
	}

	plain, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := plain.Write([]byte(markdown)); err != nil {
		return nil, err
	}

	html, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := html.Write([]byte(markdownToHTML(markdown))); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return []byte(strings.Join(headers, "\r\n") + buf.String()), nil
}

func (n *EmailNotifier) send(ctx context.Context, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPServer, n.cfg.SMTPPort)

	dialer := &net.Dialer{Timeout: 30 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	if n.cfg.UseSSL {
		conn = tls.Client(conn, &tls.Config{ServerName: n.cfg.SMTPServer})
	}

	client, err := smtp.NewClient(conn, n.cfg.SMTPServer)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if !n.cfg.UseSSL {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: n.cfg.SMTPServer}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.SMTPServer)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(n.cfg.Username); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range n.cfg.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return client.Quit()
}

var (
	mdHeadingExpr = regexp.MustCompile(`(?m)^(#{1,6})\s*(.+)$`)
	mdBoldExpr    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	mdLinkExpr    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	mdQuoteExpr   = regexp.MustCompile(`(?m)^>\s?(.*)$`)
	mdRuleExpr    = regexp.MustCompile(`(?m)^---+$`)
	mdBulletExpr  = regexp.MustCompile(`(?m)^-\s+(.+)$`)
)

// markdownToHTML renders the limited markdown subset the report generator
// emits. It is not a general markdown converter.
func markdownToHTML(md string) string {
	out := mdHeadingExpr.ReplaceAllStringFunc(md, func(m string) string {
		parts := mdHeadingExpr.FindStringSubmatch(m)
		level := len(parts[1])
		return fmt.Sprintf("<h%d>%s</h%d>", level, parts[2], level)
	})
	out = mdBoldExpr.ReplaceAllString(out, "<strong>$1</strong>")
	out = mdLinkExpr.ReplaceAllString(out, `<a href="$2">$1</a>`)
	out = mdQuoteExpr.ReplaceAllString(out, "<blockquote>$1</blockquote>")
	out = mdRuleExpr.ReplaceAllString(out, "<hr>")
	out = mdBulletExpr.ReplaceAllString(out, "<li>$1</li>")
	out = strings.ReplaceAll(out, "\n\n", "<br><br>\n")

	var page strings.Builder
	page.WriteString("<html><body style=\"font-family: Arial, sans-serif; line-height: 1.6;\">\n")
	page.WriteString(out)
	page.WriteString("\n</body></html>")
	return page.String()
}

// reportDate extracts the run date from the artifact directory name.
func reportDate(reportPath string) string {
	return filepath.Base(filepath.Dir(reportPath))
}

func (n *EmailNotifier) info(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Info(msg, args...)
	}
}

func (n *EmailNotifier) warn(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Warn(msg, args...)
	}
}
