// Package email turns a preview into a MIME message so it can be opened
// in a mail client before the schedule ever fires.
package email

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/gomail.v2"

	"JetScheduler/internal/models"
	"JetScheduler/internal/schedule"
)

// Composer builds messages from a configuration and its preview.
type Composer struct {
	From   string
	Locale string
	Now    func() time.Time
}

func (c *Composer) Compose(cfg models.EmailConfiguration, p models.EmailPreview) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", c.From)
	if len(p.Recipients) > 0 {
		m.SetHeader("To", p.Recipients...)
	}
	m.SetHeader("Subject", cfg.Label)
	m.SetHeader("X-Jet-Config-Id", cfg.ID)

	if cfg.Schedule != nil {
		m.SetHeader("X-Jet-Schedule", schedule.Describe(*cfg.Schedule, c.Locale))
		if expr := schedule.ToCron(*cfg.Schedule); expr != "" {
			m.SetHeader("X-Jet-Cron", expr)
		}
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	m.SetDateHeader("Date", now())

	m.SetBody("text/html", p.RenderedHTML)
	return m
}

// WriteEML writes the composed message in RFC 5322 form.
func (c *Composer) WriteEML(w io.Writer, cfg models.EmailConfiguration, p models.EmailPreview) error {
	if _, err := c.Compose(cfg, p).WriteTo(w); err != nil {
		return fmt.Errorf("write eml: %w", err)
	}
	return nil
}
