package providers

import (
	"github.com/samber/do/v2"

	"github.com/flashblog/flashblog-server/internal/config"
	"github.com/flashblog/flashblog-server/internal/logger"
	"github.com/flashblog/flashblog-server/internal/mail"
)

// ProvideMailSender provides the outbound mail sender for the configured driver.
func ProvideMailSender(i do.Injector) (mail.Sender, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Mail.Driver == "smtp" {
		log.Info("Mail sender initialized",
			"driver", "smtp",
			"host", cfg.Mail.SMTPHost,
			"port", cfg.Mail.SMTPPort,
		)
		return &mail.SMTPSender{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		}, nil
	}

	log.Info("Mail sender initialized", "driver", "log")
	return &mail.LogSender{Logger: log.Logger}, nil
}
