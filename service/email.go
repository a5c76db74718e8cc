package service

import (
	"errors"
	"fmt"
	"html"

	"eventledger/config"
	"eventledger/ledger"
	"eventledger/models"

	"gopkg.in/gomail.v2"
)

// ErrEmailDisabled 邮件服务未启用
var ErrEmailDisabled = errors.New("邮件服务未启用，请配置 EVENTLEDGER_EMAIL_ENABLED=true")

// ErrNoRecipient 赞助商没有邮箱
var ErrNoRecipient = errors.New("赞助商没有填写邮箱")

// EmailService 邮件服务
type EmailService struct {
	cfg  *config.EmailConfig
	send func(m *gomail.Message) error
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	s := &EmailService{cfg: cfg}
	s.send = s.dialAndSend
	return s
}

// Enabled 是否已启用
func (s *EmailService) Enabled() bool {
	return s.cfg != nil && s.cfg.Enabled
}

// SendSponsorReminder 向赞助商发送付款提醒
func (s *EmailService) SendSponsorReminder(sp models.Sponsor, editionName string, year int) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}
	if sp.Email == "" {
		return ErrNoRecipient
	}
	subject := fmt.Sprintf("[%s] Rappel de votre participation %d", editionName, year)
	return s.sendEmail(sp.Email, subject, s.generateReminderBody(sp, editionName, year))
}

// generateReminderBody 生成提醒邮件内容
func (s *EmailService) generateReminderBody(sp models.Sponsor, editionName string, year int) string {
	_, pending := ledger.SponsorForYear(sp, year)
	greeting := sp.Contact
	if greeting == "" {
		greeting = sp.Name
	}
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #f97316, #ea580c); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .amount { font-size: 28px; font-weight: bold; color: #ea580c; text-align: center; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>%s</h1>
        </div>
        <div class="content">
            <p>Bonjour %s,</p>
            <p>Nous vous remercions pour votre soutien à l'édition %d. Sauf erreur de notre part, le montant suivant reste à régler :</p>
            <p class="amount">%s €</p>
            <p>Si le règlement a déjà été effectué, merci de ne pas tenir compte de ce message.</p>
        </div>
        <div class="footer">
            <p>%s</p>
        </div>
    </div>
</body>
</html>
`, html.EscapeString(editionName), html.EscapeString(greeting), year, pending.StringFixed(2), html.EscapeString(sp.Name))
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

func (s *EmailService) dialAndSend(m *gomail.Message) error {
	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}

// SendTestEmail 发送测试邮件
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}

	subject := "[eventledger] Test de configuration"
	body := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>Configuration e-mail OK</h2>
    <p>Si vous recevez ce message, l'envoi d'e-mails est correctement configuré.</p>
</body>
</html>
`
	return s.sendEmail(toEmail, subject, body)
}
