package adapters

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"profile_backend/internal/feature/user/domain/entity"
	"profile_backend/internal/feature/user/usecase"
	"profile_backend/internal/platform/mail"
)

// 件名です。
const (
	SubjectProfileUpdated = "Profile Updated Successfully"
	SubjectAvatarReminder = "Please add a profile picture"
)

var profileUpdatedHTML = htmltemplate.Must(htmltemplate.New("profile_updated").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      <h1>Profile Update Notification</h1>
      <p>Hi {{.Name}},</p>
      <p>Your profile has been updated successfully.</p>
      <p>If you didn't make these changes, please contact our support team immediately.</p>
      <p>Best regards,<br/>{{.AppName}} Team</p>
      <p style="color: #666; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
  </body>
</html>`))

var profileUpdatedText = texttemplate.Must(texttemplate.New("profile_updated").Parse(`Hi {{.Name}},

Your profile has been updated successfully.

If you didn't make these changes, please contact our support team immediately.

Best regards,
{{.AppName}} Team
`))

var avatarReminderHTML = htmltemplate.Must(htmltemplate.New("avatar_reminder").Parse(`<p>Hi {{.Name}},</p>
<p>We noticed you haven't added a profile picture yet. Add one to personalize your account:</p>
<p><a href="{{.Link}}">Add profile picture</a></p>`))

var avatarReminderText = texttemplate.Must(texttemplate.New("avatar_reminder").Parse(`Hi {{.Name}},

We noticed you haven't added a profile picture yet. Add one here: {{.Link}}
`))

type mailData struct {
	Name    string
	AppName string
	Link    string
}

// MailNotifier はユーザー向けの通知をメールで送信します。
type MailNotifier struct {
	sender  mail.Sender
	appName string
	appURL  string
}

var _ usecase.Notifier = (*MailNotifier)(nil)

// NewMailNotifier はMailNotifierを生成します。appURLはリマインダーのリンクに使います。
func NewMailNotifier(sender mail.Sender, appName, appURL string) *MailNotifier {
	if appName == "" {
		appName = "Your App"
	}
	if appURL == "" {
		appURL = "https://example.com"
	}
	return &MailNotifier{sender: sender, appName: appName, appURL: strings.TrimRight(appURL, "/")}
}

func (n *MailNotifier) data(u *entity.User) mailData {
	name := u.Name
	if name == "" {
		name = "User"
	}
	return mailData{Name: name, AppName: n.appName, Link: n.appURL + entity.RoleUser.HomePath()}
}

// NotifyProfileUpdated はプロフィール更新の通知を送信します。
func (n *MailNotifier) NotifyProfileUpdated(ctx context.Context, u *entity.User) error {
	return n.send(ctx, u, SubjectProfileUpdated, profileUpdatedText, profileUpdatedHTML)
}

// SendAvatarReminder はプロフィール画像の設定を促すメールを送信します。
func (n *MailNotifier) SendAvatarReminder(ctx context.Context, u *entity.User) error {
	return n.send(ctx, u, SubjectAvatarReminder, avatarReminderText, avatarReminderHTML)
}

func (n *MailNotifier) send(ctx context.Context, u *entity.User, subject string, text *texttemplate.Template, html *htmltemplate.Template) error {
	if u.Email == "" {
		return fmt.Errorf("user %s has no email address", u.ID)
	}
	d := n.data(u)

	var textBuf, htmlBuf bytes.Buffer
	if err := text.Execute(&textBuf, d); err != nil {
		return fmt.Errorf("render %s text: %w", text.Name(), err)
	}
	if err := html.Execute(&htmlBuf, d); err != nil {
		return fmt.Errorf("render %s html: %w", html.Name(), err)
	}

	_, err := n.sender.Send(ctx, mail.Message{
		To:      u.Email,
		Subject: subject,
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	})
	return err
}
