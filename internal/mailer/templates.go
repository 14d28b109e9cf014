package mailer

import (
	"bytes"
	"html/template"
)

var verificationTmpl = template.Must(template.New("verify").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Verify your email address</h2>
  <p>Hello{{if .Name}} {{.Name}}{{end}},</p>
  <p>Thank you for registering. Please confirm your email address by clicking the link below:</p>
  <p><a href="{{.Link}}">Verify email</a></p>
  <p>If you did not create an account, you can ignore this email.</p>
</div>`))

var resetTmpl = template.Must(template.New("reset").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Reset your password</h2>
  <p>We received a request to reset the password for your account.</p>
  <p><a href="{{.Link}}">Choose a new password</a></p>
  <p>This link expires in {{.ValidFor}}. If you did not request a reset, you can ignore this email.</p>
</div>`))

// VerificationEmail builds the address verification message.
func VerificationEmail(to, name, link string) (Message, error) {
	var b bytes.Buffer
	if err := verificationTmpl.Execute(&b, map[string]string{"Name": name, "Link": link}); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Verify your email address", HTML: b.String()}, nil
}

// PasswordResetEmail builds the password reset message.
func PasswordResetEmail(to, link, validFor string) (Message, error) {
	var b bytes.Buffer
	if err := resetTmpl.Execute(&b, map[string]string{"Link": link, "ValidFor": validFor}); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Reset your password", HTML: b.String()}, nil
}
