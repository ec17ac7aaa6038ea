package usecase

import (
	"bytes"
	"context"
	"errors"
	htmltemplate "html/template"
	"log/slog"
	"strings"
	texttemplate "text/template"

	"github.com/shandysiswandi/skillbridge/internal/notification/entity"
	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
)

type builtinTemplate struct {
	subject string
	html    string
	text    string
}

// builtinTemplates are used when the database has no row for a trigger, and
// always for the plain-text part.
var builtinTemplates = map[entity.TriggerKey]builtinTemplate{
	entity.TriggerKeyPaymentOTP: {
		subject: "Your payment verification code",
		html: `<p>Hi {{.full_name}},</p>` +
			`<p>Use <strong>{{.code}}</strong> to confirm your payment for <em>{{.training_title}}</em>.</p>` +
			`<p>The code expires in {{.expires_in_minutes}} minutes. Do not share it with anyone.</p>` +
			`<p>{{.company_name}}</p>`,
		text: "Hi {{.full_name}},\n\n" +
			"Use {{.code}} to confirm your payment for {{.training_title}}.\n" +
			"The code expires in {{.expires_in_minutes}} minutes. Do not share it with anyone.\n\n" +
			"{{.company_name}}\n",
	},
	entity.TriggerKeyRegistrationConfirmed: {
		subject: "Registration confirmed: {{.training_title}}",
		html: `<p>Hi {{.full_name}},</p>` +
			`<p>Your registration for <em>{{.training_title}}</em> is confirmed.</p>` +
			`<p>Amount paid: {{.amount}}</p>` +
			`<p>Reference: {{.finalization_reference}}</p>` +
			`{{if .receipt_url}}<p><a href="{{.receipt_url}}">Download receipt</a></p>{{end}}` +
			`<p>{{.company_name}}</p>`,
		text: "Hi {{.full_name}},\n\n" +
			"Your registration for {{.training_title}} is confirmed.\n" +
			"Amount paid: {{.amount}}\n" +
			"Reference: {{.finalization_reference}}\n" +
			"{{if .receipt_url}}Receipt: {{.receipt_url}}\n{{end}}\n" +
			"{{.company_name}}\n",
	},
}

var errNoTemplate = errors.New("no template for trigger")

// render resolves the stored template for tk, falling back to the built-in
// one, and executes subject and bodies against data. A non-empty subject
// replaces the template's.
func (s *Usecase) render(ctx context.Context, tk entity.TriggerKey, subjectOverride string, data map[string]any) (entity.RenderedMessage, error) {
	builtin, hasBuiltin := builtinTemplates[tk]

	subject, body := builtin.subject, builtin.html
	tpl, err := s.repoDB.GetTemplateByTriggerChannel(ctx, tk, entity.ChannelEmail)
	switch {
	case err == nil:
		subject, body = tpl.Subject, tpl.Body
	case errors.Is(err, goerror.ErrNotFound):
		slog.WarnContext(ctx, "notification template not found, using built-in", "trigger_key", tk.String())
	default:
		slog.ErrorContext(ctx, "failed to repo get template by trigger channel", "trigger_key", tk.String(), "error", err)
	}

	if subjectOverride != "" {
		subject = subjectOverride
	}
	if body == "" && !hasBuiltin {
		return entity.RenderedMessage{}, errNoTemplate
	}

	out := entity.RenderedMessage{TriggerKey: tk}
	if out.Subject, err = renderText("subject", subject, data); err != nil {
		return out, err
	}
	out.Subject = strings.Join(strings.Fields(out.Subject), " ")

	if out.HTML, err = renderHTML("html", body, data); err != nil {
		return out, err
	}
	if builtin.text != "" {
		if out.Text, err = renderText("text", builtin.text, data); err != nil {
			return out, err
		}
	}

	return out, nil
}

func renderHTML(name, tpl string, data map[string]any) (string, error) {
	t, err := htmltemplate.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func renderText(name, tpl string, data map[string]any) (string, error) {
	t, err := texttemplate.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
