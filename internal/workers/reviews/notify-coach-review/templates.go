// internal/workers/reviews/notify-coach-review/templates.go
package notifycoachreview

import (
	"strings"
	"text/template"
)

var (
	subjectTemplate = template.Must(template.New("subject").Parse(
		`New {{.Rating}}-star review on your profile`))

	emailTemplate = template.Must(template.New("email").Parse(`Hi {{.CoachName}},

{{if .ReviewerName}}{{.ReviewerName}}{{else}}A client{{end}} left you a {{.Rating}}-star review.
{{if .Comment}}
"{{.Comment}}"
{{end}}
You can reply to this review from your coach dashboard (review {{.ReviewID}}).
`))

	smsTemplate = template.Must(template.New("sms").Parse(
		`{{.CoachName}}, you received a {{.Rating}}-star review. Check your dashboard to respond.`))
)

type messageData struct {
	CoachName    string
	ReviewerName string
	ReviewID     string
	Rating       int
	Comment      string
}

func render(t *template.Template, data messageData) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
