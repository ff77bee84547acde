// Package notify emails club members when tasks land on their plate.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/clubware/taskhub/internal/directory"
	"github.com/clubware/taskhub/internal/mail"
	"github.com/clubware/taskhub/internal/models"
)

var assignedTmpl = template.Must(template.New("task_assigned").Parse(`<p>Hi {{.FirstName}},</p>
<p>{{.AssignerName}} assigned you a new task:</p>
<p><strong>{{.Title}}</strong></p>
{{if .Deadline}}<p>Deadline: {{.Deadline}}</p>{{end}}
<p><a href="{{.URL}}">Open the task in TaskHub</a></p>
`))

type assignedData struct {
	FirstName    string
	AssignerName string
	Title        string
	Deadline     string
	URL          string
}

// Dispatcher sends task notifications. All delivery problems are
// logged and swallowed; a missed email must never fail the task
// operation that triggered it.
type Dispatcher struct {
	mailer  mail.Mailer
	dir     *directory.Directory
	baseURL string
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher. A nil mailer disables delivery
// but keeps the dispatcher safe to call.
func NewDispatcher(mailer mail.Mailer, dir *directory.Directory, baseURL string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		mailer:  mailer,
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// TaskAssigned notifies every listed assignee about the task. Each
// recipient is attempted independently so one bad address cannot
// block the rest.
func (d *Dispatcher) TaskAssigned(ctx context.Context, task *models.Task, assigneeIDs []uint64) {
	if len(assigneeIDs) == 0 {
		return
	}
	if d.mailer == nil {
		d.logger.Warn("mail disabled, skipping assignment notifications",
			"task_id", task.ID, "recipients", len(assigneeIDs))
		return
	}

	assignerName := task.Assigner.Name
	if assignerName == "" {
		assignerName = "A teammate"
	}

	for _, id := range assigneeIDs {
		user, ok, err := d.dir.ByID(id)
		if err != nil || !ok {
			d.logger.Warn("could not resolve notification recipient",
				"user_id", id, "task_id", task.ID, "error", err)
			continue
		}
		if user.Email == "" {
			continue
		}

		html, err := renderAssigned(user, task, assignerName, d.taskURL(task.ID))
		if err != nil {
			d.logger.Warn("failed to render assignment email",
				"user_id", id, "task_id", task.ID, "error", err)
			continue
		}

		msg := mail.Message{
			To:      []string{user.Email},
			Subject: fmt.Sprintf("New task: %s", task.Title),
			HTML:    html,
		}
		if err := d.mailer.Send(ctx, msg); err != nil {
			d.logger.Warn("failed to send assignment notification",
				"user_id", id, "task_id", task.ID, "error", err)
		}
	}
}

func (d *Dispatcher) taskURL(taskID uint64) string {
	return fmt.Sprintf("%s/tasks/%d", d.baseURL, taskID)
}

func renderAssigned(user models.User, task *models.Task, assignerName, url string) (string, error) {
	data := assignedData{
		FirstName:    user.FirstName(),
		AssignerName: assignerName,
		Title:        task.Title,
		URL:          url,
	}
	if !task.Deadline.IsZero() {
		data.Deadline = task.Deadline.Format("Mon, 02 Jan 2006")
	}

	var buf bytes.Buffer
	if err := assignedTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
