package main

const configTemplate = `// internal/workers/{{ .PackageName }}/config.go
package {{ .PackageName }}

import (
	"time"

	"github.com/xeipuuv/gojsonschema"
)

type Config struct {
	Timeout     time.Duration
	InputSchema *gojsonschema.Schema
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
`

const modelsTemplate = `package {{ .PackageName }}

type Input struct {
{{- range .InputFields }}
	{{ .Name }} {{ .GoType }} ` + "`json:\"{{ .JSONName }}{{ if not .Required }},omitempty{{ end }}\"`" + `{{ if .Comment }} // {{ .Comment }}{{ end }}
{{- end }}
}

type Output struct {
{{- range .OutputFields }}
	{{ .Name }} {{ .GoType }} ` + "`json:\"{{ .JSONName }}\"`" + `{{ if .Comment }} // {{ .Comment }}{{ end }}
{{- end }}
}
`

const handlerTemplate = `package {{ .PackageName }}

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"coach-match-workers/internal/common/camunda"
	apperrors "coach-match-workers/internal/common/errors"
	"coach-match-workers/internal/common/logger"
	"coach-match-workers/internal/common/observability"
)

const (
	TaskType = "{{ .TaskType }}"
)

{{ if .Description }}// Handler {{ .Description }}.
{{ end -}}
type Handler struct {
	config *Config
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	scope := observability.BeginJob(context.Background(), TaskType, job)
	ctx, cancel := context.WithTimeout(scope.Ctx, h.config.Timeout)
	defer cancel()

	output, err := h.run(ctx, job)
	scope.End(err)
	if err != nil {
		if sendErr := h.errors.HandleJobError(context.Background(), client, job, err); sendErr != nil {
			h.logger.Error("failed to report job error", map[string]interface{}{
				"jobKey": job.Key,
				"error":  sendErr,
			})
		}
		return
	}

	if err := camunda.CompleteJob(context.Background(), client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}
}

func (h *Handler) run(ctx context.Context, job entities.Job) (*Output, error) {
	var input Input
	if err := camunda.DecodeVariables(job, h.config.InputSchema, &input); err != nil {
		return nil, err
	}
	return h.execute(ctx, &input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewParseError("input cannot be nil")
	}
	return &Output{}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"testing"
	"time"

	"coach-match-workers/internal/common/camunda/camundatest"
	"coach-match-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func TestExecute_NilInput(t *testing.T) {
	h := NewHandler(createTestConfig(), logger.NewTestLogger(t))
	_, err := h.Execute(context.Background(), nil)
	assert.Error(t, err)
}

func TestHandle_CompletesJob(t *testing.T) {
	h := NewHandler(createTestConfig(), logger.NewTestLogger(t))
	client := camundatest.NewJobClient()

	h.Handle(client, camundatest.NewJob(t, TaskType, &Input{}))
	require.Len(t, client.Completed(), 1)
}
`
