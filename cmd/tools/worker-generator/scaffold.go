package main

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"coach-match-workers/pkg/registry"
)

// WorkerData is the template input for one generated worker package.
type WorkerData struct {
	Name         string
	PackageName  string
	TaskType     string
	Description  string
	InputFields  []Field
	OutputFields []Field
}

type Field struct {
	Name     string
	GoType   string
	JSONName string
	Required bool
	Comment  string
}

var files = []struct {
	name string
	tmpl *template.Template
}{
	{"config.go", template.Must(template.New("config").Parse(configTemplate))},
	{"models.go", template.Must(template.New("models").Parse(modelsTemplate))},
	{"handler.go", template.Must(template.New("handler").Parse(handlerTemplate))},
	{"handler_test.go", template.Must(template.New("test").Parse(testTemplate))},
}

// Generate renders a worker package for activity under root/<category>/<id>
// and returns the paths it wrote. Existing files are left alone unless force is set.
func Generate(activity registry.Activity, root string, force bool) ([]string, error) {
	data := newWorkerData(activity)
	dir := filepath.Join(root, strings.ToLower(activity.Category), activity.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if _, err := os.Stat(path); err == nil && !force {
			return written, fmt.Errorf("%s already exists", path)
		}

		src, err := render(f.tmpl, data)
		if err != nil {
			return written, fmt.Errorf("render %s: %w", f.name, err)
		}
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func render(t *template.Template, data WorkerData) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Join(err, errors.New(buf.String()))
	}
	return src, nil
}

func newWorkerData(a registry.Activity) WorkerData {
	name := a.DisplayName
	if name == "" {
		name = a.ID
	}
	taskType := a.TaskType
	if taskType == "" {
		taskType = a.ID
	}
	return WorkerData{
		Name:         name,
		PackageName:  strings.ReplaceAll(a.ID, "-", ""),
		TaskType:     taskType,
		Description:  a.Description,
		InputFields:  schemaFields(a.InputSchema),
		OutputFields: schemaFields(a.OutputSchema),
	}
}

// schemaFields turns the top-level properties of a JSON schema into struct
// fields, sorted by JSON name.
func schemaFields(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	required := map[string]bool{}
	if list, ok := schema["required"].([]interface{}); ok {
		for _, r := range list {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	fields := make([]Field, 0, len(props))
	for name, raw := range props {
		details, _ := raw.(map[string]interface{})
		desc, _ := details["description"].(string)
		fields = append(fields, Field{
			Name:     exportedName(name),
			GoType:   goType(details["type"], details["items"]),
			JSONName: name,
			Required: required[name],
			Comment:  desc,
		})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].JSONName < fields[j].JSONName })
	return fields
}

func goType(jsonType, items interface{}) string {
	if list, ok := jsonType.([]interface{}); ok && len(list) > 0 {
		jsonType = list[0]
	}
	switch jsonType {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		itemDetails, _ := items.(map[string]interface{})
		return "[]" + goType(itemDetails["type"], itemDetails["items"])
	default:
		return "interface{}"
	}
}

// exportedName converts coachId or coach-id to CoachID.
func exportedName(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	name := b.String()
	if strings.HasSuffix(name, "Id") {
		name = strings.TrimSuffix(name, "Id") + "ID"
	}
	return name
}
