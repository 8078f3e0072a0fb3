package camunda

import (
	"encoding/json"

	apperrors "coach-match-workers/internal/common/errors"
	"coach-match-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/xeipuuv/gojsonschema"
)

// DecodeVariables checks the job variables against schema, when one is set,
// and decodes them into dst. Both failures are reported as PARSE_ERROR.
func DecodeVariables(job entities.Job, schema *gojsonschema.Schema, dst interface{}) error {
	if schema != nil {
		if result := validation.Check(schema, job.Variables); !result.Valid {
			return apperrors.NewParseError(result.Summary())
		}
	}
	if err := json.Unmarshal([]byte(job.Variables), dst); err != nil {
		return apperrors.NewParseError("parse input: " + err.Error())
	}
	return nil
}
