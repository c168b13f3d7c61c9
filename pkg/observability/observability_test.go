package observability

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTextfile(t *testing.T) {
	RecordBuildError(&models.StructuralError{Path: "a.yaml", Reason: "bad"})
	RecordBuildError(&models.FieldError{Path: "x", Err: models.ErrMissingField})
	RecordBuildError(&models.ReferenceError{Kind: "data_model", From: "a", To: "b"})
	RecordBuildError(errors.New("boom"))
	RecordFileGenerated("view")
	RecordValidationIssue("unreachable_measure", "error")

	path := filepath.Join(t.TempDir(), "semlook.prom")
	require.NoError(t, WriteTextfile(logrus.New(), path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	for _, expected := range []string{
		`semlook_build_errors_total{kind="structural"}`,
		`semlook_build_errors_total{kind="field"}`,
		`semlook_build_errors_total{kind="reference"}`,
		`semlook_build_errors_total{kind="other"}`,
		`semlook_files_generated_total{kind="view"}`,
		`semlook_validation_issues_total{severity="error",type="unreachable_measure"}`,
	} {
		assert.Contains(t, string(content), expected)
	}
}

func TestWriteTextfileDisabled(t *testing.T) {
	require.NoError(t, WriteTextfile(logrus.New(), ""))
}
