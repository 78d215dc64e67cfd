package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Code: "drift", Message: "unexpected change", Variant: "full->minimal", FieldPath: "entrypoint"}
	assert.Equal(t, "[full->minimal] entrypoint: [drift] unexpected change", d.String())

	assert.Equal(t, "plain", Diagnostic{Message: "plain"}.String())
}

func TestDiagnostics_ErrorAndMerge(t *testing.T) {
	var d Diagnostics
	assert.True(t, d.IsValid())
	assert.NoError(t, d.Error())

	other := Diagnostics{}
	other.AddError("a", "first", "", "")
	other.AddError("b", "second", "", "baseImageRef")
	other.AddWarning("w", "warn", "", "")
	other.AddInfo("i", "info", "", "")

	d.Merge(other)
	require.True(t, d.HasErrors())
	assert.True(t, d.HasWarnings())
	assert.EqualError(t, d.Error(), "[a] first; baseImageRef: [b] second")

	all := d.All()
	require.Len(t, all, 4)
	assert.Equal(t, SeverityError, all[0].Severity)
	assert.Equal(t, SeverityInfo, all[3].Severity)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
