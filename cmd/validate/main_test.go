package main

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/lfb-response-predictor/internal/adapter/artifact"
	"github.com/couchcryptid/lfb-response-predictor/internal/domain"
)

func loadReference(t *testing.T) (string, domain.Artifacts) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, artifact.Write(dir, artifact.DefaultFiles(), artifact.ReferenceBundle()))
	a, err := artifact.Load(dir, artifact.DefaultFiles())
	require.NoError(t, err)
	return dir, a
}

func TestReferenceBundlePassesAllPhases(t *testing.T) {
	_, a := loadReference(t)

	for _, p := range []*phase{
		validateSchemaAlignment(a),
		validateEncoderCoverage(a),
		validateOneHotCoverage(a),
		validateSamplePrediction(a, -1),
	} {
		assert.Empty(t, p.errors, p.name)
	}
}

func TestRunExitCodes(t *testing.T) {
	dir, _ := loadReference(t)
	assert.Equal(t, 0, run(dir, -1))
	assert.Equal(t, 1, run(t.TempDir(), -1), "empty directory")
}

func TestSchemaAlignment_UnknownColumn(t *testing.T) {
	_, a := loadReference(t)
	a.Metadata.ModelColumns = append(slices.Clone(a.Metadata.ModelColumns), "Weather", "IncidentGroup_Flood")

	p := validateSchemaAlignment(a)
	require.Len(t, p.errors, 2)
	assert.Contains(t, p.errors[0], "Weather")
	assert.Contains(t, p.errors[1], "Flood")
}

func TestOneHotCoverage_MissingIndicator(t *testing.T) {
	_, a := loadReference(t)
	a.Metadata.ModelColumns = slices.DeleteFunc(slices.Clone(a.Metadata.ModelColumns), func(c string) bool {
		return c == "StopCodeDescription_AFA"
	})

	p := validateOneHotCoverage(a)
	require.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "AFA")
}

func TestEncoderCoverage_UnencodedWard(t *testing.T) {
	_, a := loadReference(t)
	wards := make(map[string]string, len(a.Metadata.WardNameToCode)+1)
	for k, v := range a.Metadata.WardNameToCode {
		wards[k] = v
	}
	wards["Somers Town"] = "E05013662"
	a.Metadata.WardNameToCode = wards

	p := validateEncoderCoverage(a)
	require.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], domain.FieldWardCode)
}

func TestSamplePrediction_Expectation(t *testing.T) {
	_, a := loadReference(t)

	p := validateSamplePrediction(a, 1)
	require.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "expected 1 s")
}

func TestSplitIndicator(t *testing.T) {
	field, value, ok := splitIndicator("StopCodeDescription_Primary Fire")
	require.True(t, ok)
	assert.Equal(t, domain.FieldStopCode, field)
	assert.Equal(t, "Primary Fire", value)

	_, _, ok = splitIndicator("Hour")
	assert.False(t, ok)
}
