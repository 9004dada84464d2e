package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidationResultCreation tests creating a new result
func TestValidationResultCreation(t *testing.T) {
	result := NewResult()

	assert.NotNil(t, result)
	assert.Empty(t, result.Messages)
	assert.True(t, result.IsValid())
	assert.True(t, result.CanImport())
	assert.True(t, result.CanPromote())
}

// TestAddError tests adding error messages
func TestAddError(t *testing.T) {
	result := NewResult()

	result.AddError(CodeMissingMachineType, "operation 3 on job J-1042 has no machine-type tag")

	assert.Len(t, result.Messages, 1)
	assert.False(t, result.IsValid())
	assert.False(t, result.CanImport())
	assert.False(t, result.CanPromote())
	assert.Equal(t, 1, result.ErrorCount())
}

// TestAddWarning tests adding warning messages
func TestAddWarning(t *testing.T) {
	result := NewResult()

	result.AddWarning(CodeNegativeHours, "operation 2 on job J-1042 has negative setup hours")

	assert.Len(t, result.Messages, 1)
	assert.True(t, result.IsValid())   // Warnings don't make it invalid
	assert.True(t, result.CanImport()) // Can import with warnings
	assert.False(t, result.CanPromote())
	assert.Equal(t, 1, result.WarningCount())
}

// TestAddInfo tests adding info messages
func TestAddInfo(t *testing.T) {
	result := NewResult()

	result.AddInfo("INFO_CODE", "This is informational")

	assert.Len(t, result.Messages, 1)
	assert.True(t, result.IsValid())
	assert.True(t, result.CanImport())
	assert.True(t, result.CanPromote())
	assert.Equal(t, 1, result.InfoCount())
}

// TestMultipleMessages tests collecting multiple messages
func TestMultipleMessages(t *testing.T) {
	result := NewResult()

	result.
		AddError(CodeNonDenseSequence, "job J-1042 routing sequence jumps from 2 to 4").
		AddWarning(CodeNegativeHours, "operation 2 on job J-1042 has negative setup hours").
		AddInfo("INFO_CODE", "routing validated with warnings")

	assert.Len(t, result.Messages, 3)
	assert.Equal(t, 1, result.ErrorCount())
	assert.Equal(t, 1, result.WarningCount())
	assert.Equal(t, 1, result.InfoCount())
	assert.False(t, result.IsValid())
	assert.False(t, result.CanImport())
	assert.False(t, result.CanPromote())
}

// TestMessagesByCode tests filtering messages by code
func TestMessagesByCode(t *testing.T) {
	result := NewResult()

	result.
		AddError(CodeNonDenseSequence, "job J-1042 routing sequence jumps from 2 to 4").
		AddError(CodeNonDenseSequence, "job J-1099 routing sequence jumps from 1 to 3")

	messages := result.MessagesByCode(CodeNonDenseSequence)

	assert.Len(t, messages, 2)
	for _, msg := range messages {
		assert.Equal(t, CodeNonDenseSequence, msg.Code)
	}
}

// TestMessagesBySeverity tests filtering messages by severity
func TestMessagesBySeverity(t *testing.T) {
	result := NewResult()

	result.
		AddError(CodeMissingMachineType, "Error 1").
		AddError(CodeMissingMachineType, "Error 2").
		AddWarning(CodeNegativeHours, "Warning 1").
		AddInfo("CODE", "Info 1")

	errors := result.MessagesBySeverity(SeverityError)
	warnings := result.MessagesBySeverity(SeverityWarning)
	infos := result.MessagesBySeverity(SeverityInfo)

	assert.Len(t, errors, 2)
	assert.Len(t, warnings, 1)
	assert.Len(t, infos, 1)
}

// TestHasErrorsAndWarnings tests flag methods
func TestHasErrorsAndWarnings(t *testing.T) {
	resultClean := NewResult()
	assert.False(t, resultClean.HasErrors())
	assert.False(t, resultClean.HasWarnings())

	resultWithError := NewResult().AddError("CODE", "Error")
	assert.True(t, resultWithError.HasErrors())
	assert.False(t, resultWithError.HasWarnings())

	resultWithWarning := NewResult().AddWarning("CODE", "Warning")
	assert.False(t, resultWithWarning.HasErrors())
	assert.True(t, resultWithWarning.HasWarnings())

	resultWithBoth := NewResult().
		AddError("ERR", "Error").
		AddWarning("WARN", "Warning")
	assert.True(t, resultWithBoth.HasErrors())
	assert.True(t, resultWithBoth.HasWarnings())
}

// TestWithContext tests messages with additional context
func TestWithContext(t *testing.T) {
	result := NewResult()

	context := map[string]interface{}{
		"job_number": "J-1042",
		"sequence":   3,
	}

	result.AddErrorWithContext(CodeMissingMachineType, "operation has no machine-type tag", context)

	assert.Len(t, result.Messages, 1)
	msg := result.Messages[0]
	assert.Equal(t, context, msg.Context)
	assert.Equal(t, "J-1042", msg.Context["job_number"])
}

// TestToJSON tests JSON serialization
func TestToJSON(t *testing.T) {
	result := NewResult()

	result.
		AddError(CodeNonDenseSequence, "routing sequence is not dense").
		AddWarning(CodeNegativeHours, "negative setup hours")

	json, err := result.ToJSON()

	assert.NoError(t, err)
	assert.NotEmpty(t, json)
	assert.Contains(t, json, "NON_DENSE_SEQUENCE")
	assert.Contains(t, json, "NEGATIVE_HOURS")
	assert.Contains(t, json, "ERROR")
	assert.Contains(t, json, "WARNING")
}

// TestFromJSON tests JSON deserialization
func TestFromJSON(t *testing.T) {
	original := NewResult()
	original.
		AddError(CodeNonDenseSequence, "routing sequence is not dense").
		AddWarning(CodeNegativeHours, "negative setup hours")

	jsonStr, err := original.ToJSON()
	require.NoError(t, err)

	restored, err := FromJSON(jsonStr)
	require.NoError(t, err)

	assert.Len(t, restored.Messages, 2)
	assert.Equal(t, original.ErrorCount(), restored.ErrorCount())
	assert.Equal(t, original.WarningCount(), restored.WarningCount())
}

// TestSummary tests human-readable summary
func TestSummary(t *testing.T) {
	result := NewResult()
	result.
		AddError(CodeNonDenseSequence, "routing sequence is not dense").
		AddWarning(CodeNegativeHours, "negative setup hours").
		AddInfo("INFO", "Done")

	summary := result.Summary()

	assert.Contains(t, summary, "1 errors")
	assert.Contains(t, summary, "1 warnings")
	assert.Contains(t, summary, "1 info")
	assert.Contains(t, summary, "NON_DENSE_SEQUENCE")
	assert.Contains(t, summary, "NEGATIVE_HOURS")
}

// TestChaining tests method chaining
func TestChaining(t *testing.T) {
	result := NewResult().
		AddError("CODE1", "Error 1").
		AddWarning("CODE2", "Warning 1").
		AddInfo("CODE3", "Info 1")

	assert.Len(t, result.Messages, 3)
	assert.Equal(t, 1, result.ErrorCount())
	assert.Equal(t, 1, result.WarningCount())
	assert.Equal(t, 1, result.InfoCount())
}

// TestRealWorldExample tests a routing-validation scenario with multiple issues
func TestRealWorldExample(t *testing.T) {
	result := NewResult()

	// Non-dense sequence numbers
	result.AddErrorWithContext(
		CodeNonDenseSequence,
		"routing sequence is not dense",
		map[string]interface{}{
			"job_number": "J-1042",
			"sequences":  []int{1, 2, 4},
		},
	)

	// Missing machine-type tag
	result.AddErrorWithContext(
		CodeMissingMachineType,
		"operation has no machine-type tag",
		map[string]interface{}{
			"job_number": "J-1042",
			"sequence":   3,
		},
	)

	// Negative hours on an operation
	result.AddWarning(
		CodeNegativeHours,
		"operation 2 on job J-1042 has negative setup hours",
	)

	// Informational: how many operations validated
	result.AddInfo(
		"OPERATIONS_VALIDATED",
		"Validated 5 routing operations",
	)

	// Cannot import due to errors
	assert.False(t, result.CanImport())
	// Cannot promote due to errors and warnings
	assert.False(t, result.CanPromote())
	// Has both errors and warnings
	assert.True(t, result.HasErrors())
	assert.True(t, result.HasWarnings())
}
