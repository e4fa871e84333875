package testhelpers

import (
	"encoding/json"
	"slices"
	"testing"
)

// ========================================
// JSON Assertion Helpers
// ========================================

// AssertJSONEqual compares two JSON strings for equality (ignoring formatting)
func AssertJSONEqual(t *testing.T, expected, actual string, msg string) {
	t.Helper()

	var expectedObj, actualObj interface{}

	if err := json.Unmarshal([]byte(expected), &expectedObj); err != nil {
		t.Fatalf("%s: failed to parse expected JSON: %v", msg, err)
	}

	if err := json.Unmarshal([]byte(actual), &actualObj); err != nil {
		t.Fatalf("%s: failed to parse actual JSON: %v", msg, err)
	}

	expectedBytes, _ := json.Marshal(expectedObj)
	actualBytes, _ := json.Marshal(actualObj)

	if string(expectedBytes) != string(actualBytes) {
		t.Errorf("%s: JSON mismatch\nexpected: %s\nactual: %s", msg, expected, actual)
	}
}

// AssertJSONKeyValue checks if a JSON object has a specific key-value pair
func AssertJSONKeyValue(t *testing.T, jsonStr string, key string, expectedValue interface{}, msg string) {
	t.Helper()

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &obj); err != nil {
		t.Fatalf("%s: failed to parse JSON: %v", msg, err)
	}

	actualValue, exists := obj[key]
	if !exists {
		t.Errorf("%s: JSON does not contain key %q", msg, key)
		return
	}

	// Convert both to JSON for comparison to handle type differences
	expectedJSON, _ := json.Marshal(expectedValue)
	actualJSON, _ := json.Marshal(actualValue)

	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("%s: JSON key %q mismatch\nexpected: %v\nactual: %v", msg, key, expectedValue, actualValue)
	}
}

// AssertJSONArrayLength checks the length of a JSON array
func AssertJSONArrayLength(t *testing.T, jsonStr string, expectedLen int, msg string) {
	t.Helper()

	var arr []interface{}
	if err := json.Unmarshal([]byte(jsonStr), &arr); err != nil {
		t.Fatalf("%s: failed to parse JSON array: %v", msg, err)
	}

	if len(arr) != expectedLen {
		t.Errorf("%s: expected array length %d, got %d", msg, expectedLen, len(arr))
	}
}

// ========================================
// Slice Helpers
// ========================================

// AssertSliceEqual checks that two slices hold the same elements in order
func AssertSliceEqual[T comparable](t *testing.T, expected, actual []T, msg string) {
	t.Helper()

	if !slices.Equal(expected, actual) {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

// AssertSliceContains checks if a slice contains a specific element
func AssertSliceContains[T comparable](t *testing.T, slice []T, elem T, msg string) {
	t.Helper()

	if !slices.Contains(slice, elem) {
		t.Errorf("%s: slice does not contain %v", msg, elem)
	}
}
