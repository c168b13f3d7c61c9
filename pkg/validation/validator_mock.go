package validation

import (
	"sync"

	"github.com/ethpandaops/semlook/pkg/models"
)

// MockValidator is a mock implementation of Validator for testing
type MockValidator struct {
	mu sync.Mutex

	// Control behavior
	ValidateFunc func(modelList []*models.ProcessedModel, metrics []*models.Metric) *Result

	// Track calls for assertions
	ValidateCalls []ValidateCall
}

// ValidateCall records a Validate call
type ValidateCall struct {
	Models  []string
	Metrics []string
}

// NewMockValidator creates a new mock validator
func NewMockValidator() *MockValidator {
	return &MockValidator{
		ValidateCalls: make([]ValidateCall, 0),
	}
}

// Validate implements Validator
func (m *MockValidator) Validate(modelList []*models.ProcessedModel, metrics []*models.Metric) *Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := ValidateCall{}
	for _, model := range modelList {
		call.Models = append(call.Models, model.Name)
	}

	for _, metric := range metrics {
		call.Metrics = append(call.Metrics, metric.Name)
	}

	m.ValidateCalls = append(m.ValidateCalls, call)

	if m.ValidateFunc != nil {
		return m.ValidateFunc(modelList, metrics)
	}

	return &Result{}
}

// Ensure MockValidator implements Validator
var _ Validator = (*MockValidator)(nil)
