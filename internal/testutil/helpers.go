package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
)

const UpstreamError = "upstream error occurred"

// OperationResult is the data and error a mocked call returns.
type OperationResult[T any] struct {
	Data T
	Err  error
}

// Return a generic typed error for a upstream call.
func GetMockUpstreamError[T any]() *OperationResult[T] {
	return NewErrorResult[T](UpstreamError)
}

func NewErrorResult[T any](err string) *OperationResult[T] {
	return &OperationResult[T]{
		Data: *new(T),
		Err:  errors.New(err),
	}
}

// Wrap a generic Data into a OperationResult struct.
func NewSuccessResult[T any](Data T) *OperationResult[T] {
	return &OperationResult[T]{
		Data: Data,
		Err:  nil,
	}
}

// Assert the expectations of all mocks.
func VerifyAllMocks(t *testing.T, mocks ...any) {
	t.Helper()

	for _, m := range mocks {
		if mockObj, ok := m.(interface{ AssertExpectations(mock.TestingT) bool }); ok {
			mockObj.AssertExpectations(t)
		}
	}
}

// Read a file from the testdata directory of the calling package.
func ReadFixture(t *testing.T, name string) string {
	t.Helper()

	content, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("couldn't read the fixture %s: %v", name, err)
	}
	return string(content)
}
