package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	apperrors "ascend/internal/platform/errors"
)

func TestValidationErrorUnwrapsToInvalidInput(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("create mission: %w", apperrors.Invalid("title", "is required"))
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) || verr.Field != "title" {
		t.Fatalf("expected validation error on title, got %v", err)
	}
	if verr.Error() != "invalid title: is required" {
		t.Fatalf("unexpected message %q", verr.Error())
	}
}

func TestCollaboratorErrorIsRetryable(t *testing.T) {
	t.Parallel()
	cause := errors.New("database is locked")
	err := apperrors.Unavailable("store", cause)
	if !apperrors.IsRetryable(err) {
		t.Fatalf("collaborator failure should be retryable")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("collaborator error should unwrap to its cause")
	}
	if apperrors.IsRetryable(apperrors.ErrInvalidInput) {
		t.Fatalf("validation errors must not be retried")
	}
}
