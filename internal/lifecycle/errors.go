package lifecycle

import (
	"errors"
	"fmt"

	"github.com/kazz187/teamboard/pkg/cerr"
)

var (
	// ErrConflict is returned by Restore when a live task already holds the
	// snapshot's id. The trash entry is left untouched.
	ErrConflict = errors.New("task id already in use")

	// ErrInconsistentState is returned when the first step of a transition
	// succeeded and the second failed: the task is visible in both stores
	// until Reconcile runs or the operation is retried.
	ErrInconsistentState = errors.New("transition partially applied")
)

func conflictError(taskID string) error {
	return cerr.NewError(
		cerr.AlreadyExists,
		fmt.Sprintf("task %s already exists", taskID),
		fmt.Errorf("%w: %s", ErrConflict, taskID),
	)
}

func inconsistentError(msg string, cause error) error {
	return cerr.NewError(cerr.Aborted, msg, errors.Join(ErrInconsistentState, cause))
}
