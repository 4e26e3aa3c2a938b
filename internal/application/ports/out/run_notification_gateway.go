package out

import (
	"context"

	"payrecon/internal/application/dto"
	apperrors "payrecon/internal/shared_kernel/errors"
)

// RunNotificationGateway pushes a signed run-completed event to the
// operator's configured endpoint. Delivery is best effort.
type RunNotificationGateway interface {
	NotifyRunCompleted(ctx context.Context, notification dto.RunCompletedNotification) *apperrors.AppError
}
