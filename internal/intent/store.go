package intent

import "context"

// Store is the append-only activity log.
//
// Append assigns Seq. ListByCustomer returns activities in append order.
// Exists reports whether a created activity with the given id exists for the
// customer.
type Store interface {
	Append(ctx context.Context, activity *Activity) error
	ListByCustomer(ctx context.Context, customerID string) ([]Activity, error)
	Exists(ctx context.Context, customerID, intentID string) (bool, error)
}
