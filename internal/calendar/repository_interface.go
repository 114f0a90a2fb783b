package calendar

import "context"

type Repository interface {
	Events(ctx context.Context, f Filter) ([]Event, error)
}
