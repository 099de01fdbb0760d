package clock

import (
	"context"
	"time"
)

// Clock abstracts "now" so services and tests share one time source.
type Clock interface {
	Now(ctx context.Context) time.Time
}

func New() Clock {
	return SystemClock{}
}
