package agents

import (
	"context"
	"regexp"
	"strconv"
)

// Repository is the persistence contract for agents.
// List must return rows in insertion order.
type Repository interface {
	List(ctx context.Context) ([]Agent, error)
	Get(ctx context.Context, id string) (Agent, error)
	Insert(ctx context.Context, a Agent) error
	Update(ctx context.Context, a Agent) error
	Delete(ctx context.Context, id string) error

	// NextSeq reserves the next numeric agent id suffix.
	// It never returns a value at or below one returned before.
	NextSeq(ctx context.Context) (int64, error)
}

var idSuffix = regexp.MustCompile(`(\d+)$`)

// nextSeq returns max(floor, highest numeric suffix among ids) + 1.
// Ids without a numeric suffix are ignored.
func nextSeq(ids []string, floor int64) int64 {
	high := floor
	for _, id := range ids {
		m := idSuffix.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		if n > high {
			high = n
		}
	}
	return high + 1
}
