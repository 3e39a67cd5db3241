package in

import (
	"context"

	"ascend/internal/modules/changefeed/dto"
)

type Usecase interface {
	// Subscribe registers handler for the given record types (all when
	// empty). Handlers run on the feed goroutine.
	Subscribe(recordTypes []string, handler func(dto.ChangeOutput))
	// Run delivers changes until ctx is cancelled.
	Run(ctx context.Context) error
}
