package usecase

import (
	"context"

	"ascend/internal/modules/changefeed/domain"
	"ascend/internal/modules/changefeed/dto"
	changefeedin "ascend/internal/modules/changefeed/port/in"
	"ascend/internal/modules/changefeed/service"
)

type Interactor struct {
	feed *service.Feed
}

func NewInteractor(feed *service.Feed) changefeedin.Usecase {
	return &Interactor{feed: feed}
}

func (i *Interactor) Subscribe(recordTypes []string, handler func(dto.ChangeOutput)) {
	i.feed.Subscribe(domain.Subscription{
		RecordTypes: recordTypes,
		Handler: func(c domain.Change) {
			handler(dto.ChangeOutput(c))
		},
	})
}

func (i *Interactor) Run(ctx context.Context) error {
	return i.feed.Run(ctx)
}
