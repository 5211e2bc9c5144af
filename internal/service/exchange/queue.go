package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/krobus00/order-intake-service/internal/constant"
	"github.com/krobus00/order-intake-service/internal/entity"
	"github.com/krobus00/order-intake-service/internal/util"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// JetstreamQueue is the intake side of the exchange stream. EnqueueBuy is
// fire-and-forget: it fails synchronously if the stream is unreachable and
// never reports anything about the eventual exchange call.
type JetstreamQueue struct {
	js nats.JetStreamContext
}

func NewJetstreamQueue(js nats.JetStreamContext) *JetstreamQueue {
	return &JetstreamQueue{js: js}
}

func (q *JetstreamQueue) JetstreamEventInit(ctx context.Context) error {
	return ensureExchangeStream(ctx, q.js)
}

func (q *JetstreamQueue) EnqueueBuy(ctx context.Context, asset string, quantity decimal.Decimal) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	event := entity.BuyOrderEvent{
		RequestID:   uuid.NewString(),
		Asset:       asset,
		Quantity:    quantity,
		RequestedAt: time.Now().UTC().UnixMilli(),
	}

	err := util.PublishEvent(q.js, constant.ExchangeStreamSubjectBuyOrder, event)
	if err != nil {
		logrus.Error(err)
		return err
	}

	return nil
}

func ensureExchangeStream(ctx context.Context, js nats.JetStreamContext) error {
	streamConfig := &nats.StreamConfig{
		Name:      constant.ExchangeStreamName,
		Subjects:  []string{constant.ExchangeStreamSubjectAll},
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.FileStorage,
		MaxAge:    24 * time.Hour,
	}

	stream, err := js.StreamInfo(constant.ExchangeStreamName, nats.Context(ctx))
	if err != nil && !errors.Is(err, nats.ErrStreamNotFound) {
		logrus.Error(err)
		return err
	}

	if stream == nil {
		logrus.Infof("creating stream: %s", constant.ExchangeStreamName)
		_, err = js.AddStream(streamConfig, nats.Context(ctx))
		return err
	}

	logrus.Infof("updating stream: %s", constant.ExchangeStreamName)
	_, err = js.UpdateStream(streamConfig, nats.Context(ctx))
	if err != nil {
		logrus.Error(err)
		return err
	}

	return nil
}
