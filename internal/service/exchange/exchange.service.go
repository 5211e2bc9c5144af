package exchange

import (
	"context"
	"encoding/json"
	"time"

	"github.com/krobus00/order-intake-service/internal/config"
	"github.com/krobus00/order-intake-service/internal/constant"
	"github.com/krobus00/order-intake-service/internal/entity"
	"github.com/krobus00/order-intake-service/internal/util"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// ExchangeService consumes buy jobs from the exchange stream and executes
// them against the exchange. Execution here is simulated (real exchange
// connectivity is out of scope); each executed job is recorded in the
// execution state store.
type ExchangeService struct {
	js    nats.JetStreamContext
	state ExecutionStateStore
}

func NewExchangeService(js nats.JetStreamContext, state ExecutionStateStore) *ExchangeService {
	return &ExchangeService{
		js:    js,
		state: state,
	}
}

func (e *ExchangeService) JetstreamEventInit(ctx context.Context) error {
	return ensureExchangeStream(ctx, e.js)
}

func (e *ExchangeService) JetstreamEventSubscribe(ctx context.Context) error {
	err := e.JetstreamEventInit(ctx)
	if err != nil {
		logrus.Error(err)
		return err
	}

	_, err = e.js.QueueSubscribe(
		constant.ExchangeStreamSubjectBuyOrder,
		constant.ExchangeQueueName,
		func(msg *nats.Msg) {
			err := util.ProcessWithTimeout(config.Env.NatsJetstream.TimeoutHandler["buy_order"], msg, e.handleBuyOrderEvent)
			if err != nil {
				logrus.Errorf("error processing message: %v", err)
				return
			}

			err = msg.Ack()
			if err != nil {
				logrus.Errorf("failed to acknowledge message: %v", err)
				return
			}
		},
		nats.ManualAck(),
		nats.Durable(constant.ExchangeQueueGroup),
	)
	util.ContinueOrFatal(err)

	return nil
}

func (e *ExchangeService) handleBuyOrderEvent(ctx context.Context, msg *nats.Msg) (err error) {
	logger := logrus.WithFields(logrus.Fields{
		"req": string(msg.Data),
	})

	var event *entity.BuyOrderEvent
	err = json.Unmarshal(msg.Data, &event)
	if err != nil {
		logger.Error(err)
		return err
	}

	defer func() {
		if err != nil {
			logger.Error(err)
			event.RetryCount++
			if event.RetryCount >= config.Env.NatsJetstream.MaxRetries {
				return
			}

			err := util.PublishEvent(e.js, constant.ExchangeStreamSubjectBuyOrder, event)
			if err != nil {
				logger.Error(err)
				return
			}
		}
	}()

	return e.executeBuy(ctx, event)
}

func (e *ExchangeService) executeBuy(ctx context.Context, event *entity.BuyOrderEvent) error {
	logrus.WithFields(logrus.Fields{
		"request_id": event.RequestID,
		"asset":      event.Asset,
		"quantity":   event.Quantity,
	}).Info("sending purchase request")

	state, found, err := e.state.Load(ctx, event.Asset)
	if err != nil {
		logrus.Error(err)
		return err
	}

	if !found {
		state = ExecutionState{}
	}

	state.ExecutedQuantity = state.ExecutedQuantity.Add(event.Quantity)
	state.ExecutionCount++
	state.LastRequestID = event.RequestID
	state.LastExecutedAt = time.Now().UTC().UnixMilli()

	err = e.state.Save(ctx, event.Asset, state)
	if err != nil {
		logrus.Error(err)
		return err
	}

	logrus.WithFields(logrus.Fields{
		"request_id":        event.RequestID,
		"asset":             event.Asset,
		"executed_quantity": state.ExecutedQuantity,
	}).Info("purchase completed")

	return nil
}
