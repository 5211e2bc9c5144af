package bootstrap

import (
	"context"

	"github.com/krobus00/order-intake-service/internal/config"
	"github.com/krobus00/order-intake-service/internal/entity"
	"github.com/krobus00/order-intake-service/internal/infrastructure"
	"github.com/krobus00/order-intake-service/internal/service/exchange"
	"github.com/krobus00/order-intake-service/internal/util"
	"github.com/spf13/cobra"
)

func StartExchangeWorker(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nc, js, err := infrastructure.NewJetstream()
	util.ContinueOrFatal(err)

	stateStore, err := exchange.NewRedisExecutionStateStore(config.Env.Redis["exchange"].CacheDSN)
	util.ContinueOrFatal(err)

	exchangeService := exchange.NewExchangeService(js, stateStore)

	subscribers := make([]entity.Subscriber, 0)
	subscribers = append(subscribers, exchangeService)
	for _, v := range subscribers {
		err = v.JetstreamEventSubscribe(ctx)
		util.ContinueOrFatal(err)
	}

	wait := gracefulShutdown(ctx, config.Env.GracefulShutdownTimeout, map[string]operation{
		"redis state store": func(ctx context.Context) error {
			cancel()
			return stateStore.Close()
		},
		"nats connection": func(ctx context.Context) error {
			return infrastructure.CloseJetstream(nc)
		},
	})

	<-wait
}
