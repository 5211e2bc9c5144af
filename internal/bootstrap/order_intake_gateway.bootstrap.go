package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/krobus00/order-intake-service/internal/config"
	"github.com/krobus00/order-intake-service/internal/entity"
	customerHandler "github.com/krobus00/order-intake-service/internal/handler/customer/http"
	orderIntakeHandler "github.com/krobus00/order-intake-service/internal/handler/orderintake/http"
	"github.com/krobus00/order-intake-service/internal/infrastructure"
	"github.com/krobus00/order-intake-service/internal/repository"
	"github.com/krobus00/order-intake-service/internal/service/exchange"
	"github.com/krobus00/order-intake-service/internal/service/orderintake"
	"github.com/krobus00/order-intake-service/internal/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func StartOrderIntakeGateway(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ordersDBConfig := config.Env.Database["orders"]

	ordersDB, err := infrastructure.NewPostgresConnection(ctx, ordersDBConfig)
	util.ContinueOrFatal(err)
	infrastructure.StartPostgresHealthCheck(ctx, ordersDB, ordersDBConfig.PingInterval)

	nc, js, err := infrastructure.NewJetstream()
	util.ContinueOrFatal(err)

	customerRepo := repository.NewCustomerRepository(ordersDB)
	orderRepo := repository.NewOrderRepository(ordersDB)
	walletRepo := repository.NewWalletRepository(ordersDB)
	txRunner := repository.NewTxRunner(ordersDB, ordersDBConfig, customerRepo, orderRepo)

	exchangeQueue := exchange.NewJetstreamQueue(js)

	publishers := make([]entity.Publisher, 0)
	publishers = append(publishers, exchangeQueue)
	for _, v := range publishers {
		err = v.JetstreamEventInit(ctx)
		util.ContinueOrFatal(err)
	}

	orderIntakeService := orderintake.NewOrderIntakeService(txRunner, exchangeQueue, config.Env.Order)

	httpMux := http.NewServeMux()
	orderIntakeHandler.NewOrderIntakeHTTPHandler(orderIntakeService).Register(httpMux)
	customerHandler.NewCustomerHTTPHandler(customerRepo, orderRepo, walletRepo).Register(httpMux)

	httpPort := fmt.Sprintf(":%s", config.Env.Port["order_intake_gateway_http"])
	httpServer := infrastructure.NewHTTPServerWithConfig(infrastructure.HTTPServerConfig{
		Addr:            httpPort,
		ShutdownTimeout: config.Env.GracefulShutdownTimeout,
	}, httpMux)

	go func() {
		err := httpServer.Start()
		if err != nil {
			logrus.Error(err)
		}
	}()
	logrus.Info(fmt.Sprintf("http server started on %s", httpPort))

	wait := gracefulShutdown(ctx, config.Env.GracefulShutdownTimeout, map[string]operation{
		"orders database": func(ctx context.Context) error {
			cancel()
			return ordersDB.Close()
		},
		"http": func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
		"nats connection": func(ctx context.Context) error {
			return infrastructure.CloseJetstream(nc)
		},
	})

	<-wait
}
