package constant

const (
	ExchangeQueueName  = "exchange_queue"
	ExchangeQueueGroup = "exchange_group"

	ExchangeStreamName            = "exchange"
	ExchangeStreamSubjectAll      = "exchange.*"
	ExchangeStreamSubjectBuyOrder = "exchange.buy_order"
)
