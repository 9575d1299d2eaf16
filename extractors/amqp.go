// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package extractors

import amqp "github.com/rabbitmq/amqp091-go"

// AMQPDeliveryEvent is the argument type an AMQP-routed ExtractedDispatcher
// dispatches: the raw delivery from the consumer's channel.
type AMQPDeliveryEvent struct {
	Delivery amqp.Delivery
}

// AMQPRoutingKey extracts the delivery's routing key as the dispatch key,
// so listeners can be registered per routing key exactly as they would be
// per AMQP binding.
func AMQPRoutingKey(e *AMQPDeliveryEvent) string {
	return e.Delivery.RoutingKey
}

// AMQPExchangeAndRoutingKey extracts "<exchange>/<routing key>", for
// dispatchers shared across more than one exchange.
func AMQPExchangeAndRoutingKey(e *AMQPDeliveryEvent) string {
	return e.Delivery.Exchange + "/" + e.Delivery.RoutingKey
}
