package kafka

// Topic names mirror the event taxonomy of spec.md §4.G: one topic per
// event type that carries a durable audit trail.
const (
	TopicAccount     = "p2pbank.events.account"
	TopicTransaction = "p2pbank.events.transaction"
	TopicProxy       = "p2pbank.events.proxy"
)
