package market

const (
	TopicOrderPlaced    = "market.order.placed"
	TopicOrderCancelled = "market.order.cancelled"
	TopicOrderStatus    = "market.order.status"
	TopicSellerReviewed = "market.seller.reviewed"
)

// Partition key = order_id so the events of one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
