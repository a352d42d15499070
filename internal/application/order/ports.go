package order

// IDGenerator hands out new order identifiers.
type IDGenerator interface {
	NewID() string
}
