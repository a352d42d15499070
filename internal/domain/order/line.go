package order

import (
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/money"
	"github.com/shopspring/decimal"
)

// Line is an immutable order line. Orders replace lines, they never mutate them.
type Line struct {
	productID   string
	productName string
	unitPrice   money.Money
	quantity    int
}

func NewLine(productID, productName string, unitPrice money.Money, quantity int) (Line, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Line{}, fmt.Errorf("%w: product id is required", ErrValidation)
	}
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	if unitPrice.Currency() == "" {
		return Line{}, fmt.Errorf("%w: unit price is required", ErrValidation)
	}
	return Line{
		productID:   productID,
		productName: productName,
		unitPrice:   unitPrice,
		quantity:    quantity,
	}, nil
}

func (l Line) ProductID() string      { return l.productID }
func (l Line) ProductName() string    { return l.productName }
func (l Line) UnitPrice() money.Money { return l.unitPrice }
func (l Line) Quantity() int          { return l.quantity }

// Total is unit price times quantity.
func (l Line) Total() money.Money {
	// quantity is positive by construction, so Multiply cannot fail.
	total, _ := l.unitPrice.Multiply(decimal.NewFromInt(int64(l.quantity)))
	return total
}
