package domain

import "errors"

var (
	ErrInvalidSide          = errors.New("side must be BUY or SELL")
	ErrUnsupportedOrderType = errors.New("only LIMIT orders are supported")
	ErrInvalidPrice         = errors.New("price must be > 0")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrOrderNotFound        = errors.New("order not found")
)

// ValidationError rejects a submission before it reaches the book.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a rejected submission.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks a request against the limit order rules.
func (r OrderRequest) Validate() error {
	if !r.Side.Valid() {
		return &ValidationError{Field: "side", Err: ErrInvalidSide}
	}
	if r.Type != Limit {
		return &ValidationError{Field: "type", Err: ErrUnsupportedOrderType}
	}
	if !r.Price.IsPositive() {
		return &ValidationError{Field: "price", Err: ErrInvalidPrice}
	}
	if !r.Quantity.IsPositive() {
		return &ValidationError{Field: "quantity", Err: ErrInvalidQuantity}
	}
	return nil
}
