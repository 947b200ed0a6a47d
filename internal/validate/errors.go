// Package validate normalizes and checks operator input before it reaches the ledger.
package validate

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDate            = errors.New("invalid date format, use YYYY-MM-DD, MM-DD or DD")
	ErrFutureDate             = errors.New("cannot track future dates")
	ErrInvalidAmount          = errors.New("amount must be a positive number")
	ErrInvalidCategory        = errors.New("invalid category")
	ErrInvalidPlatform        = errors.New("invalid platform, use 1/u (Uber), 2/b (Bolt), 3/l (Littlecab), 4/o (Offline)")
	ErrInvalidPaymentMode     = errors.New("invalid payment mode, use 1/c (Cash) or 2/m (M-Pesa)")
	ErrInvalidPhone           = errors.New("invalid phone number")
	ErrInvalidTransactionCode = errors.New("invalid transaction code")
	ErrInvalidIndex           = errors.New("invalid index")
)

// ErrAmbiguousCategory is returned by strict resolution when a prefix names
// more than one category. It matches ErrInvalidCategory with errors.Is.
var ErrAmbiguousCategory = fmt.Errorf("%w: ambiguous prefix", ErrInvalidCategory)
