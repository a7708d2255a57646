package utils

import (
	"fmt"          // Code formatting
	"math/rand/v2" // Random digits for the code
)

// VoucherCode generates a redemption code in the "ECO-nnnn" shape the shop
// hands out. Codes are display tokens, not secrets.
func VoucherCode() string {
	return fmt.Sprintf("ECO-%04d", rand.IntN(10000))
}
