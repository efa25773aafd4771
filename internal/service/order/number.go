package order

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// maxNumberAttempts bounds order-number regeneration when the random
// suffix collides with an existing order.
const maxNumberAttempts = 5

// newOrderNumber produces a human-readable order number in the form
// ORD-<year>-<4 digits>. Uniqueness is enforced at reservation time, not
// here; collisions are expected to be rare and are retried by the caller.
func newOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%04d", time.Now().Year(), 1000+rand.IntN(9000))
}
