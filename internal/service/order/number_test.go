package order

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(fmt.Sprintf(`^ORD-%d-\d{4}$`, time.Now().Year()))

	for i := 0; i < 100; i++ {
		assert.Regexp(t, pattern, newOrderNumber())
	}
}
