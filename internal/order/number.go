package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewNumber builds a human readable order number: timestamp, zero padded user
// id and a short random suffix so two checkouts of one user within the same
// second do not collide.
func NewNumber(userID int64, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("ORD-%s-%06d-%s", now.UTC().Format("20060102150405"), userID, suffix)
}
