package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewReferenceCode generates a human-quotable booking reference like
// BK-20260901-1A2B3C4D. Uniqueness is enforced by the bookings table.
func NewReferenceCode() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("BK-%s-%s", time.Now().UTC().Format("20060102"), id[:8])
}
