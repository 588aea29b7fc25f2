package utils

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
)

// CancelCode derives the customer-facing cancellation code for a booking.
func CancelCode(email string, bookingID uint, length int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email)) + strconv.FormatUint(uint64(bookingID), 10)))
	code := hex.EncodeToString(sum[:])
	if length > 0 && length < len(code) {
		code = code[:length]
	}
	return code
}
