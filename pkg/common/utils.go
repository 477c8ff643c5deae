package common

import (
	"math/rand"
	"time"
)

const trxCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateTrxNo returns a 12-character candidate transaction reference.
// Uniqueness is enforced by the caller against the transactions table, not
// here.
func GenerateTrxNo() string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	result := make([]byte, 12)
	for i := range result {
		result[i] = trxCharset[r.Intn(len(trxCharset))]
	}
	return string(result)
}
