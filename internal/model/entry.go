package model

import (
	"time"
)

type Entry struct {
	DB    string
	Key   string
	Value string
	// Zero means no expiry.
	TTL time.Duration
}

// TTLSeconds returns TTL in whole seconds as the service expects it.
func (e Entry) TTLSeconds() int64 {
	return int64(e.TTL / time.Second)
}
