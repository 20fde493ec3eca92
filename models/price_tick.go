package models

import (
	"time"
)

// PriceTick is one recorded BTC/USD price observation.
type PriceTick struct {
	TickTime time.Time `db:"tick_time"`
	USDPrice int64     `db:"usd_price"`
}
