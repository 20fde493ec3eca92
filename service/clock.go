package service

import (
	"fmt"
	"time"
)

// windowEpsilon separates consecutive auction windows so that no two
// windows cover the same instant.
const windowEpsilon = time.Millisecond

// Window holds the timestamps of one auction instance.
type Window struct {
	Start      time.Time
	BiddingEnd time.Time
	End        time.Time
}

// ComputeWindow maps "now" onto the auction window covering it. Windows
// repeat every auctionLength starting from epoch; bids are accepted only
// during the first biddingLength of each window. A window may only be
// opened while inside its own bidding sub-window; in the cooldown gap
// between bidding close and the next scheduled start it returns
// ErrOutsideBiddingWindow.
func ComputeWindow(epoch time.Time, auctionLength, biddingLength time.Duration, now time.Time) (Window, error) {
	if auctionLength <= 0 {
		return Window{}, fmt.Errorf("auction length must be positive")
	}
	if biddingLength <= 0 || biddingLength > auctionLength {
		return Window{}, fmt.Errorf("bidding length must be positive and within the auction length")
	}
	if now.Before(epoch) {
		return Window{}, fmt.Errorf("clock error: %w", ErrSystemNotOpen)
	}

	elapsed := now.Sub(epoch) % auctionLength
	if elapsed > biddingLength {
		return Window{}, ErrOutsideBiddingWindow
	}

	start := now.Add(-elapsed)
	return Window{
		Start:      start,
		BiddingEnd: start.Add(biddingLength),
		End:        start.Add(auctionLength - windowEpsilon),
	}, nil
}
