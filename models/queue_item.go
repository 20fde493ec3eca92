package models

// QueueItem is one entry of the FIFO item queue. The head entry is the
// item under active (or next) auction; the second entry signals
// rollover eligibility.
type QueueItem struct {
	Position int32 `db:"position"`
	ItemID   int64 `db:"item_id"`
}
