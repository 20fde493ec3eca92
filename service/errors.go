package service

import "errors"

// Precondition errors
var (
	ErrNotRegistered = errors.New("account is not registered")
	ErrSystemNotOpen = errors.New("the auction system is not open for business")
)

// Credit ledger errors
var (
	ErrInsufficientCredit = errors.New("insufficient credit")
)

// Auction lifecycle errors
var (
	ErrItemNotOffered       = errors.New("no item is offered for sale at this time")
	ErrBiddingNotOpen       = errors.New("bidding is not open on this item")
	ErrBiddingClosed        = errors.New("bidding has ended for this item")
	ErrOutsideBiddingWindow = errors.New("outside the bidding window")
	ErrRolloverTooEarly     = errors.New("the current auction has not yet expired")
	ErrBidTooLow            = errors.New("bid amount too low")
	ErrNoWinningBid         = errors.New("no winning bid")
)

// Admin errors
var (
	ErrAuthorizationFailed = errors.New("account is not authorized")
)
