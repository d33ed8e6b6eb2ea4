package core

import "errors"

var ErrAuctionNotFound = errors.New("auction not found")
var ErrInvalidDuration = errors.New("invalid auction duration")
var ErrInvalidIncrement = errors.New("invalid minimum increment")
var ErrBidTooLow = errors.New("bid is too low")
var ErrAuctionEnded = errors.New("auction has ended")
var ErrAuctionStillGoing = errors.New("auction is still ongoing")
var ErrAlreadyEnded = errors.New("auction already ended")
var ErrRefundFailed = errors.New("refund transfer failed")
var ErrInsufficientFunds = errors.New("insufficient funds")
var ErrTransferRejected = errors.New("recipient rejects incoming transfers")
var ErrNothingToWithdraw = errors.New("no pending withdrawal")
