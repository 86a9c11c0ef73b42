package auctionerrors

import "errors"

// Lookup errors
var (
	ErrLeadNotFound  = errors.New("lead not found")
	ErrBidNotFound   = errors.New("bid not found")
	ErrBuyerNotFound = errors.New("buyer not found")
	ErrRoomNotFound  = errors.New("auction room not found")
)

// Business rule errors
var (
	ErrPhaseConflict      = errors.New("operation invalid for current phase")
	ErrComplianceRejected = errors.New("compliance check rejected")
	ErrPreferenceMismatch = errors.New("buyer standing preferences exclude this lead")
	ErrBelowReserve       = errors.New("amount below reserve price")
	ErrCommitmentMismatch = errors.New("revealed amount and salt do not match commitment")
	ErrUnauthorized       = errors.New("caller is not the bid owner")
	ErrValidation         = errors.New("invalid input")
)
