package jwtx

import "errors"

var (
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrUnknownKid  = errors.New("jwtx: unknown kid")
)
