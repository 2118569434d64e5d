package service

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrChargerNotFound = errors.New("charger not found")
	ErrInvalidWindow   = errors.New("invalid booking window")
	ErrInvalidRate     = errors.New("invalid charger rate")
	ErrInvalidPatch    = errors.New("invalid updates")
	ErrInvalidState    = errors.New("invalid booking state")
	ErrBookingPaid     = errors.New("booking is already paid and cannot be removed")
	ErrStoreFailure    = errors.New("store failure")
)

func storeFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}
