package handlers

import (
	"errors"
	"fmt"
)

var errSelector = errors.New("exactly one of customerId, merchantId or status is required")

func errInvalidParam(name string) error {
	return fmt.Errorf("invalid format for parameter %s", name)
}
