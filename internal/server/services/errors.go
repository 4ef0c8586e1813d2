package services

import (
	"errors"
	"fmt"

	"github.com/abanwa/twitter/internal/common"
)

// lookupErr keeps a missing entity as not found and turns any other store
// failure into an internal error.
func lookupErr(what string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%s %w", what, common.ErrorNotFound)
	}
	return storeErr("get "+what, err)
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, common.ErrorInternal, err)
}
