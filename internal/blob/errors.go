package blob

import (
	"context"
	"errors"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
)

// classify tags backend failures as transient (worth a task retry) or fatal.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500 {
			return apperr.Transient(err)
		}

		return apperr.Fatal(err)
	}

	var nerr net.Error
	if errors.As(err, &nerr) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Transient(err)
	}

	return apperr.Fatal(err)
}
