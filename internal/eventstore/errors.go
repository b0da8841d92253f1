package eventstore

import (
	"git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

// Sentinels for errors.Is. Returned errors carry the same category and message plus the cause.
var (
	ErrOpen   = errors.HistoryError("cannot open build history").Build()
	ErrSchema = errors.HistoryError("cannot prepare build history schema").Build()
	ErrAppend = errors.HistoryError("cannot record build event").Build()
	ErrQuery  = errors.HistoryError("cannot read build history").Build()
)

func historyErr(sentinel *errors.ClassifiedError, cause error) error {
	return errors.WrapError(cause, sentinel.Category(), sentinel.Message()).Build()
}
