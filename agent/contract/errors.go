package contract

import "errors"

var (
	ErrNoMatch         = errors.New("no matching action")
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrValidation      = errors.New("validation failed")
	ErrEmptyDataset    = errors.New("no records to report on")
)
