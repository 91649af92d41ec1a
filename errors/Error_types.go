package errors

var (
	ErrUnknown            = New(ERR_UNKNOWN, "unknown error")
	ErrInvalidArgument    = New(ERR_INVALID_ARGUMENT, "invalid argument")
	ErrError              = New(ERR_ERROR, "generic error")
	ErrProcessing         = New(ERR_PROCESSING, "error processing")
	ErrConfiguration      = New(ERR_CONFIGURATION, "configuration error")
	ErrStorage            = New(ERR_STORAGE_ERROR, "storage error")
	ErrBlockInvalid       = New(ERR_BLOCK_INVALID, "block invalid")
	ErrDifficultyInvalid  = New(ERR_DIFFICULTY_INVALID, "difficulty invalid")
	ErrWorkOverflow       = New(ERR_WORK_OVERFLOW, "work overflow")
	ErrInvariantViolation = New(ERR_INVARIANT_VIOLATION, "invariant violation")
)

// errors initialization functions

func NewUnknownError(message string, params ...interface{}) error {
	return New(ERR_UNKNOWN, message, params...)
}
func NewInvalidArgumentError(message string, params ...interface{}) error {
	return New(ERR_INVALID_ARGUMENT, message, params...)
}
func NewError(message string, params ...interface{}) error {
	return New(ERR_ERROR, message, params...)
}
func NewProcessingError(message string, params ...interface{}) error {
	return New(ERR_PROCESSING, message, params...)
}
func NewConfigurationError(message string, params ...interface{}) error {
	return New(ERR_CONFIGURATION, message, params...)
}
func NewStorageError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_ERROR, message, params...)
}
func NewBlockInvalidError(message string, params ...interface{}) error {
	return New(ERR_BLOCK_INVALID, message, params...)
}
func NewDifficultyInvalidError(message string, params ...interface{}) error {
	return New(ERR_DIFFICULTY_INVALID, message, params...)
}
func NewWorkOverflowError(message string, params ...interface{}) error {
	return New(ERR_WORK_OVERFLOW, message, params...)
}

// NewInvariantViolationError marks a state that cannot be reached without a
// prior defect elsewhere. These are used as panic values, not returned.
func NewInvariantViolationError(message string, params ...interface{}) error {
	return New(ERR_INVARIANT_VIOLATION, message, params...)
}
