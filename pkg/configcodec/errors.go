package configcodec

import "fmt"

// DecodeError reports a binary buffer that is not a valid encoding of
// the target message.
type DecodeError struct {
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("decode %s: invalid payload", e.Message)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError reports a mapping that cannot be turned into a
// configuration message: an unrecognized field name, or a value whose
// type does not match the declared field type.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

func newDecodeError(message string, err error) *DecodeError {
	return &DecodeError{Message: message, Err: err}
}

func unknownField(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "unknown field"}
}

func badType(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
