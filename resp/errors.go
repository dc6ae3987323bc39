package resp

import "errors"

var (
	// ErrInvalidPrefix represents an unknown type byte at the start of a frame.
	ErrInvalidPrefix = errors.New("invalid resp type prefix")

	// ErrBadCRLFEnd for a line or payload not terminated by CRLF.
	ErrBadCRLFEnd = errors.New("bad CRLF end")
	// ErrLineTooLong for a header line exceeding maxLineLen.
	ErrLineTooLong = errors.New("line too long")

	// ErrBadSimpleString for a simple string or error containing CR or LF.
	ErrBadSimpleString = errors.New("bad simple string, contains CR or LF")

	// ErrBadInteger for a non-numeric integer reply.
	ErrBadInteger = errors.New("bad integer")

	// ErrBadArrayLen for invalid array len
	ErrBadArrayLen = errors.New("bad array len")
	// ErrArrayTooLong too long array len
	ErrArrayTooLong = errors.New("bad array len, too long")
	// ErrTooDeep for arrays nested deeper than the decoder allows.
	ErrTooDeep = errors.New("array nested too deep")

	// ErrBadBulkStringLen for invalid bulk string len
	ErrBadBulkStringLen = errors.New("bad bulk string len")
	// ErrBulkStringTooLong for too long bulk string len
	ErrBulkStringTooLong = errors.New("bad bulk string len, too long")

	// ErrBadCommand for a value that is not a non-empty array of bulk strings.
	ErrBadCommand = errors.New("bad command, should be an array of bulk strings")
)

// ProtocolError is returned when the peer sends data that violates RESP
// framing. The stream cannot be resynchronized and must be abandoned.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string {
	return "resp: protocol error: " + e.Err.Error()
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

func protocolError(err error) error {
	return &ProtocolError{Err: err}
}

// IsProtocolError reports whether err is a framing error rather than a
// transport failure.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
