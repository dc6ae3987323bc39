package resp

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
)

const (
	maxArrayLen      = 1024 * 1024
	maxBulkStringLen = 1024 * 1024 * 512
	maxLineLen       = 64 * 1024

	// DefaultMaxDepth is the default limit of nested arrays.
	DefaultMaxDepth = 512

	// bulk payloads are read and allocated at most bulkChunkSize at a time.
	bulkChunkSize = 64 * 1024
)

const (
	CR byte = '\r'
	LF byte = '\n'
)

// CRLF is the delimiter in redis protocol.
var CRLF = []byte{CR, LF}

type byteReader interface {
	io.Reader
	io.ByteReader
}

// Decoder reads RESP values from a byte stream, one value per Decode call.
//
// When the source implements io.ByteReader it is consumed directly and the
// decoder never reads past the end of the current frame. Other sources are
// wrapped in a bufio.Reader owned by the decoder, so the same Decoder must
// be used for every subsequent reply on that stream.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	br       byteReader
	maxDepth int
	err      error
}

func NewDecoder(r io.Reader) *Decoder {
	return NewDecoderSize(r, 4096)
}

// NewDecoderSize is like NewDecoder but uses bufSize for the read buffer
// when one is needed.
func NewDecoderSize(r io.Reader, bufSize int) *Decoder {
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReaderSize(r, bufSize)
	}
	return &Decoder{br: br, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth sets the maximum number of nested arrays a single value may
// contain.
func (d *Decoder) SetMaxDepth(n int) {
	if n < 1 {
		n = 1
	}
	d.maxDepth = n
}

// Decode reads the next complete value. io.EOF is returned only if the
// stream ends cleanly between two frames; an end inside a frame yields
// io.ErrUnexpectedEOF. After any error the decoder keeps returning it.
func (d *Decoder) Decode() (*Value, error) {
	if d.err != nil {
		return nil, d.err
	}
	b, err := d.br.ReadByte()
	if err != nil {
		d.err = err
		return nil, err
	}
	v, err := d.decode(b, 0)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		d.err = err
		return nil, err
	}
	return v, nil
}

func (d *Decoder) decode(prefix byte, depth int) (*Value, error) {
	var err error
	v := &Value{Type: Type(prefix)}
	switch v.Type {
	case Integer:
		v.Int, err = d.decodeInt(ErrBadInteger)
	case SimpleString, Error:
		v.Text, err = d.decodeTextBytes()
	case BulkString:
		v.Text, err = d.decodeBulkString()
		v.Null = err == nil && v.Text == nil
	case Array:
		if depth >= d.maxDepth {
			return nil, protocolError(ErrTooDeep)
		}
		v.Array, err = d.decodeArray(depth)
		v.Null = err == nil && v.Array == nil
	default:
		return nil, protocolError(ErrInvalidPrefix)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// readLine reads up to and including LF and returns the line without CRLF.
func (d *Decoder) readLine() ([]byte, error) {
	line := make([]byte, 0, 16)
	for {
		b, err := d.br.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == LF {
			break
		}
		if len(line) == maxLineLen {
			return nil, protocolError(ErrLineTooLong)
		}
		line = append(line, b)
	}
	n := len(line) - 1
	if n < 0 || line[n] != CR {
		return nil, protocolError(ErrBadCRLFEnd)
	}
	return line[:n], nil
}

func (d *Decoder) decodeInt(bad error) (int64, error) {
	b, err := d.readLine()
	if err != nil {
		return 0, err
	}
	n, err := btoi64(b)
	if err != nil {
		return 0, protocolError(bad)
	}
	return n, nil
}

// btoi64 parse bytes to int64
func btoi64(b []byte) (int64, error) {
	if len(b) != 0 && len(b) < 10 {
		// better performace and zero alloc.
		var neg, i = false, 0
		switch b[0] {
		case '-':
			neg = true
			fallthrough
		case '+':
			i++
		}
		if len(b) != i {
			var n int64
			for ; i < len(b) && b[i] >= '0' && b[i] <= '9'; i++ {
				n = int64(b[i]-'0') + n*10
			}
			if len(b) == i {
				if neg {
					n = -n
				}
				return n, nil
			}
		}
	}
	return strconv.ParseInt(string(b), 10, 64)
}

func (d *Decoder) decodeTextBytes() ([]byte, error) {
	b, err := d.readLine()
	if err != nil {
		return nil, err
	}
	if bytes.IndexByte(b, CR) >= 0 {
		return nil, protocolError(ErrBadSimpleString)
	}
	return b, nil
}

func (d *Decoder) decodeBulkString() ([]byte, error) {
	n, err := d.decodeInt(ErrBadBulkStringLen)
	if err != nil {
		return nil, err
	}
	switch {
	case n < -1:
		return nil, protocolError(ErrBadBulkStringLen)
	case n > maxBulkStringLen:
		return nil, protocolError(ErrBulkStringTooLong)
	case n == -1:
		return nil, nil
	}
	b, err := d.readFull(int(n) + 2)
	if err != nil {
		return nil, err
	}
	if b[n] != CR || b[n+1] != LF {
		return nil, protocolError(ErrBadCRLFEnd)
	}
	return b[:n:n], nil
}

func (d *Decoder) readFull(n int) ([]byte, error) {
	size := n
	if size > bulkChunkSize {
		size = bulkChunkSize
	}
	b := make([]byte, size)
	if _, err := io.ReadFull(d.br, b); err != nil {
		return nil, err
	}
	for len(b) < n {
		m := n - len(b)
		if m > bulkChunkSize {
			m = bulkChunkSize
		}
		chunk := make([]byte, m)
		if _, err := io.ReadFull(d.br, chunk); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		b = append(b, chunk...)
	}
	return b, nil
}

func (d *Decoder) decodeArray(depth int) ([]Value, error) {
	n, err := d.decodeInt(ErrBadArrayLen)
	if err != nil {
		return nil, err
	}
	switch {
	case n < -1:
		return nil, protocolError(ErrBadArrayLen)
	case n > maxArrayLen:
		return nil, protocolError(ErrArrayTooLong)
	case n == -1:
		return nil, nil
	}
	array := make([]Value, n)
	for i := range array {
		b, err := d.br.ReadByte()
		if err != nil {
			return nil, err
		}
		r, err := d.decode(b, depth+1)
		if err != nil {
			return nil, err
		}
		array[i] = *r
	}
	return array, nil
}

// Encoder writes RESP values to a buffered writer. The first write error is
// kept and returned by every later call.
type Encoder struct {
	bw  *bufio.Writer
	num []byte
	err error
}

func NewEncoder(w io.Writer) *Encoder {
	return NewEncoderSize(w, 4096)
}

func NewEncoderSize(w io.Writer, bufSize int) *Encoder {
	return &Encoder{bw: bufio.NewWriterSize(w, bufSize), num: make([]byte, 0, 24)}
}

func (e *Encoder) Encode(v *Value) error {
	if e.err != nil {
		return e.err
	}
	e.err = e.encode(v)
	return e.err
}

// EncodeCommand writes cmd as an array of bulk strings, straight into the
// write buffer.
func (e *Encoder) EncodeCommand(cmd *Command) error {
	if e.err != nil {
		return e.err
	}
	e.err = e.encodeCommand(cmd)
	return e.err
}

func (e *Encoder) encodeCommand(cmd *Command) error {
	if err := e.writeHeader(Array, int64(1+len(cmd.Args))); err != nil {
		return err
	}
	if err := e.writeHeader(BulkString, int64(len(cmd.Name))); err != nil {
		return err
	}
	e.bw.WriteString(cmd.Name)
	if _, err := e.bw.Write(CRLF); err != nil {
		return err
	}
	for _, arg := range cmd.Args {
		if err := e.encodeBulkBytes(arg); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encode(v *Value) error {
	switch v.Type {
	case Error, SimpleString:
		// simple strings must stay on one line
		if bytes.IndexByte(v.Text, CR) >= 0 || bytes.IndexByte(v.Text, LF) >= 0 {
			return ErrBadSimpleString
		}
		e.bw.WriteByte(byte(v.Type))
		e.bw.Write(v.Text)
		_, err := e.bw.Write(CRLF)
		return err
	case Integer:
		return e.writeHeader(Integer, v.Int)
	case BulkString:
		if v.Null {
			return e.writeHeader(BulkString, -1)
		}
		return e.encodeBulkBytes(v.Text)
	case Array:
		if v.Null {
			return e.writeHeader(Array, -1)
		}
		if err := e.writeHeader(Array, int64(len(v.Array))); err != nil {
			return err
		}
		for i := range v.Array {
			if err := e.encode(&v.Array[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return ErrInvalidPrefix
	}
}

// writeHeader writes a type byte, a decimal number and CRLF. The number is
// formatted into the encoder's scratch space, so no allocation happens.
func (e *Encoder) writeHeader(t Type, n int64) error {
	e.num = append(e.num[:0], byte(t))
	e.num = strconv.AppendInt(e.num, n, 10)
	e.num = append(e.num, CR, LF)
	_, err := e.bw.Write(e.num)
	return err
}

// encodeBulkBytes writes b as a non-null bulk string.
func (e *Encoder) encodeBulkBytes(b []byte) error {
	if err := e.writeHeader(BulkString, int64(len(b))); err != nil {
		return err
	}
	e.bw.Write(b)
	_, err := e.bw.Write(CRLF)
	return err
}

func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	e.err = e.bw.Flush()
	return e.err
}
