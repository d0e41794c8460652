// Package validation implements the ordered, short-circuiting field checks
// applied to talker and login payloads.
package validation

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps the size of a talker or login request body.
const MaxBodyBytes = 1 << 20

// validate is shared by every check; validator caches parsed tags and is
// safe for concurrent use.
var validate = validator.New()

// Error reports the first field that failed validation.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// AsError unwraps err into a *Error.
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Payload is a decoded JSON object. Numbers are kept as json.Number.
type Payload map[string]any

// Check inspects a payload and returns nil to pass control to the next check.
type Check func(Payload) *Error

// Chain runs checks in order and stops at the first failure.
type Chain []Check

// Run returns the first failing check's error, or nil.
func (c Chain) Run(p Payload) error {
	for _, check := range c {
		if err := check(p); err != nil {
			return err
		}
	}
	return nil
}

// LimitBody caps r.Body at MaxBodyBytes.
func LimitBody(w http.ResponseWriter, r *http.Request) io.Reader {
	return http.MaxBytesReader(w, r.Body, MaxBodyBytes)
}

// Decode reads exactly one JSON object from r. Anything but whitespace after
// the object is rejected.
func Decode(r io.Reader) (Payload, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var p Payload
	err := dec.Decode(&p)
	if err == nil && p != nil {
		if err = dec.Decode(new(json.RawMessage)); errors.Is(err, io.EOF) {
			return p, nil
		}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, &Error{Message: "request body too large"}
	}
	return nil, &Error{Message: "request body must be a JSON object"}
}

func field(p Payload, key string) (any, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// integer accepts any JSON number with no fractional part, so 1, 1.0 and
// 1e0 are all the integer 1.
func integer(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
