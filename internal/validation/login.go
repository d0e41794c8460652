package validation

import "io"

// LoginChain is the check order for /login payloads.
var LoginChain = Chain{checkEmail, checkPassword}

// Login is a validated login request.
type Login struct {
	Email    string
	Password string
}

func checkEmail(p Payload) *Error {
	v, ok := field(p, "email")
	email, isString := v.(string)
	if !ok || !isString || email == "" {
		return &Error{Field: "email", Message: `the "email" field is required`}
	}
	if validate.Var(email, "required,email") != nil {
		return &Error{Field: "email", Message: `the "email" field must be a valid address like "user@example.com"`}
	}
	return nil
}

func checkPassword(p Payload) *Error {
	v, ok := field(p, "password")
	password, isString := v.(string)
	if !ok || !isString || password == "" {
		return &Error{Field: "password", Message: `the "password" field is required`}
	}
	// min counts runes for strings.
	if validate.Var(password, "min=6") != nil {
		return &Error{Field: "password", Message: `the "password" field must be at least 6 characters`}
	}
	return nil
}

// ParseLogin decodes r and runs LoginChain.
func ParseLogin(r io.Reader) (Login, error) {
	p, err := Decode(r)
	if err != nil {
		return Login{}, err
	}
	if err := LoginChain.Run(p); err != nil {
		return Login{}, err
	}
	return Login{Email: p["email"].(string), Password: p["password"].(string)}, nil
}
