package validation

import (
	"io"
	"strings"

	"github.com/zhouzirui/talker-manager/backend/internal/model/talker"
)

// TalkerChain is the check order for create and update payloads.
var TalkerChain = Chain{checkName, checkAge, checkTalk, checkRate}

func checkName(p Payload) *Error {
	v, ok := field(p, "name")
	name, isString := v.(string)
	if !ok || !isString || strings.TrimSpace(name) == "" {
		return &Error{Field: "name", Message: `the "name" field is required`}
	}
	return nil
}

func checkAge(p Payload) *Error {
	v, ok := field(p, "age")
	if !ok {
		return &Error{Field: "age", Message: `the "age" field is required`}
	}
	age, isInt := integer(v)
	if !isInt {
		return &Error{Field: "age", Message: `the "age" field must be an integer`}
	}
	if validate.Var(age, "min=1") != nil {
		return &Error{Field: "age", Message: `the "age" field must be at least 1`}
	}
	return nil
}

func checkTalk(p Payload) *Error {
	missing := &Error{
		Field:   "talk",
		Message: `the "talk" field is required and must contain "watchedAt" and "rate"`,
	}

	v, ok := field(p, "talk")
	if !ok {
		return missing
	}
	talk, isObject := v.(map[string]any)
	if !isObject {
		return missing
	}
	if _, ok := field(talk, "rate"); !ok {
		return missing
	}
	watched, ok := field(talk, "watchedAt")
	if !ok {
		return missing
	}
	if s, isString := watched.(string); !isString || strings.TrimSpace(s) == "" {
		return &Error{Field: "talk.watchedAt", Message: `the "talk.watchedAt" field must be a non-empty string`}
	}
	return nil
}

func checkRate(p Payload) *Error {
	talk, _ := p["talk"].(map[string]any)
	rate, isInt := integer(talk["rate"])
	if !isInt || validate.Var(rate, "min=1,max=5") != nil {
		return &Error{Field: "talk.rate", Message: `the "talk.rate" field must be an integer between 1 and 5`}
	}
	return nil
}

// ParseTalker decodes r, runs TalkerChain and returns the talker it
// describes. The returned talker has no id.
func ParseTalker(r io.Reader) (talker.Talker, error) {
	p, err := Decode(r)
	if err != nil {
		return talker.Talker{}, err
	}
	if err := TalkerChain.Run(p); err != nil {
		return talker.Talker{}, err
	}

	talk := p["talk"].(map[string]any)
	age, _ := integer(p["age"])
	rate, _ := integer(talk["rate"])

	return talker.Talker{
		Name: p["name"].(string),
		Age:  int(age),
		Talk: talker.Talk{
			WatchedAt: talk["watchedAt"].(string),
			Rate:      int(rate),
		},
	}, nil
}
