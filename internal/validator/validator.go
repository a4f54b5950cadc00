// Package validator checks struct fields against rules declared in the
// `validate` tag and reports every violation, not only the first one.
//
// Rules are separated by "|": required, minlen:N, maxlen:N, len:N, min:N,
// max:N, in:a,b,c, nested and regexp:PATTERN. A regexp rule takes the rest of
// the tag, so the pattern may contain "|" but the rule must come last.
// String lengths are counted in runes after trimming surrounding spaces.
// A nil pointer field is treated as absent and only fails "required".
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	tagNameValidate  = "validate"
	tagValueRequired = "required"
	tagValueNested   = "nested"
	tagValueIn       = "in"
	tagValueMax      = "max"
	tagValueMin      = "min"
	tagValueLen      = "len"
	tagValueMinLen   = "minlen"
	tagValueMaxLen   = "maxlen"
	tagValueRegexp   = "regexp"
)

var (
	ErrIncorrectTagValue        = errors.New("incorrect tag value for validating with field value")
	ErrIncorrectTag             = errors.New("incorrect tag")
	ErrIncorrectStruct          = errors.New("incorrect struct")
	ErrValidateRequired         = errors.New("is required")
	ErrValidateIncorrectLen     = errors.New("has incorrect length")
	ErrValidateTooShort         = errors.New("is too short")
	ErrValidateTooLong          = errors.New("is too long")
	ErrValidateNotMatchRegexp   = errors.New("has invalid format")
	ErrValidateNotFoundInList   = errors.New("is not one of the allowed values")
	ErrValidateIncorrectNumeric = errors.New("is out of range")
)

var regexpCache sync.Map

type ValidationError struct {
	// Field is the json name of the field when it has one.
	Field string
	Err   error
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s %s", v.Field, v.Err)
}

func (v ValidationError) Unwrap() error {
	return v.Err
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	b := strings.Builder{}
	for _, validationError := range v {
		b.WriteString(fmt.Sprintf("{name: %s, error: %s}", validationError.Field, validationError.Err.Error()))
	}
	return b.String()
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, e := range v {
		errs = append(errs, e)
	}
	return errs
}

type rule struct {
	name  string
	param string
}

// Validate returns ValidationErrors when v breaks any of its rules, nil when
// it is valid, or another error when v or its tags are malformed.
func Validate(v interface{}) error {
	if v == nil {
		return ErrIncorrectStruct
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ErrIncorrectStruct
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return ErrIncorrectStruct
	}

	validatorErrors, err := validateStruct(rv, nil)
	if err != nil {
		return err
	}
	if len(validatorErrors) == 0 {
		return nil
	}
	return validatorErrors
}

func validateStruct(rv reflect.Value, validatorErrors ValidationErrors) (ValidationErrors, error) {
	t := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		sf := t.Field(i)
		rules, err := parseValidateTag(sf.Tag)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		if len(rules) == 0 {
			continue
		}

		field := rv.Field(i)
		if rules[0].name == tagValueNested {
			if field.Kind() == reflect.Ptr {
				if field.IsNil() {
					continue
				}
				field = field.Elem()
			}
			if field.Kind() != reflect.Struct {
				return nil, fmt.Errorf("field %s: %w", sf.Name, ErrIncorrectTag)
			}
			validatorErrors, err = validateStruct(field, validatorErrors)
			if err != nil {
				return nil, err
			}
			continue
		}

		validatorErrors, err = validateField(rules, field, fieldName(sf), validatorErrors)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
	}
	return validatorErrors, nil
}

func validateField(
	rules []rule,
	field reflect.Value,
	name string,
	validatorErrors ValidationErrors,
) (ValidationErrors, error) {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			if hasRule(rules, tagValueRequired) {
				validatorErrors = append(validatorErrors, ValidationError{Field: name, Err: ErrValidateRequired})
			}
			return validatorErrors, nil
		}
		field = field.Elem()
	}

	if field.Kind() == reflect.Slice || field.Kind() == reflect.Array {
		var err error
		for i := 0; i < field.Len(); i++ {
			validatorErrors, err = validateValue(name, field.Index(i), rules, validatorErrors)
			if err != nil {
				return nil, err
			}
		}
		return validatorErrors, nil
	}

	return validateValue(name, field, rules, validatorErrors)
}

func validateValue(
	name string,
	val reflect.Value,
	rules []rule,
	validatorErrors ValidationErrors,
) (ValidationErrors, error) {
	for _, r := range rules {
		var (
			failed error
			err    error
		)
		if val.Kind() == reflect.String {
			failed, err = checkString(val.String(), r)
		} else {
			failed, err = checkNumeric(val, r)
		}
		if err != nil {
			return nil, err
		}
		if failed != nil {
			validatorErrors = append(validatorErrors, ValidationError{Field: name, Err: failed})
			// Other rules on an empty required value only repeat the same problem.
			if errors.Is(failed, ErrValidateRequired) {
				break
			}
		}
	}
	return validatorErrors, nil
}

func checkString(s string, r rule) (error, error) {
	switch r.name {
	case tagValueRequired:
		if strings.TrimSpace(s) == "" {
			return ErrValidateRequired, nil
		}
	case tagValueLen, tagValueMinLen, tagValueMaxLen:
		check, err := strconv.Atoi(r.param)
		if err != nil {
			return nil, ErrIncorrectTagValue
		}
		n := utf8.RuneCountInString(strings.TrimSpace(s))
		switch {
		case r.name == tagValueLen && n != check:
			return ErrValidateIncorrectLen, nil
		case r.name == tagValueMinLen && n < check:
			return ErrValidateTooShort, nil
		case r.name == tagValueMaxLen && n > check:
			return ErrValidateTooLong, nil
		}
	case tagValueRegexp:
		re, err := compile(r.param)
		if err != nil {
			return nil, ErrIncorrectTagValue
		}
		if !re.MatchString(s) {
			return ErrValidateNotMatchRegexp, nil
		}
	case tagValueIn:
		if !inList(s, r.param) {
			return ErrValidateNotFoundInList, nil
		}
	default:
		return nil, ErrIncorrectTag
	}
	return nil, nil
}

func checkNumeric(val reflect.Value, r rule) (error, error) {
	var (
		n   float64
		err error
	)
	//exhaustive:ignore
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = float64(val.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n = float64(val.Uint())
	case reflect.Float32, reflect.Float64:
		n = val.Float()
	default:
		return nil, ErrIncorrectTag
	}

	switch r.name {
	case tagValueRequired:
		if n == 0 {
			return ErrValidateRequired, nil
		}
		return nil, nil
	case tagValueIn:
		if !inList(strconv.FormatFloat(n, 'f', -1, 64), r.param) {
			return ErrValidateNotFoundInList, nil
		}
		return nil, nil
	case tagValueMin, tagValueMax:
	default:
		return nil, ErrIncorrectTag
	}

	limit, err := strconv.ParseFloat(r.param, 64)
	if err != nil {
		return nil, ErrIncorrectTagValue
	}
	if (r.name == tagValueMin && n < limit) || (r.name == tagValueMax && n > limit) {
		return ErrValidateIncorrectNumeric, nil
	}
	return nil, nil
}

func parseValidateTag(tag reflect.StructTag) ([]rule, error) {
	val := tag.Get(tagNameValidate)
	if val == "" {
		return nil, nil
	}

	rules := make([]rule, 0, 2)
	for val != "" {
		var part string
		if strings.HasPrefix(val, tagValueRegexp+":") {
			part, val = val, ""
		} else {
			part, val, _ = strings.Cut(val, "|")
		}

		name, param, hasParam := strings.Cut(part, ":")
		switch name {
		case tagValueNested:
			// Other rules are ignored for nested structs.
			return []rule{{name: name}}, nil
		case tagValueRequired:
		case tagValueIn, tagValueMin, tagValueMax, tagValueLen, tagValueMinLen, tagValueMaxLen, tagValueRegexp:
			if !hasParam || param == "" {
				return nil, ErrIncorrectTagValue
			}
		default:
			return nil, ErrIncorrectTag
		}
		rules = append(rules, rule{name: name, param: param})
	}
	return rules, nil
}

func fieldName(sf reflect.StructField) string {
	if name, _, _ := strings.Cut(sf.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return sf.Name
}

func hasRule(rules []rule, name string) bool {
	for _, r := range rules {
		if r.name == name {
			return true
		}
	}
	return false
}

func inList(v string, list string) bool {
	for _, item := range strings.Split(list, ",") {
		if item == v {
			return true
		}
	}
	return false
}

func compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexpCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexpCache.Store(pattern, re)
	return re, nil
}
