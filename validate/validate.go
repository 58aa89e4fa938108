/*
Package validate checks shaped rows against the table schemas.

The rules are the validate struct tags of the row types in package element.
Validation is optional and runs after shaping and auditing.
*/
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/omniscale/osmtables/element"
)

var integerPattern = regexp.MustCompile(`^[-+]?[0-9]+$`)

func validateInteger(fl validator.FieldLevel) bool {
	return integerPattern.MatchString(fl.Field().String())
}

// FieldError is a single failed rule.
type FieldError struct {
	Column string
	Rule   string
	Value  interface{}
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s=%q (%s)", e.Column, fmt.Sprint(e.Value), e.Rule)
}

// Error is returned for invalid rows. ID is the id of the owning record.
type Error struct {
	Table  string
	ID     string
	Fields []FieldError
}

func (e *Error) Error() string {
	fields := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = f.String()
	}
	return fmt.Sprintf("invalid %s row for id %q: %s", e.Table, e.ID, strings.Join(fields, ", "))
}

// Validator is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	if err := v.RegisterValidation("integer", validateInteger); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("column"); name != "" {
			return name
		}
		return f.Name
	})
	return &Validator{validate: v}
}

// Validate checks all rows of s and returns an *Error for the first
// invalid row.
func (v *Validator) Validate(s element.Shaped) error {
	id := s.ID()
	switch {
	case s.Node != nil:
		if err := v.row(element.NodesTable, id, s.Node); err != nil {
			return err
		}
	case s.Way != nil:
		if err := v.row(element.WaysTable, id, s.Way); err != nil {
			return err
		}
	default:
		return fmt.Errorf("shaped record %q without node or way row", id)
	}

	table := s.TagsTable()
	for i := range s.Tags {
		if err := v.row(table, id, &s.Tags[i]); err != nil {
			return err
		}
	}
	for i := range s.WayNodes {
		if err := v.row(element.WayNodesTable, id, &s.WayNodes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) row(table, id string, row interface{}) error {
	err := v.validate.Struct(row)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	e := &Error{Table: table, ID: id}
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		e.Fields = append(e.Fields, FieldError{
			Column: fe.Field(),
			Rule:   rule,
			Value:  fe.Value(),
		})
	}
	return e
}
