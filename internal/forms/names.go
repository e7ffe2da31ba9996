package forms

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

// fieldName resolves the `form` tag of the struct field behind fe, so
// errors are keyed by the input name the browser sent.
func fieldName(form interface{}, fe validator.FieldError) string {
	t := reflect.TypeOf(form)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(fe.StructField()); ok {
		if tag := f.Tag.Get("form"); tag != "" {
			return tag
		}
	}
	return fe.Field()
}
