package util

import (
	"reflect"

	"github.com/pkg/errors"
)

// IsStructInitialized walks the exported fields of the struct behind v and
// errors on the first nil pointer, interface, map or slice it finds. Fields
// tagged `wire:"-"` are still checked since they must be set up manually
// before the owner is used.
func IsStructInitialized(v interface{}) error {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return errors.New("struct pointer is nil")
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return errors.Errorf("expected struct, got %s", val.Kind())
	}

	t := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanInterface() {
			continue
		}

		switch field.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			if field.IsNil() {
				return errors.Errorf("field %s is not initialized", t.Field(i).Name)
			}
		}
	}

	return nil
}
