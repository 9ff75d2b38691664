package mystore

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Field access for the in-memory store: fields are addressed by the same names
// the datastore and mongodb backends use.

func matchesAll(entity any, filters []Filter) (bool, error) {
	for _, f := range filters {
		ok, err := matches(entity, f)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matches(entity any, f Filter) (bool, error) {
	if !validCompare(f.Compare) {
		return false, fmt.Errorf("unsupported comparison '%s' on field %s", f.Compare, f.Field)
	}

	fieldValue, found := fieldByName(entity, f.Field)
	if !found {
		return false, fmt.Errorf("unknown field %s", f.Field)
	}

	cmp, err := compareValues(fieldValue, reflect.ValueOf(f.Value))
	if err != nil {
		return false, fmt.Errorf("error filtering on field %s: %s", f.Field, err)
	}

	switch f.Compare {
	case CompareNotEqual:
		return cmp != 0, nil
	case CompareLessThan:
		return cmp < 0, nil
	case CompareLessOrEqual:
		return cmp <= 0, nil
	case CompareGreaterThan:
		return cmp > 0, nil
	case CompareGreaterOrEqual:
		return cmp >= 0, nil
	default:
		return cmp == 0, nil
	}
}

func compareFields(a any, b any, field string) (int, error) {
	aValue, found := fieldByName(a, field)
	if !found {
		return 0, fmt.Errorf("unknown field %s", field)
	}
	bValue, _ := fieldByName(b, field)

	cmp, err := compareValues(aValue, bValue)
	if err != nil {
		return 0, fmt.Errorf("error ordering on field %s: %s", field, err)
	}
	return cmp, nil
}

func fieldByName(entity any, name string) (reflect.Value, bool) {
	v := indirect(reflect.ValueOf(entity))
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && storedName(f) == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func storedName(f reflect.StructField) string {
	for _, tag := range []string{"datastore", "bson", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func compareValues(a reflect.Value, b reflect.Value) (int, error) {
	a = indirect(a)
	b = indirect(b)

	// nil sorts first
	switch {
	case !a.IsValid() && !b.IsValid():
		return 0, nil
	case !a.IsValid():
		return -1, nil
	case !b.IsValid():
		return 1, nil
	}

	if aTime, ok := a.Interface().(time.Time); ok {
		bTime, ok := b.Interface().(time.Time)
		if !ok {
			return 0, fmt.Errorf("cannot compare time with %s", b.Kind())
		}
		return aTime.Compare(bTime), nil
	}

	if isNumber(a) && isNumber(b) {
		return compareOrdered(toFloat(a), toFloat(b)), nil
	}

	if a.Kind() == reflect.String && b.Kind() == reflect.String {
		return strings.Compare(a.String(), b.String()), nil
	}

	if a.Kind() == reflect.Bool && b.Kind() == reflect.Bool {
		switch {
		case a.Bool() == b.Bool():
			return 0, nil
		case !a.Bool():
			return -1, nil
		default:
			return 1, nil
		}
	}

	return 0, fmt.Errorf("cannot compare %s with %s", a.Kind(), b.Kind())
}

func isNumber(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func compareOrdered(a float64, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
