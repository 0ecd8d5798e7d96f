package binder

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// PathExtractor returns the route parameter named key.
type PathExtractor func(r *http.Request, key string) string

// ChiParam reads chi route parameters.
func ChiParam(r *http.Request, key string) string { return chi.URLParam(r, key) }

// Path fills `path` tagged fields of the struct v points to. Empty
// parameters leave fields untouched. A nil extractor uses ChiParam.
func Path(extract PathExtractor) func(r *http.Request, v any) error {
	if extract == nil {
		extract = ChiParam
	}
	return func(r *http.Request, v any) error {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a non-nil pointer to struct", ErrFailedToParsePath)
		}
		rv = rv.Elem()
		rt := rv.Type()

		for i := range rt.NumField() {
			sf := rt.Field(i)
			key := sf.Tag.Get("path")
			if key == "" || key == "-" || !sf.IsExported() {
				continue
			}
			raw := extract(r, key)
			if raw == "" {
				continue
			}
			if err := setScalar(rv.Field(i), raw); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrFailedToParsePath, key, err)
			}
		}
		return nil
	}
}

func setScalar(f reflect.Value, raw string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, f.Type().Bits())
		if err != nil {
			return err
		}
		f.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, f.Type().Bits())
		if err != nil {
			return err
		}
		f.SetUint(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		f.SetBool(b)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, f.Type().Bits())
		if err != nil {
			return err
		}
		f.SetFloat(n)
	default:
		return fmt.Errorf("unsupported field type %s", f.Type())
	}
	return nil
}
