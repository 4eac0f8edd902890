package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"unicode/utf8"
)

// Marshal serialises v to the canonical payload form: UTF-8 JSON, object keys
// sorted, no HTML escaping, no trailing newline. Strings or keys holding
// invalid UTF-8 are rejected with ErrEncoding rather than rewritten.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	// encoding/json writes each invalid byte as this escape.
	if bytes.Contains(buf.Bytes(), []byte(`\ufffd`)) {
		if err := checkUTF8(reflect.ValueOf(v)); err != nil {
			return nil, err
		}
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// checkUTF8 walks the values encoding/json would serialise and reports the
// first string or map key that is not valid UTF-8.
func checkUTF8(v reflect.Value) error {
	switch v.Kind() {
	case reflect.String:
		if s := v.String(); !utf8.ValidString(s) {
			return fmt.Errorf("%w: invalid UTF-8 in string %q", ErrEncoding, s)
		}
	case reflect.Interface, reflect.Pointer:
		if !v.IsNil() {
			return checkUTF8(v.Elem())
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := checkUTF8(iter.Key()); err != nil {
				return err
			}
			if err := checkUTF8(iter.Value()); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := checkUTF8(v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if t.Field(i).IsExported() {
				if err := checkUTF8(v.Field(i)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Unmarshal parses a payload produced by Marshal. Objects decode to
// map[string]any, arrays to []any and numbers to json.Number so integers keep
// their exact value. Invalid UTF-8, malformed JSON and trailing data are all
// reported as ErrCorrupt.
func Unmarshal(data []byte) (any, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: payload is not valid UTF-8", ErrCorrupt)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty payload", ErrCorrupt)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after payload", ErrCorrupt)
	}
	return v, nil
}

// Normalize converts any serialisable Go value to the form Unmarshal returns,
// so it can be compared with extracted metadata.
func Normalize(v any) (any, error) {
	b, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	n, err := Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return n, nil
}
