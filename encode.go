package requesty

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// EncodeQuery renders params as a query string including the leading "?".
// Entries whose value is nil (typed nil pointers included) or "" are
// skipped; non-nil pointers are dereferenced. Keys are emitted in
// ascending order. An empty string is returned when nothing remains.
func EncodeQuery(params Params) string {
	if len(params) == 0 {
		return ""
	}

	values := make(url.Values, len(params))
	for key, value := range params {
		text, ok := formatScalar(value)
		if !ok || text == "" {
			continue
		}
		values.Add(key, text)
	}

	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// EncodeRoute joins segments into a path suffix such as "/5/comments".
// nil and "" segments are dropped; every other segment is path escaped.
func EncodeRoute(segments []any) string {
	if len(segments) == 0 {
		return ""
	}

	var builder strings.Builder
	for _, segment := range segments {
		text, ok := formatScalar(segment)
		if !ok || text == "" {
			continue
		}
		builder.WriteByte('/')
		builder.WriteString(url.PathEscape(text))
	}
	return builder.String()
}

func formatScalar(value any) (string, bool) {
	if isNilValue(value) {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int8:
		return strconv.FormatInt(int64(v), 10), true
	case int16:
		return strconv.FormatInt(int64(v), 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return strconv.FormatUint(uint64(v), 10), true
	case uint16:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
			return formatScalar(rv.Elem().Interface())
		}
		return fmt.Sprint(v), true
	}
}

// isNilValue reports untyped nil and typed nil pointers, maps, slices,
// channels, funcs and interfaces.
func isNilValue(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
