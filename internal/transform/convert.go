package transform

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// IsEmpty пустое значение: nil, false, 0, 0.0, "", "0", пустой срез или map
func IsEmpty(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case string:
		return val == "" || val == "0"
	case []byte:
		return len(val) == 0 || string(val) == "0"
	case int:
		return val == 0
	case int8:
		return val == 0
	case int16:
		return val == 0
	case int32:
		return val == 0
	case int64:
		return val == 0
	case uint:
		return val == 0
	case uint8:
		return val == 0
	case uint16:
		return val == 0
	case uint32:
		return val == 0
	case uint64:
		return val == 0
	case float32:
		return val == 0
	case float64:
		return val == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// ToString строковое представление значения: true -> "1", false и nil -> "",
// целые float без дробной части
func ToString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		if val {
			return "1"
		}
		return ""
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case float32:
		return formatFloat(float64(val))
	case float64:
		return formatFloat(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToFloat приводит значение к числу. Строки разбираются по ведущему числу,
// как "12.5kg" -> 12.5. Второе значение false, если числа не нашлось.
func ToFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case string:
		return leadingFloat(val)
	case []byte:
		return leadingFloat(string(val))
	}
	return 0, false
}

// ToInt как ToFloat, но с отбрасыванием дробной части
func ToInt(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case int32:
		return int64(val), true
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			return n, true
		}
	}
	f, ok := ToFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ok
	}
	return int64(f), true
}

func leadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
scan:
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case (c == '+' || c == '-') && (end == 0 || s[end-1] == 'e' || s[end-1] == 'E'):
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			break scan
		}
		end++
	}
	for end > 0 {
		if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return f, true
		}
		end--
	}
	return 0, false
}
