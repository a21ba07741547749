package transform

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

// Builtin встроенная функция. Unary вызывается без параметра, Binary с параметром.
// Отсутствующая форма означает, что такой вызов запрещен.
type Builtin struct {
	Unary  func(v interface{}) (interface{}, error)
	Binary func(v, param interface{}) (interface{}, error)
}

const trimChars = " \t\n\r\x00\x0B"

// Builtins набор встроенных функций. Имена совместимы со старыми конфигами.
func Builtins() map[string]Builtin {
	return map[string]Builtin{
		"trim":  stringFunc(func(s string) string { return strings.Trim(s, trimChars) }, func(s, p string) string { return strings.Trim(s, p) }),
		"ltrim": stringFunc(func(s string) string { return strings.TrimLeft(s, trimChars) }, func(s, p string) string { return strings.TrimLeft(s, p) }),
		"rtrim": stringFunc(func(s string) string { return strings.TrimRight(s, trimChars) }, func(s, p string) string { return strings.TrimRight(s, p) }),

		"strtoupper": stringFunc(strings.ToUpper, nil),
		"strtolower": stringFunc(strings.ToLower, nil),
		"ucfirst":    stringFunc(func(s string) string { return mapFirst(s, unicode.ToUpper) }, nil),
		"lcfirst":    stringFunc(func(s string) string { return mapFirst(s, unicode.ToLower) }, nil),
		"ucwords":    stringFunc(func(s string) string { return ucwords(s, trimChars) }, ucwords),

		"strip_tags": {
			Unary: func(v interface{}) (interface{}, error) { return stripTags(ToString(v), nil), nil },
			Binary: func(v, p interface{}) (interface{}, error) {
				return stripTags(ToString(v), allowedTags(p)), nil
			},
		},
		"htmlspecialchars":   stringFunc(htmlSpecialChars, nil),
		"html_entity_decode": stringFunc(html.UnescapeString, nil),
		"nl2br":              stringFunc(nl2br, nil),

		"intval": {
			Unary: func(v interface{}) (interface{}, error) {
				n, _ := ToInt(v)
				return n, nil
			},
			Binary: func(v, p interface{}) (interface{}, error) {
				base, ok := ToInt(p)
				if !ok || base < 2 || base > 36 {
					return nil, fmt.Errorf("invalid base %v", p)
				}
				n, err := strconv.ParseInt(strings.TrimSpace(ToString(v)), int(base), 64)
				if err != nil {
					return int64(0), nil
				}
				return n, nil
			},
		},
		"floatval": {Unary: func(v interface{}) (interface{}, error) {
			f, _ := ToFloat(v)
			return f, nil
		}},
		"boolval": {Unary: func(v interface{}) (interface{}, error) { return !IsEmpty(v), nil }},
		"strval":  {Unary: func(v interface{}) (interface{}, error) { return ToString(v), nil }},

		"round": {
			Unary: func(v interface{}) (interface{}, error) { return round(v, 0) },
			Binary: func(v, p interface{}) (interface{}, error) {
				precision, ok := ToInt(p)
				if !ok {
					return nil, fmt.Errorf("invalid precision %v", p)
				}
				return round(v, int(precision))
			},
		},
		"abs": {Unary: func(v interface{}) (interface{}, error) {
			if n, ok := v.(int64); ok {
				if n < 0 {
					return -n, nil
				}
				return n, nil
			}
			if n, ok := v.(int); ok {
				if n < 0 {
					return -n, nil
				}
				return n, nil
			}
			return numericFunc(math.Abs)(v)
		}},
		"ceil":  {Unary: numericFunc(math.Ceil)},
		"floor": {Unary: numericFunc(math.Floor)},

		"md5": stringFunc(func(s string) string {
			sum := md5.Sum([]byte(s))
			return hex.EncodeToString(sum[:])
		}, nil),
		"sha1": stringFunc(func(s string) string {
			sum := sha1.Sum([]byte(s))
			return hex.EncodeToString(sum[:])
		}, nil),
		"json_encode": {Unary: func(v interface{}) (interface{}, error) {
			data, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			return string(data), nil
		}},
		"json_decode": {
			Unary: func(v interface{}) (interface{}, error) { return jsonDecode(ToString(v), "") },
			// параметр это путь gjson внутри документа
			Binary: func(v, p interface{}) (interface{}, error) { return jsonDecode(ToString(v), ToString(p)) },
		},

		"explode": {Binary: func(v, p interface{}) (interface{}, error) {
			sep := ToString(p)
			if sep == "" {
				return nil, errors.New("empty delimiter")
			}
			parts := strings.Split(ToString(v), sep)
			out := make([]interface{}, len(parts))
			for i, part := range parts {
				out[i] = part
			}
			return out, nil
		}},
		"implode": {Binary: func(v, p interface{}) (interface{}, error) {
			items, err := toSlice(v)
			if err != nil {
				return nil, err
			}
			parts := make([]string, len(items))
			for i, item := range items {
				parts[i] = ToString(item)
			}
			return strings.Join(parts, ToString(p)), nil
		}},

		"date": {Binary: func(v, p interface{}) (interface{}, error) {
			layout := ToString(p)
			if layout == "" {
				return nil, errors.New("empty layout")
			}
			t, ok, err := parseTime(v)
			if err != nil || !ok {
				return nil, err
			}
			return t.Format(layout), nil
		}},
		"uuid": {Unary: func(interface{}) (interface{}, error) { return uuid.NewString(), nil }},
		"default": {Binary: func(v, p interface{}) (interface{}, error) {
			if IsEmpty(v) {
				return p, nil
			}
			return v, nil
		}},
		"nullif_empty": {Unary: func(v interface{}) (interface{}, error) {
			if IsEmpty(v) {
				return nil, nil
			}
			return v, nil
		}},
	}
}

func stringFunc(unary func(string) string, binary func(s, p string) string) Builtin {
	b := Builtin{
		Unary: func(v interface{}) (interface{}, error) { return unary(ToString(v)), nil },
	}
	if binary != nil {
		b.Binary = func(v, p interface{}) (interface{}, error) { return binary(ToString(v), ToString(p)), nil }
	}
	return b
}

func numericFunc(fn func(float64) float64) func(v interface{}) (interface{}, error) {
	return func(v interface{}) (interface{}, error) {
		f, ok := ToFloat(v)
		if !ok && v != nil {
			return nil, fmt.Errorf("not a number: %v", v)
		}
		return fn(f), nil
	}
}

func round(v interface{}, precision int) (interface{}, error) {
	f, ok := ToFloat(v)
	if !ok && v != nil {
		return nil, fmt.Errorf("not a number: %v", v)
	}
	pow := math.Pow(10, float64(precision))
	return math.Round(f*pow) / pow, nil
}

func mapFirst(s string, fn func(rune) rune) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(fn(r)) + s[size:]
}

func ucwords(s, delimiters string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if upper {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		upper = strings.ContainsRune(delimiters, r)
	}
	return b.String()
}

func htmlSpecialChars(s string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		`"`, "&quot;",
		"'", "&#039;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(s)
}

func nl2br(s string) string {
	return strings.NewReplacer(
		"\r\n", "<br />\r\n",
		"\n\r", "<br />\n\r",
		"\n", "<br />\n",
		"\r", "<br />\r",
	).Replace(s)
}

// stripTags удаляет теги и комментарии, текст и сущности остаются как есть
func stripTags(s string, allowed map[string]bool) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF или ошибка разбора, в обоих случаях отдаем накопленное
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			if len(allowed) > 0 {
				name, _ := z.TagName()
				if allowed[string(name)] {
					b.Write(z.Raw())
				}
			}
		}
	}
}

// allowedTags принимает "<b><i>" или список имен
func allowedTags(p interface{}) map[string]bool {
	out := make(map[string]bool)
	switch val := p.(type) {
	case string:
		for _, part := range strings.Split(val, "<") {
			name := strings.ToLower(strings.Trim(part, "<>/ "))
			if name != "" {
				out[name] = true
			}
		}
	case []interface{}:
		for _, item := range val {
			out[strings.ToLower(strings.Trim(ToString(item), "<>/ "))] = true
		}
	case []string:
		for _, item := range val {
			out[strings.ToLower(strings.Trim(item, "<>/ "))] = true
		}
	}
	return out
}

func jsonDecode(s, path string) (interface{}, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	if !gjson.Valid(s) {
		return nil, fmt.Errorf("invalid json: %q", s)
	}
	result := gjson.Parse(s)
	if path != "" {
		result = result.Get(path)
	}
	if !result.Exists() {
		return nil, nil
	}
	return result.Value(), nil
}

func toSlice(v interface{}) ([]interface{}, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		return val, nil
	case []string:
		out := make([]interface{}, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTime второе значение false для пустого входа
func parseTime(v interface{}) (time.Time, bool, error) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return val, true, nil
	case int64:
		return time.Unix(val, 0).UTC(), true, nil
	case int:
		return time.Unix(int64(val), 0).UTC(), true, nil
	case float64:
		return time.Unix(int64(val), 0).UTC(), true, nil
	}

	s := strings.TrimSpace(ToString(v))
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		return time.Time{}, false, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC(), true, nil
	}
	return time.Time{}, false, fmt.Errorf("cannot parse date %q", s)
}
