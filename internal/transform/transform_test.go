package transform

import (
	"errors"
	"testing"

	"db_migrator/internal/config"
	"db_migrator/internal/idmap"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcTransformer struct {
	name string
	fn   func(value, param interface{}) (interface{}, error)
}

func (f funcTransformer) Name() string { return f.name }

func (f funcTransformer) Transform(value, param interface{}) (interface{}, error) {
	return f.fn(value, param)
}

func steps(names ...string) []config.Step {
	out := make([]config.Step, len(names))
	for i, n := range names {
		out[i] = config.Step{Name: n}
	}
	return out
}

func TestApplyChain(t *testing.T) {
	r := NewRegistry()

	out, err := r.Apply("  <p>hello</p>  ", steps("strip_tags", "trim", "strtoupper"))
	require.NoError(t, err)
	assert.Equal(t, "HELLO", out)

	out, err = r.Apply("<p>Hello <b>World</b></p>", steps("strip_tags"))
	require.NoError(t, err)
	assert.Equal(t, "Hello World", out)

	out, err = r.Apply("same", nil)
	require.NoError(t, err)
	assert.Equal(t, "same", out)
}

func TestUnknownTransformation(t *testing.T) {
	_, err := NewRegistry().Apply("x", steps("trim", "unknown_function"))
	require.Error(t, err)

	var unknown *UnknownTransformationError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "unknown_function", unknown.Name)
	assert.Equal(t, "unknown transformation: unknown_function", err.Error())
}

func TestRegisteredTransformerWins(t *testing.T) {
	first := funcTransformer{name: "trim", fn: func(v, _ interface{}) (interface{}, error) { return "first", nil }}
	second := funcTransformer{name: "trim", fn: func(v, _ interface{}) (interface{}, error) { return "second", nil }}
	r := NewRegistry(first, second)

	out, err := r.Apply("  x  ", steps("trim"))
	require.NoError(t, err)
	assert.Equal(t, "first", out)
	assert.True(t, r.Known("trim"))
	assert.True(t, r.Known("md5"))
	assert.False(t, r.Known("nope"))
}

func TestTransformerReceivesParam(t *testing.T) {
	var got interface{}
	percent := funcTransformer{name: "calc_percent", fn: func(v, p interface{}) (interface{}, error) {
		got = p
		value, _ := ToFloat(v)
		div, _ := ToFloat(p)
		return value * 100 / div, nil
	}}
	r := NewRegistry(percent)

	out, err := r.Apply(4, []config.Step{{Name: "calc_percent", Param: 5}})
	require.NoError(t, err)
	assert.Equal(t, float64(80), out)
	assert.Equal(t, 5, got)

	_, err = r.Apply(4, steps("calc_percent"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTransformerError(t *testing.T) {
	failing := funcTransformer{name: "boom", fn: func(interface{}, interface{}) (interface{}, error) {
		return nil, errors.New("bad value")
	}}
	_, err := NewRegistry(failing).Apply("x", steps("boom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad value")
}

func TestBuiltinArity(t *testing.T) {
	r := NewRegistry()

	_, err := r.Apply("a,b", steps("explode"))
	assert.Error(t, err)

	_, err = r.Apply("abc", []config.Step{{Name: "md5", Param: "x"}})
	assert.Error(t, err)
}

func TestStringBuiltins(t *testing.T) {
	r := NewRegistry()
	cases := []struct {
		in   interface{}
		step config.Step
		want interface{}
	}{
		{"  x \n", config.Step{Name: "trim"}, "x"},
		{"--x--", config.Step{Name: "trim", Param: "-"}, "x"},
		{"  x  ", config.Step{Name: "ltrim"}, "x  "},
		{"  x  ", config.Step{Name: "rtrim"}, "  x"},
		{"привет", config.Step{Name: "strtoupper"}, "ПРИВЕТ"},
		{"HeLLo", config.Step{Name: "strtolower"}, "hello"},
		{"john", config.Step{Name: "ucfirst"}, "John"},
		{"John", config.Step{Name: "lcfirst"}, "john"},
		{"hello big world", config.Step{Name: "ucwords"}, "Hello Big World"},
		{"hello-big world", config.Step{Name: "ucwords", Param: "-"}, "Hello-Big world"},
		{nil, config.Step{Name: "strtoupper"}, ""},
		{`<a href="x">Tom & 'Jerry'</a>`, config.Step{Name: "htmlspecialchars"}, "&lt;a href=&quot;x&quot;&gt;Tom &amp; &#039;Jerry&#039;&lt;/a&gt;"},
		{"Tom &amp; Jerry &lt;3", config.Step{Name: "html_entity_decode"}, "Tom & Jerry <3"},
		{"a\nb", config.Step{Name: "nl2br"}, "a<br />\nb"},
		{"<p>Hi <b>there</b><!-- note --></p>", config.Step{Name: "strip_tags", Param: "<b>"}, "Hi <b>there</b>"},
		{"a,b,c", config.Step{Name: "explode", Param: ","}, []interface{}{"a", "b", "c"}},
		{[]interface{}{"a", 1, true}, config.Step{Name: "implode", Param: "|"}, "a|1|1"},
		{"abc", config.Step{Name: "md5"}, "900150983cd24fb0d6963f7d28e17f72"},
		{"abc", config.Step{Name: "sha1"}, "a9993e364706816aba3e25717850c26c9cd0d89d"},
	}

	for _, tc := range cases {
		out, err := r.Apply(tc.in, []config.Step{tc.step})
		require.NoError(t, err, tc.step.Name)
		assert.Equal(t, tc.want, out, tc.step.Name)
	}
}

func TestNumericBuiltins(t *testing.T) {
	r := NewRegistry()
	cases := []struct {
		in   interface{}
		step config.Step
		want interface{}
	}{
		{"42abc", config.Step{Name: "intval"}, int64(42)},
		{12.9, config.Step{Name: "intval"}, int64(12)},
		{"ff", config.Step{Name: "intval", Param: 16}, int64(255)},
		{"3.5 kg", config.Step{Name: "floatval"}, 3.5},
		{"0", config.Step{Name: "boolval"}, false},
		{"yes", config.Step{Name: "boolval"}, true},
		{2.0, config.Step{Name: "strval"}, "2"},
		{2.5, config.Step{Name: "round"}, float64(3)},
		{"3.14159", config.Step{Name: "round", Param: 2}, 3.14},
		{int64(-7), config.Step{Name: "abs"}, int64(7)},
		{-1.5, config.Step{Name: "abs"}, 1.5},
		{1.2, config.Step{Name: "ceil"}, float64(2)},
		{1.8, config.Step{Name: "floor"}, float64(1)},
		{uint8(5), config.Step{Name: "round"}, float64(5)},
		{uint16(7), config.Step{Name: "intval"}, int64(7)},
		{uint8(9), config.Step{Name: "floatval"}, float64(9)},
	}

	for _, tc := range cases {
		out, err := r.Apply(tc.in, []config.Step{tc.step})
		require.NoError(t, err, tc.step.Name)
		assert.Equal(t, tc.want, out, tc.step.Name)
	}

	_, err := r.Apply("abc", steps("ceil"))
	assert.Error(t, err)
}

func TestJSONBuiltins(t *testing.T) {
	r := NewRegistry()

	out, err := r.Apply(map[string]interface{}{"a": 1}, steps("json_encode"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)

	out, err = r.Apply(`{"a": {"b": [1, 2]}}`, steps("json_decode"))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": map[string]interface{}{"b": []interface{}{float64(1), float64(2)}}}, out)

	out, err = r.Apply(`{"address": {"city": "Riga"}}`, []config.Step{{Name: "json_decode", Param: "address.city"}})
	require.NoError(t, err)
	assert.Equal(t, "Riga", out)

	out, err = r.Apply("", steps("json_decode"))
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = r.Apply("{broken", steps("json_decode"))
	assert.Error(t, err)
}

func TestMiscBuiltins(t *testing.T) {
	r := NewRegistry()

	out, err := r.Apply("2024-03-05 10:20:30", []config.Step{{Name: "date", Param: "02.01.2006"}})
	require.NoError(t, err)
	assert.Equal(t, "05.03.2024", out)

	out, err = r.Apply(int64(0), []config.Step{{Name: "date", Param: "2006-01-02"}})
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01", out)

	out, err = r.Apply("0000-00-00 00:00:00", []config.Step{{Name: "date", Param: "2006-01-02"}})
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = r.Apply("yesterday", []config.Step{{Name: "date", Param: "2006-01-02"}})
	assert.Error(t, err)

	out, err = r.Apply(nil, steps("uuid"))
	require.NoError(t, err)
	_, err = uuid.Parse(out.(string))
	assert.NoError(t, err)

	out, err = r.Apply("", []config.Step{{Name: "default", Param: "n/a"}})
	require.NoError(t, err)
	assert.Equal(t, "n/a", out)

	out, err = r.Apply("set", []config.Step{{Name: "default", Param: "n/a"}})
	require.NoError(t, err)
	assert.Equal(t, "set", out)

	out, err = r.Apply("", steps("nullif_empty"))
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = r.Apply("plain", []config.Step{{Name: "implode", Param: ","}})
	assert.Error(t, err)
}

func TestIsEmpty(t *testing.T) {
	for _, v := range []interface{}{nil, false, 0, int64(0), 0.0, "", "0", []interface{}{}, map[string]interface{}{}} {
		assert.True(t, IsEmpty(v), "%#v", v)
	}
	for _, v := range []interface{}{true, 1, -1, 0.1, " ", "00", "a", []interface{}{nil}} {
		assert.False(t, IsEmpty(v), "%#v", v)
	}
}

func TestIDMapTransformer(t *testing.T) {
	ids := idmap.New()
	ids.Add("User", int64(7), int64(70))
	r := NewRegistry(NewIDMapTransformer(ids))

	out, err := r.Apply("7", []config.Step{{Name: "map_id", Param: "User"}})
	require.NoError(t, err)
	assert.Equal(t, int64(70), out)

	out, err = r.Apply(float64(8), []config.Step{{Name: "map_id", Param: "User"}})
	require.NoError(t, err)
	assert.Nil(t, out)

	out, err = r.Apply(nil, []config.Step{{Name: "map_id", Param: "User"}})
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = r.Apply(7, steps("map_id"))
	assert.Error(t, err)
}
