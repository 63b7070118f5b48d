package binding

import (
	"fmt"
	"reflect"
	"testing"
)

func TestConvertBasic(t *testing.T) {
	r := DefaultConverters()

	find := func(t *testing.T, src, dst interface{}) Converter {
		c := r.Find(reflect.TypeOf(src), reflect.TypeOf(dst))
		if c == nil {
			t.Fatalf("no converter for %T to %T", src, dst)
		}
		return c
	}

	t.Run("IntToString", func(t *testing.T) {
		c := find(t, 0, "")
		v, err := c.SourceToTarget(42)
		if err != nil {
			t.Fatal(err)
		}
		if v != "42" {
			t.Fatal(v)
		}
		v, err = c.TargetToSource("7")
		if err != nil {
			t.Fatal(err)
		}
		if v != 7 {
			t.Fatal(v)
		}
	})

	t.Run("Float32ToString", func(t *testing.T) {
		c := find(t, float32(0), "")
		v, err := c.SourceToTarget(float32(0.1))
		if err != nil {
			t.Fatal(err)
		}
		// Not "0.10000000149011612".
		if v != "0.1" {
			t.Fatal(v)
		}
	})

	t.Run("StringToIntRejectsFraction", func(t *testing.T) {
		c := find(t, "", 0)
		if _, err := c.SourceToTarget("42.7"); err == nil {
			t.Fatal("expected a complaint about 42.7")
		}
	})

	t.Run("BoolToString", func(t *testing.T) {
		c := find(t, true, "")
		v, err := c.SourceToTarget(true)
		if err != nil {
			t.Fatal(err)
		}
		if v != "true" {
			t.Fatal(v)
		}
	})

	t.Run("StringToBool", func(t *testing.T) {
		c := find(t, "", false)
		v, err := c.SourceToTarget("true")
		if err != nil {
			t.Fatal(err)
		}
		if v != true {
			t.Fatal(v)
		}
		if _, err := c.SourceToTarget("yep"); err == nil {
			t.Fatal("expected a complaint about yep")
		}
	})

	t.Run("IntToBoolRefused", func(t *testing.T) {
		if c := r.Find(reflect.TypeOf(0), reflect.TypeOf(false)); c != nil {
			if _, err := c.SourceToTarget(1); err == nil {
				t.Fatal("expected a complaint about 1")
			}
		}
	})

	t.Run("FloatToInt", func(t *testing.T) {
		c := find(t, 0.0, 0)
		v, err := c.SourceToTarget(2.9)
		if err != nil {
			t.Fatal(err)
		}
		if v != 2 {
			t.Fatal(v)
		}
	})

	t.Run("NamedTypes", func(t *testing.T) {
		type Celsius float64
		c := find(t, Celsius(0), "")
		v, err := c.SourceToTarget(Celsius(21.5))
		if err != nil {
			t.Fatal(err)
		}
		if v != "21.5" {
			t.Fatal(v)
		}
	})
}

func TestConvertRegistered(t *testing.T) {
	r := NewRegistry()
	r.Register(reflect.TypeOf(0), reflect.TypeOf(""),
		Convert(func(v interface{}) (interface{}, error) {
			return fmt.Sprintf("#%d", v), nil
		}, func(v interface{}) (interface{}, error) {
			var n int
			if _, err := fmt.Sscanf(v.(string), "#%d", &n); err != nil {
				return nil, err
			}
			return n, nil
		}))

	c := r.Find(reflect.TypeOf(0), reflect.TypeOf(""))
	if c == nil {
		t.Fatal("registration not found")
	}
	v, err := c.SourceToTarget(3)
	if err != nil {
		t.Fatal(err)
	}
	if v != "#3" {
		t.Fatal(v)
	}

	// The same registration, consulted the other way around.
	c = r.Find(reflect.TypeOf(""), reflect.TypeOf(0))
	if c == nil {
		t.Fatal("reversed registration not found")
	}
	v, err = c.SourceToTarget("#9")
	if err != nil {
		t.Fatal(err)
	}
	if v != 9 {
		t.Fatal(v)
	}
}

func TestConvertFindNothing(t *testing.T) {
	r := NewRegistry()
	if c := r.Find(reflect.TypeOf(0), reflect.TypeOf("")); c != nil {
		t.Fatal("an empty registry offered a converter")
	}
	r = DefaultConverters()
	if c := r.Find(reflect.TypeOf(""), reflect.TypeOf("")); c != nil {
		t.Fatal("same-type conversion should be nothing to do")
	}
	if c := r.Find(nil, reflect.TypeOf("")); c != nil {
		t.Fatal("nil source type should find nothing")
	}
}

func TestConvertOneWay(t *testing.T) {
	c := Convert(func(v interface{}) (interface{}, error) {
		return v, nil
	}, nil)
	if _, err := c.TargetToSource(1); err == nil {
		t.Fatal("one-way converter accepted a reverse conversion")
	}
}
