package value

import "testing"

func TestOf(t *testing.T) {
	if v := Of(3.5); v.Kind != Number || v.Num != 3.5 {
		t.Fatalf("Of(3.5) = %+v, want Number/3.5", v)
	}
	if v := Of("abc"); v.Kind != String || v.Str != "abc" {
		t.Fatalf(`Of("abc") = %+v, want String/abc`, v)
	}
}

func TestOf_PanicsOnUnsupportedType(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unsupported type")
		}
	}()
	Of(42)
}

func TestIsMissing(t *testing.T) {
	if !(Value{Kind: Missing}).IsMissing() {
		t.Fatal("zero-kind Value should be Missing")
	}
	if Of(1.0).IsMissing() {
		t.Fatal("Number Value should not be Missing")
	}
}

func TestLess(t *testing.T) {
	if !Of(1.0).Less(Of(2.0)) {
		t.Fatal("1 < 2 should hold for Number")
	}
	if Of(2.0).Less(Of(1.0)) {
		t.Fatal("2 < 1 should not hold for Number")
	}
	if !Of("a").Less(Of("b")) {
		t.Fatal(`"a" < "b" should hold for String`)
	}
	if (Value{Kind: Missing}).Less(Value{Kind: Missing}) {
		t.Fatal("Missing is never less than anything")
	}
}

func TestEqual(t *testing.T) {
	if !Of(1.0).Equal(Of(1.0)) {
		t.Fatal("equal numbers should compare equal")
	}
	if Of(1.0).Equal(Of(2.0)) {
		t.Fatal("unequal numbers should not compare equal")
	}
	if Of("x").Equal(Of(1.0)) {
		t.Fatal("different kinds should never compare equal")
	}
	if !(Value{Kind: Missing}).Equal(Value{Kind: Missing}) {
		t.Fatal("two Missing values should compare equal")
	}
}
