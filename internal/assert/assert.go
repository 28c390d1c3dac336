package assert

import (
	"fmt"
	"reflect"
)

func IsNonPointerType(t reflect.Type) {
	if t.Kind() == reflect.Pointer {
		panic(fmt.Sprintf("expected non pointer type, got %s", t))
	}
}

func IsFuncType(t reflect.Type) {
	if t.Kind() != reflect.Func {
		panic(fmt.Sprintf("not a function: %s", t))
	}
}

func HasNoResults(t reflect.Type) {
	if t.NumOut() != 0 {
		panic(fmt.Sprintf("system must not return values: %s", t))
	}
}
