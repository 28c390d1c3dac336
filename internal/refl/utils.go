package refl

import (
	"iter"
	"reflect"
	"runtime"
	"strings"
)

func IterFields(ty reflect.Type) iter.Seq[reflect.StructField] {
	return func(yield func(reflect.StructField) bool) {
		for idx := range ty.NumField() {
			if !yield(ty.Field(idx)) {
				return
			}
		}
	}
}

// ImplementsInterfaceDirectly returns true if ty implements If and the
// implementation is not only promoted from an embedded field.
func ImplementsInterfaceDirectly[If any](ty reflect.Type) bool {
	iface := reflect.TypeFor[If]()

	if !ty.Implements(iface) {
		return false
	}

	for ty.Kind() == reflect.Pointer {
		ty = ty.Elem()
	}

	if ty.Kind() != reflect.Struct {
		return true
	}

	for field := range IterFields(ty) {
		if !field.Anonymous {
			continue
		}

		if field.Type.Implements(iface) {
			return false
		}

		if reflect.PointerTo(field.Type).Implements(iface) {
			return false
		}
	}

	return true
}

// FuncName returns the short name of a function value,
// e.g. "prom.updateClockSystem" or "physics.Plugin.func1".
func FuncName(fn reflect.Value) string {
	rFunc := runtime.FuncForPC(fn.Pointer())
	if rFunc == nil {
		return fn.Type().String()
	}

	name := rFunc.Name()

	// strip the package path, keep the package name
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}

	return name
}
