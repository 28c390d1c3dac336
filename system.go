package prom

import (
	"fmt"
	"reflect"

	"github.com/oliverbestmann/prom/internal/assert"
	"github.com/oliverbestmann/prom/internal/refl"
	"github.com/oliverbestmann/prom/internal/typedpool"
	"github.com/pkg/errors"
)

// AnySystem is a function whose parameters all implement SystemParam,
// or a *System.
type AnySystem any

// System is a prepared system. Its parameter states persist between runs,
// so a *Local parameter keeps its value.
type System struct {
	Name string

	fn     reflect.Value
	params []SystemParamState
}

var valueSlices = typedpool.New(func(values *[]reflect.Value) {
	// clear any pointers that are still in the param slice
	clear(*values)
	*values = (*values)[:0]
})

// IntoSystem prepares fn to be run by a Scheduler. It panics if fn is not a
// function, returns values or has a parameter that is not a SystemParam.
func IntoSystem(fn AnySystem) *System {
	if system, ok := fn.(*System); ok {
		return system
	}

	rSystem := reflect.ValueOf(fn)
	if !rSystem.IsValid() {
		panic("system must not be nil")
	}

	systemType := rSystem.Type()
	assert.IsFuncType(systemType)
	assert.HasNoResults(systemType)

	system := &System{
		Name: refl.FuncName(rSystem),
		fn:   rSystem,
	}

	for idx := range systemType.NumIn() {
		inType := systemType.In(idx)

		switch {
		case refl.ImplementsInterfaceDirectly[SystemParam](inType):
			system.params = append(system.params, makeSystemParamState(inType))

		case refl.ImplementsInterfaceDirectly[SystemParam](reflect.PointerTo(inType)):
			system.params = append(system.params, makeSystemParamState(inType))

		default:
			panic(fmt.Sprintf("Can not handle system param of type %s in %s", inType, system.Name))
		}
	}

	// verify that all the param types match their actual types
	for idx, param := range system.params {
		inType := systemType.In(idx)
		if !param.valueType().AssignableTo(inType) {
			panic(fmt.Sprintf("Argument %d of %s is not assignable to param value of type %s", idx, system.Name, param.valueType()))
		}
	}

	return system
}

func makeSystemParamState(ty reflect.Type) SystemParamState {
	for ty.Kind() == reflect.Pointer {
		ty = ty.Elem()
	}

	// allocate a new instance on the heap and get the value as an interface
	param := reflect.New(ty).Interface().(SystemParam)

	return param.init()
}

func (s *System) String() string {
	return s.Name
}

// declareAccess declares the access of every parameter in order.
func (s *System) declareAccess(tracker *AccessTracker) error {
	for _, param := range s.params {
		if err := param.declareAccess(tracker); err != nil {
			return errors.Wrapf(err, "system %s", s.Name)
		}
	}

	return nil
}

// run declares, materializes, invokes and cleans up. Access conflicts and
// missing resources panic.
func (s *System) run(sc systemContext, tracker *AccessTracker) {
	if err := s.declareAccess(tracker); err != nil {
		panic(err)
	}

	paramValues := valueSlices.Get()
	defer valueSlices.Put(paramValues)

	// release all borrows, even if a parameter or the system panics.
	// cleanup runs in reverse order of materialization
	defer func() {
		for idx := len(s.params) - 1; idx >= 0; idx-- {
			s.params[idx].cleanupValue()
		}
	}()

	sc.system = s

	for _, param := range s.params {
		*paramValues = append(*paramValues, param.getValue(sc))
	}

	s.fn.Call(*paramValues)
}
