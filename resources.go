package prom

import (
	"fmt"
	"reflect"

	"github.com/oliverbestmann/prom/world"
)

// entityResources change the set of entities and must be injected through
// RefWorld, MutWorld or WriteWorld.
var entityResources = []reflect.Type{
	reflect.TypeFor[world.World](),
	reflect.TypeFor[world.Registry](),
}

func resourceParam[T any](access Access) borrowed {
	ty := reflect.TypeFor[T]()

	for _, reserved := range entityResources {
		if ty == reserved {
			panic(fmt.Sprintf("Can not inject %s as a resource, use RefWorld, MutWorld or WriteWorld", ty))
		}
	}

	return borrowed{ty: ty, access: access}
}

// Res injects shared, read only access to the resource of type T.
// Systems in the same phase may all read the same resource.
type Res[T any] struct {
	borrowed
	value *T
}

func (r *Res[T]) init() SystemParamState {
	r.borrowed = resourceParam[T](Read)
	return r
}

func (r *Res[T]) getValue(sc systemContext) reflect.Value {
	r.value = r.acquire(sc.store).Interface().(*T)
	return reflect.ValueOf(r).Elem()
}

func (r *Res[T]) cleanupValue() {
	r.borrowed.cleanupValue()
	r.value = nil
}

func (*Res[T]) valueType() reflect.Type {
	return reflect.TypeFor[Res[T]]()
}

// Get returns the resource. It must not be modified.
func (r Res[T]) Get() *T {
	return r.value
}

// ResMut injects exclusive access to the resource of type T. No other
// system in the same phase may access the resource.
type ResMut[T any] struct {
	borrowed
	value *T
}

func (r *ResMut[T]) init() SystemParamState {
	r.borrowed = resourceParam[T](Write)
	return r
}

func (r *ResMut[T]) getValue(sc systemContext) reflect.Value {
	r.value = r.acquire(sc.store).Interface().(*T)
	return reflect.ValueOf(r).Elem()
}

func (r *ResMut[T]) cleanupValue() {
	r.borrowed.cleanupValue()
	r.value = nil
}

func (*ResMut[T]) valueType() reflect.Type {
	return reflect.TypeFor[ResMut[T]]()
}

func (r ResMut[T]) Get() *T {
	return r.value
}

func (r ResMut[T]) Set(value T) {
	*r.value = value
}

// ResOption allows to inject a resource as a system param if it exists.
// If the resource does not exist, the system will still run but Value is nil.
// The access is declared as a read in both cases.
type ResOption[T any] struct {
	borrowed
	Value *T
}

func (r *ResOption[T]) init() SystemParamState {
	r.borrowed = resourceParam[T](Read)
	return r
}

func (r *ResOption[T]) getValue(sc systemContext) reflect.Value {
	r.Value = nil

	if value, ok := r.tryAcquire(sc.store); ok {
		r.Value = value.Interface().(*T)
	}

	return reflect.ValueOf(r).Elem()
}

func (r *ResOption[T]) cleanupValue() {
	r.borrowed.cleanupValue()
	r.Value = nil
}

func (*ResOption[T]) valueType() reflect.Type {
	return reflect.TypeFor[ResOption[T]]()
}
