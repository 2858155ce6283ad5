package page

import (
	"fmt"
	"reflect"

	"github.com/luispater/wiselenium/driver"
	"github.com/luispater/wiselenium/field"
)

// Elements is a lazily located list of wrapped elements. Page objects declare
// it as a field with a find tag; every call locates the list again.
type Elements[T any] struct {
	sc driver.SearchContext
	by driver.By
}

func (e *Elements[T]) bindElements(sc driver.SearchContext, by driver.By) {
	e.sc = sc
	e.by = by
}

// By returns the locator the list is bound with.
func (e *Elements[T]) By() driver.By {
	return e.by
}

func (e *Elements[T]) All() ([]T, error) {
	if e.sc == nil {
		return nil, fmt.Errorf("elements %s are not bound", e.by)
	}
	return FindElements[T](e.sc, e.by)
}

func (e *Elements[T]) Len() (int, error) {
	if e.sc == nil {
		return 0, fmt.Errorf("elements %s are not bound", e.by)
	}
	elements, err := e.sc.FindElements(e.by)
	return len(elements), err
}

// At returns the i-th element of the list.
func (e *Elements[T]) At(i int) (T, error) {
	var zero T
	all, err := e.All()
	if err != nil {
		return zero, err
	}
	if i < 0 || i >= len(all) {
		return zero, fmt.Errorf("%w: index %d of %d %s", driver.ErrNoSuchElement, i, len(all), e.by)
	}
	return all[i], nil
}

func wrap[T any](el driver.Element) (T, error) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()
	v, err := field.Wrap(t, el)
	if err != nil {
		return zero, err
	}
	typed, ok := v.Interface().(T)
	if !ok {
		return zero, fmt.Errorf("wrapper for %s returned %s", t, v.Type())
	}
	return typed, nil
}
