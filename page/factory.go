package page

import (
	"fmt"
	"reflect"
	"strconv"
	"unicode"
	"unicode/utf8"
	"unsafe"

	"github.com/luispater/wiselenium/driver"
	"github.com/luispater/wiselenium/field"
	log "github.com/sirupsen/logrus"
)

const (
	findTag  = "find"
	cacheTag = "cache"
)

type elementsBinder interface {
	bindElements(sc driver.SearchContext, by driver.By)
}

var (
	pageType           = reflect.TypeOf(Page{})
	elementsBinderType = reflect.TypeOf((*elementsBinder)(nil)).Elem()
)

// InitElements instantiates T and binds its fields through d.
//
// Fields of registered wrapper types are bound to lazy elements located by
// their `find:"strategy=value"` tag, or by id or name equal to the field name
// with a lower case first letter when untagged. `cache:"true"` keeps the
// first element found. Elements[T] and *Elements[T] fields bind lazy lists. Struct fields with
// a find tag are containers whose fields are located inside the container.
// `find:"-"` leaves a field alone. An embedded Page receives d.
func InitElements[T any](d driver.Driver) (*T, error) {
	p := new(T)
	if err := InitElementsOn(d, p); err != nil {
		return nil, err
	}
	return p, nil
}

// InitElementsOn binds the fields of the struct target points to.
func InitElementsOn(d driver.Driver, target any) error {
	if d == nil {
		return fmt.Errorf("nil driver")
	}
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("page object must be a non-nil pointer to a struct, got %T", target)
	}
	return bindStruct(v.Elem(), d, d)
}

func bindStruct(v reflect.Value, sc driver.SearchContext, d driver.Driver) error {
	if v.Type() == pageType {
		v.Addr().Interface().(*Page).setDriver(d)
		return nil
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, tagged := sf.Tag.Lookup(findTag)
		if tag == "-" {
			continue
		}
		fv := settable(v.Field(i))
		if err := bindField(sf, fv, tag, tagged, sc, d); err != nil {
			return fmt.Errorf("field %s.%s: %w", t.Name(), sf.Name, err)
		}
	}
	return nil
}

func bindField(sf reflect.StructField, fv reflect.Value, tag string, tagged bool, sc driver.SearchContext, d driver.Driver) error {
	ft := sf.Type

	switch {
	case field.IsRegistered(ft):
		by, err := locatorFor(sf, tag, tagged)
		if err != nil {
			return err
		}
		wrapped, err := field.Wrap(ft, newLocatingElement(sc, by, cached(sf)))
		if err != nil {
			return err
		}
		fv.Set(wrapped)
		log.Debugf("bound field %s to %s", sf.Name, by)

	case reflect.PointerTo(ft).Implements(elementsBinderType):
		by, err := locatorFor(sf, tag, tagged)
		if err != nil {
			return err
		}
		fv.Addr().Interface().(elementsBinder).bindElements(sc, by)
		log.Debugf("bound list %s to %s", sf.Name, by)

	case ft.Kind() == reflect.Pointer && ft.Implements(elementsBinderType):
		by, err := locatorFor(sf, tag, tagged)
		if err != nil {
			return err
		}
		if fv.IsNil() {
			fv.Set(reflect.New(ft.Elem()))
		}
		fv.Interface().(elementsBinder).bindElements(sc, by)
		log.Debugf("bound list %s to %s", sf.Name, by)

	case sf.Anonymous && !tagged && isStructLike(ft):
		return bindNested(fv, sc, d)

	case tagged && isStructLike(ft):
		by, err := locatorFor(sf, tag, tagged)
		if err != nil {
			return err
		}
		container := newLocatingElement(sc, by, cached(sf))
		log.Debugf("bound container %s to %s", sf.Name, by)
		return bindNested(fv, container, d)

	case tagged:
		return fmt.Errorf("unsupported field type %s", ft)
	}
	return nil
}

func bindNested(fv reflect.Value, sc driver.SearchContext, d driver.Driver) error {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		return bindStruct(fv.Elem(), sc, d)
	}
	return bindStruct(fv, sc, d)
}

func isStructLike(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func locatorFor(sf reflect.StructField, tag string, tagged bool) (driver.By, error) {
	if tagged {
		return driver.ParseBy(tag)
	}
	return driver.IDOrName(lowerFirst(sf.Name)), nil
}

func cached(sf reflect.StructField) bool {
	v, err := strconv.ParseBool(sf.Tag.Get(cacheTag))
	return err == nil && v
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// settable makes unexported fields writable so page objects can keep their
// elements private behind accessors.
func settable(fv reflect.Value) reflect.Value {
	if fv.CanSet() {
		return fv
	}
	return reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
}
