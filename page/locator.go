package page

import "github.com/luispater/wiselenium/driver"

// FindElement locates the first element matching by in sc and wraps it as T,
// which must be a registered field type.
func FindElement[T any](sc driver.SearchContext, by driver.By) (T, error) {
	var zero T
	el, err := sc.FindElement(by)
	if err != nil {
		return zero, err
	}
	return wrap[T](el)
}

// FindElements locates all elements matching by in sc and wraps each as T.
func FindElements[T any](sc driver.SearchContext, by driver.By) ([]T, error) {
	elements, err := sc.FindElements(by)
	if err != nil {
		return nil, err
	}
	result := make([]T, 0, len(elements))
	for _, el := range elements {
		w, errWrap := wrap[T](el)
		if errWrap != nil {
			return nil, errWrap
		}
		result = append(result, w)
	}
	return result, nil
}
