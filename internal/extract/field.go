package extract

// Field is the outcome of extracting one value: present or absent.
// Extractors never return errors; a value that cannot be read is simply absent.
type Field[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value
func Some[T any](v T) Field[T] {
	return Field[T]{value: v, ok: true}
}

// None is the absent value
func None[T any]() Field[T] {
	return Field[T]{}
}

// Get returns the value and whether it is present
func (f Field[T]) Get() (T, bool) {
	return f.value, f.ok
}

// OK reports whether the value is present
func (f Field[T]) OK() bool {
	return f.ok
}

// Ptr returns a pointer to a copy of the value, or nil when absent
func (f Field[T]) Ptr() *T {
	if !f.ok {
		return nil
	}
	v := f.value
	return &v
}

// OrElse returns the value or def when absent
func (f Field[T]) OrElse(def T) T {
	if !f.ok {
		return def
	}
	return f.value
}

// Map chains a parser onto a field; absent stays absent
func Map[T, U any](f Field[T], fn func(T) Field[U]) Field[U] {
	if !f.ok {
		return None[U]()
	}
	return fn(f.value)
}

// Or returns the first present field
func Or[T any](fields ...Field[T]) Field[T] {
	for _, f := range fields {
		if f.ok {
			return f
		}
	}
	return None[T]()
}

// Safe runs fn and turns a panic inside it into an absent field, so one bad
// value never aborts the extraction of a whole record.
func Safe[T any](fn func() Field[T]) (out Field[T]) {
	defer func() {
		if recover() != nil {
			out = None[T]()
		}
	}()
	return fn()
}
