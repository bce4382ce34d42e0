// Package result provides an explicit success-or-error value with
// short-circuiting combinators. Workflows chain command steps through
// it so the first failure stops the pipeline and carries to the caller.
package result

// Result holds either a value or an error, never both.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err wraps a failure.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// IsOk reports whether the result holds a value.
func (r Result[T]) IsOk() bool { return r.err == nil }

// Unwrap returns the value and error in Go's usual shape.
func (r Result[T]) Unwrap() (T, error) { return r.value, r.err }

// Value returns the held value; the zero value after a failure.
func (r Result[T]) Value() T { return r.value }

// Err returns the held error, nil on success.
func (r Result[T]) Err() error { return r.err }

// Map transforms the value of a successful result; a failure passes
// through untouched.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return Ok(f(r.value))
}

// AndThen chains a fallible step onto a successful result; a failure
// short-circuits and f is never called.
func AndThen[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return f(r.value)
}

// Zip combines two results into a pair; the first error wins.
func Zip[T, U any](a Result[T], b Result[U]) Result[Pair[T, U]] {
	if a.err != nil {
		return Err[Pair[T, U]](a.err)
	}
	if b.err != nil {
		return Err[Pair[T, U]](b.err)
	}
	return Ok(Pair[T, U]{First: a.value, Second: b.value})
}

// Pair holds the two values combined by Zip.
type Pair[T, U any] struct {
	First  T
	Second U
}

// From adapts a (value, error) return into a Result.
func From[T any](value T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(value)
}
