package observe

// These errors report endpoint-level write failures.  Path
// resolution and conversion failures live at a higher level (package
// binding).

import (
	"fmt"
	"reflect"
)

// NoSuchProperty occurs when Set names a property the Observable
// does not have and will not create.
type NoSuchProperty struct {
	Name string
}

func (e *NoSuchProperty) Error() string {
	return `no property "` + e.Name + `"`
}

// Unwritable occurs when Set names a property that can only be read.
type Unwritable struct {
	Name string
}

func (e *Unwritable) Error() string {
	return `property "` + e.Name + `" is not writable`
}

// WrongType occurs when Set is given a value that cannot be stored
// in the property's declared type.
type WrongType struct {
	Name     string
	Declared reflect.Type
	Value    interface{}
}

func (e *WrongType) Error() string {
	return fmt.Sprintf(`property "%s" wants %v; can't take %T`, e.Name, e.Declared, e.Value)
}
