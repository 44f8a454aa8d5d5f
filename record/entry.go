package record

import (
	"fmt"
	"io"
	"reflect"

	"github.com/shamaton/msgpack/v2"

	"github.com/soltimer-dev/soltimer/timer"
)

// TypedEntry wraps a payload with a type tag so Retrieve can rebuild the
// right concrete type.
type TypedEntry struct {
	TypeTag string
	Data    []byte
}

func (t *TypedEntry) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, t)
}

func (t *TypedEntry) Deserialize(r io.Reader) error {
	return msgpack.UnmarshalRead(r, t)
}

// typeRegistry maps type tags to reflect.Type for deserialization.
var typeRegistry = make(map[string]reflect.Type)

func registerType(tag string, example Serde) {
	typeRegistry[tag] = reflect.TypeOf(example)
}

func init() {
	registerType("Result", &timer.Result{})
	registerType("Timer", &timer.Timer{})
}

// typeTag returns the registered tag for the item, falling back to the
// bare type name.
func typeTag(item Serde) string {
	t := reflect.TypeOf(item)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for tag, regType := range typeRegistry {
		checkType := regType
		if checkType.Kind() == reflect.Ptr {
			checkType = checkType.Elem()
		}
		if t == checkType {
			return tag
		}
	}
	return t.Name()
}

// createInstance builds a fresh instance of the registered type.
func createInstance(tag string) (Serde, error) {
	regType, ok := typeRegistry[tag]
	if !ok {
		return nil, fmt.Errorf("record: unknown type tag: %s", tag)
	}
	if regType.Kind() == reflect.Ptr {
		regType = regType.Elem()
	}
	instance := reflect.New(regType).Interface()
	s, ok := instance.(Serde)
	if !ok {
		return nil, fmt.Errorf("record: type %s does not implement Serde", tag)
	}
	return s, nil
}
