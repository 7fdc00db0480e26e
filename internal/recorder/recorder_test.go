package recorder

import (
	"reflect"
	"strings"
	"testing"
)

func TestRecorderIsWriteOnly(t *testing.T) {
	for _, typ := range []reflect.Type{
		reflect.TypeOf((*Recorder)(nil)).Elem(),
		reflect.TypeOf(&SQLiteRecorder{}),
		reflect.TypeOf(&NoopRecorder{}),
	} {
		for i := 0; i < typ.NumMethod(); i++ {
			name := typ.Method(i).Name
			if name != "Close" && !strings.HasPrefix(name, "Record") {
				t.Errorf("%s exposes %s; the journal has no read API", typ, name)
			}
		}
	}
}
