package engine

import (
	"bytes"
	stdlog "log"
	"reflect"
	"strings"
	"testing"
)

func Test_filteredLogger_filteredArg(t *testing.T) {
	type args struct {
		v []interface{}
	}
	tests := []struct {
		name string
		args args
		want []interface{}
	}{
		{"1", args{v: []interface{}{"123"}}, []interface{}{"123"}},
		{"2", args{v: []interface{}{"abcdef1234567890abcdef1234567890abcdef12"}}, []interface{}{"[abcdef..]"}},
		{"3", args{v: []interface{}{"abcdef1234567890abcdef1234567890abcdef12", "123"}}, []interface{}{"[abcdef..]", "123"}},
		{"4", args{v: []interface{}{"1abcdef1234567890abcdef1234567890abcdef12", 40}}, []interface{}{"1abcdef1234567890abcdef1234567890abcdef12", 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := log.filteredArg(tt.args.v...); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("filteredLogger.filteredArg() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_filteredLogger_Println(t *testing.T) {
	buf := bytes.Buffer{}
	l := &filteredLogger{logger: stdlog.New(&buf, "[engine] ", stdlog.Lmsgprefix)}
	l.Println("added", "abcdef1234567890abcdef1234567890abcdef12")
	if got := buf.String(); !strings.HasPrefix(got, "[engine] added [abcdef..]") {
		t.Errorf("logged %q", got)
	}
}
