package jit

import (
	"errors"
	"strings"
	"testing"
)

// programTests 语言层面的行为，本机执行测试也复用这张表
var programTests = []struct {
	source string
	want   int64
}{
	{"", 0},
	{"hello", 0},
	{"+", 1},
	{"-", -1},
	{"+*", 2},
	{"++/", 1},
	{"+/", 0},
	{"-/", 0},
	{"---/", -1},
	{"-----*", -10},
	{"+++***+++***+++--/**////*****---*+*", 3446},
	{strings.Repeat("+", 100), 100},
	{strings.Repeat("-", 100), -100},
}

func TestEmulate_Programs(t *testing.T) {
	for _, tt := range programTests {
		t.Run(tt.source, func(t *testing.T) {
			got, err := Emulate(Compile(tt.source).Code)
			if err != nil {
				t.Fatalf("Emulate error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Emulate(%q) = %d, want %d", tt.source, got, tt.want)
			}
		})
	}
}

func TestEmulate_Errors(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"no ret", []byte{0x48, 0x31, 0xC0}},
		{"empty", nil},
		{"bad byte", []byte{0x90, 0xC3}},
		{"idiv without cqo", []byte{0x48, 0x31, 0xC0, 0x48, 0xF7, 0xF9, 0xC3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Emulate(tt.code); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Emulate([]byte{0x48, 0x31, 0xC0}); !errors.Is(err, errNoReturn) {
		t.Errorf("missing ret: got %v, want errNoReturn", err)
	}
}

func TestDisassemble_Bad(t *testing.T) {
	insts := Disassemble([]byte{0x90, 0x48, 0x99, 0xC3})
	if len(insts) != 3 {
		t.Fatalf("got %d instructions, want 3", len(insts))
	}
	if insts[0].Op != OpBad || insts[1].Op != OpCqo || insts[2].Op != OpRet {
		t.Errorf("unexpected ops: %v", insts)
	}
	if insts[2].Offset != 3 {
		t.Errorf("ret offset = %d, want 3", insts[2].Offset)
	}
}
