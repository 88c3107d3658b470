package jit

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeAllocator 用普通 Go 内存模拟区域，并注入失败
type fakeAllocator struct {
	acquireErr error
	sealErr    error
	releaseErr error
	short      bool

	acquires int
	seals    int
	releases int
	last     []byte
}

func (f *fakeAllocator) Acquire(size int) (*Region, error) {
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	f.acquires++
	if f.short {
		size--
	}
	return &Region{mem: make([]byte, size)}, nil
}

func (f *fakeAllocator) Seal(r *Region) error {
	f.seals++
	f.last = append([]byte(nil), r.mem...)
	return f.sealErr
}

func (f *fakeAllocator) Release(r *Region) error {
	f.releases++
	r.mem = nil
	return f.releaseErr
}

// fakeInvoker 不执行机器码，只返回固定值或 panic
type fakeInvoker struct {
	result int64
	panics bool
	calls  int
}

func (f *fakeInvoker) Invoke(entry uintptr) int64 {
	f.calls++
	if entry == 0 {
		panic("nil entry")
	}
	if f.panics {
		panic("fault")
	}
	return f.result
}

func TestExecutor_CopiesAndInvokes(t *testing.T) {
	alloc := &fakeAllocator{}
	inv := &fakeInvoker{result: 42}
	e := NewExecutor(alloc, inv, nil)

	code := Compile("++").Code
	got, err := e.Execute(code)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
	if string(alloc.last) != string(code) {
		t.Errorf("region contents = % X, want % X", alloc.last, code)
	}
	if alloc.acquires != 1 || alloc.releases != 1 || inv.calls != 1 {
		t.Errorf("acquires=%d releases=%d calls=%d", alloc.acquires, alloc.releases, inv.calls)
	}
}

func TestExecutor_InvalidBuffer(t *testing.T) {
	alloc := &fakeAllocator{}
	e := NewExecutor(alloc, &fakeInvoker{}, nil)

	for _, code := range [][]byte{nil, {}, {0x48, 0x31, 0xC0}} {
		if _, err := e.Execute(code); !errors.Is(err, ErrInvalidBuffer) {
			t.Errorf("Execute(% X) error = %v, want ErrInvalidBuffer", code, err)
		}
	}
	if alloc.acquires != 0 {
		t.Errorf("invalid buffers should not acquire regions")
	}
}

func TestExecutor_NoInvoker(t *testing.T) {
	e := NewExecutor(&fakeAllocator{}, nil, nil)
	if _, err := e.Execute(Compile("+").Code); !errors.Is(err, ErrUnsupportedPlatform) {
		t.Errorf("error = %v, want ErrUnsupportedPlatform", err)
	}
}

func TestExecutor_AllocationFailure(t *testing.T) {
	cause := errors.New("permission denied")
	alloc := &fakeAllocator{acquireErr: &AllocationFailure{Op: "mmap", Size: 8, Err: cause}}
	inv := &fakeInvoker{}
	e := NewExecutor(alloc, inv, nil)

	_, err := e.Execute(Compile("+").Code)

	var af *AllocationFailure
	if !errors.As(err, &af) {
		t.Fatalf("error = %v, want *AllocationFailure", err)
	}
	if !errors.Is(err, cause) {
		t.Error("AllocationFailure should unwrap to its cause")
	}
	if inv.calls != 0 {
		t.Error("code must not be invoked after allocation failure")
	}
	if s := e.Stats(); s.Failures != 1 || s.Acquired != 0 || s.Released != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestExecutor_ReleaseOnEveryPath(t *testing.T) {
	tests := []struct {
		name    string
		alloc   *fakeAllocator
		inv     *fakeInvoker
		wantErr bool
	}{
		{"success", &fakeAllocator{}, &fakeInvoker{result: 1}, false},
		{"seal failure", &fakeAllocator{sealErr: &AllocationFailure{Op: "mprotect", Err: errors.New("EACCES")}}, &fakeInvoker{}, true},
		{"short region", &fakeAllocator{short: true}, &fakeInvoker{}, true},
		{"release failure", &fakeAllocator{releaseErr: errors.New("EINVAL")}, &fakeInvoker{result: 7}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecutor(tt.alloc, tt.inv, nil)
			for i := 0; i < 3; i++ {
				_, err := e.Execute(Compile("+*").Code)
				if (err != nil) != tt.wantErr {
					t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
				}
			}
			if tt.alloc.acquires != tt.alloc.releases {
				t.Errorf("acquires=%d releases=%d", tt.alloc.acquires, tt.alloc.releases)
			}
			if s := e.Stats(); s.Acquired != s.Released {
				t.Errorf("stats = %+v", s)
			}
		})
	}
}

func TestExecutor_ReleaseOnPanic(t *testing.T) {
	alloc := &fakeAllocator{}
	e := NewExecutor(alloc, &fakeInvoker{panics: true}, nil)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		e.Execute(Compile("+").Code)
	}()

	if alloc.acquires != 1 || alloc.releases != 1 {
		t.Errorf("acquires=%d releases=%d", alloc.acquires, alloc.releases)
	}
}

func TestExecutor_ReleaseFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	alloc := &fakeAllocator{releaseErr: errors.New("EINVAL")}
	e := NewExecutor(alloc, &fakeInvoker{result: 5}, zap.New(core))

	got, err := e.Execute(Compile("+").Code)
	if err != nil {
		t.Fatalf("release failure must not surface: %v", err)
	}
	if got != 5 {
		t.Errorf("result = %d, want 5", got)
	}
	if n := logs.FilterMessage("failed to release executable region").Len(); n != 1 {
		t.Errorf("logged %d release failures, want 1", n)
	}
}

func TestJIT_EmulateMode(t *testing.T) {
	j := NewWithExecutor(&Config{Mode: ModeEmulate}, NewExecutor(&fakeAllocator{}, nil, nil))

	got, err := j.CompileAndRun("++/")
	if err != nil {
		t.Fatalf("CompileAndRun error: %v", err)
	}
	if got != 1 {
		t.Errorf("result = %d, want 1", got)
	}
	if s := j.Stats(); s.Acquired != 0 {
		t.Errorf("emulation should not acquire regions: %+v", s)
	}
}

func TestAllocationFailure_Error(t *testing.T) {
	err := &AllocationFailure{Op: "mmap", Size: 16, Err: errors.New("ENOMEM")}
	if got := err.Error(); got != "jit: mmap of 16 bytes failed: ENOMEM" {
		t.Errorf("Error() = %q", got)
	}
}
