package environment

import (
	"reflect"
	"testing"

	perrors "github.com/sambeau/tern/pkg/tern/errors"
)

func TestAddAndGet(t *testing.T) {
	env := New[int]()
	if err := env.Add("a", 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := env.Get("a")
	if err != nil || got != 1 {
		t.Fatalf("Get = %d, %v", got, err)
	}
}

func TestDuplicateInSameScope(t *testing.T) {
	env := New[int]()
	_ = env.Add("x", 1)
	err := env.Add("x", 2)
	if !perrors.HasCode(err, "STATE-0001") {
		t.Fatalf("expected STATE-0001, got %v", err)
	}
}

func TestShadowingAndExit(t *testing.T) {
	env := New[int]()
	_ = env.Add("a", 5)

	exit := env.Enter()
	if err := env.Add("a", 10); err != nil {
		t.Fatalf("shadowing must be allowed: %v", err)
	}
	if got, _ := env.Get("a"); got != 10 {
		t.Errorf("inner a = %d, want 10", got)
	}
	exit()

	if got, _ := env.Get("a"); got != 5 {
		t.Errorf("outer a = %d, want 5", got)
	}
	if env.Depth() != 1 {
		t.Errorf("depth = %d, want 1", env.Depth())
	}
}

func TestBindingsDieWithScope(t *testing.T) {
	env := New[string]()
	func() {
		defer env.Enter()()
		_ = env.Add("tmp", "x")
	}()
	_, err := env.Get("tmp")
	if !perrors.HasCode(err, "UNDEF-0001") {
		t.Fatalf("expected UNDEF-0001, got %v", err)
	}
}

func TestScopePoppedOnPanic(t *testing.T) {
	env := New[int]()
	func() {
		defer func() { _ = recover() }()
		defer env.Enter()()
		panic("boom")
	}()
	if env.Depth() != 1 {
		t.Errorf("depth = %d, want 1", env.Depth())
	}
}

func TestUpdateWalksChain(t *testing.T) {
	env := New[int]()
	_ = env.Add("b", 2)
	exit := env.Enter()
	if err := env.Update("b", 3); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if env.HasLocal("b") {
		t.Error("Update must not create a local binding")
	}
	exit()
	if got, _ := env.Get("b"); got != 3 {
		t.Errorf("b = %d, want 3", got)
	}

	err := env.Update("missing", 1)
	if !perrors.HasCode(err, "UNDEF-0001") {
		t.Errorf("expected UNDEF-0001, got %v", err)
	}
}

func TestHasLocalIgnoresOuterScopes(t *testing.T) {
	env := New[int]()
	_ = env.Add("x", 1)
	defer env.Enter()()
	if env.HasLocal("x") {
		t.Error("HasLocal must only inspect the innermost scope")
	}
	_ = env.Add("y", 2)
	if !env.HasLocal("y") {
		t.Error("HasLocal(y) = false")
	}
}

func TestUndefinedSuggestion(t *testing.T) {
	env := New[int]()
	_ = env.Add("counter", 1)
	_, err := env.Get("countr")
	terr, ok := err.(*perrors.TernError)
	if !ok {
		t.Fatalf("expected *TernError, got %T", err)
	}
	if len(terr.Hints) != 1 || terr.Hints[0] != "Did you mean `counter`?" {
		t.Errorf("hints = %v", terr.Hints)
	}
}

func TestCaptureAndSwap(t *testing.T) {
	env := New[int]()
	exit := env.Enter()
	_ = env.Add("free", 7)
	captured := env.Capture()
	exit()

	if _, err := env.Get("free"); err == nil {
		t.Fatal("free should be out of scope")
	}

	restore := env.Swap(captured)
	if got, err := env.Get("free"); err != nil || got != 7 {
		t.Errorf("Get(free) through captured scope = %d, %v", got, err)
	}
	restore()
	if env.Depth() != 1 {
		t.Errorf("depth after restore = %d, want 1", env.Depth())
	}
}

func TestNamesAndBindings(t *testing.T) {
	env := New[int]()
	_ = env.Add("b", 1)
	_ = env.Add("a", 2)
	defer env.Enter()()
	_ = env.Add("b", 3)

	if got := env.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Names = %v", got)
	}
	want := map[string]int{"a": 2, "b": 3}
	if got := env.Bindings(); !reflect.DeepEqual(got, want) {
		t.Errorf("Bindings = %v", got)
	}
}

func TestSnapshotAndRestore(t *testing.T) {
	env := New[int]()
	_ = env.Add("a", 1)
	inner := env.Capture()
	saved := env.Snapshot()

	_ = env.Add("b", 2)
	_ = env.Update("a", 3)
	env.Restore(saved)

	if got := env.Bindings(); !reflect.DeepEqual(got, map[string]int{"a": 1}) {
		t.Errorf("Bindings after Restore = %v", got)
	}
	if env.Capture() != inner {
		t.Error("Restore must keep the scope a closure captured")
	}
	if err := env.Add("b", 4); err != nil {
		t.Errorf("b should be free after Restore: %v", err)
	}
}
