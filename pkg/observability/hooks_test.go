package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	g := NoopGroupHooks{}
	g.OnGroupOp(OpAddGroup, "roads", 3, time.Millisecond, nil)
	g.OnGroupOp(OpMoveLayerToGroup, "roads", 0, time.Millisecond, errors.New("boom"))

	s := NoopStoreHooks{}
	s.OnLoad(ctx, "redis", "streets", true, time.Millisecond, nil)
	s.OnSave(ctx, "redis", "streets", 2048, time.Millisecond, nil)
	s.OnDelete(ctx, "redis", "streets", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Groups().(NoopGroupHooks); !ok {
		t.Error("Groups() should return NoopGroupHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	customGroups := &testGroupHooks{}
	SetGroupHooks(customGroups)
	if Groups() != customGroups {
		t.Error("SetGroupHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	Reset()
	if _, ok := Groups().(NoopGroupHooks); !ok {
		t.Error("Reset() should restore NoopGroupHooks")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testGroupHooks{}
	SetGroupHooks(custom)

	// Setting nil should be ignored
	SetGroupHooks(nil)

	if Groups() != custom {
		t.Error("SetGroupHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testGroupHooks struct{ NoopGroupHooks }
type testStoreHooks struct{ NoopStoreHooks }
