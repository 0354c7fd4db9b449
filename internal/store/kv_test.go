package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// backends returns one fresh instance of every KV implementation.
func backends(t *testing.T) map[string]KV {
	t.Helper()

	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rd := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { rd.Close() })

	return map[string]KV{
		"sqlite": sq,
		"redis":  rd,
		"memory": NewMemory(),
	}
}

func TestKV_GetMissing(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(context.Background(), "absent")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestKV_PutThenGet(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Put(ctx, "board", []byte(`{"version":1}`)); err != nil {
				t.Fatalf("Put() failed: %v", err)
			}
			got, err := kv.Get(ctx, "board")
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if string(got) != `{"version":1}` {
				t.Errorf("Get() = %q", got)
			}
		})
	}
}

func TestKV_PutReplaces(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, v := range []string{"one", "two", "three"} {
				if err := kv.Put(ctx, "board", []byte(v)); err != nil {
					t.Fatalf("Put(%q) failed: %v", v, err)
				}
			}
			got, err := kv.Get(ctx, "board")
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if string(got) != "three" {
				t.Errorf("Get() = %q, want %q", got, "three")
			}
		})
	}
}

func TestKV_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Put(ctx, "a", []byte("A")); err != nil {
				t.Fatal(err)
			}
			if err := kv.Put(ctx, "b", []byte("B")); err != nil {
				t.Fatal(err)
			}
			got, err := kv.Get(ctx, "a")
			if err != nil || string(got) != "A" {
				t.Errorf("Get(a) = %q, %v", got, err)
			}
		})
	}
}

func TestOpen_Drivers(t *testing.T) {
	dir := t.TempDir()

	kv, err := Open(DriverSQLite, filepath.Join(dir, "x.db"))
	if err != nil {
		t.Fatalf("Open(sqlite) failed: %v", err)
	}
	if _, ok := kv.(*SQLite); !ok {
		t.Errorf("Open(sqlite) returned %T", kv)
	}
	kv.Close()

	kv, err = Open(DriverMemory, "")
	if err != nil {
		t.Fatalf("Open(memory) failed: %v", err)
	}
	if _, ok := kv.(*Memory); !ok {
		t.Errorf("Open(memory) returned %T", kv)
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	kv, err = Open(DriverRedis, mr.Addr())
	if err != nil {
		t.Fatalf("Open(redis) failed: %v", err)
	}
	defer kv.Close()
	if err := kv.Put(context.Background(), "k", []byte("v")); err != nil {
		t.Errorf("Put via Open(redis) failed: %v", err)
	}
	if got, _ := mr.Get("k"); got != "v" {
		t.Errorf("miniredis value = %q, want %q", got, "v")
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		driver, dsn string
	}{
		{"postgres", "x"},
		{"", ""},
		{DriverSQLite, ""},
		{DriverRedis, ""},
	}
	for _, tt := range tests {
		if _, err := Open(tt.driver, tt.dsn); err == nil {
			t.Errorf("Open(%q, %q) succeeded, want error", tt.driver, tt.dsn)
		}
	}
}
