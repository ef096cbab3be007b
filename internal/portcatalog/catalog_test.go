package portcatalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_SeedsDefaults(t *testing.T) {
	c := New("")
	names := c.List()

	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	if !found["top_100"] || !found["well_known"] {
		t.Fatalf("List() = %v, want it to include top_100 and well_known", names)
	}

	ports, err := c.Ports("well_known")
	if err != nil {
		t.Fatalf("Ports(well_known) failed: %v", err)
	}
	if len(ports) == 0 {
		t.Error("well_known should have a non-empty port list")
	}
}

func TestPut_ThenGet_RoundTrips(t *testing.T) {
	c := New("")

	raw := map[string]string{"8080": "custom-http", "9090": "custom-admin"}
	if err := c.Put("custom", raw); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := c.Get("custom")
	if !ok {
		t.Fatal("Get(custom) = false after Put, want true")
	}
	if got["8080"] != "custom-http" || got["9090"] != "custom-admin" {
		t.Errorf("Get(custom) = %v, want %v", got, raw)
	}
}

func TestPut_InvalidPortKeyErrors(t *testing.T) {
	c := New("")
	if err := c.Put("bad", map[string]string{"not-a-port": "svc"}); err == nil {
		t.Fatal("expected an error for a non-numeric port key")
	}
}

func TestPorts_UnknownNameErrors(t *testing.T) {
	c := New("")
	if _, err := c.Ports("does-not-exist"); err == nil {
		t.Fatal("expected an error for an unknown port list name")
	}
}

func TestDelete_RemovesEntry(t *testing.T) {
	c := New("")
	_ = c.Put("temp", map[string]string{"1234": "svc"})

	if err := c.Delete("temp"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := c.Get("temp"); ok {
		t.Error("Get(temp) should fail after Delete")
	}
}

func TestDelete_UnknownNameErrors(t *testing.T) {
	c := New("")
	if err := c.Delete("never-existed"); err == nil {
		t.Fatal("expected an error deleting a name that was never Put")
	}
}

func TestPut_PersistsToDiskAndReloadsOnNew(t *testing.T) {
	dir := t.TempDir()

	c := New(dir)
	if err := c.Put("persisted", map[string]string{"7000": "svc-a"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	path := filepath.Join(dir, "persisted.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist after Put, stat failed: %v", path, err)
	}

	reopened := New(dir)
	got, ok := reopened.Get("persisted")
	if !ok {
		t.Fatal("a fresh Catalog over the same dir should load the persisted list")
	}
	if got["7000"] != "svc-a" {
		t.Errorf("Get(persisted) = %v, want 7000 -> svc-a", got)
	}
}

func TestDelete_RemovesPersistedFile(t *testing.T) {
	dir := t.TempDir()

	c := New(dir)
	_ = c.Put("temp", map[string]string{"1234": "svc"})

	path := filepath.Join(dir, "temp.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("setup: expected persisted file at %s: %v", path, err)
	}

	if err := c.Delete("temp"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed after Delete, stat err = %v", path, err)
	}
}
