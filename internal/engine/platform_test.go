package engine

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPlatformTable(t *testing.T) {
	table := DefaultPlatformTable()

	cases := map[string]string{
		"Zen 4":       "AM5",
		"zen-4":       "AM5",
		"Raphael":     "AM5",
		"ZEN 3":       "AM4",
		"Raptor Lake": "LGA1700",
		"Arrow  Lake": "LGA1851",
		"Skylake":     "LGA1151",
	}
	for arch, want := range cases {
		got, ok := table.SocketFor(arch)
		if !ok || got != want {
			t.Fatalf("%q: expected %s, got %q (%v)", arch, want, got, ok)
		}
	}

	for _, arch := range []string{"", "Zen 45", "Lake", "Quantum Lake"} {
		if socket, ok := table.SocketFor(arch); ok {
			t.Fatalf("%q: expected no match, got %s", arch, socket)
		}
	}
}

func TestCanonicalSocket(t *testing.T) {
	cases := map[string]string{
		"AM4":        "AM4",
		"Socket AM4": "AM4",
		"lga 1700":   "LGA1700",
		"FCLGA1700":  "LGA1700",
		"LGA-1851":   "LGA1851",
		"":           "",
	}
	for in, want := range cases {
		if got := CanonicalSocket(in); got != want {
			t.Fatalf("%q: expected %q, got %q", in, want, got)
		}
	}
}

func TestMemoryFor(t *testing.T) {
	table := DefaultPlatformTable()
	if gens := table.MemoryFor("socket am5"); len(gens) != 1 || gens[0] != 5 {
		t.Fatalf("expected AM5 to carry DDR5 only, got %v", gens)
	}
	if gens := table.MemoryFor("LGA1700"); len(gens) != 2 {
		t.Fatalf("expected LGA1700 to carry two generations, got %v", gens)
	}
	if gens := table.MemoryFor("TR5"); gens != nil {
		t.Fatalf("expected unknown socket to return nil, got %v", gens)
	}
}

func TestLoadPlatformTableExtendsBuiltins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "platforms.yaml")
	if err := os.WriteFile(path, []byte(`microarchitectures:
  - name: Zen 6
    socket: socket am5
    aliases: ["Medusa"]
  - name: Skylake
    socket: LGA 1151
sockets:
  - name: TR5
    memory: [5]
`), 0644); err != nil {
		t.Fatalf("write pack: %v", err)
	}

	table, err := LoadPlatformTable(path, slog.New(slog.NewTextHandler(os.Stdout, nil)))
	if err != nil {
		t.Fatalf("load pack: %v", err)
	}
	if socket, ok := table.SocketFor("medusa"); !ok || socket != "AM5" {
		t.Fatalf("expected alias from pack to resolve to AM5, got %q", socket)
	}
	if socket, ok := table.SocketFor("Zen 3"); !ok || socket != "AM4" {
		t.Fatalf("expected built-in entries to survive, got %q", socket)
	}
	if gens := table.MemoryFor("TR5"); len(gens) != 1 || gens[0] != 5 {
		t.Fatalf("expected TR5 memory from pack, got %v", gens)
	}
	if n := len(table.Microarchitectures()); n != len(builtinPlatformPack.Microarchitectures)+1 {
		t.Fatalf("expected overrides to replace rather than duplicate, got %d entries", n)
	}
}

func TestLoadPlatformTableMissingFile(t *testing.T) {
	table, err := LoadPlatformTable(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, ok := table.SocketFor("Zen 4"); !ok {
		t.Fatalf("expected built-in table when pack is missing")
	}
}

func TestLoadPlatformTableInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("microarchitectures: [\n"), 0644); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	if _, err := LoadPlatformTable(path, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSocketsSorted(t *testing.T) {
	sockets := DefaultPlatformTable().Sockets()
	if len(sockets) != len(builtinPlatformPack.Sockets) {
		t.Fatalf("expected %d sockets, got %d", len(builtinPlatformPack.Sockets), len(sockets))
	}
	for i := 1; i < len(sockets); i++ {
		if sockets[i-1].Name >= sockets[i].Name {
			t.Fatalf("sockets not sorted: %s before %s", sockets[i-1].Name, sockets[i].Name)
		}
	}
}
