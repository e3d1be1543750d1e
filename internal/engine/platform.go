package engine

import (
	"errors"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Microarchitecture maps a CPU microarchitecture (and its codename aliases) to a socket.
type Microarchitecture struct {
	Name    string   `yaml:"name"`
	Socket  string   `yaml:"socket"`
	Aliases []string `yaml:"aliases"`
}

// Socket describes the memory generations a socket's boards can carry.
type Socket struct {
	Name   string `yaml:"name"`
	Memory []int  `yaml:"memory"`
}

// PlatformPackFile is the YAML root structure of a platform pack.
type PlatformPackFile struct {
	Microarchitectures []Microarchitecture `yaml:"microarchitectures"`
	Sockets            []Socket            `yaml:"sockets"`
}

// PlatformTable resolves microarchitectures to sockets and sockets to memory generations.
// It is read-only after construction and safe for concurrent use.
type PlatformTable struct {
	arches  []Microarchitecture
	byKey   map[string]int
	sockets map[string]Socket
}

var builtinPlatformPack = PlatformPackFile{
	Microarchitectures: []Microarchitecture{
		{Name: "Zen 5", Socket: "AM5", Aliases: []string{"Granite Ridge"}},
		{Name: "Zen 4", Socket: "AM5", Aliases: []string{"Raphael", "Phoenix"}},
		{Name: "Zen 3", Socket: "AM4", Aliases: []string{"Vermeer", "Cezanne"}},
		{Name: "Zen 2", Socket: "AM4", Aliases: []string{"Matisse", "Renoir"}},
		{Name: "Zen+", Socket: "AM4", Aliases: []string{"Pinnacle Ridge", "Picasso"}},
		{Name: "Zen", Socket: "AM4", Aliases: []string{"Summit Ridge", "Raven Ridge"}},
		{Name: "Arrow Lake", Socket: "LGA1851"},
		{Name: "Raptor Lake", Socket: "LGA1700", Aliases: []string{"Raptor Lake Refresh"}},
		{Name: "Alder Lake", Socket: "LGA1700"},
		{Name: "Rocket Lake", Socket: "LGA1200"},
		{Name: "Comet Lake", Socket: "LGA1200"},
		{Name: "Coffee Lake", Socket: "LGA1151", Aliases: []string{"Coffee Lake Refresh"}},
		{Name: "Kaby Lake", Socket: "LGA1151"},
		{Name: "Skylake", Socket: "LGA1151"},
	},
	Sockets: []Socket{
		{Name: "AM5", Memory: []int{5}},
		{Name: "AM4", Memory: []int{4}},
		{Name: "LGA1851", Memory: []int{5}},
		{Name: "LGA1700", Memory: []int{4, 5}},
		{Name: "LGA1200", Memory: []int{4}},
		{Name: "LGA1151", Memory: []int{4}},
	},
}

// DefaultPlatformTable returns the built-in platform table.
func DefaultPlatformTable() *PlatformTable {
	t := &PlatformTable{byKey: make(map[string]int), sockets: make(map[string]Socket)}
	t.merge(builtinPlatformPack)
	return t
}

// LoadPlatformTable extends the built-in table with entries from the YAML pack at path.
// An empty path or a missing file yields the built-in table.
func LoadPlatformTable(path string, logger *slog.Logger) (*PlatformTable, error) {
	if logger == nil {
		logger = slog.Default()
	}
	table := DefaultPlatformTable()
	if path == "" {
		return table, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("platform pack not found, using built-in table", slog.String("path", path))
			return table, nil
		}
		return nil, err
	}
	var pack PlatformPackFile
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, err
	}
	table.merge(pack)
	logger.Info("platform pack loaded",
		slog.String("path", path),
		slog.Int("microarchitectures", len(pack.Microarchitectures)),
		slog.Int("sockets", len(pack.Sockets)))
	return table, nil
}

func (t *PlatformTable) merge(pack PlatformPackFile) {
	for _, arch := range pack.Microarchitectures {
		if arch.Name == "" || arch.Socket == "" {
			continue
		}
		arch.Socket = CanonicalSocket(arch.Socket)
		key := archKey(arch.Name)
		idx, ok := t.byKey[key]
		if ok {
			t.arches[idx] = arch
		} else {
			t.arches = append(t.arches, arch)
			idx = len(t.arches) - 1
			t.byKey[key] = idx
		}
		for _, alias := range arch.Aliases {
			if alias != "" {
				t.byKey[archKey(alias)] = idx
			}
		}
	}
	for _, sock := range pack.Sockets {
		if sock.Name == "" {
			continue
		}
		sock.Name = CanonicalSocket(sock.Name)
		sock.Memory = append([]int(nil), sock.Memory...)
		t.sockets[sock.Name] = sock
	}
}

// SocketFor returns the socket for a microarchitecture name or alias. Matching is exact after
// case and whitespace folding; unknown names report false.
func (t *PlatformTable) SocketFor(microarchitecture string) (string, bool) {
	if t == nil {
		return "", false
	}
	key := archKey(microarchitecture)
	if key == "" {
		return "", false
	}
	idx, ok := t.byKey[key]
	if !ok {
		return "", false
	}
	return t.arches[idx].Socket, true
}

// MemoryFor returns the DDR generations supported by a socket, or nil when unknown.
func (t *PlatformTable) MemoryFor(socket string) []int {
	if t == nil {
		return nil
	}
	sock, ok := t.sockets[CanonicalSocket(socket)]
	if !ok {
		return nil
	}
	return append([]int(nil), sock.Memory...)
}

// Microarchitectures lists the table entries sorted by socket then name.
func (t *PlatformTable) Microarchitectures() []Microarchitecture {
	if t == nil {
		return nil
	}
	out := make([]Microarchitecture, len(t.arches))
	copy(out, t.arches)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Socket != out[j].Socket {
			return out[i].Socket < out[j].Socket
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Sockets lists the known sockets sorted by name.
func (t *PlatformTable) Sockets() []Socket {
	if t == nil {
		return nil
	}
	out := make([]Socket, 0, len(t.sockets))
	for _, sock := range t.sockets {
		sock.Memory = append([]int(nil), sock.Memory...)
		out = append(out, sock)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CanonicalSocket folds socket spellings ("Socket AM4", "LGA 1700", "FCLGA1700") to one form.
func CanonicalSocket(socket string) string {
	s := strings.ToUpper(strings.TrimSpace(socket))
	s = strings.TrimPrefix(s, "SOCKET")
	s = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
	s = strings.TrimPrefix(s, "FC")
	return s
}

func archKey(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, "-", " "))
	return strings.Join(strings.Fields(name), " ")
}
