package core

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ModuleID is a dotted, namespaced module identifier such as
// "channel.telegram" or "gateway.http".
type ModuleID string

// Namespace returns the part of the ID before the first dot.
func (id ModuleID) Namespace() string {
	ns, _, _ := strings.Cut(string(id), ".")
	return ns
}

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	ID  ModuleID
	New func() Module
}

// Module is the minimal interface every ghinline module implements.
type Module interface {
	ModuleInfo() ModuleInfo
}

// compiled holds every module linked into the binary, keyed by ID.
var (
	compiledMu sync.RWMutex
	compiled   = map[string]ModuleInfo{}
)

// RegisterModule makes a module loadable by ID. Channel and gateway
// packages call it from init(). It panics on an empty or un-namespaced ID,
// a nil constructor or a duplicate registration.
func RegisterModule(instance Module) {
	info := instance.ModuleInfo()
	id := string(info.ID)
	switch {
	case id == "":
		panic("core: module ID must not be empty")
	case !strings.Contains(id, "."):
		panic(fmt.Sprintf("core: module %s: ID must be namespaced, e.g. channel.telegram", id))
	case info.New == nil:
		panic(fmt.Sprintf("core: module %s: New must not be nil", id))
	}

	compiledMu.Lock()
	defer compiledMu.Unlock()
	if _, dup := compiled[id]; dup {
		panic(fmt.Sprintf("core: module %s registered twice", id))
	}
	compiled[id] = info
}

// GetModule looks up a compiled module by ID.
func GetModule(id string) (ModuleInfo, bool) {
	compiledMu.RLock()
	defer compiledMu.RUnlock()
	info, ok := compiled[id]
	return info, ok
}

// RegisteredModules lists the compiled modules ordered by ID, as printed by
// the version command.
func RegisteredModules() []ModuleInfo {
	compiledMu.RLock()
	defer compiledMu.RUnlock()
	return slices.SortedFunc(maps.Values(compiled), func(a, b ModuleInfo) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
}

// resetRegistry forgets every compiled module. Tests only.
func resetRegistry() {
	compiledMu.Lock()
	defer compiledMu.Unlock()
	compiled = map[string]ModuleInfo{}
}
