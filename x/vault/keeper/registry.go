package keeper

import (
	"sync"

	"cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/btree"

	"github.com/openalpha/hwmvault/x/vault/types"
)

const registryDegree = 8

// ValuationModule reports the signed value a strategy holds for the pool.
// ValueOf must be read-only.
type ValuationModule interface {
	Name() string
	ValueOf(ctx sdk.Context) (types.Contribution, error)
}

// moduleItem orders modules by registration sequence
type moduleItem struct {
	seq    uint64
	module ValuationModule
}

// Less implements btree.Item
func (a moduleItem) Less(b btree.Item) bool {
	return a.seq < b.(moduleItem).seq
}

// ModuleRegistry holds valuation modules in registration order
type ModuleRegistry struct {
	mu      sync.RWMutex
	tree    *btree.BTree
	byName  map[string]uint64
	nextSeq uint64
}

// NewModuleRegistry creates an empty registry
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{
		tree:   btree.New(registryDegree),
		byName: make(map[string]uint64),
	}
}

// Register appends m to the registry
func (r *ModuleRegistry) Register(m ValuationModule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[m.Name()]; ok {
		return errors.Wrap(types.ErrModuleExists, m.Name())
	}
	seq := r.nextSeq
	r.nextSeq++
	r.byName[m.Name()] = seq
	r.tree.ReplaceOrInsert(moduleItem{seq: seq, module: m})
	return nil
}

// Remove deletes the module registered under name
func (r *ModuleRegistry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seq, ok := r.byName[name]
	if !ok {
		return errors.Wrap(types.ErrModuleNotFound, name)
	}
	delete(r.byName, name)
	r.tree.Delete(moduleItem{seq: seq})
	return nil
}

// Has reports whether name is registered
func (r *ModuleRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

// Modules returns the registered modules in registration order
func (r *ModuleRegistry) Modules() []ValuationModule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ValuationModule, 0, r.tree.Len())
	r.tree.Ascend(func(i btree.Item) bool {
		out = append(out, i.(moduleItem).module)
		return true
	})
	return out
}

// RegisterValuationModule adds m to the keeper's registry
func (k *Keeper) RegisterValuationModule(m ValuationModule) error {
	if err := k.registry.Register(m); err != nil {
		return err
	}
	k.logger.Info("valuation module registered", "name", m.Name())
	return nil
}

// RemoveValuationModule drops the named module from the keeper's registry
func (k *Keeper) RemoveValuationModule(name string) error {
	if name == holdingsModuleName {
		return errors.Wrap(types.ErrUnauthorized, "built-in module cannot be removed")
	}
	if err := k.registry.Remove(name); err != nil {
		return err
	}
	k.logger.Info("valuation module removed", "name", name)
	return nil
}

// ValuationModules returns the registered modules in order
func (k *Keeper) ValuationModules() []ValuationModule {
	return k.registry.Modules()
}
