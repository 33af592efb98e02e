package closure

import (
	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/ids"
)

// Record is the dependency edge a resolved pack publishes to its dependents.
// Closure is nil when the record comes from metadata that predates closures.
type Record struct {
	ID      ids.PackID
	Closure Set
}

// NewRecord returns a record with a known closure
func NewRecord(id ids.PackID, closure Set) Record {
	if closure == nil {
		closure = Set{}
	}
	return Record{ID: id, Closure: closure}
}

// UnknownRecord returns a record whose closure was not supplied
func UnknownRecord(id ids.PackID) Record {
	return Record{ID: id}
}

// Known reports whether the record carries a closure
func (r Record) Known() bool {
	return r.Closure != nil
}

// Resolve computes the reflexive transitive closure of self from the
// records of its direct dependencies.
//
// The first cycle in declaration order is reported: a dependency whose
// closure already contains self, or, after all records are merged, self
// appearing among its own dependencies.
func Resolve(self ids.PackID, deps []Record) (Set, error) {
	acc := Set{}
	for _, dep := range deps {
		if dep.Closure.Has(self) {
			return nil, cycleError(self, dep.ID)
		}
		acc.Add(dep.ID)
		acc.Union(dep.Closure)
	}

	if acc.Has(self) {
		return nil, cycleError(self, firstContaining(self, deps))
	}

	acc.Add(self)
	return acc, nil
}

// firstContaining returns the first record that brought self into the
// accumulator. By the time it is called no closure contains self, so it is
// the first record naming self directly.
func firstContaining(self ids.PackID, deps []Record) ids.PackID {
	for _, dep := range deps {
		if dep.ID == self || dep.Closure.Has(self) {
			return dep.ID
		}
	}
	return self
}

func cycleError(pack, dep ids.PackID) error {
	return errors.Newf(errors.ErrCycleDetected, "dependency cycle between pack %q and %q", pack, dep).
		WithDetail("pack", string(pack)).
		WithDetail("dependency", string(dep))
}

// IsCycle reports whether err is a CYCLE_DETECTED error
func IsCycle(err error) bool {
	return errors.IsErrorCode(err, errors.ErrCycleDetected)
}
