// Package sieve implements the batch-operation driver contract (spec.md
// §4.8): the command-line wrappers themselves are out of scope (spec.md
// §1 Non-goals), but the interface they drive against is not. Grounded on
// sieve/find_messages.py and sieve/normctxt_sep.py.
package sieve

import "github.com/polint/polint/catalog"

// Sieve is one batch operation run over a sequence of catalogs.
type Sieve interface {
	// Process is called once per non-excluded entry.
	Process(msg *catalog.Entry, cat *catalog.Catalog) error
}

// Setup is implemented by sieves that accept driver-supplied parameters
// before the first catalog is processed.
type Setup interface {
	Setup(params map[string]string) error
}

// Finalize is implemented by sieves that need a hook after the last
// catalog has been processed.
type Finalize interface {
	Finalize() error
}

// Capabilities reports whether a sieve needs its messages to come from a
// monitored (change-tracked) catalog and whether it wants the driver to
// sync catalogs back to disk after processing.
type Capabilities interface {
	NeedsMonitored() bool
	NeedsSync() bool
}

// Base gives a Sieve the default (false, false) Capabilities so it need
// only override what it actually requires.
type Base struct{}

func (Base) NeedsMonitored() bool { return false }
func (Base) NeedsSync() bool      { return false }

// Driver runs a sequence of sieves over a sequence of catalogs, honoring
// Setup/Finalize. It reports the sieves' combined capability flags through
// RequiresSync and RequiresMonitored; Run itself does not sync catalogs.
type Driver struct {
	sieves []Sieve
	params map[string]string
}

// NewDriver returns a Driver that will run sieves in order, each
// optionally configured via params.
func NewDriver(params map[string]string, sieves ...Sieve) *Driver {
	return &Driver{sieves: sieves, params: params}
}

// RequiresSync reports whether any sieve in the pipeline wants a
// write-back sync.
func (d *Driver) RequiresSync() bool {
	for _, s := range d.sieves {
		if caps, ok := s.(Capabilities); ok && caps.NeedsSync() {
			return true
		}
	}
	return false
}

// RequiresMonitored reports whether any sieve in the pipeline needs
// change-tracked messages.
func (d *Driver) RequiresMonitored() bool {
	for _, s := range d.sieves {
		if caps, ok := s.(Capabilities); ok && caps.NeedsMonitored() {
			return true
		}
	}
	return false
}

// Run calls Setup on every sieve that implements it, Process for every
// non-excluded entry of every catalog, and Finalize once at the end.
func (d *Driver) Run(cats []*catalog.Catalog, excluded func(*catalog.Entry) bool) error {
	for _, s := range d.sieves {
		if su, ok := s.(Setup); ok {
			if err := su.Setup(d.params); err != nil {
				return err
			}
		}
	}

	for _, c := range cats {
		for _, e := range c.Entries() {
			if excluded != nil && excluded(e) {
				continue
			}
			for _, s := range d.sieves {
				if err := s.Process(e, c); err != nil {
					return err
				}
			}
		}
	}

	for _, s := range d.sieves {
		if fin, ok := s.(Finalize); ok {
			if err := fin.Finalize(); err != nil {
				return err
			}
		}
	}
	return nil
}
