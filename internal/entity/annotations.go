package entity

import "github.com/chainvoice/chainvoice/internal/golemdb"

// Annotations accumulates the tag set mirroring an entity's indexable
// fields. Booleans are encoded as numeric 0/1 because the store's numeric
// predicates cannot express booleans. Optional fields emit no tag when
// unset; omission, not a null sentinel, signals "not set".
type Annotations struct {
	Strings  []golemdb.StringAnnotation
	Numerics []golemdb.NumericAnnotation
}

// Str emits a string tag unconditionally.
func (a *Annotations) Str(key, value string) {
	a.Strings = append(a.Strings, golemdb.StringAnnotation{Key: key, Value: value})
}

// StrOpt emits a string tag only when the value is non-empty.
func (a *Annotations) StrOpt(key, value string) {
	if value == "" {
		return
	}
	a.Str(key, value)
}

// Num emits a numeric tag unconditionally.
func (a *Annotations) Num(key string, value int64) {
	a.Numerics = append(a.Numerics, golemdb.NumericAnnotation{Key: key, Value: value})
}

// NumOpt emits a numeric tag only when the value is non-zero; unset epoch
// mirrors are zero.
func (a *Annotations) NumOpt(key string, value int64) {
	if value == 0 {
		return
	}
	a.Num(key, value)
}

// Bool emits a numeric 0/1 tag.
func (a *Annotations) Bool(key string, value bool) {
	if value {
		a.Num(key, 1)
		return
	}
	a.Num(key, 0)
}
