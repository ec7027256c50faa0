// Package view holds the archived representation of views and materialized views
// together with the aggregation of raw catalog rows into records.
package view

import (
	"fmt"
	"strings"
)

// Kind distinguishes plain views from materialized views.
type Kind string

const (
	KindView             Kind = "v"
	KindMaterializedView Kind = "m"
)

// ParseKind maps a catalog relkind (or archive kind letter) to a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.TrimSpace(s) {
	case "v":
		return KindView, nil
	case "m", "mv":
		return KindMaterializedView, nil
	default:
		return "", fmt.Errorf("unknown view kind %q", s)
	}
}

// String returns the human-readable kind name
func (k Kind) String() string {
	switch k {
	case KindMaterializedView:
		return "MATERIALIZED VIEW"
	default:
		return "VIEW"
	}
}

// Index represents an index defined on a (materialized) view
type Index struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// Record is one archived view or materialized view.
// Level is only an ordering hint: dependency depth after extract, realized
// drop position after a reorder.
type Record struct {
	Schema     string  `json:"schema"`
	Name       string  `json:"name"`
	Level      int32   `json:"level"`
	Kind       Kind    `json:"kind"`
	Definition string  `json:"definition"`
	Indexes    []Index `json:"indexes,omitempty"`
}

// QualifiedName returns "schema.view", the archive's uniqueness key
func (r *Record) QualifiedName() string {
	return QualifiedName(r.Schema, r.Name)
}

// IsMaterialized reports whether the record is a materialized view
func (r *Record) IsMaterialized() bool {
	return r.Kind == KindMaterializedView
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	c := *r
	if r.Indexes != nil {
		c.Indexes = append([]Index(nil), r.Indexes...)
	}
	return &c
}

// QualifiedName joins schema and object name
func QualifiedName(schema, name string) string {
	return schema + "." + name
}
