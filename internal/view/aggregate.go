package view

import "fmt"

// Row is one raw catalog row describing a (view, optional index) pair
type Row struct {
	Schema          string
	Name            string
	Level           int32
	Kind            string
	Definition      string
	IndexName       *string
	IndexDefinition *string
}

type recordKey struct {
	schema string
	name   string
}

// Aggregate folds raw rows into one record per (schema, view).
//
// The first row for a key creates the record; later rows only contribute
// their index. Output preserves first-seen order. An index name already
// attached to a record is not added twice.
func Aggregate(rows []Row) ([]*Record, error) {
	var records []*Record
	byKey := make(map[recordKey]*Record)

	for _, row := range rows {
		key := recordKey{schema: row.Schema, name: row.Name}

		rec, ok := byKey[key]
		if !ok {
			kind, err := ParseKind(row.Kind)
			if err != nil {
				return nil, fmt.Errorf("row for %s: %w", QualifiedName(row.Schema, row.Name), err)
			}
			rec = &Record{
				Schema:     row.Schema,
				Name:       row.Name,
				Level:      row.Level,
				Kind:       kind,
				Definition: row.Definition,
			}
			byKey[key] = rec
			records = append(records, rec)
		}

		if row.IndexName == nil {
			continue
		}
		if hasIndex(rec, *row.IndexName) {
			continue
		}
		idx := Index{Name: *row.IndexName}
		if row.IndexDefinition != nil {
			idx.Definition = *row.IndexDefinition
		}
		rec.Indexes = append(rec.Indexes, idx)
	}

	return records, nil
}

func hasIndex(rec *Record, name string) bool {
	for _, idx := range rec.Indexes {
		if idx.Name == name {
			return true
		}
	}
	return false
}
