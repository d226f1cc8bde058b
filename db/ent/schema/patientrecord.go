package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// PatientRecord maps one archived document to the identity fields extracted
// from it. Rows are keyed by source document, not by patient; reprocessing a
// document replaces its rows.
type PatientRecord struct{ ent.Schema }

func (PatientRecord) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "patient_data"},
	}
}

func (PatientRecord) Fields() []ent.Field {
	return []ent.Field{
		field.String("patient_first_name").Optional(),
		field.String("patient_last_name").Optional(),
		field.Time("dob").
			SchemaType(map[string]string{dialect.Postgres: "timestamp"}).
			Optional(),
		field.Time("request_date").
			SchemaType(map[string]string{dialect.Postgres: "timestamp"}).
			Optional(),
		field.String("old_document").Optional(),
		field.String("new_document").Optional(),
		field.String("old_document_path").Optional(),
		field.String("new_document_path").Optional(),
		field.Bool("is_deleted").Default(false),
	}
}

func (PatientRecord) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("old_document"),
		index.Fields("patient_last_name", "patient_first_name"),
	}
}
