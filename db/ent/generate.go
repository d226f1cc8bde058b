// Command generate regenerates the ent client for the patient_data schema.
// Output lands in gen/ent and is not committed; run this after editing
// db/ent/schema.
package main

import (
	"log"

	"entgo.io/ent/entc"
	"entgo.io/ent/entc/gen"
)

func main() {
	cfg := &gen.Config{
		Target:  "gen/ent",
		Package: "github.com/Inzamam1121/Process-Doc/gen/ent",
		Schema:  "github.com/Inzamam1121/Process-Doc/db/ent/schema",
	}
	if err := entc.Generate("./db/ent/schema", cfg); err != nil {
		log.Fatalf("generating ent client: %v", err)
	}
}
