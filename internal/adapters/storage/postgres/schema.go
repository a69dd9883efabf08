package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// El layout de visitas sigue el modelo wide-column: clave de partición
// + columna de clustering como primary key compuesta (el b-tree da el
// orden visit_id ascendente dentro de cada pet) y un índice secundario
// no-único sobre visit_id para buscar sin conocer la mascota. Antes de
// que el índice exista, la misma query degrada a un scan secuencial:
// más lenta, pero correcta.

type Column struct {
	Name string
	Type string
}

type IndexDescriptor struct {
	Name   string
	Column string
}

// TableDescriptor declara el layout de una tabla particionada y
// clusterizada; lo consume el generador de statements en vez de
// escribir el DDL a mano.
type TableDescriptor struct {
	Name          string
	PartitionKey  Column
	ClusteringKey Column
	Columns       []Column
	Indexes       []IndexDescriptor
}

// CreateTableStmt genera el DDL idempotente de la tabla.
func (t TableDescriptor) CreateTableStmt() string {
	cols := []string{
		t.PartitionKey.Name + " " + t.PartitionKey.Type,
		t.ClusteringKey.Name + " " + t.ClusteringKey.Type,
	}
	for _, c := range t.Columns {
		cols = append(cols, c.Name+" "+c.Type)
	}
	cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s, %s)", t.PartitionKey.Name, t.ClusteringKey.Name))

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.Name, strings.Join(cols, ", "))
}

// CreateIndexStmt genera el DDL idempotente del índice secundario.
func (i IndexDescriptor) CreateIndexStmt(table string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", i.Name, table, i.Column)
}

func (t TableDescriptor) ensure(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, t.CreateTableStmt()); err != nil {
		return err
	}
	for _, idx := range t.Indexes {
		if _, err := db.ExecContext(ctx, idx.CreateIndexStmt(t.Name)); err != nil {
			return err
		}
	}
	return nil
}

var visitsTable = TableDescriptor{
	Name:          "visits_by_pet",
	PartitionKey:  Column{Name: "pet_id", Type: "uuid"},
	ClusteringKey: Column{Name: "visit_id", Type: "uuid"},
	Columns: []Column{
		{Name: "visit_date", Type: "date"},
		{Name: "description", Type: "text"},
	},
	Indexes: []IndexDescriptor{
		{Name: "visits_by_pet_visit_id_idx", Column: "visit_id"},
	},
}

// EnsureSchema crea tablas e índices si no existen. Idempotente: se
// corre una vez al arranque y un fallo acá es fatal para el proceso.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if err := visitsTable.ensure(ctx, db); err != nil {
		return err
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS owners (
			id uuid PRIMARY KEY,
			first_name text NOT NULL,
			last_name text NOT NULL,
			city text NOT NULL DEFAULT '',
			telephone text NOT NULL DEFAULT '',
			created_at timestamptz NOT NULL,
			updated_at timestamptz NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pets (
			id uuid PRIMARY KEY,
			owner_id uuid NOT NULL,
			name text NOT NULL,
			birth_date date,
			created_at timestamptz NOT NULL,
			updated_at timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS pets_owner_id_idx ON pets (owner_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
