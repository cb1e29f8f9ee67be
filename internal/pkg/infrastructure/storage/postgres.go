package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/datamodel"
)

var ErrNotFound = errors.New("entity document not found")

type Config struct {
	host     string
	user     string
	password string
	port     string
	dbname   string
	sslmode  string
}

func LoadConfiguration(ctx context.Context) Config {
	return Config{
		host:     env.GetVariableOrDefault(ctx, "POSTGRES_HOST", ""),
		user:     env.GetVariableOrDefault(ctx, "POSTGRES_USER", ""),
		password: env.GetVariableOrDefault(ctx, "POSTGRES_PASSWORD", ""),
		port:     env.GetVariableOrDefault(ctx, "POSTGRES_PORT", "5432"),
		dbname:   env.GetVariableOrDefault(ctx, "POSTGRES_DBNAME", "wikibase"),
		sslmode:  env.GetVariableOrDefault(ctx, "POSTGRES_SSLMODE", "disable"),
	}
}

func (c Config) ConnStr() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.user, c.password, c.host, c.port, c.dbname, c.sslmode)
}

// Store keeps the latest known revision of every entity document as jsonb
type Store struct {
	pool         *pgxpool.Pool
	deserializer *datamodel.Deserializer
}

func Connect(ctx context.Context, cfg Config, deserializer *datamodel.Deserializer) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnStr())
	if err != nil {
		return nil, err
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}

	s := &Store{pool: pool, deserializer: deserializer}

	err = s.initialize(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) initialize(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS entity_documents (
			id 			TEXT PRIMARY KEY,
			entitytype 	TEXT NOT NULL,
			revision 	BIGINT NOT NULL,
			hash 		BIGINT NOT NULL,
			document 	JSONB NOT NULL,
			modifiedat 	TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS entity_documents_entitytype_idx ON entity_documents (entitytype);`

	_, err := s.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("failed to create entity_documents table: %w", err)
	}

	logging.GetFromContext(ctx).Debug("entity document table initialized")

	return nil
}

type documentRow struct {
	id         string
	entityType string
	revision   int64
	hash       int64
	document   []byte
}

func newDocumentRow(e *datamodel.EntityDocument) (documentRow, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return documentRow{}, fmt.Errorf("failed to marshal %s: %w", e.ID().ID(), err)
	}

	return documentRow{
		id:         e.ID().ID(),
		entityType: e.ID().EntityType(),
		revision:   e.RevisionID(),
		hash:       int64(e.Hash()),
		document:   b,
	}, nil
}

// SaveEntityDocument inserts the document, or replaces a stored document with a revision
// that is not newer
func (s *Store) SaveEntityDocument(ctx context.Context, e *datamodel.EntityDocument) error {
	row, err := newDocumentRow(e)
	if err != nil {
		return err
	}

	sql := `
		INSERT INTO entity_documents (id, entitytype, revision, hash, document)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET entitytype = EXCLUDED.entitytype, revision = EXCLUDED.revision, hash = EXCLUDED.hash,
			document = EXCLUDED.document, modifiedat = now()
		WHERE entity_documents.revision <= EXCLUDED.revision AND entity_documents.hash <> EXCLUDED.hash;`

	_, err = s.pool.Exec(ctx, sql, row.id, row.entityType, row.revision, row.hash, row.document)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", row.id, err)
	}

	return nil
}

func (s *Store) RetrieveEntityDocument(ctx context.Context, entityID string) (*datamodel.EntityDocument, error) {
	var document []byte

	err := s.pool.QueryRow(ctx, `SELECT document FROM entity_documents WHERE id=$1;`, entityID).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", entityID, ErrNotFound)
		}
		return nil, err
	}

	return s.deserializer.DeserializeEntityDocument(document)
}

// CountEntityDocuments returns the number of stored documents per entity type
func (s *Store) CountEntityDocuments(ctx context.Context) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT entitytype, count(*) FROM entity_documents GROUP BY entitytype;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}

	for rows.Next() {
		var entityType string
		var count int64

		err := rows.Scan(&entityType, &count)
		if err != nil {
			return nil, err
		}
		counts[entityType] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}
