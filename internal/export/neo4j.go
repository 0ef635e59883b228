package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jLoader batch-loads combined graphs into Neo4j for interactive
// inspection.
type Neo4jLoader struct {
	Driver neo4j.DriverWithContext
	DBName string
}

// NewNeo4jLoader creates a loader instance.
func NewNeo4jLoader(driver neo4j.DriverWithContext, dbName string) *Neo4jLoader {
	return &Neo4jLoader{Driver: driver, DBName: dbName}
}

// LoadNodes loads a batch of nodes, one UNWIND query per label.
func (l *Neo4jLoader) LoadNodes(ctx context.Context, nodes []Node) error {
	if len(nodes) == 0 {
		return nil
	}

	session := l.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: l.DBName})
	defer session.Close(ctx)

	for label, batch := range groupNodesByLabel(nodes) {
		query := buildNodeQuery(label)
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"batch": batch})
		})
		if err != nil {
			return fmt.Errorf("failed to load nodes for label %s: %w", label, err)
		}
	}
	return nil
}

// LoadEdges loads a batch of edges, one UNWIND query per relation kind.
func (l *Neo4jLoader) LoadEdges(ctx context.Context, edges []Edge) error {
	if len(edges) == 0 {
		return nil
	}

	session := l.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: l.DBName})
	defer session.Close(ctx)

	for relType, batch := range groupEdgesByType(edges) {
		query := buildEdgeQuery(relType)
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"batch": batch})
		})
		if err != nil {
			return fmt.Errorf("failed to load edges for type %s: %w", relType, err)
		}
	}
	return nil
}

// ApplyConstraints creates uniqueness constraints for the node labels.
func (l *Neo4jLoader) ApplyConstraints(ctx context.Context) error {
	session := l.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: l.DBName})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (n:Terminal) REQUIRE n.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (n:NonTerminal) REQUIRE n.id IS UNIQUE",
		"CREATE INDEX IF NOT EXISTS FOR (n:Terminal) ON (n.ident)",
	}
	for _, query := range constraints {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, nil)
		})
		if err != nil {
			return fmt.Errorf("failed to apply constraint '%s': %w", query, err)
		}
	}
	return nil
}

// Wipe deletes all data from the database.
func (l *Neo4jLoader) Wipe(ctx context.Context) error {
	session := l.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: l.DBName})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
	})
	return err
}

// Helpers extracted for testing

func groupNodesByLabel(nodes []Node) map[string][]map[string]any {
	batches := make(map[string][]map[string]any)
	for _, n := range nodes {
		label := n.Label
		if label == "" {
			label = "Generic"
		}
		props := make(map[string]any, len(n.Properties)+1)
		for k, v := range n.Properties {
			props[k] = v
		}
		props["id"] = n.ID
		batches[label] = append(batches[label], props)
	}
	return batches
}

func groupEdgesByType(edges []Edge) map[string][]map[string]any {
	batches := make(map[string][]map[string]any)
	for _, e := range edges {
		relType := e.Type
		if relType == "" {
			relType = "RELATED_TO"
		}
		batches[relType] = append(batches[relType], map[string]any{
			"sourceId": e.SourceID,
			"targetId": e.TargetID,
		})
	}
	return batches
}

func buildNodeQuery(label string) string {
	return fmt.Sprintf(`
			UNWIND $batch AS row
			MERGE (n:%s {id: row.id})
			SET n += row
		`, sanitizeLabel(label))
}

func buildEdgeQuery(relType string) string {
	return fmt.Sprintf(`
			UNWIND $batch AS row
			MATCH (source {id: row.sourceId})
			MATCH (target {id: row.targetId})
			MERGE (source)-[r:%s]->(target)
		`, sanitizeLabel(relType))
}

func sanitizeLabel(label string) string {
	return strings.ReplaceAll(label, "`", "")
}
