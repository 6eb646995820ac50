package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/pkg/circuitbreaker"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/logger"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/retry"
)

type Client struct {
	driver      neo4j.DriverWithContext
	database    string
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

// Mention is one distinct term an analysis mentions, with every position it
// was found at.
type Mention struct {
	Term       string
	Text       string
	Category   string
	Source     string
	ConceptID  string
	Confidence float64
	Positions  []int
	Severity   string
}

type Suggestion struct {
	Condition  string
	Confidence float64
	Reasoning  string
}

type AnalysisGraph struct {
	ID            string
	Summary       string
	Confidence    float64
	CorpusVersion string
	CreatedAt     time.Time
	Mentions      []Mention
	Suggestions   []Suggestion
}

type ConditionStat struct {
	Condition     string  `json:"condition"`
	Analyses      int64   `json:"analyses"`
	AvgConfidence float64 `json:"avg_confidence"`
}

func NewClient(uri, username, password, database string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(
		uri,
		neo4j.BasicAuth(username, password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify connectivity: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	cb := circuitbreaker.NewCircuitBreaker("neo4j", circuitbreaker.Config{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          20 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       3 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Retryable:      neo4j.IsRetryable,
		Logger:         logger.GetLogger(),
	}

	logger.Info("Neo4j client initialized", zap.String("uri", uri), zap.String("database", database))

	return &Client{
		driver:      driver,
		database:    database,
		cb:          cb,
		retryConfig: retryConfig,
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

func (c *Client) executeWithRetry(ctx context.Context, mode neo4j.AccessMode, operation func(neo4j.SessionWithContext) error) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			session := c.driver.NewSession(ctx, neo4j.SessionConfig{
				DatabaseName: c.database,
				AccessMode:   mode,
			})
			defer session.Close(ctx)
			return operation(session)
		})
	})
}

func (c *Client) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE CONSTRAINT analysis_id IF NOT EXISTS FOR (a:Analysis) REQUIRE a.id IS UNIQUE`,
		`CREATE CONSTRAINT condition_name IF NOT EXISTS FOR (c:Condition) REQUIRE c.name IS UNIQUE`,
		`CREATE INDEX term_name IF NOT EXISTS FOR (t:Term) ON (t.name, t.category)`,
	}
	return c.executeWithRetry(ctx, neo4j.AccessModeWrite, func(session neo4j.SessionWithContext) error {
		for _, stmt := range statements {
			result, err := session.Run(ctx, stmt, nil)
			if err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
			if _, err := result.Consume(ctx); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}

// MergeAnalysis writes the analysis node, the terms it mentions and the
// conditions it suggests in one transaction. Re-publishing the same
// analysis is idempotent.
func (c *Client) MergeAnalysis(ctx context.Context, g *AnalysisGraph) error {
	params := map[string]any{
		"id":             g.ID,
		"summary":        g.Summary,
		"confidence":     g.Confidence,
		"corpus_version": g.CorpusVersion,
		"created_at":     g.CreatedAt.UnixMilli(),
		"mentions":       mentionParams(g.Mentions),
		"suggestions":    suggestionParams(g.Suggestions),
	}

	query := `
		MERGE (a:Analysis {id: $id})
		SET a.summary = $summary,
		    a.confidence = $confidence,
		    a.corpus_version = $corpus_version,
		    a.created_at = $created_at
		WITH a
		CALL {
			WITH a
			UNWIND $mentions AS m
			MERGE (t:Term {name: m.term, category: m.category})
			SET t.concept_id = CASE WHEN m.concept_id = '' THEN t.concept_id ELSE m.concept_id END,
			    t.source = m.source
			MERGE (a)-[r:MENTIONS]->(t)
			SET r.text = m.text,
			    r.confidence = m.confidence,
			    r.positions = m.positions,
			    r.severity = m.severity
			RETURN count(*) AS mentions
		}
		CALL {
			WITH a
			UNWIND $suggestions AS s
			MERGE (c:Condition {name: s.condition})
			MERGE (a)-[r:SUGGESTS]->(c)
			SET r.confidence = s.confidence,
			    r.reasoning = s.reasoning
			RETURN count(*) AS suggestions
		}
		RETURN mentions, suggestions
	`

	err := c.executeWithRetry(ctx, neo4j.AccessModeWrite, func(session neo4j.SessionWithContext) error {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, query, params)
			if err != nil {
				return nil, err
			}
			return result.Consume(ctx)
		})
		if err != nil {
			return fmt.Errorf("failed to merge analysis: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug("Analysis merged into KG",
		zap.String("analysis_id", g.ID),
		zap.Int("mentions", len(g.Mentions)),
		zap.Int("suggestions", len(g.Suggestions)),
	)
	return nil
}

// RelatedConditions returns the conditions most often suggested by analyses
// that mention term.
func (c *Client) RelatedConditions(ctx context.Context, term string, limit int) ([]ConditionStat, error) {
	if limit <= 0 {
		limit = 10
	}

	var stats []ConditionStat
	err := c.executeWithRetry(ctx, neo4j.AccessModeRead, func(session neo4j.SessionWithContext) error {
		stats = stats[:0]
		query := `
			MATCH (t:Term {name: $term})<-[:MENTIONS]-(a:Analysis)-[s:SUGGESTS]->(c:Condition)
			RETURN c.name AS condition, count(DISTINCT a) AS analyses, avg(s.confidence) AS avg_confidence
			ORDER BY analyses DESC, avg_confidence DESC, condition
			LIMIT $limit
		`

		result, err := session.Run(ctx, query, map[string]any{
			"term":  term,
			"limit": limit,
		})
		if err != nil {
			return fmt.Errorf("failed to query related conditions: %w", err)
		}

		for result.Next(ctx) {
			record := result.Record()
			condition, _ := record.Get("condition")
			analyses, _ := record.Get("analyses")
			avg, _ := record.Get("avg_confidence")

			stat := ConditionStat{}
			stat.Condition, _ = condition.(string)
			stat.Analyses, _ = analyses.(int64)
			stat.AvgConfidence, _ = avg.(float64)
			stats = append(stats, stat)
		}

		if err = result.Err(); err != nil {
			return fmt.Errorf("error iterating results: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("KG related conditions query completed",
		zap.String("term", term),
		zap.Int("results_found", len(stats)),
	)
	return stats, nil
}

func mentionParams(mentions []Mention) []any {
	out := make([]any, 0, len(mentions))
	for _, m := range mentions {
		positions := make([]int64, len(m.Positions))
		for i, p := range m.Positions {
			positions[i] = int64(p)
		}
		out = append(out, map[string]any{
			"term":       m.Term,
			"text":       m.Text,
			"category":   m.Category,
			"source":     m.Source,
			"concept_id": m.ConceptID,
			"confidence": m.Confidence,
			"positions":  positions,
			"severity":   m.Severity,
		})
	}
	return out
}

func suggestionParams(suggestions []Suggestion) []any {
	out := make([]any, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, map[string]any{
			"condition":  s.Condition,
			"confidence": s.Confidence,
			"reasoning":  s.Reasoning,
		})
	}
	return out
}
