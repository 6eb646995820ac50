package builder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/internal/extraction"
	"github.com/AmartyaKumar11/X-NOSIS/internal/kg/neo4j"
	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/logger"
)

type Graph interface {
	MergeAnalysis(ctx context.Context, g *neo4j.AnalysisGraph) error
}

// Builder projects analysis results onto the knowledge graph: one Analysis
// node, a MENTIONS edge per distinct term and a SUGGESTS edge per
// differential.
type Builder struct {
	graph Graph
	now   func() time.Time
}

func NewBuilder(graph Graph) *Builder {
	return &Builder{graph: graph, now: time.Now}
}

func (b *Builder) PublishAnalysis(ctx context.Context, analysisID string, result *extraction.AnalysisResult) error {
	if result == nil {
		return fmt.Errorf("nil analysis result for %s", analysisID)
	}

	g := b.Project(analysisID, result)
	if err := b.graph.MergeAnalysis(ctx, g); err != nil {
		return fmt.Errorf("failed to publish analysis %s: %w", analysisID, err)
	}

	logger.Info("Analysis published to KG",
		zap.String("analysis_id", analysisID),
		zap.Int("terms", len(g.Mentions)),
		zap.Int("conditions", len(g.Suggestions)),
	)
	return nil
}

// Project builds the graph shape without writing it.
func (b *Builder) Project(analysisID string, result *extraction.AnalysisResult) *neo4j.AnalysisGraph {
	g := &neo4j.AnalysisGraph{
		ID:            analysisID,
		Summary:       result.Summary,
		Confidence:    result.ConfidenceScore,
		CorpusVersion: result.ProcessingMetadata.CorpusVersion,
		CreatedAt:     b.now(),
		Mentions:      mentions(result),
		Suggestions:   make([]neo4j.Suggestion, 0, len(result.DifferentialDiagnosis)),
	}
	for _, d := range result.DifferentialDiagnosis {
		g.Suggestions = append(g.Suggestions, neo4j.Suggestion{
			Condition:  d.Condition,
			Confidence: d.Confidence,
			Reasoning:  d.Reasoning,
		})
	}
	return g
}

func mentions(result *extraction.AnalysisResult) []neo4j.Mention {
	severity := make(map[string]string, len(result.CriticalFindings))
	for _, f := range result.CriticalFindings {
		severity[terms.Normalize(f.Text)+"|"+string(f.Category)] = string(f.Severity)
	}

	index := make(map[string]int)
	out := []neo4j.Mention{}
	for _, e := range result.MedicalEntities {
		term := terms.Normalize(e.Text)
		key := term + "|" + string(e.Category)

		if i, ok := index[key]; ok {
			m := &out[i]
			m.Positions = append(m.Positions, e.StartPos)
			if e.Confidence > m.Confidence {
				m.Confidence = e.Confidence
				m.Source = e.Source
				m.ConceptID = e.ConceptID
			}
			continue
		}

		index[key] = len(out)
		out = append(out, neo4j.Mention{
			Term:       term,
			Text:       e.Text,
			Category:   string(e.Category),
			Source:     e.Source,
			ConceptID:  e.ConceptID,
			Confidence: e.Confidence,
			Positions:  []int{e.StartPos},
			Severity:   severity[key],
		})
	}
	return out
}
