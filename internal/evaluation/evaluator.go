package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/internal/extraction"
	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/logger"
)

type GoldEntity struct {
	Text     string         `json:"text"`
	Category terms.Category `json:"category"`
}

type DatasetItem struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Entities []GoldEntity `json:"entities"`
}

type Dataset struct {
	Items []DatasetItem `json:"items"`
}

type Score struct {
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	FalseNegatives int     `json:"false_negatives"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
}

func (s *Score) add(o Score) {
	s.TruePositives += o.TruePositives
	s.FalsePositives += o.FalsePositives
	s.FalseNegatives += o.FalseNegatives
}

func (s *Score) finalize() {
	if d := s.TruePositives + s.FalsePositives; d > 0 {
		s.Precision = float64(s.TruePositives) / float64(d)
	}
	if d := s.TruePositives + s.FalseNegatives; d > 0 {
		s.Recall = float64(s.TruePositives) / float64(d)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
}

type ItemResult struct {
	ID     string   `json:"id"`
	Score  Score    `json:"score"`
	Missed []string `json:"missed,omitempty"`
	Extra  []string `json:"extra,omitempty"`
}

type Report struct {
	TotalItems  int                      `json:"total_items"`
	Micro       Score                    `json:"micro"`
	MacroF1     float64                  `json:"macro_f1"`
	PerCategory map[terms.Category]Score `json:"per_category"`
	Items       []ItemResult             `json:"items"`
}

// Evaluator scores the extraction engine against gold annotations. An
// entity matches when its normalized text and category both agree; matching
// is per item with set semantics.
type Evaluator struct {
	engine *extraction.Engine
	view   terms.View
}

func NewEvaluator(engine *extraction.Engine, view terms.View) *Evaluator {
	return &Evaluator{engine: engine, view: view}
}

func (e *Evaluator) Run(ctx context.Context, dataset *Dataset) (*Report, error) {
	logger.Info("Running dataset evaluation", zap.Int("items", len(dataset.Items)))

	report := &Report{
		TotalItems:  len(dataset.Items),
		PerCategory: make(map[terms.Category]Score),
		Items:       make([]ItemResult, 0, len(dataset.Items)),
	}

	for i, item := range dataset.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := item.ID
		if id == "" {
			id = fmt.Sprintf("item_%d", i+1)
		}

		agg := e.engine.Extract(item.Text, e.view)
		ir, perCat := compare(id, item.Entities, agg.Entities)

		for c, s := range perCat {
			total := report.PerCategory[c]
			total.add(s)
			report.PerCategory[c] = total
		}
		report.Micro.add(ir.Score)
		report.Items = append(report.Items, ir)
	}

	var macro float64
	for c, s := range report.PerCategory {
		s.finalize()
		report.PerCategory[c] = s
		macro += s.F1
	}
	if len(report.PerCategory) > 0 {
		report.MacroF1 = macro / float64(len(report.PerCategory))
	}
	report.Micro.finalize()

	logger.Info("Dataset evaluation completed",
		zap.Int("total", report.TotalItems),
		zap.Float64("precision", report.Micro.Precision),
		zap.Float64("recall", report.Micro.Recall),
		zap.Float64("f1", report.Micro.F1),
	)
	return report, nil
}

type entityKey struct {
	text     string
	category terms.Category
}

func (k entityKey) String() string {
	return fmt.Sprintf("%s (%s)", k.text, k.category)
}

func compare(id string, gold []GoldEntity, found []extraction.MatchedEntity) (ItemResult, map[terms.Category]Score) {
	goldSet := make(map[entityKey]bool)
	for _, g := range gold {
		k := entityKey{terms.Normalize(g.Text), g.Category}
		if k.text != "" {
			goldSet[k] = true
		}
	}
	foundSet := make(map[entityKey]bool)
	var foundOrder []entityKey
	for _, f := range found {
		k := entityKey{terms.Normalize(f.Text), f.Category}
		if !foundSet[k] {
			foundSet[k] = true
			foundOrder = append(foundOrder, k)
		}
	}

	ir := ItemResult{ID: id}
	perCat := make(map[terms.Category]Score)

	for _, k := range foundOrder {
		s := perCat[k.category]
		if goldSet[k] {
			s.TruePositives++
			ir.Score.TruePositives++
		} else {
			s.FalsePositives++
			ir.Score.FalsePositives++
			ir.Extra = append(ir.Extra, k.String())
		}
		perCat[k.category] = s
	}
	for _, g := range gold {
		k := entityKey{terms.Normalize(g.Text), g.Category}
		if foundSet[k] || !goldSet[k] {
			continue
		}
		// Count each gold key once.
		delete(goldSet, k)
		s := perCat[k.category]
		s.FalseNegatives++
		perCat[k.category] = s
		ir.Score.FalseNegatives++
		ir.Missed = append(ir.Missed, k.String())
	}

	ir.Score.finalize()
	return ir, perCat
}

func LoadDataset(r io.Reader) (*Dataset, error) {
	var dataset Dataset
	if err := json.NewDecoder(r).Decode(&dataset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dataset: %w", err)
	}
	for i := range dataset.Items {
		for j, g := range dataset.Items[i].Entities {
			c, err := terms.ParseCategory(string(g.Category))
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i+1, err)
			}
			dataset.Items[i].Entities[j].Category = c
		}
	}
	return &dataset, nil
}

func LoadDatasetFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return LoadDataset(f)
}

func GenerateReport(report *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nEvaluation Report\n=================\n\nTotal Items: %d\n\n", report.TotalItems)
	fmt.Fprintf(&b, "%-14s %5s %5s %5s %9s %7s %6s\n", "Category", "TP", "FP", "FN", "Precision", "Recall", "F1")

	for _, c := range terms.AllCategories() {
		s, ok := report.PerCategory[c]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%-14s %5d %5d %5d %9.3f %7.3f %6.3f\n",
			c, s.TruePositives, s.FalsePositives, s.FalseNegatives, s.Precision, s.Recall, s.F1)
	}

	m := report.Micro
	fmt.Fprintf(&b, "\nMicro: precision %.3f, recall %.3f, F1 %.3f\n", m.Precision, m.Recall, m.F1)
	fmt.Fprintf(&b, "Macro F1: %.3f\n", report.MacroF1)
	return b.String()
}
