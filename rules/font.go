package rules

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/model"
)

// FontConsistency counts the distinct (font family, size) pairs used by
// body text. Headings and whitespace-only runs are ignored; runs inside
// table cells count. Exceeding the limit yields a single warning naming
// the excess pairs. The most used pairs are the ones kept.
type FontConsistency struct{}

func (FontConsistency) ID() string { return "font-consistency" }

func (FontConsistency) Category() model.Category { return model.CategoryTypography }

type fontPair struct {
	family string
	size   float64
}

func (p fontPair) String() string {
	return fmt.Sprintf("%s %gpt", p.family, p.size)
}

type fontUsage struct {
	pair  fontPair
	runs  int
	first int
}

func (r FontConsistency) Evaluate(doc *model.Document, cfg config.Config) ([]model.Finding, error) {
	limit := cfg.Fonts.MaxDistinctPairs
	if limit <= 0 {
		return nil, nil
	}

	fold := cases.Fold()
	usage := make(map[fontPair]*fontUsage)
	var order []*fontUsage

	doc.Walk(func(b model.Block, _ model.Location) {
		p, ok := b.(*model.Paragraph)
		if !ok || p.IsHeading() {
			return
		}
		for _, run := range p.Runs {
			if strings.TrimSpace(run.Text) == "" {
				continue
			}
			family := strings.Join(strings.Fields(run.Font), " ")
			key := fontPair{family: fold.String(family), size: roundHalf(run.Size)}
			u, seen := usage[key]
			if !seen {
				u = &fontUsage{pair: fontPair{family: family, size: key.size}, first: len(order)}
				usage[key] = u
				order = append(order, u)
			}
			u.runs++
		}
	})

	if len(order) <= limit {
		return nil, nil
	}

	ranked := append([]*fontUsage(nil), order...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].runs != ranked[j].runs {
			return ranked[i].runs > ranked[j].runs
		}
		return ranked[i].first < ranked[j].first
	})

	kept := make([]string, 0, limit)
	for _, u := range ranked[:limit] {
		kept = append(kept, u.pair.String())
	}
	excess := make([]string, 0, len(ranked)-limit)
	for _, u := range ranked[limit:] {
		excess = append(excess, u.pair.String())
	}

	return []model.Finding{
		newFinding(r, model.SeverityWarning, model.DocumentLocation(),
			fmt.Sprintf("body text uses %d distinct font/size pairs (maximum %d); excess: %s",
				len(order), limit, strings.Join(excess, ", ")),
			map[string]any{
				"distinct": len(order),
				"max":      limit,
				"kept":     kept,
				"excess":   excess,
			}),
	}, nil
}

// roundHalf rounds a point size to the nearest half point, the
// granularity Word stores sizes in.
func roundHalf(v float64) float64 {
	return float64(int(v*2+0.5)) / 2
}
