package inspect

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/travigo/hrdf/pkg/timetable"
)

// Filter is a compiled boolean expression over a JourneySummary.
type Filter struct {
	source  string
	program *vm.Program
}

func NewFilter(expression string) (*Filter, error) {
	program, err := expr.Compile(expression, expr.Env(JourneySummary{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expression, err)
	}

	return &Filter{source: expression, program: program}, nil
}

func (f *Filter) Match(summary JourneySummary) (bool, error) {
	output, err := expr.Run(f.program, summary)
	if err != nil {
		return false, fmt.Errorf("filter %q: %w", f.source, err)
	}

	return output.(bool), nil
}

// Journeys summarizes the journeys of model in insertion order, keeping
// those filter matches. A nil filter keeps every journey.
func Journeys(model *timetable.Model, filter *Filter) ([]JourneySummary, error) {
	var summaries []JourneySummary

	journeys := model.Journeys()
	for i := range journeys {
		summary := Summarize(model, &journeys[i])
		if filter != nil {
			matched, err := filter.Match(summary)
			if err != nil {
				return nil, err
			}
			if !matched {
				continue
			}
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}
