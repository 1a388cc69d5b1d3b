package resolver

import (
	"fmt"

	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/formats/hrdf"
	"github.com/travigo/hrdf/pkg/timetable"
)

// resolveOperators merges the language files. The German file defines the
// operators; the other languages only add names.
func (r *resolver) resolveOperators() {
	named := map[string]hrdf.Source{}

	for _, records := range r.set.Operators {
		for _, record := range records {
			if record.Kind != hrdf.OperatorNames {
				continue
			}

			operator, ok := r.builder.OperatorByID(record.ID)
			if !ok {
				if record.Language != datasets.LanguageGerman {
					r.unresolved(record.Source, "unknown operator %d", record.ID)
					continue
				}
				ref, _ := r.builder.AddOperator(timetable.Operator{
					ID:        record.ID,
					ShortName: timetable.Names{},
					LongName:  timetable.Names{},
					FullName:  timetable.Names{},
				})
				operator = r.builder.Operator(ref)
			}

			key := fmt.Sprintf("%d/%s", record.ID, record.Language)
			if existing, ok := named[key]; ok {
				r.duplicate(record.Source, "operator %d already named in %s at %s", record.ID, record.Language, existing)
				continue
			}
			named[key] = record.Source

			setName(operator.ShortName, record.Language, record.ShortName)
			setName(operator.LongName, record.Language, record.LongName)
			setName(operator.FullName, record.Language, record.FullName)
		}
	}

	for _, records := range r.set.Operators {
		for _, record := range records {
			switch record.Kind {
			case hrdf.OperatorAdministrations:
				r.administrations = true
				operator, ok := r.builder.OperatorByID(record.ID)
				if !ok {
					r.unresolved(record.Source, "unknown operator %d", record.ID)
					continue
				}
				for _, administration := range record.Administrations {
					if holder, ok := r.builder.AddAdministration(administration, operator.Ref); !ok {
						r.duplicate(record.Source, "administration %s already belongs to operator %d", administration, r.builder.Operator(holder).ID)
					}
				}
			case hrdf.OperatorSboid:
				operator, ok := r.builder.OperatorByID(record.ID)
				if !ok {
					r.unresolved(record.Source, "unknown operator %d", record.ID)
					continue
				}
				operator.Sboid = record.Sboid
			}
		}
	}
}

func setName(names timetable.Names, language, text string) {
	if text != "" {
		names[language] = text
	}
}

func (r *resolver) resolveRegistries() {
	r.resolveInfoTexts()
	r.resolveLines()
	r.resolveDirections()
	r.resolveCategories()
	r.resolveAttributes()
}

func (r *resolver) resolveInfoTexts() {
	for _, records := range r.set.InfoTexts {
		for _, record := range records {
			text, ok := r.builder.InfoTextByID(record.ID)
			if !ok {
				ref, _ := r.builder.AddInfoText(timetable.InfoText{ID: record.ID, Text: timetable.Names{}})
				text = r.builder.InfoText(ref)
			}

			if _, ok := text.Text[record.Language]; ok {
				r.duplicate(record.Source, "info text %d already defined in %s", record.ID, record.Language)
				continue
			}
			text.Text[record.Language] = record.Text
		}
	}
}

type lineProperty struct {
	id       int
	property hrdf.LineProperty
}

func (r *resolver) resolveLines() {
	seen := map[lineProperty]hrdf.Source{}
	var mainLines, infoTexts []hrdf.Line

	for _, record := range r.set.Lines {
		key := lineProperty{id: record.ID, property: record.Property}
		if existing, ok := seen[key]; ok {
			r.duplicate(record.Source, "line %d property %q already set at %s", record.ID, record.Property, existing)
			continue
		}
		seen[key] = record.Source

		line, ok := r.builder.LineByID(record.ID)
		if !ok {
			ref, _ := r.builder.AddLine(timetable.Line{ID: record.ID, MainLine: timetable.NoRef, InfoText: timetable.NoRef})
			line = r.builder.Line(ref)
		}

		switch record.Property {
		case hrdf.LineKey:
			line.Key = record.Text
		case hrdf.LineInternalName:
			line.InternalName = record.Text
		case hrdf.LineShortName:
			line.ShortName = record.Text
		case hrdf.LineLongName:
			line.LongName = record.Text
		case hrdf.LineRegionName:
			line.RegionName = record.Text
		case hrdf.LineDescription:
			line.Description = record.Text
		case hrdf.LineColor:
			line.Color = &timetable.Color{R: record.Color.R, G: record.Color.G, B: record.Color.B}
		case hrdf.LineBackgroundColor:
			line.BackgroundColor = &timetable.Color{R: record.Color.R, G: record.Color.G, B: record.Color.B}
		case hrdf.LineMain:
			mainLines = append(mainLines, record)
		case hrdf.LineInfoText:
			infoTexts = append(infoTexts, record)
		}
	}

	// Main lines may be defined after the lines pointing at them.
	for _, record := range mainLines {
		line, _ := r.builder.LineByID(record.ID)
		main, ok := r.builder.LineByID(record.MainLine)
		if !ok {
			r.unresolved(record.Source, "unknown main line %d", record.MainLine)
			continue
		}
		line.MainLine = main.Ref
	}

	for _, record := range infoTexts {
		line, _ := r.builder.LineByID(record.ID)
		text, ok := r.builder.InfoTextByID(record.InfoText)
		if !ok {
			r.unresolved(record.Source, "unknown info text %d", record.InfoText)
			continue
		}
		line.InfoType = record.InfoType
		line.InfoText = text.Ref
	}
}

func (r *resolver) resolveDirections() {
	for _, record := range r.set.Directions {
		if _, ok := r.builder.AddDirection(timetable.Direction{ID: record.ID, Text: record.Text}); !ok {
			r.duplicate(record.Source, "direction %s already defined", record.ID)
		}
	}
}

type categoryText struct {
	kind   hrdf.CategoryTextKind
	number int
}

func (r *resolver) resolveCategories() {
	texts := map[categoryText]timetable.Names{}
	for _, text := range r.set.CategoryTexts {
		key := categoryText{kind: text.Kind, number: text.Number}
		if texts[key] == nil {
			texts[key] = timetable.Names{}
		}
		texts[key][text.Language] = text.Text
	}

	for _, record := range r.set.Categories {
		category := timetable.Category{
			Code:          record.Code,
			ProductClass:  record.ProductClass,
			TariffGroup:   record.TariffGroup,
			OutputControl: record.OutputControl,
			ShortName:     record.ShortName,
			Surcharge:     record.Surcharge,
			Flag:          record.Flag,
			ClassName:     texts[categoryText{kind: hrdf.CategoryTextClass, number: record.ProductClass}],
		}
		if record.CategoryNumber >= 0 {
			category.Name = texts[categoryText{kind: hrdf.CategoryTextCategory, number: record.CategoryNumber}]
		}

		if _, ok := r.builder.AddCategory(category); !ok {
			r.duplicate(record.Source, "category %s already defined", record.Code)
		}
	}
}

func (r *resolver) resolveAttributes() {
	for _, record := range r.set.Attributes {
		_, ok := r.builder.AddAttribute(timetable.Attribute{
			Code:              record.Code,
			StopScope:         record.StopScope,
			MainPriority:      record.MainPriority,
			SecondaryPriority: record.SecondaryPriority,
			Description:       timetable.Names{},
		})
		if !ok {
			r.duplicate(record.Source, "attribute %s already defined", record.Code)
		}
	}

	for _, text := range r.set.AttributeTexts {
		attribute, ok := r.builder.AttributeByCode(text.Code)
		if !ok {
			r.unresolved(text.Source, "unknown attribute %s", text.Code)
			continue
		}
		attribute.Description[text.Language] = text.Text
	}
}
