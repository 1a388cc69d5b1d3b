package resolver

import (
	"cmp"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/formats/hrdf"
	"github.com/travigo/hrdf/pkg/dataimporter/issues"
	"github.com/travigo/hrdf/pkg/timetable"
	"github.com/travigo/hrdf/pkg/util"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// platformFiles is the order platform files are merged in; legacy files
// come first so the extended family can overlay them.
var platformFiles = []datasets.FileName{
	datasets.FileGLEIS,
	datasets.FileGLEISLV95,
	datasets.FileGLEISWGS,
	datasets.FileGLEISELV95,
	datasets.FileGLEISEWGS,
}

type platformID struct {
	stop  int
	index int
}

// platformDraft is one platform as read from the files of a variant. Empty
// fields are unknown and do not override during the overlay.
type platformDraft struct {
	Label   string
	Sectors string
	Sloid   string
	LV95    *timetable.Coordinates
	WGS84   *timetable.Coordinates

	source hrdf.Source
}

type assignmentID struct {
	stop           int
	journey        int
	administration string
	time           int
	hasTime        bool
	bitfield       int
}

type assignmentDraft struct {
	platform int
	source   hrdf.Source
}

// variantPlatforms holds everything the files of one variant said.
type variantPlatforms struct {
	platforms   map[platformID]*platformDraft
	assignments map[assignmentID]assignmentDraft
}

func newVariantPlatforms() *variantPlatforms {
	return &variantPlatforms{
		platforms:   map[platformID]*platformDraft{},
		assignments: map[assignmentID]assignmentDraft{},
	}
}

func (r *resolver) resolvePlatforms() {
	mode := r.options.VariantMode
	variants := map[datasets.Variant]*variantPlatforms{
		datasets.VariantLegacy:   newVariantPlatforms(),
		datasets.VariantExtended: newVariantPlatforms(),
	}

	for _, name := range platformFiles {
		table, ok := r.set.Platforms[name]
		if !ok || !mode.Reads(table.Variant) {
			continue
		}
		r.collectPlatformTable(variants[table.Variant], table)
	}

	merged := variants[datasets.VariantLegacy]
	switch mode {
	case datasets.VariantModeExtendedOnly:
		merged = variants[datasets.VariantExtended]
	case datasets.VariantModeBothPresentMerge:
		r.overlayPlatforms(merged, variants[datasets.VariantExtended])
	}

	r.addPlatforms(merged)
	r.assignPlatforms(merged)
}

func (r *resolver) collectPlatformTable(into *variantPlatforms, table *hrdf.PlatformTable) {
	for _, record := range table.Platforms {
		r.mergePlatform(into, platformID{record.Stop, record.Index}, &platformDraft{
			Label:   record.Label,
			Sectors: record.Sectors,
			source:  record.Source,
		})
	}

	for _, record := range table.Sloids {
		r.mergePlatform(into, platformID{record.Stop, record.Index}, &platformDraft{
			Sloid:  record.Sloid,
			source: record.Source,
		})
	}

	for _, record := range table.Coordinates {
		draft := &platformDraft{source: record.Source}
		if record.System == hrdf.WGS84 {
			draft.WGS84 = convertCoordinates(record.Coordinates)
		} else {
			draft.LV95 = convertCoordinates(record.Coordinates)
		}
		r.mergePlatform(into, platformID{record.Stop, record.Index}, draft)
	}

	for _, record := range table.Journeys {
		id := assignmentID{
			stop:           record.Stop,
			journey:        record.Journey,
			administration: record.Administration,
			time:           record.Time,
			hasTime:        record.HasTime,
			bitfield:       record.Bitfield,
		}
		if existing, ok := into.assignments[id]; ok {
			if existing.platform != record.Platform {
				r.report(issues.KindInconsistentVariantMerge, record.Source, "journey %d/%s at stop %d is already assigned platform #%07d at %s", record.Journey, record.Administration, record.Stop, existing.platform, existing.source)
			}
			continue
		}
		into.assignments[id] = assignmentDraft{platform: record.Platform, source: record.Source}
	}
}

// mergePlatform adds what one record says about a platform. Files of the
// same variant must agree on every field they both set.
func (r *resolver) mergePlatform(into *variantPlatforms, id platformID, incoming *platformDraft) {
	existing, ok := into.platforms[id]
	if !ok {
		into.platforms[id] = incoming
		return
	}

	if conflicts := platformConflicts(existing, incoming); len(conflicts) > 0 {
		r.report(issues.KindInconsistentVariantMerge, incoming.source, "platform #%07d of stop %d has a different %s than at %s", id.index, id.stop, strings.Join(conflicts, " and "), existing.source)
		return
	}

	if err := copier.CopyWithOption(existing, incoming, copier.Option{IgnoreEmpty: true}); err != nil {
		r.report(issues.KindInconsistentVariantMerge, incoming.source, "platform #%07d of stop %d: %s", id.index, id.stop, err)
	}
}

func platformConflicts(a, b *platformDraft) []string {
	var conflicts []string

	differ := func(x, y string) bool { return x != "" && y != "" && x != y }
	if differ(a.Label, b.Label) {
		conflicts = append(conflicts, "label")
	}
	if differ(a.Sectors, b.Sectors) {
		conflicts = append(conflicts, "sectors")
	}
	if differ(a.Sloid, b.Sloid) {
		conflicts = append(conflicts, "SLOID")
	}
	if a.LV95 != nil && b.LV95 != nil && *a.LV95 != *b.LV95 {
		conflicts = append(conflicts, "LV95 position")
	}
	if a.WGS84 != nil && b.WGS84 != nil && *a.WGS84 != *b.WGS84 {
		conflicts = append(conflicts, "WGS84 position")
	}

	return conflicts
}

// overlayPlatforms lays the extended variant over the legacy one. Extended
// values win wherever they are set.
func (r *resolver) overlayPlatforms(legacy, extended *variantPlatforms) {
	for id, draft := range extended.platforms {
		base, ok := legacy.platforms[id]
		if !ok {
			legacy.platforms[id] = draft
			continue
		}
		if err := copier.CopyWithOption(base, draft, copier.Option{IgnoreEmpty: true}); err != nil {
			r.report(issues.KindInconsistentVariantMerge, draft.source, "platform #%07d of stop %d: %s", id.index, id.stop, err)
		}
	}

	for id, assignment := range extended.assignments {
		legacy.assignments[id] = assignment
	}
}

func (r *resolver) addPlatforms(merged *variantPlatforms) {
	ids := maps.Keys(merged.platforms)
	slices.SortFunc(ids, func(a, b platformID) int {
		return cmp.Or(cmp.Compare(a.stop, b.stop), cmp.Compare(a.index, b.index))
	})

	for _, id := range ids {
		draft := merged.platforms[id]

		stop := r.stop(draft.source, id.stop)
		if stop == nil {
			continue
		}

		r.builder.AddPlatform(timetable.Platform{
			Stop:    stop.Ref,
			Index:   id.index,
			Label:   draft.Label,
			Sectors: draft.Sectors,
			Sloid:   draft.Sloid,
			LV95:    draft.LV95,
			WGS84:   draft.WGS84,
		})
	}
}

type resolvedAssignment struct {
	id       assignmentID
	draft    assignmentDraft
	journey  *timetable.Journey
	platform timetable.PlatformAssignment
}

func (r *resolver) assignPlatforms(merged *variantPlatforms) {
	var assignments []*resolvedAssignment
	for id, draft := range merged.assignments {
		assignments = append(assignments, &resolvedAssignment{id: id, draft: draft})
	}
	slices.SortFunc(assignments, func(a, b *resolvedAssignment) int {
		return cmp.Or(
			strings.Compare(string(a.draft.source.File), string(b.draft.source.File)),
			cmp.Compare(a.draft.source.Line, b.draft.source.Line),
		)
	})

	util.InPlaceFilter(&assignments, r.resolveAssignment)

	for _, assignment := range assignments {
		assignment.journey.Platforms = append(assignment.journey.Platforms, assignment.platform)
	}
}

// resolveAssignment checks every reference of a platform assignment and
// reports false when one is missing.
func (r *resolver) resolveAssignment(assignment *resolvedAssignment) bool {
	id, source := assignment.id, assignment.draft.source

	stop := r.stop(source, id.stop)
	if stop == nil {
		return false
	}

	journey := r.journey(source, id.journey, id.administration)
	if journey == nil {
		return false
	}

	platform, ok := r.builder.PlatformAt(stop.Ref, assignment.draft.platform)
	if !ok {
		r.unresolved(source, "stop %d has no platform #%07d", id.stop, assignment.draft.platform)
		return false
	}

	days, ok := r.days(source, id.bitfield)
	if !ok {
		return false
	}

	assignment.journey = journey
	assignment.platform = timetable.PlatformAssignment{
		Stop:     stop.Ref,
		Platform: platform.Ref,
		Time:     id.time,
		HasTime:  id.hasTime,
		Days:     days,
	}

	return true
}
