package timetable

import (
	"time"

	"github.com/google/uuid"
	"github.com/travigo/hrdf/pkg/calendar"
)

// Builder assembles a Model. The lookups of the model under construction
// are available through the embedded pointer, so resolution can check
// references while adding entities. A Builder is not safe for concurrent
// use and must not be used after Build.
type Builder struct {
	*Model
}

func NewBuilder(cal calendar.Calendar, location *time.Location) *Builder {
	if location == nil {
		location = time.UTC
	}

	return &Builder{Model: &Model{
		Calendar:        cal,
		Location:        location,
		stops:           newArena[int, Stop](),
		operators:       newArena[int, Operator](),
		administrations: map[string]OperatorRef{},
		lines:           newArena[int, Line](),
		directions:      newArena[string, Direction](),
		categories:      newArena[string, Category](),
		attributes:      newArena[string, Attribute](),
		infoTexts:       newArena[int, InfoText](),
		platforms:       newArena[platformKey, Platform](),
		journeys:        newArena[JourneyKey, Journey](),
		transfers:       newTransferRules(),
	}}
}

// The Add methods report false, keeping the first entity, when the key is
// already taken.

func (b *Builder) AddStop(stop Stop) (StopRef, bool) {
	stop.Ref = StopRef(b.stops.len())

	ref, ok := b.stops.add(stop.ID, stop)
	return StopRef(ref), ok
}

func (b *Builder) AddOperator(operator Operator) (OperatorRef, bool) {
	operator.Ref = OperatorRef(b.operators.len())

	ref, ok := b.operators.add(operator.ID, operator)
	return OperatorRef(ref), ok
}

// AddAdministration maps an administration code to an operator. It reports
// the operator already holding the code when it is taken.
func (b *Builder) AddAdministration(administration string, operator OperatorRef) (OperatorRef, bool) {
	if existing, ok := b.administrations[administration]; ok {
		return existing, existing == operator
	}

	b.administrations[administration] = operator
	op := b.Operator(operator)
	op.Administrations = append(op.Administrations, administration)

	return operator, true
}

func (b *Builder) AddLine(line Line) (LineRef, bool) {
	line.Ref = LineRef(b.lines.len())

	ref, ok := b.lines.add(line.ID, line)
	return LineRef(ref), ok
}

func (b *Builder) AddDirection(direction Direction) (DirectionRef, bool) {
	direction.Ref = DirectionRef(b.directions.len())

	ref, ok := b.directions.add(direction.ID, direction)
	return DirectionRef(ref), ok
}

func (b *Builder) AddCategory(category Category) (CategoryRef, bool) {
	category.Ref = CategoryRef(b.categories.len())

	ref, ok := b.categories.add(category.Code, category)
	return CategoryRef(ref), ok
}

func (b *Builder) AddAttribute(attribute Attribute) (AttributeRef, bool) {
	attribute.Ref = AttributeRef(b.attributes.len())

	ref, ok := b.attributes.add(attribute.Code, attribute)
	return AttributeRef(ref), ok
}

func (b *Builder) AddInfoText(text InfoText) (InfoTextRef, bool) {
	text.Ref = InfoTextRef(b.infoTexts.len())

	ref, ok := b.infoTexts.add(text.ID, text)
	return InfoTextRef(ref), ok
}

// AddPlatform registers a platform and links it from its stop.
func (b *Builder) AddPlatform(platform Platform) (PlatformRef, bool) {
	platform.Ref = PlatformRef(b.platforms.len())

	ref, ok := b.platforms.add(platformKey{stop: platform.Stop, index: platform.Index}, platform)
	if ok {
		stop := b.Stop(platform.Stop)
		stop.Platforms = append(stop.Platforms, PlatformRef(ref))
	}

	return PlatformRef(ref), ok
}

func (b *Builder) AddJourney(journey Journey) (JourneyRef, bool) {
	journey.Ref = JourneyRef(b.journeys.len())

	ref, ok := b.journeys.add(journey.Key(), journey)
	return JourneyRef(ref), ok
}

func (b *Builder) AddHoliday(holiday Holiday) {
	b.holidays = append(b.holidays, holiday)
}

func (b *Builder) AddJourneyTransfer(rule JourneyTransfer) {
	key := journeyPairKey{stop: rule.Stop, from: rule.From, to: rule.To}
	b.transfers.journeys[key] = append(b.transfers.journeys[key], rule)
}

// AddLineTransfer appends a rule; among equally specific matches the
// earliest added wins.
func (b *Builder) AddLineTransfer(rule LineTransfer) {
	b.transfers.lines[rule.Stop] = append(b.transfers.lines[rule.Stop], rule)
}

// AddOperatorTransfer reports false when the stop already has a rule for
// the administration pair.
func (b *Builder) AddOperatorTransfer(rule OperatorTransfer) bool {
	key := operatorKey{stop: rule.Stop, first: rule.Administration1, second: rule.Administration2}
	if _, ok := b.transfers.operators[key]; ok {
		return false
	}

	b.transfers.operators[key] = rule.Minutes
	return true
}

// SetDefaultTransferTime sets the transfer time used when no other rule
// applies.
func (b *Builder) SetDefaultTransferTime(times StopTransferTime) {
	b.transfers.fallback = &times
}

// Build indexes departures and hands over the model.
func (b *Builder) Build() *Model {
	model := b.Model
	b.Model = nil

	model.indexDepartures()
	model.LoadID = uuid.New()

	return model
}
