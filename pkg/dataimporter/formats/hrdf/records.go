package hrdf

import (
	"fmt"
	"time"

	"github.com/travigo/hrdf/pkg/calendar"
	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
)

// Source locates the line a record was read from.
type Source struct {
	File datasets.FileName
	Line int
}

func (s Source) String() string {
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

type Metadata struct {
	Source
	Start    time.Time
	End      time.Time
	Name     string
	Created  string
	Version  string
	Provider string
}

type Bitfield struct {
	Source
	ID      int
	Pattern calendar.Pattern
}

type Holiday struct {
	Source
	Date  time.Time
	Names map[string]string
}

type Stop struct {
	Source
	ID           int
	Name         string
	LongName     string
	Abbreviation string
	Synonyms     []string
}

type CoordinateSystem string

const (
	LV95  CoordinateSystem = "LV95"
	WGS84 CoordinateSystem = "WGS84"
)

// Coordinates hold easting and northing for LV95, latitude and longitude
// for WGS84.
type Coordinates struct {
	System   CoordinateSystem
	X        float64
	Y        float64
	Altitude float64
}

type StopCoordinates struct {
	Source
	Stop int
	Coordinates
}

type StopPriority struct {
	Source
	Stop     int
	Priority int
}

type StopTransferFlag struct {
	Source
	Stop int
	Flag int
}

// DefaultTransferStop is the UMSTEIGB stop id carrying the global default
// transfer times.
const DefaultTransferStop = 9999999

type StopTransferTime struct {
	Source
	Stop      int
	InterCity int
	Other     int
}

type StopTypeKind string

const (
	StopTypeRestriction  StopTypeKind = "restriction"
	StopTypeSloid        StopTypeKind = "sloid"
	StopTypeBoardingArea StopTypeKind = "boarding-area"
	StopTypeCountry      StopTypeKind = "country"
	StopTypeCanton       StopTypeKind = "canton"
)

type StopType struct {
	Source
	Stop   int
	Kind   StopTypeKind
	Text   string
	Number int
}

type OperatorRecordKind string

const (
	OperatorNames           OperatorRecordKind = "names"
	OperatorAdministrations OperatorRecordKind = "administrations"
	OperatorSboid           OperatorRecordKind = "sboid"
)

type Operator struct {
	Source
	ID              int
	Language        string
	Kind            OperatorRecordKind
	ShortName       string
	LongName        string
	FullName        string
	Administrations []string
	Sboid           string
}

type LineProperty string

const (
	LineKey             LineProperty = "K"
	LineInternalName    LineProperty = "W"
	LineShortName       LineProperty = "N T"
	LineLongName        LineProperty = "L T"
	LineRegionName      LineProperty = "R T"
	LineDescription     LineProperty = "D T"
	LineColor           LineProperty = "F"
	LineBackgroundColor LineProperty = "B"
	LineMain            LineProperty = "H"
	LineInfoText        LineProperty = "I"
)

type Color struct {
	R, G, B int
}

type Line struct {
	Source
	ID       int
	Property LineProperty
	Text     string
	Color    Color
	MainLine int
	InfoType string
	InfoText int
}

type Direction struct {
	Source
	ID   string
	Text string
}

type Category struct {
	Source
	Code          string
	ProductClass  int
	TariffGroup   string
	OutputControl int
	ShortName     string
	Surcharge     int
	Flag          string
	// CategoryNumber links to the localized categoryNNN names; -1 when absent.
	CategoryNumber int
}

type CategoryTextKind string

const (
	CategoryTextClass    CategoryTextKind = "class"
	CategoryTextOption   CategoryTextKind = "option"
	CategoryTextCategory CategoryTextKind = "category"
)

type CategoryText struct {
	Source
	Language string
	Kind     CategoryTextKind
	Number   int
	Text     string
}

type Attribute struct {
	Source
	Code              string
	StopScope         int
	MainPriority      int
	SecondaryPriority int
}

type AttributeText struct {
	Source
	Language string
	Code     string
	Text     string
}

type InfoText struct {
	Source
	ID       int
	Language string
	Text     string
}

// JourneyPlatform assigns a platform to a journey at a stop.
type JourneyPlatform struct {
	Source
	Stop           int
	Journey        int
	Administration string
	Platform       int
	Time           int
	HasTime        bool
	Bitfield       int
}

type Platform struct {
	Source
	Stop    int
	Index   int
	Label   string
	Sectors string
}

type PlatformSloid struct {
	Source
	Stop  int
	Index int
	Sloid string
}

type PlatformCoordinates struct {
	Source
	Stop  int
	Index int
	Coordinates
}

// PlatformTable holds everything read from one platform file.
type PlatformTable struct {
	File        datasets.FileName
	Variant     datasets.Variant
	System      CoordinateSystem
	Journeys    []JourneyPlatform
	Platforms   []Platform
	Sloids      []PlatformSloid
	Coordinates []PlatformCoordinates
}

// AnyStop is the UMSTEIGV stop placeholder for rules valid at every stop.
const AnyStop = "@@@@@@@"

type OperatorTransfer struct {
	Source
	// Stop is zero for rules valid at every stop.
	Stop            int
	Administration1 string
	Administration2 string
	Minutes         int
}

// Wildcard marks a line or direction that matches anything.
const Wildcard = "*"

type LineTransfer struct {
	Source
	Stop            int
	Administration1 string
	Category1       string
	Line1           string
	Direction1      string
	Administration2 string
	Category2       string
	Line2           string
	Direction2      string
	Minutes         int
	Guaranteed      bool
}

type JourneyTransfer struct {
	Source
	Stop            int
	Journey1        int
	Administration1 string
	Journey2        int
	Administration2 string
	Minutes         int
	Guaranteed      bool
	Bitfield        int
}

type ThroughService struct {
	Source
	Journey1        int
	Administration1 string
	Stop1           int
	Journey2        int
	Administration2 string
	Bitfield        int
	Stop2           int
}

type MetaLink struct {
	Source
	Meta      int
	Stop      int
	Minutes   int
	Attribute string
}

type MetaGroup struct {
	Source
	Meta  int
	Stops []int
}

// StopRange restricts a journey sub-record to part of the route. Zero means
// the range is open at that end.
type StopRange struct {
	From  int
	Until int
}

type CategoryAssignment struct {
	Source
	Code  string
	Range StopRange
}

type CalendarAssignment struct {
	Source
	Bitfield  int
	Range     StopRange
	Exception bool
}

type AttributeAssignment struct {
	Source
	Code     string
	Range    StopRange
	Bitfield int
}

type InfoTextAssignment struct {
	Source
	Code         string
	InfoText     int
	Range        StopRange
	Bitfield     int
	Departure    int
	HasDeparture bool
	Arrival      int
	HasArrival   bool
}

type LineAssignment struct {
	Source
	// Reference is a LINIE id when the record uses the #nnnnnnn form.
	Reference int
	Name      string
	Range     StopRange
}

type DirectionAssignment struct {
	Source
	Kind      string
	Direction string
	Range     StopRange
}

type BoardingAssignment struct {
	Source
	CheckOut bool
	Minutes  int
	Range    StopRange
}

type Visit struct {
	Source
	Stop         int
	Arrival      int
	HasArrival   bool
	NoAlighting  bool
	Departure    int
	HasDeparture bool
	NoBoarding   bool
}

// Journey is one FPLAN block.
type Journey struct {
	Source
	Number         int
	Administration string
	Cycles         int
	CycleMinutes   int

	Categories []CategoryAssignment
	Calendars  []CalendarAssignment
	Attributes []AttributeAssignment
	InfoTexts  []InfoTextAssignment
	Lines      []LineAssignment
	Directions []DirectionAssignment
	Boarding   []BoardingAssignment
	Visits     []Visit
}
