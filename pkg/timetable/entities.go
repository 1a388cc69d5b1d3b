package timetable

import (
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Names holds a localized text per language code (de, en, fr, it).
type Names map[string]string

// Get returns the text in language, falling back to German and then to any
// other language in code order.
func (n Names) Get(language string) string {
	if text, ok := n[language]; ok {
		return text
	}
	if text, ok := n["de"]; ok {
		return text
	}

	languages := maps.Keys(n)
	if len(languages) == 0 {
		return ""
	}
	slices.Sort(languages)

	return n[languages[0]]
}

type CoordinateSystem string

const (
	LV95  CoordinateSystem = "LV95"
	WGS84 CoordinateSystem = "WGS84"
)

// Coordinates are easting and northing for LV95, latitude and longitude for
// WGS84.
type Coordinates struct {
	System   CoordinateSystem `groups:"basic"`
	X        float64          `groups:"basic"`
	Y        float64          `groups:"basic"`
	Altitude float64          `groups:"detailed"`
}

type Color struct {
	R int `groups:"detailed"`
	G int `groups:"detailed"`
	B int `groups:"detailed"`
}

// DefaultStopPriority applies to stops without a BFPRIOS entry.
const DefaultStopPriority = 8

type StopTransferTime struct {
	InterCity int `groups:"detailed"`
	Other     int `groups:"detailed"`
}

// Minutes picks the inter-city value when both sides are inter-city
// services.
func (t StopTransferTime) Minutes(interCity bool) int {
	if interCity {
		return t.InterCity
	}

	return t.Other
}

// MetaLink is a walking connection from a meta stop to one of its stops.
type MetaLink struct {
	Stop      StopRef `groups:"detailed"`
	Minutes   int     `groups:"detailed"`
	Attribute string  `groups:"detailed" json:",omitempty"`
}

type Stop struct {
	Ref          StopRef  `groups:"basic"`
	ID           int      `groups:"basic"`
	Name         string   `groups:"basic"`
	LongName     string   `groups:"basic" json:",omitempty"`
	Abbreviation string   `groups:"basic" json:",omitempty"`
	Synonyms     []string `groups:"detailed" json:",omitempty"`

	LV95  *Coordinates `groups:"basic" json:",omitempty"`
	WGS84 *Coordinates `groups:"basic" json:",omitempty"`

	Priority     int               `groups:"detailed"`
	TransferFlag int               `groups:"detailed"`
	TransferTime *StopTransferTime `groups:"detailed" json:",omitempty"`

	Restriction   int      `groups:"detailed"`
	Sloid         string   `groups:"detailed" json:",omitempty"`
	BoardingAreas []string `groups:"detailed" json:",omitempty"`
	Country       string   `groups:"detailed" json:",omitempty"`
	Canton        int      `groups:"detailed"`

	MetaLinks []MetaLink    `groups:"detailed" json:",omitempty"`
	Members   []StopRef     `groups:"detailed" json:",omitempty"`
	Platforms []PlatformRef `groups:"detailed" json:",omitempty"`
}

// CanBeTransferPoint reports whether passengers may change services here.
func (s *Stop) CanBeTransferPoint() bool {
	return s.TransferFlag != 0
}

type Operator struct {
	Ref             OperatorRef `groups:"basic"`
	ID              int         `groups:"basic"`
	ShortName       Names       `groups:"basic"`
	LongName        Names       `groups:"detailed"`
	FullName        Names       `groups:"detailed"`
	Administrations []string    `groups:"basic"`
	Sboid           string      `groups:"detailed" json:",omitempty"`
}

type Line struct {
	Ref             LineRef     `groups:"basic"`
	ID              int         `groups:"basic"`
	Key             string      `groups:"basic" json:",omitempty"`
	InternalName    string      `groups:"detailed" json:",omitempty"`
	ShortName       string      `groups:"basic" json:",omitempty"`
	LongName        string      `groups:"basic" json:",omitempty"`
	RegionName      string      `groups:"detailed" json:",omitempty"`
	Description     string      `groups:"detailed" json:",omitempty"`
	Color           *Color      `groups:"detailed" json:",omitempty"`
	BackgroundColor *Color      `groups:"detailed" json:",omitempty"`
	MainLine        LineRef     `groups:"detailed"`
	InfoType        string      `groups:"detailed" json:",omitempty"`
	InfoText        InfoTextRef `groups:"detailed"`
}

// Name is the text used to match the line in transfer rules and displays.
func (l *Line) Name() string {
	switch {
	case l.Key != "":
		return l.Key
	case l.ShortName != "":
		return l.ShortName
	default:
		return l.LongName
	}
}

type Direction struct {
	Ref  DirectionRef `groups:"basic"`
	ID   string       `groups:"basic"`
	Text string       `groups:"basic"`
}

type Category struct {
	Ref           CategoryRef `groups:"basic"`
	Code          string      `groups:"basic"`
	ProductClass  int         `groups:"basic"`
	TariffGroup   string      `groups:"detailed"`
	OutputControl int         `groups:"detailed"`
	ShortName     string      `groups:"basic"`
	Surcharge     int         `groups:"detailed"`
	Flag          string      `groups:"detailed" json:",omitempty"`
	ClassName     Names       `groups:"detailed"`
	Name          Names       `groups:"detailed"`
}

// InterCityProductClass is the highest product class that uses inter-city
// transfer times.
const InterCityProductClass = 2

func (c *Category) InterCity() bool {
	return c.ProductClass <= InterCityProductClass
}

type Attribute struct {
	Ref               AttributeRef `groups:"basic"`
	Code              string       `groups:"basic"`
	StopScope         int          `groups:"detailed"`
	MainPriority      int          `groups:"detailed"`
	SecondaryPriority int          `groups:"detailed"`
	Description       Names        `groups:"basic"`
}

type InfoText struct {
	Ref  InfoTextRef `groups:"basic"`
	ID   int         `groups:"basic"`
	Text Names       `groups:"basic"`
}

type Holiday struct {
	Date  time.Time `groups:"basic"`
	Names Names     `groups:"basic"`
}

type Platform struct {
	Ref     PlatformRef  `groups:"basic"`
	Stop    StopRef      `groups:"basic"`
	Index   int          `groups:"basic"`
	Label   string       `groups:"basic"`
	Sectors string       `groups:"basic" json:",omitempty"`
	Sloid   string       `groups:"detailed" json:",omitempty"`
	LV95    *Coordinates `groups:"detailed" json:",omitempty"`
	WGS84   *Coordinates `groups:"detailed" json:",omitempty"`
}

// Metadata describes the dataset as a whole.
type Metadata struct {
	Name     string    `groups:"basic"`
	Created  string    `groups:"basic"`
	Version  string    `groups:"basic"`
	Provider string    `groups:"basic"`
	Start    time.Time `groups:"basic"`
	End      time.Time `groups:"basic"`
}
