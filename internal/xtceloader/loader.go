// Package xtceloader parses an XTCE 1.3 XML document into a
// internal/xtce/model.SpaceSystem tree. It is a separate package the core
// codec never imports from, per spec §1's "XML ingestion is pluggable";
// callers load a document here and hand the resulting model.SpaceSystem to
// internal/xtce/codec.Load.
//
// Constructs spec.md §1 explicitly excludes (AggregateType, RelativeTime,
// Alarms, Algorithms, Streams, Aliases, MessageSet, ServiceSet) are
// recognized only well enough to be skipped without error; encoding/xml
// already does this for any element with no matching struct field, so most
// of that tolerance is free.
package xtceloader

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
)

var log = logging.Logger("sdn-xtceloader")

// Load parses an XTCE 1.3 document (the root <SpaceSystem> element) into a
// model.SpaceSystem tree rooted at "/"+the document's name attribute.
func Load(r io.Reader) (*model.SpaceSystem, error) {
	var doc xmlSpaceSystem
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("xtceloader: parsing XML: %w", err)
	}
	return convertSpaceSystem(&doc, ""), nil
}

// xmlSpaceSystem mirrors the subset of XTCE 1.3's SpaceSystem element this
// loader understands. It is self-referential to support arbitrarily nested
// child SpaceSystems.
type xmlSpaceSystem struct {
	Name              string               `xml:"name,attr"`
	ShortDescription  string               `xml:"shortDescription,attr"`
	TelemetryMetaData xmlTelemetryMetaData `xml:"TelemetryMetaData"`
	CommandMetaData   xmlCommandMetaData   `xml:"CommandMetaData"`
	Children          []xmlSpaceSystem     `xml:"SpaceSystem"`
}

type xmlTelemetryMetaData struct {
	ParameterTypeSet xmlParameterTypeSet `xml:"ParameterTypeSet"`
	ParameterSet     xmlParameterSet     `xml:"ParameterSet"`
	ContainerSet     xmlContainerSet     `xml:"ContainerSet"`
}

type xmlCommandMetaData struct {
	ArgumentTypeSet xmlArgumentTypeSet `xml:"ArgumentTypeSet"`
	MetaCommandSet  xmlMetaCommandSet  `xml:"MetaCommandSet"`
}

// --- data encodings & calibration -----------------------------------------

type xmlTerm struct {
	Coefficient string `xml:"coefficient,attr"`
	Exponent    string `xml:"exponent,attr"`
}

type xmlPolynomialCalibrator struct {
	Terms []xmlTerm `xml:"Term"`
}

type xmlDefaultCalibrator struct {
	Polynomial *xmlPolynomialCalibrator `xml:"PolynomialCalibrator"`
}

type xmlIntegerDataEncoding struct {
	SizeInBits        string                `xml:"sizeInBits,attr"`
	Encoding          string                `xml:"encoding,attr"`
	DefaultCalibrator *xmlDefaultCalibrator `xml:"DefaultCalibrator"`
}

type xmlFloatDataEncoding struct {
	SizeInBits        string                `xml:"sizeInBits,attr"`
	DefaultCalibrator *xmlDefaultCalibrator `xml:"DefaultCalibrator"`
}

type xmlFixedValueSize struct {
	FixedValue string `xml:"FixedValue"`
}

type xmlDynamicValueSize struct {
	DynamicValue struct {
		ParameterInstanceRef struct {
			ParameterRef string `xml:"parameterRef,attr"`
		} `xml:"ParameterInstanceRef"`
	} `xml:"DynamicValue"`
}

type xmlSizeInBits struct {
	Fixed   xmlFixedValueSize   `xml:"Fixed"`
	Dynamic xmlDynamicValueSize `xml:"Dynamic"`
}

type xmlStringDataEncoding struct {
	Encoding       string        `xml:"encoding,attr"` // SizeInBits | LeadingSize | TerminationChar (sizeType-like attr varies by tool; default to SizeInBits shape)
	SizeInBits     xmlSizeInBits `xml:"SizeInBits"`
	Termination    string        `xml:"TerminationChar"`
	SizeIsOfChars  string        `xml:"sizeInBitsIsOf,attr"`
}

type xmlBinaryDataEncoding struct {
	SizeInBits xmlSizeInBits `xml:"SizeInBits"`
}

// --- parameter types --------------------------------------------------------

type xmlUnit struct {
	Text string `xml:",chardata"`
}

type xmlUnitSet struct {
	Units []xmlUnit `xml:"Unit"`
}

type xmlValidRange struct {
	MinInclusive string `xml:"minInclusive,attr"`
	MaxInclusive string `xml:"maxInclusive,attr"`
}

type xmlEnumeration struct {
	Value string `xml:"value,attr"`
	Label string `xml:"label,attr"`
}

type xmlEnumerationList struct {
	Enumerations []xmlEnumeration `xml:"Enumeration"`
}

type xmlIntegerParameterType struct {
	Name                string                 `xml:"name,attr"`
	Signed              string                 `xml:"signed,attr"`
	UnitSet             xmlUnitSet             `xml:"UnitSet"`
	IntegerDataEncoding xmlIntegerDataEncoding `xml:"IntegerDataEncoding"`
	ValidRange          xmlValidRange          `xml:"ValidRange"`
}

type xmlFloatParameterType struct {
	Name              string               `xml:"name,attr"`
	UnitSet           xmlUnitSet           `xml:"UnitSet"`
	FloatDataEncoding xmlFloatDataEncoding `xml:"FloatDataEncoding"`
	ValidRange        xmlValidRange        `xml:"ValidRange"`
}

type xmlStringParameterType struct {
	Name               string                `xml:"name,attr"`
	StringDataEncoding xmlStringDataEncoding `xml:"StringDataEncoding"`
}

type xmlBinaryParameterType struct {
	Name               string                `xml:"name,attr"`
	BinaryDataEncoding xmlBinaryDataEncoding `xml:"BinaryDataEncoding"`
}

type xmlEnumeratedParameterType struct {
	Name                string                 `xml:"name,attr"`
	IntegerDataEncoding xmlIntegerDataEncoding `xml:"IntegerDataEncoding"`
	EnumerationList     xmlEnumerationList     `xml:"EnumerationList"`
}

type xmlBooleanParameterType struct {
	Name                string                 `xml:"name,attr"`
	ZeroStringValue     string                 `xml:"zeroStringValue,attr"`
	OneStringValue      string                 `xml:"oneStringValue,attr"`
	IntegerDataEncoding xmlIntegerDataEncoding `xml:"IntegerDataEncoding"`
}

type xmlAbsoluteTimeParameterType struct {
	Name    string `xml:"name,attr"`
	Epoch   string `xml:"Encoding>ReferenceTime>Epoch"`
	Scale   string `xml:"Encoding>Encoding>scale,attr"`
	SizeInBits string `xml:"Encoding>Encoding>sizeInBits,attr"`
}

type xmlDimensionList struct {
	Dimensions []struct {
		StartingIndex struct {
			FixedValue string `xml:"FixedValue"`
		} `xml:"StartingIndex"`
		EndingIndex struct {
			FixedValue           string `xml:"FixedValue"`
			ParameterInstanceRef struct {
				ParameterRef string `xml:"parameterRef,attr"`
			} `xml:"DynamicValue>ParameterInstanceRef"`
		} `xml:"EndingIndex"`
	} `xml:"Dimension"`
}

type xmlArrayParameterType struct {
	Name             string           `xml:"name,attr"`
	ArrayTypeRef     string           `xml:"arrayTypeRef,attr"`
	DimensionList    xmlDimensionList `xml:"DimensionList"`
}

type xmlParameterTypeSet struct {
	IntegerParameterTypes     []xmlIntegerParameterType      `xml:"IntegerParameterType"`
	FloatParameterTypes       []xmlFloatParameterType        `xml:"FloatParameterType"`
	StringParameterTypes      []xmlStringParameterType       `xml:"StringParameterType"`
	BinaryParameterTypes      []xmlBinaryParameterType       `xml:"BinaryParameterType"`
	EnumeratedParameterTypes  []xmlEnumeratedParameterType   `xml:"EnumeratedParameterType"`
	BooleanParameterTypes     []xmlBooleanParameterType      `xml:"BooleanParameterType"`
	AbsoluteTimeParameterType []xmlAbsoluteTimeParameterType `xml:"AbsoluteTimeParameterType"`
	ArrayParameterTypes       []xmlArrayParameterType        `xml:"ArrayParameterType"`
}

type xmlArgumentTypeSet struct {
	IntegerArgumentTypes     []xmlIntegerParameterType      `xml:"IntegerArgumentType"`
	FloatArgumentTypes       []xmlFloatParameterType        `xml:"FloatArgumentType"`
	EnumeratedArgumentTypes  []xmlEnumeratedParameterType   `xml:"EnumeratedArgumentType"`
	BooleanArgumentTypes     []xmlBooleanParameterType      `xml:"BooleanArgumentType"`
	AbsoluteTimeArgumentType []xmlAbsoluteTimeParameterType `xml:"AbsoluteTimeArgumentType"`
	ArrayArgumentTypes       []xmlArrayParameterType        `xml:"ArrayArgumentType"`
}

type xmlParameter struct {
	Name             string `xml:"name,attr"`
	ParameterTypeRef string `xml:"parameterTypeRef,attr"`
}

type xmlParameterSet struct {
	Parameters []xmlParameter `xml:"Parameter"`
}

// --- containers --------------------------------------------------------------

type xmlComparison struct {
	ParameterRef string `xml:"parameterRef,attr"`
	Value        string `xml:"value,attr"`
	Comparison   string `xml:"comparisonOperator,attr"`
	UseCalValue  string `xml:"useCalibratedValue,attr"`
}

type xmlComparisonList struct {
	Comparisons []xmlComparison `xml:"Comparison"`
}

type xmlRestrictionCriteria struct {
	Comparison     *xmlComparison     `xml:"Comparison"`
	ComparisonList *xmlComparisonList `xml:"ComparisonList"`
}

type xmlBaseContainer struct {
	ContainerRef        string                 `xml:"containerRef,attr"`
	RestrictionCriteria xmlRestrictionCriteria `xml:"RestrictionCriteria"`
}

type xmlLocationInContainerInBits struct {
	ReferenceLocation string `xml:"referenceLocation,attr"`
	FixedValue        string `xml:"FixedValue"`
}

type xmlParameterRefEntry struct {
	ParameterRef             string                       `xml:"parameterRef,attr"`
	LocationInContainerInBits xmlLocationInContainerInBits `xml:"LocationInContainerInBits"`
}

type xmlIncludeCondition struct {
	Comparison     *xmlComparison     `xml:"Comparison"`
	ComparisonList *xmlComparisonList `xml:"ComparisonList"`
}

type xmlContainerRefEntry struct {
	ContainerRef    string              `xml:"containerRef,attr"`
	IncludeCondition xmlIncludeCondition `xml:"IncludeCondition"`
}

type xmlArgumentRefEntry struct {
	ArgumentRef               string                       `xml:"argumentRef,attr"`
	LocationInContainerInBits xmlLocationInContainerInBits `xml:"LocationInContainerInBits"`
}

type xmlFixedValueEntry struct {
	Name        string `xml:"name,attr"`
	BinaryValue string `xml:"binaryValue,attr"`
	SizeInBits  string `xml:"sizeInBits,attr"`
}

// entryListItem is one child of an EntryList, tagged by which of the four
// XTCE entry element kinds it came from.
type entryListItem struct {
	kind      string
	parameter xmlParameterRefEntry
	container xmlContainerRefEntry
	argument  xmlArgumentRefEntry
	fixed     xmlFixedValueEntry
}

// xmlEntryList holds EntryList's children in document order. XTCE freely
// interleaves ParameterRefEntry/ContainerRefEntry/ArgumentRefEntry/
// FixedValueEntry, and the decoded bit layout depends on that order, so it
// cannot be captured as four independently-ordered slices (encoding/xml
// would reassemble them grouped by tag name instead of as written). A
// custom UnmarshalXML token-walks the element to preserve interleaving.
type xmlEntryList struct {
	Items []entryListItem
}

func (l *xmlEntryList) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var item entryListItem
			switch t.Name.Local {
			case "ParameterRefEntry":
				if err := d.DecodeElement(&item.parameter, &t); err != nil {
					return err
				}
			case "ContainerRefEntry":
				if err := d.DecodeElement(&item.container, &t); err != nil {
					return err
				}
			case "ArgumentRefEntry":
				if err := d.DecodeElement(&item.argument, &t); err != nil {
					return err
				}
			case "FixedValueEntry":
				if err := d.DecodeElement(&item.fixed, &t); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			item.kind = t.Name.Local
			l.Items = append(l.Items, item)
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

type xmlSequenceContainer struct {
	Name          string           `xml:"name,attr"`
	BaseContainer xmlBaseContainer `xml:"BaseContainer"`
	EntryList     xmlEntryList     `xml:"EntryList"`
}

type xmlContainerSet struct {
	SequenceContainers []xmlSequenceContainer `xml:"SequenceContainer"`
}

// --- commands ------------------------------------------------------------

type xmlArgument struct {
	Name            string `xml:"name,attr"`
	ArgumentTypeRef string `xml:"argumentTypeRef,attr"`
}

type xmlArgumentList struct {
	Arguments []xmlArgument `xml:"Argument"`
}

type xmlArgumentAssignment struct {
	ArgumentName string `xml:"argumentName,attr"`
	ArgumentValue string `xml:"argumentValue,attr"`
}

type xmlArgumentAssignmentList struct {
	Assignments []xmlArgumentAssignment `xml:"ArgumentAssignment"`
}

type xmlBaseMetaCommand struct {
	MetaCommandRef          string                    `xml:"metaCommandRef,attr"`
	ArgumentAssignmentList  xmlArgumentAssignmentList `xml:"ArgumentAssignmentList"`
}

type xmlMetaCommand struct {
	Name             string             `xml:"name,attr"`
	BaseMetaCommand  xmlBaseMetaCommand `xml:"BaseMetaCommand"`
	ArgumentList     xmlArgumentList    `xml:"ArgumentList"`
	CommandContainer xmlEntryListHolder `xml:"CommandContainer"`
}

type xmlEntryListHolder struct {
	EntryList xmlEntryList `xml:"EntryList"`
}

type xmlMetaCommandSet struct {
	MetaCommands []xmlMetaCommand `xml:"MetaCommand"`
}

// --- conversion --------------------------------------------------------------

func qualify(parent, name string) string {
	if parent == "" {
		return "/" + name
	}
	return parent + "/" + name
}

func convertSpaceSystem(xs *xmlSpaceSystem, parentQName string) *model.SpaceSystem {
	qname := qualify(parentQName, xs.Name)
	ss := &model.SpaceSystem{
		QualifiedName:  qname,
		Header:         xs.ShortDescription,
		ParameterTypes: make(map[string]*model.ParameterType),
		ArgumentTypes:  make(map[string]*model.ArgumentType),
		Parameters:     make(map[string]*model.Parameter),
		Arguments:      make(map[string]*model.Argument),
		Containers:     make(map[string]*model.Container),
		MetaCommands:   make(map[string]*model.MetaCommand),
	}

	convertParameterTypes(xs.TelemetryMetaData.ParameterTypeSet, qname, ss.ParameterTypes)
	convertArgumentTypes(xs.CommandMetaData.ArgumentTypeSet, qname, ss.ArgumentTypes)

	for _, p := range xs.TelemetryMetaData.ParameterSet.Parameters {
		pqn := qualify(qname, p.Name)
		ss.Parameters[pqn] = &model.Parameter{
			QualifiedName: pqn,
			TypeRef:       qualify(qname, p.ParameterTypeRef),
		}
	}

	for _, c := range xs.TelemetryMetaData.ContainerSet.SequenceContainers {
		container := convertContainer(c, qname)
		ss.Containers[container.Name] = container
	}

	for _, mc := range xs.CommandMetaData.MetaCommandSet.MetaCommands {
		converted := convertMetaCommand(mc, qname, ss.Arguments)
		ss.MetaCommands[converted.QualifiedName] = converted
	}

	for _, child := range xs.Children {
		ss.Children = append(ss.Children, convertSpaceSystem(&child, qname))
	}

	return ss
}

func convertParameterTypes(set xmlParameterTypeSet, qname string, out map[string]*model.ParameterType) {
	for _, t := range set.IntegerParameterTypes {
		pt := &model.ParameterType{
			NamedType: model.NamedType{
				Name:       qualify(qname, t.Name),
				Units:      unitTexts(t.UnitSet),
				ValidRange: convertValidRange(t.ValidRange),
				Encoding:   convertIntegerEncoding(t.IntegerDataEncoding, t.Signed != "false"),
				Calibrator: convertCalibrator(t.IntegerDataEncoding.DefaultCalibrator),
			},
			Kind: model.PTInteger,
		}
		out[pt.Name] = pt
	}
	for _, t := range set.FloatParameterTypes {
		pt := &model.ParameterType{
			NamedType: model.NamedType{
				Name:       qualify(qname, t.Name),
				Units:      unitTexts(t.UnitSet),
				ValidRange: convertValidRange(t.ValidRange),
				Encoding:   convertFloatEncoding(t.FloatDataEncoding),
				Calibrator: convertCalibrator(t.FloatDataEncoding.DefaultCalibrator),
			},
			Kind: model.PTFloat,
		}
		out[pt.Name] = pt
	}
	for _, t := range set.StringParameterTypes {
		pt := &model.ParameterType{
			NamedType: model.NamedType{
				Name:     qualify(qname, t.Name),
				Encoding: convertStringEncoding(t.StringDataEncoding),
			},
			Kind: model.PTString,
		}
		out[pt.Name] = pt
	}
	for _, t := range set.BinaryParameterTypes {
		pt := &model.ParameterType{
			NamedType: model.NamedType{
				Name:     qualify(qname, t.Name),
				Encoding: convertBinaryEncoding(t.BinaryDataEncoding),
			},
			Kind: model.PTBinary,
		}
		out[pt.Name] = pt
	}
	for _, t := range set.EnumeratedParameterTypes {
		pt := &model.ParameterType{
			NamedType: model.NamedType{
				Name:     qualify(qname, t.Name),
				Encoding: convertIntegerEncoding(t.IntegerDataEncoding, false),
			},
			Kind:       model.PTEnumerated,
			EnumLabels: convertEnumList(t.EnumerationList),
		}
		out[pt.Name] = pt
	}
	for _, t := range set.BooleanParameterTypes {
		pt := &model.ParameterType{
			NamedType: model.NamedType{
				Name:     qualify(qname, t.Name),
				Encoding: convertIntegerEncoding(t.IntegerDataEncoding, false),
			},
			Kind:       model.PTBoolean,
			ZeroString: t.ZeroStringValue,
			OneString:  t.OneStringValue,
		}
		out[pt.Name] = pt
	}
	for _, t := range set.AbsoluteTimeParameterType {
		pt := &model.ParameterType{
			NamedType: model.NamedType{
				Name: qualify(qname, t.Name),
			},
			Kind:               model.PTAbsoluteTime,
			EpochOffsetSeconds: parseEpoch(t.Epoch),
			Scale:              parseFloatOr(t.Scale, 1),
		}
		out[pt.Name] = pt
	}
	for _, t := range set.ArrayParameterTypes {
		pt := &model.ParameterType{
			NamedType:      model.NamedType{Name: qualify(qname, t.Name)},
			Kind:           model.PTArray,
			ElementTypeRef: qualify(qname, t.ArrayTypeRef),
			ArrayFixedLen:  arrayFixedLen(t.DimensionList),
			ArrayLenParamRef: arrayLenParamRef(t.DimensionList, qname),
		}
		out[pt.Name] = pt
	}
}

func convertArgumentTypes(set xmlArgumentTypeSet, qname string, out map[string]*model.ArgumentType) {
	for _, t := range set.IntegerArgumentTypes {
		at := &model.ArgumentType{
			NamedType: model.NamedType{
				Name:       qualify(qname, t.Name),
				ValidRange: convertValidRange(t.ValidRange),
				Encoding:   convertIntegerEncoding(t.IntegerDataEncoding, t.Signed != "false"),
				Calibrator: convertCalibrator(t.IntegerDataEncoding.DefaultCalibrator),
			},
			Kind: model.ATInteger,
		}
		out[at.Name] = at
	}
	for _, t := range set.FloatArgumentTypes {
		at := &model.ArgumentType{
			NamedType: model.NamedType{
				Name:       qualify(qname, t.Name),
				ValidRange: convertValidRange(t.ValidRange),
				Encoding:   convertFloatEncoding(t.FloatDataEncoding),
				Calibrator: convertCalibrator(t.FloatDataEncoding.DefaultCalibrator),
			},
			Kind: model.ATFloat,
		}
		out[at.Name] = at
	}
	for _, t := range set.EnumeratedArgumentTypes {
		at := &model.ArgumentType{
			NamedType: model.NamedType{
				Name:     qualify(qname, t.Name),
				Encoding: convertIntegerEncoding(t.IntegerDataEncoding, false),
			},
			Kind:       model.ATEnumerated,
			EnumLabels: convertEnumList(t.EnumerationList),
		}
		out[at.Name] = at
	}
	for _, t := range set.BooleanArgumentTypes {
		at := &model.ArgumentType{
			NamedType: model.NamedType{
				Name:     qualify(qname, t.Name),
				Encoding: convertIntegerEncoding(t.IntegerDataEncoding, false),
			},
			Kind:       model.ATBoolean,
			ZeroString: t.ZeroStringValue,
			OneString:  t.OneStringValue,
		}
		out[at.Name] = at
	}
	for _, t := range set.AbsoluteTimeArgumentType {
		at := &model.ArgumentType{
			NamedType:          model.NamedType{Name: qualify(qname, t.Name)},
			Kind:               model.ATAbsoluteTime,
			EpochOffsetSeconds: parseEpoch(t.Epoch),
			Scale:              parseFloatOr(t.Scale, 1),
		}
		out[at.Name] = at
	}
	for _, t := range set.ArrayArgumentTypes {
		at := &model.ArgumentType{
			NamedType:        model.NamedType{Name: qualify(qname, t.Name)},
			Kind:             model.ATArray,
			ElementTypeRef:   qualify(qname, t.ArrayTypeRef),
			ArrayFixedLen:    arrayFixedLen(t.DimensionList),
			ArrayLenParamRef: arrayLenParamRef(t.DimensionList, qname),
		}
		out[at.Name] = at
	}
}

func convertContainer(c xmlSequenceContainer, qname string) *model.Container {
	container := &model.Container{
		Name: qualify(qname, c.Name),
	}
	if c.BaseContainer.ContainerRef != "" {
		container.BaseContainerRef = qualify(qname, c.BaseContainer.ContainerRef)
		container.Restriction = convertComparisonList(c.BaseContainer.RestrictionCriteria.Comparison, c.BaseContainer.RestrictionCriteria.ComparisonList, qname)
	}
	container.Entries = convertEntries(c.EntryList, qname)
	return container
}

func convertEntries(list xmlEntryList, qname string) []model.Entry {
	var entries []model.Entry
	for _, item := range list.Items {
		switch item.kind {
		case "ParameterRefEntry":
			e := item.parameter
			entry := model.Entry{
				Kind:         model.EntryParameterRef,
				ParameterRef: qualify(qname, e.ParameterRef),
			}
			if loc := e.LocationInContainerInBits; loc.FixedValue != "" {
				entry.HasLocation = true
				entry.OffsetBits = parseInt64Or(loc.FixedValue, 0)
				if strings.EqualFold(loc.ReferenceLocation, "previousEntry") {
					entry.LocationReference = model.LocationPreviousEntry
				} else {
					entry.LocationReference = model.LocationStartOfContainer
				}
			}
			entries = append(entries, entry)
		case "ContainerRefEntry":
			e := item.container
			entry := model.Entry{
				Kind:         model.EntryContainerRef,
				ContainerRef: qualify(qname, e.ContainerRef),
			}
			entry.IncludeCondition = convertComparisonList(e.IncludeCondition.Comparison, e.IncludeCondition.ComparisonList, qname)
			entries = append(entries, entry)
		case "ArgumentRefEntry":
			e := item.argument
			entry := model.Entry{
				Kind:        model.EntryArgumentRef,
				ArgumentRef: e.ArgumentRef, // resolved to "<MetaCommand>/<Arg>" by the caller, which knows the owning command
			}
			if loc := e.LocationInContainerInBits; loc.FixedValue != "" {
				entry.HasLocation = true
				entry.OffsetBits = parseInt64Or(loc.FixedValue, 0)
				if strings.EqualFold(loc.ReferenceLocation, "previousEntry") {
					entry.LocationReference = model.LocationPreviousEntry
				} else {
					entry.LocationReference = model.LocationStartOfContainer
				}
			}
			entries = append(entries, entry)
		case "FixedValueEntry":
			e := item.fixed
			size := int(parseInt64Or(e.SizeInBits, 8))
			entries = append(entries, model.Entry{
				Kind:       model.EntryFixedValue,
				SizeInBits: size,
				HexValue:   parseBinaryValue(e.BinaryValue, size),
			})
		}
	}
	return entries
}

func convertMetaCommand(mc xmlMetaCommand, qname string, arguments map[string]*model.Argument) *model.MetaCommand {
	mqn := qualify(qname, mc.Name)
	converted := &model.MetaCommand{QualifiedName: mqn}
	if mc.BaseMetaCommand.MetaCommandRef != "" {
		converted.BaseCommandRef = qualify(qname, mc.BaseMetaCommand.MetaCommandRef)
		for _, a := range mc.BaseMetaCommand.ArgumentAssignmentList.Assignments {
			converted.ArgumentAssignments = append(converted.ArgumentAssignments, model.Comparison{
				ParameterRef: converted.BaseCommandRef + "/" + a.ArgumentName,
				Op:           model.OpEQ,
				Value:        a.ArgumentValue,
			})
		}
	}
	for _, a := range mc.ArgumentList.Arguments {
		aqn := mqn + "/" + a.Name
		arg := &model.Argument{Name: a.Name, TypeRef: qualify(qname, a.ArgumentTypeRef)}
		arguments[aqn] = arg
		converted.Arguments = append(converted.Arguments, *arg)
	}

	entries := convertEntries(mc.CommandContainer.EntryList, qname)
	if len(entries) == 0 {
		// No explicit CommandContainer: the entry list defaults to one
		// ArgumentRefEntry per declared argument, in declaration order.
		for _, a := range converted.Arguments {
			entries = append(entries, model.Entry{Kind: model.EntryArgumentRef, ArgumentRef: mqn + "/" + a.Name})
		}
	} else {
		for i, e := range entries {
			if e.Kind == model.EntryArgumentRef {
				entries[i].ArgumentRef = mqn + "/" + e.ArgumentRef
			}
		}
	}
	converted.Entries = entries
	return converted
}

func convertComparisonList(single *xmlComparison, list *xmlComparisonList, qname string) model.ComparisonList {
	var out model.ComparisonList
	if single != nil {
		out = append(out, convertComparison(*single, qname))
	}
	if list != nil {
		for _, c := range list.Comparisons {
			out = append(out, convertComparison(c, qname))
		}
	}
	return out
}

func convertComparison(c xmlComparison, qname string) model.Comparison {
	return model.Comparison{
		ParameterRef:       qualify(qname, c.ParameterRef),
		Op:                 parseCompareOp(c.Comparison),
		Value:              c.Value,
		UseCalibratedValue: c.UseCalValue != "false",
	}
}

func parseCompareOp(s string) model.CompareOp {
	switch s {
	case "!=":
		return model.OpNE
	case "<":
		return model.OpLT
	case "<=":
		return model.OpLE
	case ">":
		return model.OpGT
	case ">=":
		return model.OpGE
	default:
		return model.OpEQ
	}
}

func convertIntegerEncoding(e xmlIntegerDataEncoding, signed bool) model.DataEncoding {
	size := int(parseInt64Or(e.SizeInBits, 32))
	sign := model.Unsigned
	if signed || strings.EqualFold(e.Encoding, "twosComplement") || strings.EqualFold(e.Encoding, "signMagnitude") {
		sign = model.TwosComplement
	}
	return model.DataEncoding{Kind: model.EncodingInteger, SizeInBits: size, Signed: sign}
}

func convertFloatEncoding(e xmlFloatDataEncoding) model.DataEncoding {
	size := int(parseInt64Or(e.SizeInBits, 32))
	return model.DataEncoding{Kind: model.EncodingFloat, SizeInBits: size}
}

func convertStringEncoding(e xmlStringDataEncoding) model.DataEncoding {
	enc := model.DataEncoding{Kind: model.EncodingString, CharSet: model.CharSetUTF8}
	switch {
	case e.SizeInBits.Fixed.FixedValue != "":
		enc.StringSizeKind = model.StringSizeFixed
		enc.StringSizeInBits = int(parseInt64Or(e.SizeInBits.Fixed.FixedValue, 0))
	case e.SizeInBits.Dynamic.DynamicValue.ParameterInstanceRef.ParameterRef != "":
		enc.StringSizeKind = model.StringSizeDynamic
		enc.SizeParamRef = e.SizeInBits.Dynamic.DynamicValue.ParameterInstanceRef.ParameterRef
		if strings.EqualFold(e.SizeIsOfChars, "characters") {
			enc.SizeIsOf = model.SizeOfStringLengthInCharacters
		} else {
			enc.SizeIsOf = model.SizeOfStringData
		}
	case e.Termination != "":
		enc.StringSizeKind = model.StringSizeTerminated
		enc.Terminator = parseHexByte(e.Termination)
	default:
		enc.StringSizeKind = model.StringSizeTerminated
		enc.Terminator = 0
	}
	return enc
}

func convertBinaryEncoding(e xmlBinaryDataEncoding) model.DataEncoding {
	enc := model.DataEncoding{Kind: model.EncodingBinary}
	if e.SizeInBits.Fixed.FixedValue != "" {
		enc.BinarySizeKind = model.BinarySizeFixed
		enc.BinarySizeInBits = int(parseInt64Or(e.SizeInBits.Fixed.FixedValue, 0))
	} else if e.SizeInBits.Dynamic.DynamicValue.ParameterInstanceRef.ParameterRef != "" {
		enc.BinarySizeKind = model.BinarySizeDynamic
		enc.SizeParamRef = e.SizeInBits.Dynamic.DynamicValue.ParameterInstanceRef.ParameterRef
	}
	return enc
}

func convertCalibrator(c *xmlDefaultCalibrator) *model.Calibrator {
	if c == nil || c.Polynomial == nil {
		return nil
	}
	cal := &model.Calibrator{Kind: model.CalibratorPolynomial}
	for _, t := range c.Polynomial.Terms {
		cal.Terms = append(cal.Terms, model.PolyTerm{
			Coefficient: parseFloatOr(t.Coefficient, 0),
			Exponent:    int(parseInt64Or(t.Exponent, 0)),
		})
	}
	return cal
}

func convertValidRange(v xmlValidRange) *model.ValidRange {
	if v.MinInclusive == "" && v.MaxInclusive == "" {
		return nil
	}
	rng := &model.ValidRange{}
	if v.MinInclusive != "" {
		rng.HasMin = true
		rng.Min = parseFloatOr(v.MinInclusive, 0)
	}
	if v.MaxInclusive != "" {
		rng.HasMax = true
		rng.Max = parseFloatOr(v.MaxInclusive, 0)
	}
	return rng
}

func convertEnumList(l xmlEnumerationList) []model.EnumLabel {
	var out []model.EnumLabel
	for _, e := range l.Enumerations {
		out = append(out, model.EnumLabel{Value: parseInt64Or(e.Value, 0), Label: e.Label})
	}
	return out
}

func unitTexts(set xmlUnitSet) []string {
	var out []string
	for _, u := range set.Units {
		if strings.TrimSpace(u.Text) != "" {
			out = append(out, strings.TrimSpace(u.Text))
		}
	}
	return out
}

func arrayFixedLen(l xmlDimensionList) int {
	if len(l.Dimensions) == 0 {
		return 0
	}
	d := l.Dimensions[0]
	if d.EndingIndex.FixedValue == "" {
		return 0
	}
	start := parseInt64Or(d.StartingIndex.FixedValue, 0)
	end := parseInt64Or(d.EndingIndex.FixedValue, 0)
	return int(end - start + 1)
}

func arrayLenParamRef(l xmlDimensionList, qname string) string {
	if len(l.Dimensions) == 0 {
		return ""
	}
	ref := l.Dimensions[0].EndingIndex.ParameterInstanceRef.ParameterRef
	if ref == "" {
		return ""
	}
	return qualify(qname, ref)
}

func parseEpoch(s string) float64 {
	// Named epochs (TAI, J2000, GPS, UNIX) all collapse to the Unix epoch
	// for this codec's purposes (spec's AbsoluteTime is seconds-since-epoch
	// with no epoch-conversion table); a literal ISO-8601 epoch attribute,
	// if present, is not parsed further.
	return 0
}

func parseFloatOr(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Warnf("xtceloader: invalid float %q, using default %v", s, def)
		return def
	}
	return v
}

func parseInt64Or(s string, def int64) int64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Warnf("xtceloader: invalid integer %q, using default %d", s, def)
		return def
	}
	return v
}

func parseHexByte(s string) byte {
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return byte(v)
}

// parseBinaryValue parses an XTCE binaryValue attribute (hex string, with
// or without a 0x prefix) into at least (sizeInBits+7)/8 bytes: a shorter
// value is left-padded with zero bytes, a longer one is kept as written, and
// pairs that are not valid hex are skipped.
func parseBinaryValue(s string, sizeInBits int) []byte {
	s = strings.TrimPrefix(s, "0x")
	want := (sizeInBits + 7) / 8
	if len(s)%2 != 0 {
		s = "0" + s
	}
	out := make([]byte, 0, want)
	for i := 0; i+1 < len(s); i += 2 {
		v, err := strconv.ParseUint(s[i:i+2], 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	for len(out) < want {
		out = append([]byte{0}, out...)
	}
	return out
}
