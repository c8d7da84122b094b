package docx

import "encoding/xml"

// stylesXML represents the structure of word/styles.xml
type stylesXML struct {
	XMLName     xml.Name       `xml:"styles"`
	DocDefaults docDefaultsXML `xml:"docDefaults"`
	Styles      []styleDefXML  `xml:"style"`
}

// docDefaultsXML represents document default styles.
type docDefaultsXML struct {
	RPrDefault rPrDefaultXML `xml:"rPrDefault"`
	PPrDefault pPrDefaultXML `xml:"pPrDefault"`
}

// rPrDefaultXML represents default run properties.
type rPrDefaultXML struct {
	RPr runPropsXML `xml:"rPr"`
}

// pPrDefaultXML represents default paragraph properties.
type pPrDefaultXML struct {
	PPr paragraphPropsXML `xml:"pPr"`
}

// styleDefXML represents a style definition.
type styleDefXML struct {
	XMLName xml.Name          `xml:"style"`
	Type    string            `xml:"type,attr"` // paragraph, character, table, numbering
	StyleID string            `xml:"styleId,attr"`
	Default string            `xml:"default,attr"` // "1" if default style
	Name    styleNameXML      `xml:"name"`
	BasedOn basedOnXML        `xml:"basedOn"`
	PPr     paragraphPropsXML `xml:"pPr"`
	RPr     runPropsXML       `xml:"rPr"`
}

// isDefault reports whether the style is the default for its type.
func (s *styleDefXML) isDefault() bool {
	return s.Default == "1" || s.Default == "true" || s.Default == "on"
}

// styleNameXML represents a style name.
type styleNameXML struct {
	Val string `xml:"val,attr"`
}

// basedOnXML represents parent style reference.
type basedOnXML struct {
	Val string `xml:"val,attr"`
}

// numberingXML represents word/numbering.xml
type numberingXML struct {
	XMLName      xml.Name         `xml:"numbering"`
	AbstractNums []abstractNumXML `xml:"abstractNum"`
	Nums         []numXML         `xml:"num"`
}

// abstractNumXML represents an abstract numbering definition.
type abstractNumXML struct {
	AbstractNumID string   `xml:"abstractNumId,attr"`
	Levels        []lvlXML `xml:"lvl"`
}

// lvlXML represents a numbering level.
type lvlXML struct {
	ILvl    string     `xml:"ilvl,attr"`
	Start   startXML   `xml:"start"`
	NumFmt  numFmtXML  `xml:"numFmt"`
	LvlText lvlTextXML `xml:"lvlText"`
}

// startXML represents numbering start value.
type startXML struct {
	Val string `xml:"val,attr"`
}

// numFmtXML represents number format.
type numFmtXML struct {
	Val string `xml:"val,attr"` // decimal, bullet, lowerLetter, upperLetter, lowerRoman, upperRoman
}

// lvlTextXML represents level text pattern.
type lvlTextXML struct {
	Val string `xml:"val,attr"` // e.g., "%1.", "%1.%2"
}

// numXML represents a numbering instance.
type numXML struct {
	NumID         string         `xml:"numId,attr"`
	AbstractNumID abstractRefXML `xml:"abstractNumId"`
}

// abstractRefXML represents reference to abstract numbering.
type abstractRefXML struct {
	Val string `xml:"val,attr"`
}

// relationshipsXML represents _rels/*.rels files
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"` // External or empty (internal)
}

// external reports whether the target lives outside the container.
func (r relationshipXML) external() bool {
	return r.TargetMode == "External"
}

// corePropertiesXML represents docProps/core.xml (Dublin Core metadata)
type corePropertiesXML struct {
	XMLName        xml.Name `xml:"coreProperties"`
	Title          string   `xml:"title"`
	Subject        string   `xml:"subject"`
	Creator        string   `xml:"creator"`
	Keywords       string   `xml:"keywords"`
	Description    string   `xml:"description"`
	LastModifiedBy string   `xml:"lastModifiedBy"`
	Revision       string   `xml:"revision"`
	Created        string   `xml:"created"`
	Modified       string   `xml:"modified"`
}

// appPropertiesXML represents docProps/app.xml
type appPropertiesXML struct {
	XMLName     xml.Name `xml:"Properties"`
	Application string   `xml:"Application"`
	Company     string   `xml:"Company"`
}

// customPropertiesXML represents docProps/custom.xml
type customPropertiesXML struct {
	XMLName    xml.Name            `xml:"Properties"`
	Properties []customPropertyXML `xml:"property"`
}

// customPropertyXML holds one named property. The value is a single
// vt:* child (lpwstr, i4, bool, filetime, ...).
type customPropertyXML struct {
	Name   string `xml:"name,attr"`
	Values []struct {
		XMLName xml.Name
		Value   string `xml:",chardata"`
	} `xml:",any"`
}

func (p customPropertyXML) value() string {
	if len(p.Values) == 0 {
		return ""
	}
	return p.Values[0].Value
}
