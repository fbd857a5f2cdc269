package codegen

import "ogma/internal/core"

// ConverterSuffix is appended to an enumeration name to form its jOOQ
// converter class name.
const ConverterSuffix = "TypeConverter"

// EnumValue is one enumeration constant with its ordinal code. Last marks the
// final value so templates can close the constant list.
type EnumValue struct {
	Name string
	Num  int
	Last bool
}

// EnumData holds everything the enum templates need to render one
// enumeration: class and file names, target packages, and the ordered value
// list.
type EnumData struct {
	ClassName        string
	Package          string
	ConverterPackage string
	Values           []EnumValue

	Version   string
	Timestamp string
	ModelFile string
}

// NewEnumData builds template data from a model enumeration. Ordinal codes
// follow declaration order starting at zero.
func NewEnumData(e *core.Enum, enumPackage, converterPackage string) *EnumData {
	d := &EnumData{
		ClassName:        e.Name,
		Package:          enumPackage,
		ConverterPackage: converterPackage,
	}
	for i, v := range e.Values {
		d.Values = append(d.Values, EnumValue{Name: v, Num: i, Last: i == len(e.Values)-1})
	}
	return d
}

// FileName returns the Java source file name of the enumeration.
func (d *EnumData) FileName() string {
	return d.ClassName + ".java"
}

// ConverterClassName returns the jOOQ converter class name.
func (d *EnumData) ConverterClassName() string {
	return d.ClassName + ConverterSuffix
}

// ConverterFileName returns the Java source file name of the converter.
func (d *EnumData) ConverterFileName() string {
	return d.ConverterClassName() + ".java"
}

// FQN returns the fully qualified name of the enumeration class.
func (d *EnumData) FQN() string {
	return d.Package + "." + d.ClassName
}

// ConverterFQN returns the fully qualified name of the converter class.
func (d *EnumData) ConverterFQN() string {
	return d.ConverterPackage + "." + d.ConverterClassName()
}
