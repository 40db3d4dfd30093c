package source

// Options control the layout of generated source.
type Options struct {
	// WriteSemicolon terminates every statement with ';'.
	WriteSemicolon bool `yaml:"write_semicolon"`
	// WriteTrailingComma writes a comma after the last entry of a table
	// that spans multiple lines.
	WriteTrailingComma bool `yaml:"write_trailing_comma"`
	// SingleLineTableLength is the longest estimated length of a table that
	// is still written on a single line. Zero writes every non-empty table
	// over multiple lines.
	SingleLineTableLength int `yaml:"single_line_table_length"`
	// ExplicitNullAsNilValues writes nil pointers, maps, slices and
	// interfaces as 'nil'. If unset, their keys are omitted.
	ExplicitNullAsNilValues bool `yaml:"explicit_null_as_nil_values"`
	// Indent is written once per nesting level. Defaults to a tab.
	Indent string `yaml:"indent"`
	// NumberFormat is the strconv format verb ('g', 'f' or 'e') used for
	// numbers without an integer representation. Defaults to 'g'.
	NumberFormat string `yaml:"number_format"`
	// NumberPrecision is passed to strconv.FormatFloat. Zero or less
	// selects the shortest representation that reads back exactly.
	NumberPrecision int `yaml:"number_precision"`
}

// DefaultOptions returns the options used by the command line tool when no
// configuration is given.
func DefaultOptions() Options {
	return Options{
		WriteTrailingComma:    true,
		SingleLineTableLength: 80,
		Indent:                "\t",
		NumberFormat:          "g",
	}
}

func (o Options) indent() string {
	if o.Indent == "" {
		return "\t"
	}
	return o.Indent
}

func (o Options) numberFormat() byte {
	switch o.NumberFormat {
	case "f", "e", "E", "G":
		return o.NumberFormat[0]
	}
	return 'g'
}

func (o Options) numberPrecision() int {
	if o.NumberPrecision <= 0 {
		return -1
	}
	return o.NumberPrecision
}
