package tabular

// ReadOptions controls parsing. The zero value detects the delimiter, reads
// a header row and infers column types.
type ReadOptions struct {
	// Delimiter separates fields. Zero means detect from the input.
	Delimiter rune
	// NoHeader treats the first row as data and names columns Column1..N.
	NoHeader bool
	// NormalizeNames rewrites header names into identifier-safe form.
	NormalizeNames bool
	// SkipRows drops this many raw lines before anything else is read.
	SkipRows int
	// Limit stops after this many data rows. Zero reads everything.
	Limit int
	// Comment drops lines starting with this prefix.
	Comment string
	// MissingStrings are cell texts read as missing. Defaults to [""].
	MissingStrings []string
	// Decimal is the decimal separator for floats. Defaults to '.'.
	Decimal rune
	TrueStrings  []string
	FalseStrings []string
	// IgnoreRepeated collapses runs of the delimiter into one. Always on
	// when the delimiter is a space.
	IgnoreRepeated bool
	// NoTrim keeps whitespace around unquoted fields.
	NoTrim bool
	// Types forces the type of the named columns.
	Types map[string]Type
}

// WriteOptions controls serialization. The zero value writes tab-separated
// text with a header row.
type WriteOptions struct {
	Delimiter rune
	NoHeader  bool
	// Missing is written for missing cells.
	Missing  string
	Decimal  rune
	QuoteAll bool
}

var (
	defaultTrueStrings  = []string{"true", "True", "TRUE"}
	defaultFalseStrings = []string{"false", "False", "FALSE"}
)

func (o ReadOptions) withDefaults() ReadOptions {
	if len(o.MissingStrings) == 0 {
		o.MissingStrings = []string{""}
	}
	if o.Decimal == 0 {
		o.Decimal = '.'
	}
	if o.TrueStrings == nil {
		o.TrueStrings = defaultTrueStrings
	}
	if o.FalseStrings == nil {
		o.FalseStrings = defaultFalseStrings
	}
	if o.Delimiter == ' ' {
		o.IgnoreRepeated = true
	}
	return o
}

func (o WriteOptions) withDefaults() WriteOptions {
	if o.Delimiter == 0 {
		o.Delimiter = '\t'
	}
	if o.Decimal == 0 {
		o.Decimal = '.'
	}
	return o
}
