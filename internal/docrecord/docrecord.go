package docrecord

// DocRecord is the structured documentation parsed from one comment block.
type DocRecord struct {
	Name     string   `json:"name"`           // Definition identifier
	Kind     string   `json:"kind,omitempty"` // Definition keyword, e.g. "module"
	Brief    string   `json:"brief"`
	Details  string   `json:"details"`
	Note     string   `json:"note"`
	Params   []Item   `json:"params"`
	Inputs   []Item   `json:"inputs"`
	Outputs  []Item   `json:"outputs"`
	Inouts   []Item   `json:"inouts"`
	Code     []string `json:"code"`     // @code ... @endcode bodies
	Examples []string `json:"examples"` // @example ... @endexample bodies
}

// Item is one named entry of a parameter or port list.
type Item struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// IsEmpty reports whether no tag produced any content.
func (r DocRecord) IsEmpty() bool {
	return r.Brief == "" && r.Details == "" && r.Note == "" &&
		len(r.Params) == 0 && len(r.Inputs) == 0 && len(r.Outputs) == 0 && len(r.Inouts) == 0 &&
		len(r.Code) == 0 && len(r.Examples) == 0
}

// ManifestEntry is the flattened, file-addressable summary of a DocRecord.
type ManifestEntry struct {
	Name       string `json:"module"`
	SourcePath string `json:"source"` // Relative to the source root, slash-separated
	Brief      string `json:"brief"`
	DocPath    string `json:"doc"` // Relative to the modules output dir, slash-separated
}
