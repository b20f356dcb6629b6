package translate

// Display formats a notebook cell output can declare.
const (
	FormatPlaintext = "plaintext"
	FormatMarkdown  = "markdown"
)

// Cell output tag bounds. These were soft, prompt-only hints historically;
// here the validator enforces them, so a model that returns four tags or a
// twenty-character tag produces a failed Outcome the host can re-prompt on.
const (
	maxCellTags   = 3
	maxCellTagLen = 15
)

// CellShape is the target shape for a notebook prompt cell: how to render
// the answer, an optional handful of short topic tags, and the answer text
// itself.
func CellShape() Shape {
	return Shape{Fields: []Field{
		{
			Name:     "format",
			Type:     FieldEnum,
			Required: true,
			Enum:     []string{FormatPlaintext, FormatMarkdown},
		},
		{
			Name:     "tags",
			Type:     FieldTextList,
			MaxItems: maxCellTags,
			MaxLen:   maxCellTagLen,
		},
		{
			Name:     "response",
			Type:     FieldText,
			Required: true,
		},
	}}
}

// CellOutput is the typed form of a validated cell translation, for hosts
// that prefer a struct over the raw map. Decode one with Bind[CellOutput].
type CellOutput struct {
	Format   string   `json:"format"`
	Tags     []string `json:"tags,omitempty"`
	Response string   `json:"response"`
}
