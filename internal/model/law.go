package model

// Metadata holds the document header attributes of a law. Values are either
// a string or a list of strings in the source, so everything is kept loose.
type Metadata map[string]interface{}

// Title returns the document title when the header carries one.
func (m Metadata) Title() string {
	if m == nil {
		return ""
	}
	if v, ok := m["Tittel"].(string); ok {
		return v
	}
	return ""
}

// Law is one statute document. LawID is derived from the publisher filename
// (e.g. nl-20180615-038) and is unique; records are replaced wholesale on
// re-ingestion, never mutated.
type Law struct {
	ID        int64     `db:"id"`
	LawID     string    `db:"law_id"`
	Text      string    `db:"text"`
	Metadata  Metadata  `db:"-"`
	Embedding []float32 `db:"-"`
}

// Paragraph is a numbered sub-section of a law. LawID is a soft reference:
// no foreign key backs it and lookups must tolerate a missing law record.
type Paragraph struct {
	ID              int64     `db:"id"`
	ParagraphID     string    `db:"paragraph_id"`
	LawID           string    `db:"law_id"`
	ParagraphNumber string    `db:"paragraph_number"`
	Text            string    `db:"text"`
	Metadata        Metadata  `db:"-"`
	Embedding       []float32 `db:"-"`
}

// LawHit is one law returned from a nearest-neighbour search.
type LawHit struct {
	LawID    string   `json:"law_id"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// ParagraphHit is one paragraph returned from a nearest-neighbour search,
// carrying its raw cosine distance to the query.
type ParagraphHit struct {
	ParagraphID     string   `json:"paragraph_id"`
	ParagraphNumber string   `json:"paragraph_number"`
	Text            string   `json:"text"`
	Metadata        Metadata `json:"metadata,omitempty"`
	LawID           string   `json:"law_id"`
	Distance        float64  `json:"distance"`
}
