package models

// MinCells is the smallest number of cells a table row needs to become a Record.
const MinCells = 9

// Header is the fixed column header of the exported file.
var Header = []string{
	"Link",
	"Occurred",
	"City",
	"State",
	"Country",
	"Shape",
	"Summary",
	"Date Reported",
	"Media",
	"Explanation",
}

// Record is one exported report row. All fields are whitespace-normalized text.
type Record struct {
	Link         string `json:"link"`
	Occurred     string `json:"occurred"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	Shape        string `json:"shape"`
	Summary      string `json:"summary"`
	DateReported string `json:"date_reported"`
	Media        string `json:"media"`
	Explanation  string `json:"explanation"`
}

// RecordFromCells builds a Record positionally from the first len(Header) cells.
// Missing trailing cells leave their fields empty; extra cells are ignored.
// Callers are expected to have checked len(cells) >= MinCells.
func RecordFromCells(cells []string) Record {
	var padded [10]string
	copy(padded[:], cells)

	return Record{
		Link:         padded[0],
		Occurred:     padded[1],
		City:         padded[2],
		State:        padded[3],
		Country:      padded[4],
		Shape:        padded[5],
		Summary:      padded[6],
		DateReported: padded[7],
		Media:        padded[8],
		Explanation:  padded[9],
	}
}

// Fields returns the record values in header order.
func (r Record) Fields() []string {
	return []string{
		r.Link,
		r.Occurred,
		r.City,
		r.State,
		r.Country,
		r.Shape,
		r.Summary,
		r.DateReported,
		r.Media,
		r.Explanation,
	}
}
