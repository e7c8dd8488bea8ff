package resource

// Record mirrors one item of the remote collection.
type Record struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId,omitempty"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Draft is a partial record sent on create and update. Nil fields are left
// out of the request body so the server keeps its current value.
type Draft struct {
	UserID int64   `json:"userId,omitempty"`
	Title  *string `json:"title,omitempty"`
	Body   *string `json:"body,omitempty"`
}

// NewDraft builds a draft carrying both editable fields.
func NewDraft(title, body string) Draft {
	return Draft{Title: &title, Body: &body}
}

// DraftFrom converts a full record into a draft, dropping the id.
func DraftFrom(r Record) Draft {
	d := NewDraft(r.Title, r.Body)
	d.UserID = r.UserID
	return d
}

// ListPage is one page of the collection together with the server-reported
// item count across all pages.
type ListPage struct {
	Items      []Record
	TotalCount int
}
