package domain

// Resident is a member of the community.
type Resident struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Room string `json:"room"`
	Age  int    `json:"age,omitempty"`
}

// Profile holds the editable parts of a resident's profile page.
type Profile struct {
	Photo       string   `json:"photo,omitempty"`
	Interests   []string `json:"interests"`
	Medications []string `json:"medications"`
}
