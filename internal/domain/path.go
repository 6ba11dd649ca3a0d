package domain

// PathDetail describes one node of a discovered path.
type PathDetail struct {
	Title    string   `json:"title"`
	Extract  string   `json:"extract"`
	Entities []Entity `json:"entities"`
	Step     int      `json:"step"`
}

// Connection is the outcome of connecting two entities.
type Connection struct {
	Success bool         `json:"success"`
	Path    []string     `json:"path,omitempty"`
	Details []PathDetail `json:"details,omitempty"`
	Length  int          `json:"length"`
	Message string       `json:"message,omitempty"`
}
