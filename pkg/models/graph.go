package models

// Node is one distinct artist in a collaboration graph. The seed artist
// is always the first node; the rest follow in first-seen order.
type Node struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Comment string `json:"comment,omitempty"`
}

// TrackRef is the track shape carried on an edge.
type TrackRef struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// Edge connects the seed artist to one collaborator. Value counts the
// distinct qualifying tracks they share; Tracks lists them in discovery
// order.
type Edge struct {
	From   string     `json:"from"`
	To     string     `json:"to"`
	Value  int        `json:"value"`
	Tracks []TrackRef `json:"tracks"`
}

// Graph is the node/edge shape consumed by the visualization front end.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}
