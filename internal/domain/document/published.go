package document

// Published is the terminal stage. It is the only stage that can satisfy a
// content read, and it offers no further transitions.
type Published struct {
	p *Payload
}

// Content returns the published body. Repeated calls return the same value;
// nothing can mutate a published document.
func (d *Published) Content() string {
	return d.own().body
}

// StageName implements Stage.
func (d *Published) StageName() string { return StagePublished }

// Meta implements Stage.
func (d *Published) Meta() map[string]string { return d.own().metaCopy() }

func (d *Published) own() *Payload {
	if d.p == nil {
		panic("document: Published used after it was released")
	}
	return d.p
}
