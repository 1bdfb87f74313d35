package model

// CaptionFunc localizes a property caption. fallback is the schema caption.
type CaptionFunc func(modelName, property, fallback string) string

// PropertyData is a read-only view of one property of one entity
type PropertyData struct {
	Name       string
	Caption    string
	Order      int
	Visible    bool
	CustomView bool
	Type       string
	Value      any
	IsKey      bool
}

// EntityData pairs an entity with its properties for rendering
type EntityData struct {
	Model      string
	Key        any
	Entity     any
	Properties []PropertyData
}

// Visible returns the visible properties in display order
func (e EntityData) Visible() []PropertyData {
	var out []PropertyData
	for _, p := range e.Properties {
		if p.Visible {
			out = append(out, p)
		}
	}
	return out
}

// Property returns one property by name
func (e EntityData) Property(name string) (PropertyData, bool) {
	for _, p := range e.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyData{}, false
}

// Project builds the EntityData of entity. A nil caption func uses schema captions.
func (d *Descriptor) Project(entity any, caption CaptionFunc) EntityData {
	key, _ := d.KeyOf(entity)
	data := EntityData{
		Model:  d.Name(),
		Key:    key,
		Entity: entity,
	}
	for _, meta := range d.model.Properties() {
		value, _ := d.model.Value(entity, meta.Name)
		text := meta.Caption
		if caption != nil {
			text = caption(d.Name(), meta.Name, meta.Caption)
		}
		data.Properties = append(data.Properties, PropertyData{
			Name:       meta.Name,
			Caption:    text,
			Order:      meta.Order,
			Visible:    meta.Visible,
			CustomView: meta.CustomView,
			Type:       meta.Type,
			Value:      value,
			IsKey:      meta.Name == d.key.Name,
		})
	}
	return data
}

// ProjectAll projects a list of entities
func (d *Descriptor) ProjectAll(entities []any, caption CaptionFunc) []EntityData {
	out := make([]EntityData, 0, len(entities))
	for _, e := range entities {
		out = append(out, d.Project(e, caption))
	}
	return out
}

// Columns returns the captions of the visible properties, in display order
func (d *Descriptor) Columns(caption CaptionFunc) []PropertyData {
	var cols []PropertyData
	for _, meta := range d.model.Properties() {
		if !meta.Visible {
			continue
		}
		text := meta.Caption
		if caption != nil {
			text = caption(d.Name(), meta.Name, meta.Caption)
		}
		cols = append(cols, PropertyData{
			Name:       meta.Name,
			Caption:    text,
			Order:      meta.Order,
			Visible:    true,
			CustomView: meta.CustomView,
			Type:       meta.Type,
			IsKey:      meta.Name == d.key.Name,
		})
	}
	return cols
}
