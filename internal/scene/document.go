package scene

import (
	"image/color"

	"github.com/kyiku/hiddenword-back/internal/geometry"
	"github.com/kyiku/hiddenword-back/internal/palette"
	"github.com/kyiku/hiddenword-back/internal/placement"
)

// Document is the JSON form of a scene.
type Document struct {
	ID         string          `json:"id"`
	Word       string          `json:"word"`
	Seed       int64           `json:"seed"`
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	Background string          `json:"background"`
	Status     string          `json:"status"`
	Requested  int             `json:"requested"`
	Placed     int             `json:"placed"`
	Attempts   int             `json:"attempts"`
	Shapes     []ShapeDocument `json:"shapes"`
	Letters    []LetterDoc     `json:"letters,omitempty"`
}

// ShapeDocument is the JSON form of one accepted shape.
type ShapeDocument struct {
	Kind     string       `json:"kind"`
	Size     float64      `json:"size"`
	X        float64      `json:"x,omitempty"`
	Y        float64      `json:"y,omitempty"`
	Diameter float64      `json:"diameter,omitempty"`
	Width    float64      `json:"width,omitempty"`
	Height   float64      `json:"height,omitempty"`
	Points   [][2]float64 `json:"points,omitempty"`
	Color    string       `json:"color,omitempty"`
	Inside   bool         `json:"inside,omitempty"`
}

// LetterDoc is the JSON form of one letter polygon.
type LetterDoc struct {
	Rune   string       `json:"rune"`
	Points [][2]float64 `json:"points"`
}

// DocumentOptions selects optional parts of a Document.
type DocumentOptions struct {
	// Letters includes the letter polygons.
	Letters bool
}

// Document converts the scene to its JSON form.
func (s *Scene) Document(opts DocumentOptions) Document {
	doc := Document{
		ID:         s.ID.String(),
		Word:       s.Settings.Word,
		Seed:       s.Seed,
		Width:      s.Settings.Canvas.Width,
		Height:     s.Settings.Canvas.Height,
		Background: palette.Hex(s.Settings.Background),
		Status:     string(s.Result.Status),
		Requested:  s.Result.Requested,
		Placed:     s.Result.Placed,
		Attempts:   s.Result.Attempts,
		Shapes:     make([]ShapeDocument, len(s.Shapes)),
	}
	for i, p := range s.Shapes {
		doc.Shapes[i] = NewShapeDocument(p)
	}
	if opts.Letters && s.Region != nil {
		for _, l := range s.Region.Letters() {
			doc.Letters = append(doc.Letters, LetterDoc{Rune: string(l.Rune), Points: points(l.Polygon)})
		}
	}
	return doc
}

// NewShapeDocument converts one accepted shape.
func NewShapeDocument(p placement.Placed) ShapeDocument {
	d := ShapeDocument{
		Kind:   p.Shape.Kind().String(),
		Size:   p.Size(),
		Inside: p.Inside,
	}
	if p.Color != nil {
		d.Color = palette.Hex(color.RGBAModel.Convert(p.Color).(color.RGBA))
	}

	switch s := p.Shape.(type) {
	case geometry.Circle:
		d.X, d.Y, d.Diameter = s.Center.X, s.Center.Y, s.Diameter
	case geometry.Rectangle:
		d.X, d.Y, d.Width, d.Height = s.Min.X, s.Min.Y, s.Width, s.Height
	case geometry.Triangle:
		d.Points = points(s.Polygon())
	}
	return d
}

func points(p geometry.Polygon) [][2]float64 {
	out := make([][2]float64, len(p))
	for i, pt := range p {
		out[i] = [2]float64{pt.X, pt.Y}
	}
	return out
}
