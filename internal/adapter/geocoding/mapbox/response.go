package mapbox

import "github.com/Abdurahmanit/wanderlust/internal/listing/domain"

// apiResponse is the subset of the Places API FeatureCollection we read.
type apiResponse struct {
	Type     string       `json:"type"`
	Features []apiFeature `json:"features"`
}

type apiFeature struct {
	ID        string      `json:"id"`
	PlaceName string      `json:"place_name"`
	Geometry  apiGeometry `json:"geometry"`
}

type apiGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// mapFeatures converts API features to domain features. Features without a
// [lon, lat] pair are dropped.
func mapFeatures(in []apiFeature) []domain.Feature {
	out := make([]domain.Feature, 0, len(in))
	for _, f := range in {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		geomType := f.Geometry.Type
		if geomType == "" {
			geomType = domain.PointType
		}
		out = append(out, domain.Feature{
			PlaceName: f.PlaceName,
			Geometry: domain.Point{
				Type:        geomType,
				Coordinates: [2]float64{f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]},
			},
		})
	}
	return out
}
