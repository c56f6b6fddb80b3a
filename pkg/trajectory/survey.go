// Package trajectory turns well trajectory data into path control points:
// directional surveys via the minimum curvature method, or plain x,y,z
// coordinates, both read from CSV.
//
// Coordinates are x = east, y = north, z = up, so true vertical depth
// grows towards negative z.
package trajectory

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrInvalidSurvey is returned for station lists the minimum curvature
// method cannot integrate.
var ErrInvalidSurvey = errors.New("trajectory: invalid survey")

// Station is one directional survey reading. Angles are in degrees;
// azimuth is measured clockwise from north.
type Station struct {
	MD  float64 // measured depth along the hole
	Inc float64 // inclination from vertical, 0..180
	Azi float64 // azimuth
}

// MinimumCurvature integrates stations into positions relative to origin,
// one point per station. The first station sits at origin.
func MinimumCurvature(stations []Station, origin v3.Vec) ([]v3.Vec, error) {
	if len(stations) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 stations, got %d", ErrInvalidSurvey, len(stations))
	}
	for i, s := range stations {
		if !finite(s.MD) || !finite(s.Inc) || !finite(s.Azi) {
			return nil, fmt.Errorf("%w: station %d is not finite", ErrInvalidSurvey, i)
		}
		if s.Inc < 0 || s.Inc > 180 {
			return nil, fmt.Errorf("%w: station %d inclination %.2f outside 0..180", ErrInvalidSurvey, i, s.Inc)
		}
		if i > 0 && s.MD <= stations[i-1].MD {
			return nil, fmt.Errorf("%w: station %d measured depth %.2f does not increase", ErrInvalidSurvey, i, s.MD)
		}
	}

	points := make([]v3.Vec, len(stations))
	points[0] = origin
	p := origin
	for i := 1; i < len(stations); i++ {
		p = p.Add(segment(stations[i-1], stations[i]))
		points[i] = p
	}
	return points, nil
}

// segment returns the displacement between two consecutive stations.
func segment(a, b Station) v3.Vec {
	i1, a1 := sdf.DtoR(a.Inc), sdf.DtoR(a.Azi)
	i2, a2 := sdf.DtoR(b.Inc), sdf.DtoR(b.Azi)
	dmd := b.MD - a.MD

	// Ratio factor; tends to 1 as the dogleg vanishes.
	rf := 1.0
	if dl := dogleg(a, b); dl > 1e-9 {
		rf = 2 / dl * math.Tan(dl/2)
	}

	half := dmd / 2 * rf
	north := half * (math.Sin(i1)*math.Cos(a1) + math.Sin(i2)*math.Cos(a2))
	east := half * (math.Sin(i1)*math.Sin(a1) + math.Sin(i2)*math.Sin(a2))
	tvd := half * (math.Cos(i1) + math.Cos(i2))
	return v3.Vec{X: east, Y: north, Z: -tvd}
}

// DoglegSeverity returns the curvature between two stations in degrees per
// 30 units of measured depth.
func DoglegSeverity(a, b Station) float64 {
	dmd := b.MD - a.MD
	if dmd <= 0 {
		return 0
	}
	return sdf.RtoD(dogleg(a, b)) * 30 / dmd
}

// dogleg returns the total angle change between two stations in radians.
func dogleg(a, b Station) float64 {
	i1, a1 := sdf.DtoR(a.Inc), sdf.DtoR(a.Azi)
	i2, a2 := sdf.DtoR(b.Inc), sdf.DtoR(b.Azi)
	c := math.Cos(i2-i1) - math.Sin(i1)*math.Sin(i2)*(1-math.Cos(a2-a1))
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// DropCoincident removes consecutive duplicate points, which real survey
// exports sometimes carry and which a spline cannot pass through.
func DropCoincident(points []v3.Vec) []v3.Vec {
	if len(points) == 0 {
		return nil
	}
	out := make([]v3.Vec, 0, len(points))
	out = append(out, points[0])
	for _, p := range points[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
