// Package geo computes geodesic distances on the WGS-84 ellipsoid.
package geo

import "math"

// WGS-84 ellipsoid.
const (
	semiMajorAxis = 6378137.0
	flattening    = 1 / 298.257223563
	semiMinorAxis = semiMajorAxis * (1 - flattening)

	meanRadius = 6371008.8

	maxIterations = 200
	tolerance     = 1e-12
)

// Point is a geographic position in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// DistanceFunc returns the distance between two points in metres.
type DistanceFunc func(a, b Point) float64

// Distance returns the ellipsoidal distance in metres between a and b using
// Vincenty's inverse formula. Nearly antipodal points, where the iteration
// does not converge, fall back to the great-circle distance.
func Distance(a, b Point) float64 {
	if a == b {
		return 0
	}

	L := radians(b.Lon - a.Lon)
	sinU1, cosU1 := math.Sincos(math.Atan((1 - flattening) * math.Tan(radians(a.Lat))))
	sinU2, cosU2 := math.Sincos(math.Atan((1 - flattening) * math.Tan(radians(b.Lat))))

	lambda := L
	for i := 0; i < maxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		x := cosU2 * sinLambda
		y := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma := math.Sqrt(x*x + y*y)
		if sinSigma == 0 {
			return 0
		}
		cosSigma := sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma := math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha := 1 - sinAlpha*sinAlpha

		// Equatorial lines have cosSqAlpha == 0.
		cos2SigmaM := 0.0
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}

		C := flattening / 16 * cosSqAlpha * (4 + flattening*(4-3*cosSqAlpha))
		prev := lambda
		lambda = L + (1-C)*flattening*sinAlpha*
			(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if math.Abs(lambda-prev) < tolerance {
			uSq := cosSqAlpha * (semiMajorAxis*semiMajorAxis - semiMinorAxis*semiMinorAxis) /
				(semiMinorAxis * semiMinorAxis)
			A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
			B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
			deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
				B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
			return semiMinorAxis * A * (sigma - deltaSigma)
		}
	}

	return GreatCircle(a, b)
}

// GreatCircle returns the haversine distance in metres on a sphere with the
// mean Earth radius.
func GreatCircle(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * meanRadius * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
