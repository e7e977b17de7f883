package lighting

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts longitude (around Y) and latitude (elevation above
// the horizon) in degrees to a unit vector pointing towards the sun.
func SunDirection(longitude, latitude float32) mgl32.Vec3 {
	sinLon, cosLon := math32.Sincos(mgl32.DegToRad(longitude))
	sinLat, cosLat := math32.Sincos(mgl32.DegToRad(latitude))
	return mgl32.Vec3{cosLat * sinLon, sinLat, cosLat * cosLon}
}

// Sun places a directional light at distance from focal along the sun
// direction.
func Sun(longitude, latitude, distance float32, focal, strength mgl32.Vec3) Light {
	l := DefaultDirectional()
	l.FocalPoint = focal
	l.Position = focal.Add(SunDirection(longitude, latitude).Mul(distance))
	l.Strength = strength
	return l
}
