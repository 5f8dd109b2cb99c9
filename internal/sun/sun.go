// Package sun computes sunrise and sunset times using the general solar
// position algorithm (fractional year, equation of time, solar declination,
// hour angle). Accuracy is a few minutes, which is plenty for picking frame
// windows out of a ten-second-interval capture.
package sun

import (
	"math"
	"time"
)

// Event selects which sun event to compute.
type Event string

const (
	Sunrise Event = "sunrise"
	Sunset  Event = "sunset"
)

// StandardZenith is the solar zenith angle for official sunrise/sunset,
// including atmospheric refraction.
const StandardZenith = 90.833

// EventTime returns the local time of ev on date's calendar day at the given
// coordinates, expressed in loc. ok is false during polar day or polar night,
// when the event does not occur.
func EventTime(date time.Time, lat, lng float64, ev Event, loc *time.Location) (time.Time, bool) {
	dayOfYear := float64(date.YearDay())

	// Fractional year in radians.
	gamma := (2 * math.Pi / 365.0) * (dayOfYear - 1)

	// Equation of time (minutes) and solar declination (radians).
	eqtime := 229.18 * (0.000075 + 0.001868*math.Cos(gamma) - 0.032077*math.Sin(gamma) -
		0.014615*math.Cos(2*gamma) - 0.040849*math.Sin(2*gamma))
	decl := 0.006918 - 0.399912*math.Cos(gamma) + 0.070257*math.Sin(gamma) -
		0.006758*math.Cos(2*gamma) + 0.000907*math.Sin(2*gamma) -
		0.002697*math.Cos(3*gamma) + 0.00148*math.Sin(3*gamma)

	zenith := StandardZenith * math.Pi / 180
	radLat := lat * math.Pi / 180

	cosHA := math.Cos(zenith)/(math.Cos(radLat)*math.Cos(decl)) - math.Tan(radLat)*math.Tan(decl)
	if cosHA > 1 || cosHA < -1 {
		// Polar night (sun never rises) or polar day (never sets).
		return time.Time{}, false
	}

	// Hour angle in degrees; acos is non-negative, so subtracting gives the
	// morning crossing and adding gives the evening crossing.
	haDeg := math.Acos(cosHA) * 180 / math.Pi

	solarNoonUTC := 720 - 4*lng - eqtime // minutes after 00:00 UTC
	utcMinutes := solarNoonUTC + 4*haDeg
	if ev == Sunrise {
		utcMinutes = solarNoonUTC - 4*haDeg
	}

	y, m, d := date.Date()
	midnightUTC := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return midnightUTC.Add(time.Duration(utcMinutes * float64(time.Minute))).In(loc), true
}
