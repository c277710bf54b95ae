package activity

import "fmt"

var sportNames = map[Sport]string{
	SportSwim:     "Swim",
	SportBike:     "Ride",
	SportRun:      "Run",
	SportStrength: "Strength",
	SportBrick:    "Brick",
	SportRest:     "Rest",
	SportOther:    "Workout",
}

// Title builds a default activity title from the sport and totals.
// Activities with distance are titled by kilometers, the rest by minutes.
func Title(sport Sport, distanceMeters float64, timerSeconds int) string {
	name, ok := sportNames[sport]
	if !ok {
		name = "Workout"
	}
	if distanceMeters > 0 {
		return fmt.Sprintf("%s %.2f km", name, distanceMeters/1000)
	}
	return fmt.Sprintf("%s %d min", name, timerSeconds/60)
}
