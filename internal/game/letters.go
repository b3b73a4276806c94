package game

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	MinRadius = 30.0
	MaxRadius = 45.0

	minFrequency = 0.07
	maxFrequency = 12.70
)

// letterFrequency is the share of English text (percent) each letter accounts for.
var letterFrequency = map[string]float64{
	"E": 12.70, "T": 9.06, "A": 8.17, "O": 7.51, "I": 6.97, "N": 6.75,
	"S": 6.33, "H": 6.09, "R": 5.99, "D": 4.25, "L": 4.03, "C": 2.78,
	"U": 2.76, "M": 2.41, "W": 2.36, "F": 2.23, "G": 2.02, "Y": 1.97,
	"P": 1.93, "B": 1.29, "V": 0.98, "K": 0.77, "J": 0.15, "X": 0.15,
	"Q": 0.10, "Z": 0.07,
}

// Frequency returns the English frequency of an upper-case letter.
func Frequency(letter string) (float64, bool) {
	f, ok := letterFrequency[letter]
	return f, ok
}

// RadiusForFrequency maps a letter frequency linearly onto [MinRadius, MaxRadius],
// so common letters get bigger balls.
func RadiusForFrequency(frequency float64) float64 {
	normalized := (mgl64.Clamp(frequency, minFrequency, maxFrequency) - minFrequency) / (maxFrequency - minFrequency)
	return MinRadius + normalized*(MaxRadius-MinRadius)
}

// RadiusForLetter is RadiusForFrequency for a letter; unknown letters get MinRadius.
func RadiusForLetter(letter string) float64 {
	f, ok := Frequency(letter)
	if !ok {
		return MinRadius
	}
	return RadiusForFrequency(f)
}

// ColorForLetter spreads the alphabet around the hue wheel.
func ColorForLetter(letter string) string {
	if len(letter) == 0 {
		return "hsl(0, 75%, 60%)"
	}
	index := float64(int(letter[0]) - 'A')
	hue := math.Mod(index*360/26, 360)
	return fmt.Sprintf("hsl(%s, 75%%, 60%%)", strconv.FormatFloat(hue, 'f', -1, 64))
}
