package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
)

var (
	ErrBagEmpty        = errors.New("letter bag is empty")
	ErrLetterNotInPlay = errors.New("letter not in play")
)

// bagDistribution is a Scrabble-like tile set of 99 letters.
var bagDistribution = []struct {
	letter string
	count  int
}{
	{"A", 9}, {"E", 12}, {"I", 9}, {"O", 8}, {"U", 4},
	{"N", 6}, {"R", 6}, {"T", 6}, {"L", 4}, {"S", 4}, {"D", 4}, {"G", 3}, {"H", 2}, {"Y", 2},
	{"B", 2}, {"C", 2}, {"M", 2}, {"P", 2}, {"F", 2}, {"W", 2}, {"V", 2}, {"K", 1}, {"J", 1}, {"X", 1},
	{"Q", 1}, {"Z", 2},
}

// BagSize is the number of tiles in a full bag, the sum of bagDistribution.
const BagSize = 99

// BagState summarises the bag for clients.
type BagState struct {
	Available int `json:"available"`
	InPlay    int `json:"in_play"`
	Total     int `json:"total"`
}

// LetterBag tracks which tiles are still drawable and which are on the board.
// Every tile is always in exactly one of the two.
type LetterBag struct {
	available []string
	inPlay    []string
	rng       *rand.Rand
}

func NewLetterBag(rng *rand.Rand) *LetterBag {
	b := &LetterBag{rng: rng}
	b.Init()
	return b
}

// Init refills the bag with the full distribution and shuffles it.
func (b *LetterBag) Init() {
	b.available = b.available[:0]
	b.inPlay = b.inPlay[:0]
	for _, d := range bagDistribution {
		for i := 0; i < d.count; i++ {
			b.available = append(b.available, d.letter)
		}
	}

	for i := len(b.available) - 1; i > 0; i-- {
		j := b.rng.Intn(i + 1)
		b.available[i], b.available[j] = b.available[j], b.available[i]
	}
	log.Printf("[BAG] Letter bag initialized with %d letters", len(b.available))
}

// Draw moves the top tile into play.
func (b *LetterBag) Draw() (string, error) {
	if len(b.available) == 0 {
		return "", ErrBagEmpty
	}
	last := len(b.available) - 1
	letter := b.available[last]
	b.available = b.available[:last]
	b.inPlay = append(b.inPlay, letter)
	return letter, nil
}

// Return moves one in-play tile back into the bag and swaps it into a
// random slot so the next draw is not predictable.
func (b *LetterBag) Return(letter string) error {
	idx := -1
	for i, l := range b.inPlay {
		if l == letter {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrLetterNotInPlay, letter)
	}

	b.inPlay = append(b.inPlay[:idx], b.inPlay[idx+1:]...)
	b.available = append(b.available, letter)
	last := len(b.available) - 1
	j := b.rng.Intn(len(b.available))
	b.available[last], b.available[j] = b.available[j], b.available[last]
	return nil
}

func (b *LetterBag) State() BagState {
	return BagState{
		Available: len(b.available),
		InPlay:    len(b.inPlay),
		Total:     len(b.available) + len(b.inPlay),
	}
}
