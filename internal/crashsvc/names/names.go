package names

import (
	"fmt"
	"math/rand"
)

var adjectives = []string{
	"Lucky", "Golden", "Cosmic", "Happy", "Clever", "Silent", "Shadow", "Royal", "Diamond", "Atomic",
}

var nouns = []string{
	"Panda", "Lion", "Tiger", "Fox", "Shark", "Wolf", "Cobra", "Eagle", "Joker", "Phantom",
}

// Generate returns a random display name like "LuckyPanda07" for users who
// arrive without one.
func Generate() string {
	adjective := adjectives[rand.Intn(len(adjectives))]
	noun := nouns[rand.Intn(len(nouns))]
	number := 1 + rand.Intn(99)
	return fmt.Sprintf("%s%s%02d", adjective, noun, number)
}
