package game

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"strings"
)

// WordBank is a static catalog of guessable words grouped by topic.
type WordBank struct {
	categories map[string][]string
	words      []string
}

func NewWordBank(categories map[string][]string) (*WordBank, error) {
	wb := &WordBank{categories: make(map[string][]string, len(categories))}
	seen := make(map[string]struct{})

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, w := range categories[name] {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" {
				continue
			}
			wb.categories[name] = append(wb.categories[name], w)

			// 同一个词可能出现在多个分类里，抽词时只算一次
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			wb.words = append(wb.words, w)
		}
	}

	if len(wb.words) == 0 {
		return nil, fmt.Errorf("word bank is empty")
	}

	return wb, nil
}

// LoadWordBank reads a JSON object of category -> words.
func LoadWordBank(path string) (*WordBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word file: %w", err)
	}

	var categories map[string][]string
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parse word file %s: %w", path, err)
	}

	return NewWordBank(categories)
}

func DefaultWordBank() *WordBank {
	wb, err := NewWordBank(defaultCategories)
	if err != nil {
		panic("default word bank: " + err.Error())
	}
	return wb
}

func (wb *WordBank) Size() int {
	return len(wb.words)
}

func (wb *WordBank) Categories() []string {
	names := make([]string, 0, len(wb.categories))
	for name := range wb.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Draw picks a word uniformly at random among those not in exclude. Once every
// word has been used it falls back to the whole catalog.
func (wb *WordBank) Draw(exclude map[string]struct{}) string {
	if len(exclude) == 0 {
		return wb.words[rand.IntN(len(wb.words))]
	}

	candidates := make([]string, 0, len(wb.words))
	for _, w := range wb.words {
		if _, used := exclude[w]; !used {
			candidates = append(candidates, w)
		}
	}

	if len(candidates) == 0 {
		return wb.words[rand.IntN(len(wb.words))]
	}

	return candidates[rand.IntN(len(candidates))]
}

var defaultCategories = map[string][]string{
	"animals": {
		"cat", "dog", "elephant", "fish", "giraffe", "horse", "lion", "monkey", "penguin", "rabbit",
		"shark", "snake", "tiger", "turtle", "wolf", "zebra", "bear", "chicken", "duck", "owl",
	},
	"food": {
		"apple", "banana", "burger", "cake", "carrot", "cheese", "cookie", "grapes", "hamburger", "ice cream",
		"lemon", "orange", "pizza", "popcorn", "sandwich", "strawberry", "sushi", "taco", "watermelon", "donut",
	},
	"objects": {
		"book", "computer", "door", "flower", "guitar", "hat", "key", "lamp", "pencil", "umbrella",
		"backpack", "bicycle", "camera", "chair", "clock", "cup", "glasses", "shoes", "table", "television",
	},
	"places": {
		"beach", "castle", "city", "desert", "forest", "house", "island", "mountain", "ocean", "river",
		"school", "sun", "tree", "volcano", "waterfall", "bridge", "cave", "farm", "park", "tent",
	},
	"transportation": {
		"airplane", "bus", "car", "helicopter", "motorcycle", "rocket", "ship", "submarine", "train", "truck",
		"boat", "skateboard", "spaceship", "tractor", "ambulance", "balloon", "canoe", "scooter", "taxi", "unicycle",
	},
	"clothing": {
		"jacket", "shirt", "shoe", "sock", "boot", "dress", "glove", "hat", "pants", "scarf",
		"sweater", "tie", "belt", "crown", "necklace", "ring", "watch", "helmet", "swimsuit", "hoodie",
	},
	"sports": {
		"baseball", "basketball", "football", "soccer", "tennis", "volleyball", "chess", "dice", "frisbee", "kite",
		"puzzle", "snowboard", "surfboard", "swing", "whistle", "bowling", "golf", "hockey", "karate", "ski",
	},
	"body": {
		"arm", "ear", "eye", "foot", "hand", "heart", "leg", "nose", "smile", "tooth",
		"brain", "finger", "hair", "knee", "lips", "muscle", "shoulder", "skeleton", "stomach", "tongue",
	},
	"weather": {
		"cloud", "fire", "lightning", "moon", "rainbow", "rain", "snow", "star", "sun", "tornado",
		"wind", "comet", "earth", "flower", "hurricane", "leaf", "planet", "storm", "wave", "thunder",
	},
}
