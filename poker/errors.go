package poker

import "errors"

// ErrInvalidInput covers malformed card notation, duplicate cards, and an
// evaluator call with fewer than 5 or more than 7 cards.
var ErrInvalidInput = errors.New("poker: invalid input")

// ErrInsufficientCards is returned when a deck cannot satisfy a deal request
// because too few cards remain.
var ErrInsufficientCards = errors.New("poker: insufficient cards remaining")
