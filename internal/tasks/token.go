package tasks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/tunebot/internal/session"
	"github.com/desertthunder/tunebot/internal/shared"
)

// tokenPrefix marks callback payloads produced by Search. Anything else
// arriving on the callback channel is rejected before touching the store.
const tokenPrefix = "pick"

// EncodeToken builds the callback payload for one candidate: the generation
// of the list it belongs to plus its position within that list.
func EncodeToken(generation uint64, index int) string {
	return fmt.Sprintf("%s:%d:%d", tokenPrefix, generation, index)
}

// ParseToken parses a callback payload back into a [session.Selection].
// Malformed payloads wrap [shared.ErrInvalidSelection].
func ParseToken(token string) (session.Selection, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 || parts[0] != tokenPrefix {
		return session.Selection{}, fmt.Errorf("%w: %q", shared.ErrInvalidSelection, token)
	}

	generation, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return session.Selection{}, fmt.Errorf("%w: bad generation in %q", shared.ErrInvalidSelection, token)
	}

	index, err := strconv.Atoi(parts[2])
	if err != nil {
		return session.Selection{}, fmt.Errorf("%w: bad index in %q", shared.ErrInvalidSelection, token)
	}

	return session.Selection{Generation: generation, Index: index}, nil
}
