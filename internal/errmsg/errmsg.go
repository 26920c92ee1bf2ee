// Package errmsg translates backend error text into user-facing messages.
// The table is deliberately closed: unknown backend text maps to a generic
// message so internals are never shown to the user.
package errmsg

import (
	_ "embed"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/oakmart/storefront/internal/transport"
)

// Generic is the unconditional fallback for unrecognized errors.
const Generic = "Something went wrong. Please try again."

//go:embed messages.yaml
var rawMessages []byte

type messageTable struct {
	Messages map[string]string `yaml:"messages"`
}

var table = loadTable()

func loadTable() map[string]string {
	var t messageTable
	if err := yaml.Unmarshal(rawMessages, &t); err != nil {
		// the table is embedded; a parse failure is a build defect, but
		// the generic fallback keeps the client usable
		log.Error().Err(err).Msg("embedded message table failed to parse")
		return map[string]string{}
	}
	return t.Messages
}

// UserFriendly maps raw backend error text to a message suitable for display.
// Unknown or empty input returns the generic fallback.
func UserFriendly(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Generic
	}
	if friendly, ok := table[trimmed]; ok {
		return friendly
	}
	return Generic
}

// FromError maps an error to a display message using the normalized transport
// message when available.
func FromError(err error) string {
	if err == nil {
		return Generic
	}
	return UserFriendly(transport.Message(err))
}
