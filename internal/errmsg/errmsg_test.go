package errmsg

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oakmart/storefront/internal/transport"
)

func TestUserFriendly_Mapped(t *testing.T) {
	assert.Equal(t,
		"Something went wrong. Please try again later.",
		UserFriendly("Internal server error"))
	assert.Equal(t,
		"Your session has expired. Please log in again.",
		UserFriendly("Invalid or expired token"))
	assert.Equal(t,
		"Connection error. Please check your network and try again.",
		UserFriendly(transport.NetworkErrorMessage))
}

func TestUserFriendly_TrimsWhitespace(t *testing.T) {
	assert.Equal(t,
		"Order not found.",
		UserFriendly("  Order not found \n"))
}

func TestUserFriendly_UnmappedFallsBack(t *testing.T) {
	// never leak unmapped backend internals
	assert.Equal(t, Generic, UserFriendly("pq: duplicate key value violates unique constraint"))
	assert.Equal(t, Generic, UserFriendly("anything unmapped"))
}

func TestUserFriendly_EmptyFallsBack(t *testing.T) {
	assert.Equal(t, Generic, UserFriendly(""))
	assert.Equal(t, Generic, UserFriendly("   "))
}

func TestFromError(t *testing.T) {
	assert.Equal(t, Generic, FromError(nil))
	assert.Equal(t, Generic, FromError(errors.New("raw failure")))

	te := &transport.Error{Kind: transport.KindHTTP, Status: http.StatusInternalServerError, Message: "Internal server error"}
	assert.Equal(t, "Something went wrong. Please try again later.", FromError(te))
}
