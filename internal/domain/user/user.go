package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// namespace seeds deterministic freelancer ids so that the same email always
// resolves to the same account across logins.
var namespace = uuid.MustParse("6f1c2a7e-3d4b-4c59-9a8e-2b7f0d1e5c3a")

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// IDForEmail returns the stable user id for an email address.
func IDForEmail(email string) string {
	return uuid.NewSHA1(namespace, []byte(NormalizeEmail(email))).String()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayName falls back to the local part of the email when no name is known.
func DisplayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(NormalizeEmail(email), "@")
	return local
}
