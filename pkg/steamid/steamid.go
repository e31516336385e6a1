// Package steamid converts between the textual forms of a Steam account
// identity and builds the canonical community profile URL.
package steamid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// base is the SteamID64 of account 0 in the public universe, individual type.
const base uint64 = 76561197960265728

// ProfileBase is the community profile prefix a SteamID64 is appended to.
const ProfileBase = "https://steamcommunity.com/profiles/"

// ErrInvalid is returned when a string is not a recognizable SteamID.
var ErrInvalid = errors.New("steamid: invalid identity")

// ID is a 64-bit Steam identity. Zero means not authenticated.
type ID uint64

// Valid reports whether id refers to an individual account in the public
// universe. Group, game server and zero-account IDs are not valid.
func (id ID) Valid() bool {
	return uint64(id)>>32 == base>>32 && id.AccountID() != 0
}

// AccountID returns the 32-bit account number.
func (id ID) AccountID() uint32 {
	return uint32(uint64(id) & 0xFFFFFFFF)
}

// String returns the decimal SteamID64 form.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// SteamID2 returns the legacy STEAM_0:Y:Z form.
func (id ID) SteamID2() string {
	acct := id.AccountID()
	return fmt.Sprintf("STEAM_0:%d:%d", acct&1, acct>>1)
}

// SteamID3 returns the [U:1:N] form.
func (id ID) SteamID3() string {
	return fmt.Sprintf("[U:1:%d]", id.AccountID())
}

// ProfileURL returns the community profile link for id, or "" when id is zero.
func (id ID) ProfileURL() string {
	if id == 0 {
		return ""
	}
	return ProfileBase + id.String()
}

// Parse accepts a SteamID64, STEAM_X:Y:Z or [U:1:N] string.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return 0, ErrInvalid
	case strings.HasPrefix(strings.ToUpper(s), "STEAM_"):
		return parseSteam2(s)
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		return parseSteam3(s)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return ID(n), nil
}

func parseSteam2(s string) (ID, error) {
	parts := strings.Split(s[len("STEAM_"):], ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	y, err := strconv.ParseUint(parts[1], 10, 1)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	z, err := strconv.ParseUint(parts[2], 10, 31)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return ID(base + z*2 + y), nil
}

func parseSteam3(s string) (ID, error) {
	parts := strings.Split(s[1:len(s)-1], ":")
	if len(parts) != 3 || !strings.EqualFold(parts[0], "U") {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	acct, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return ID(base + acct), nil
}
