package platformuser

import (
	"fmt"
	"strings"
)

// Linkage connects one local account to one remote-platform identity.
type Linkage struct {
	ID          int64
	ProfileID   string
	Username    string
	DisplayName string
	AvatarID    string
	Season      string
}

func (l Linkage) Validate() error {
	if strings.TrimSpace(l.ProfileID) == "" {
		return fmt.Errorf("profile id is required")
	}
	if strings.TrimSpace(l.Username) == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}
